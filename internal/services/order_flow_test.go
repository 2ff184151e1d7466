package services_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"paperback/internal/domain"
	"paperback/internal/repos"
	"paperback/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type stockEvent struct {
	id    string
	stock int
	title string
}

type fakePublisher struct{ events []stockEvent }

func (f *fakePublisher) PublishStock(id string, stock int, title string) {
	f.events = append(f.events, stockEvent{id: id, stock: stock, title: title})
}

func orderFixture(t *testing.T) (*services.CartService, *services.OrderService, *repos.BookRepo, *fakePublisher) {
	t.Helper()
	db := memdb(t)
	books := repos.NewBookRepo(db)
	carts := repos.NewCartRepo(db)
	orders := repos.NewOrderRepo(db)
	pub := &fakePublisher{}
	return services.NewCartService(carts, books),
		services.NewOrderService(carts, books, orders, pub),
		books, pub
}

var testShip = domain.ShippingAddress{
	Recipient:  "Reader",
	Phone:      "08123456789",
	Address:    "Jl. Test 1",
	City:       "Jakarta",
	PostalCode: "12345",
}

func TestCheckoutDecrementsStockAndClearsCart(t *testing.T) {
	cartSvc, orderSvc, books, pub := orderFixture(t)

	if err := cartSvc.Add("u-reader", "bk-gopl", 2); err != nil {
		t.Fatal(err)
	}

	o, err := orderSvc.Checkout("u-reader", testShip, "gift wrap please")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.OrderPending {
		t.Fatalf("status = %s, want pending", o.Status)
	}
	if o.Total != 2*39.95 {
		t.Fatalf("total = %v", o.Total)
	}

	b, err := books.Get("bk-gopl")
	if err != nil {
		t.Fatal(err)
	}
	if b.Stock != 4 {
		t.Fatalf("stock = %d, want 4", b.Stock)
	}

	cv, err := cartSvc.View("u-reader")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Items) != 0 {
		t.Fatalf("cart not cleared: %+v", cv.Items)
	}

	if len(pub.events) != 1 || pub.events[0].id != "bk-gopl" || pub.events[0].stock != 4 {
		t.Fatalf("stock events = %+v", pub.events)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	_, orderSvc, _, _ := orderFixture(t)

	_, err := orderSvc.Checkout("u-reader", testShip, "")
	if !errors.Is(err, services.ErrCartEmpty) {
		t.Fatalf("err = %v, want ErrCartEmpty", err)
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	cartSvc, orderSvc, books, pub := orderFixture(t)

	// bk-sapiens is seeded with zero stock.
	if err := cartSvc.Add("u-reader", "bk-sapiens", 1); err != nil {
		t.Fatal(err)
	}
	_, err := orderSvc.Checkout("u-reader", testShip, "")
	if !errors.Is(err, repos.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no stock should have moved, events = %+v", pub.events)
	}
	b, _ := books.Get("bk-sapiens")
	if b.Stock != 0 {
		t.Fatalf("stock changed to %d", b.Stock)
	}
}

func TestBuyNowBypassesCart(t *testing.T) {
	cartSvc, orderSvc, books, _ := orderFixture(t)

	o, err := orderSvc.BuyNow("u-reader", "bk-gatsby", 3, testShip, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(o.Items) != 1 || o.Items[0].Qty != 3 {
		t.Fatalf("items = %+v", o.Items)
	}

	b, _ := books.Get("bk-gatsby")
	if b.Stock != 11 {
		t.Fatalf("stock = %d, want 11", b.Stock)
	}
	cv, _ := cartSvc.View("u-reader")
	if len(cv.Items) != 0 {
		t.Fatal("buy-now must not touch the cart")
	}
}

func TestCancelRestoresStock(t *testing.T) {
	_, orderSvc, books, pub := orderFixture(t)

	o, err := orderSvc.BuyNow("u-reader", "bk-gopl", 2, testShip, "")
	if err != nil {
		t.Fatal(err)
	}
	pub.events = nil

	cancelled, err := orderSvc.Cancel("u-reader", o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.Status != domain.OrderCancelled {
		t.Fatalf("status = %s", cancelled.Status)
	}

	b, _ := books.Get("bk-gopl")
	if b.Stock != 6 {
		t.Fatalf("stock = %d, want restored 6", b.Stock)
	}
	if len(pub.events) != 1 || pub.events[0].stock != 6 {
		t.Fatalf("restock events = %+v", pub.events)
	}

	// A cancelled order cannot be cancelled again.
	if _, err := orderSvc.Cancel("u-reader", o.ID); !errors.Is(err, services.ErrNotCancellable) {
		t.Fatalf("second cancel err = %v", err)
	}
}

func TestOrderOwnership(t *testing.T) {
	_, orderSvc, _, _ := orderFixture(t)

	o, err := orderSvc.BuyNow("u-reader", "bk-gatsby", 1, testShip, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := orderSvc.Get("u-admin", o.ID); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("foreign order err = %v, want ErrNotFound", err)
	}
	if _, err := orderSvc.Get("u-reader", o.ID); err != nil {
		t.Fatalf("owner cannot read own order: %v", err)
	}
}

func TestAdminStatusTransitions(t *testing.T) {
	_, orderSvc, books, _ := orderFixture(t)

	o, err := orderSvc.BuyNow("u-reader", "bk-gopl", 1, testShip, "")
	if err != nil {
		t.Fatal(err)
	}

	// pending -> shipped skips payment and must be refused.
	if _, err := orderSvc.AdminUpdateStatus(o.ID, domain.OrderShipped, ""); !errors.Is(err, services.ErrBadTransition) {
		t.Fatalf("pending->shipped err = %v", err)
	}

	for _, step := range []string{domain.OrderPaid, domain.OrderShipped, domain.OrderCompleted} {
		tracking := ""
		if step == domain.OrderShipped {
			tracking = "TRK-001"
		}
		got, err := orderSvc.AdminUpdateStatus(o.ID, step, tracking)
		if err != nil {
			t.Fatalf("transition to %s: %v", step, err)
		}
		if got.Status != step {
			t.Fatalf("status = %s, want %s", got.Status, step)
		}
	}

	// completed is terminal.
	if _, err := orderSvc.AdminUpdateStatus(o.ID, domain.OrderCancelled, ""); !errors.Is(err, services.ErrBadTransition) {
		t.Fatalf("completed->cancelled err = %v", err)
	}

	// Completed order kept its stock decrement.
	b, _ := books.Get("bk-gopl")
	if b.Stock != 5 {
		t.Fatalf("stock = %d, want 5", b.Stock)
	}
}

func TestAdminCancelRestocks(t *testing.T) {
	_, orderSvc, books, _ := orderFixture(t)

	o, err := orderSvc.BuyNow("u-reader", "bk-gatsby", 4, testShip, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := orderSvc.AdminUpdateStatus(o.ID, domain.OrderPaid, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := orderSvc.AdminUpdateStatus(o.ID, domain.OrderCancelled, ""); err != nil {
		t.Fatal(err)
	}
	b, _ := books.Get("bk-gatsby")
	if b.Stock != 14 {
		t.Fatalf("stock = %d, want 14 after admin cancel", b.Stock)
	}
}
