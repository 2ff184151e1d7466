package services

import (
	"database/sql"
	"errors"
	"fmt"

	"paperback/internal/domain"
	"paperback/internal/repos"

	"github.com/google/uuid"
)

var (
	ErrCartEmpty      = errors.New("cart is empty")
	ErrNotCancellable = errors.New("order can no longer be cancelled")
	ErrBadTransition  = errors.New("illegal status transition")
)

// legalTransitions is the server-authoritative status machine. Clients only
// request transitions; anything not listed here is rejected.
var legalTransitions = map[string][]string{
	domain.OrderPending: {domain.OrderPaid, domain.OrderCancelled},
	domain.OrderPaid:    {domain.OrderShipped, domain.OrderCancelled},
	domain.OrderShipped: {domain.OrderCompleted},
}

type OrderService struct {
	Carts  *repos.CartRepo
	Books  *repos.BookRepo
	Orders *repos.OrderRepo
	Stock  StockPublisher
}

func NewOrderService(carts *repos.CartRepo, books *repos.BookRepo, orders *repos.OrderRepo, stock StockPublisher) *OrderService {
	return &OrderService{Carts: carts, Books: books, Orders: orders, Stock: stock}
}

// Checkout turns the user's whole cart into a pending order, decrementing
// stock and clearing the cart.
func (s *OrderService) Checkout(userID string, ship domain.ShippingAddress, notes string) (domain.Order, error) {
	cart, err := s.Carts.ListByUser(userID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(cart) == 0 {
		return domain.Order{}, ErrCartEmpty
	}

	items := make([]domain.OrderItem, 0, len(cart))
	for _, it := range cart {
		items = append(items, domain.OrderItem{BookID: it.BookID, Title: it.Title, Qty: it.Qty, Price: it.Price})
	}
	o, err := s.place(userID, items, ship, notes)
	if err != nil {
		return domain.Order{}, err
	}
	_ = s.Carts.Clear(userID)
	return o, nil
}

// BuyNow orders a single book directly, bypassing the cart.
func (s *OrderService) BuyNow(userID, bookID string, qty int, ship domain.ShippingAddress, notes string) (domain.Order, error) {
	if qty < 1 {
		qty = 1
	}
	b, err := s.Books.Get(bookID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Order{}, repos.ErrNotFound
		}
		return domain.Order{}, err
	}
	items := []domain.OrderItem{{BookID: b.ID, Title: b.Title, Qty: qty, Price: b.Price}}
	return s.place(userID, items, ship, notes)
}

func (s *OrderService) place(userID string, items []domain.OrderItem, ship domain.ShippingAddress, notes string) (domain.Order, error) {
	// Pre-check before touching anything.
	for _, it := range items {
		b, err := s.Books.Get(it.BookID)
		if err != nil {
			return domain.Order{}, err
		}
		if b.Stock < it.Qty {
			return domain.Order{}, fmt.Errorf("%w for %q (need %d, have %d)", repos.ErrInsufficientStock, b.Title, it.Qty, b.Stock)
		}
	}

	total := 0.0
	for _, it := range items {
		remaining, err := s.Books.DecrementStock(it.BookID, it.Qty)
		if err != nil {
			return domain.Order{}, err
		}
		if s.Stock != nil {
			s.Stock.PublishStock(it.BookID, remaining, it.Title)
		}
		total += it.Price * float64(it.Qty)
	}

	o := domain.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Status:          domain.OrderPending,
		Total:           total,
		Notes:           notes,
		ShippingAddress: ship,
		Items:           items,
	}
	if err := s.Orders.Create(&o, items); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (s *OrderService) ListByUser(userID string) ([]domain.Order, error) {
	return s.Orders.ListByUser(userID)
}

// Get returns the order only to its owner.
func (s *OrderService) Get(userID, orderID string) (domain.Order, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.UserID != userID {
		return domain.Order{}, repos.ErrNotFound
	}
	return o, nil
}

// Cancel lets the owner back out while the order is still pending.
// Stock is restored for every line item.
func (s *OrderService) Cancel(userID, orderID string) (domain.Order, error) {
	o, err := s.Get(userID, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status != domain.OrderPending {
		return domain.Order{}, ErrNotCancellable
	}
	if err := s.Orders.UpdateStatus(orderID, domain.OrderCancelled, o.TrackingNumber); err != nil {
		return domain.Order{}, err
	}
	s.restock(o.Items)
	o.Status = domain.OrderCancelled
	return o, nil
}

// AdminGet has no ownership restriction.
func (s *OrderService) AdminGet(orderID string) (domain.Order, error) {
	return s.Orders.Get(orderID)
}

func (s *OrderService) AdminList(status string, limit int) ([]domain.Order, error) {
	return s.Orders.List(status, limit)
}

// AdminUpdateStatus applies a requested transition if the status machine
// allows it. Cancelling restores stock.
func (s *OrderService) AdminUpdateStatus(orderID, status, trackingNumber string) (domain.Order, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !transitionAllowed(o.Status, status) {
		return domain.Order{}, ErrBadTransition
	}
	if trackingNumber == "" {
		trackingNumber = o.TrackingNumber
	}
	if err := s.Orders.UpdateStatus(orderID, status, trackingNumber); err != nil {
		return domain.Order{}, err
	}
	if status == domain.OrderCancelled {
		s.restock(o.Items)
	}
	o.Status = status
	o.TrackingNumber = trackingNumber
	return o, nil
}

func (s *OrderService) restock(items []domain.OrderItem) {
	for _, it := range items {
		// Negative decrement adds stock back; failures only cost a push.
		if remaining, err := s.Books.DecrementStock(it.BookID, -it.Qty); err == nil && s.Stock != nil {
			s.Stock.PublishStock(it.BookID, remaining, it.Title)
		}
	}
}

func transitionAllowed(from, to string) bool {
	for _, t := range legalTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
