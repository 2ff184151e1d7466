package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"paperback/internal/domain"
)

var shipBody = fiber.Map{
	"recipient":   "Reader",
	"phone":       "08123456789",
	"address":     "Jl. Test 1",
	"city":        "Jakarta",
	"postal_code": "12345",
}

func TestCheckoutOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, "reader@paperback.test")

	resp, err := env.app.Test(jsonReq("POST", "/api/user/cart", tok, fiber.Map{
		"book_id": "bk-gopl", "qty": 2,
	}))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, resp, http.StatusOK)

	resp2, err := env.app.Test(jsonReq("POST", "/api/user/checkout/create-order", tok, shipBody))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, resp2, http.StatusCreated)

	var o domain.Order
	decodeBody(t, resp2, &o)
	if o.Status != domain.OrderPending || o.Total != 2*39.95 {
		t.Fatalf("order = %+v", o)
	}

	// Cart is empty and the order shows up in the user's list.
	resp3, err := env.app.Test(jsonReq("GET", "/api/user/cart", tok, nil))
	if err != nil {
		t.Fatal(err)
	}
	var cart struct {
		Items []domain.CartItem `json:"items"`
	}
	decodeBody(t, resp3, &cart)
	if len(cart.Items) != 0 {
		t.Fatalf("cart after checkout = %+v", cart.Items)
	}

	resp4, err := env.app.Test(jsonReq("GET", "/api/user/orders", tok, nil))
	if err != nil {
		t.Fatal(err)
	}
	var orders struct {
		Data []domain.Order `json:"data"`
	}
	decodeBody(t, resp4, &orders)
	if len(orders.Data) != 1 || orders.Data[0].ID != o.ID {
		t.Fatalf("orders = %+v", orders.Data)
	}
}

func TestCheckoutEmptyCartOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, "reader@paperback.test")

	resp, err := env.app.Test(jsonReq("POST", "/api/user/checkout/create-order", tok, shipBody))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, resp, http.StatusUnprocessableEntity)
}

func TestCheckoutValidatesShipping(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, "reader@paperback.test")

	resp, err := env.app.Test(jsonReq("POST", "/api/user/checkout/create-order", tok, fiber.Map{
		"recipient": "Reader",
	}))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, resp, http.StatusUnprocessableEntity)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, resp, &body)
	for _, f := range []string{"phone", "address", "city", "postal_code"} {
		if body.Errors[f] == "" {
			t.Fatalf("missing error for %q: %+v", f, body.Errors)
		}
	}
}
