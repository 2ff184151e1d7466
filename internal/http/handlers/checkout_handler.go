package handlers

import (
	"errors"

	"paperback/internal/domain"
	applog "paperback/internal/log"
	"paperback/internal/repos"
	"paperback/internal/services"
	"paperback/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	Orders *services.OrderService
}

type shippingInput struct {
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Notes      string `json:"notes"`
}

func (in *shippingInput) check() (domain.ShippingAddress, map[string]string) {
	fields := map[string]string{}
	if _, ok := validate.Name(in.Recipient); !ok {
		fields["recipient"] = "recipient is required"
	}
	if _, ok := validate.Phone(in.Phone); !ok {
		fields["phone"] = "valid phone number is required"
	}
	if in.Address == "" {
		fields["address"] = "address is required"
	}
	if in.City == "" {
		fields["city"] = "city is required"
	}
	if _, ok := validate.PostalCode(in.PostalCode); !ok {
		fields["postal_code"] = "5-digit postal code is required"
	}
	return domain.ShippingAddress{
		Recipient:  in.Recipient,
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		Province:   in.Province,
		PostalCode: in.PostalCode,
	}, fields
}

// POST /api/user/checkout/create-order
func (h *CheckoutHandler) CreateOrder(c *fiber.Ctx) error {
	var in shippingInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	ship, fields := in.check()
	if len(fields) > 0 {
		return failFields(c, fiber.StatusUnprocessableEntity, "validation failed", fields)
	}

	o, err := h.Orders.Checkout(uid(c), ship, in.Notes)
	if err != nil {
		return h.checkoutError(c, err)
	}
	applog.Audit(c, "checkout.create_order", map[string]any{"order_id": o.ID, "total": o.Total})
	return c.Status(fiber.StatusCreated).JSON(o)
}

// POST /api/user/checkout/buy-now
func (h *CheckoutHandler) BuyNow(c *fiber.Ctx) error {
	var in struct {
		shippingInput
		BookID string `json:"book_id"`
		Qty    int    `json:"qty"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	ship, fields := in.check()
	if _, ok := validate.ID(in.BookID); !ok {
		fields["book_id"] = "book is required"
	}
	if len(fields) > 0 {
		return failFields(c, fiber.StatusUnprocessableEntity, "validation failed", fields)
	}

	o, err := h.Orders.BuyNow(uid(c), in.BookID, validate.Qty(in.Qty), ship, in.Notes)
	if err != nil {
		return h.checkoutError(c, err)
	}
	applog.Audit(c, "checkout.buy_now", map[string]any{"order_id": o.ID, "book_id": in.BookID})
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *CheckoutHandler) checkoutError(c *fiber.Ctx, err error) error {
	switch {
	case err == services.ErrCartEmpty:
		return fail(c, fiber.StatusUnprocessableEntity, "cart is empty")
	case err == repos.ErrNotFound:
		return fail(c, fiber.StatusNotFound, "book not found")
	case errors.Is(err, repos.ErrInsufficientStock):
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		applog.Error(c, "checkout.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not place order")
	}
}
