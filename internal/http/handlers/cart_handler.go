package handlers

import (
	applog "paperback/internal/log"
	"paperback/internal/repos"
	"paperback/internal/services"
	"paperback/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

// GET /api/user/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	view, err := h.Cart.View(uid(c))
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load cart")
	}
	return c.JSON(view)
}

// POST /api/user/cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in struct {
		BookID string `json:"book_id"`
		Qty    int    `json:"qty"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if _, ok := validate.ID(in.BookID); !ok {
		return failFields(c, fiber.StatusUnprocessableEntity, "validation failed",
			map[string]string{"book_id": "book is required"})
	}

	if err := h.Cart.Add(uid(c), in.BookID, validate.Qty(in.Qty)); err != nil {
		if err == repos.ErrNotFound {
			return fail(c, fiber.StatusNotFound, "book not found")
		}
		applog.Error(c, "cart.add.fail", err, map[string]any{"book_id": in.BookID})
		return fail(c, fiber.StatusInternalServerError, "could not add to cart")
	}
	applog.Info(c, "cart.add", map[string]any{"book_id": in.BookID, "qty": in.Qty})
	return h.View(c)
}

// PUT /api/user/cart/:id
func (h *CartHandler) UpdateQty(c *fiber.Ctx) error {
	var in struct {
		Qty int `json:"qty"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Cart.UpdateQty(uid(c), c.Params("id"), validate.Qty(in.Qty)); err != nil {
		if err == repos.ErrNotFound {
			return fail(c, fiber.StatusNotFound, "cart item not found")
		}
		applog.Error(c, "cart.update.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not update cart")
	}
	return h.View(c)
}

// DELETE /api/user/cart/:id
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	if err := h.Cart.Remove(uid(c), c.Params("id")); err != nil {
		if err == repos.ErrNotFound {
			return fail(c, fiber.StatusNotFound, "cart item not found")
		}
		applog.Error(c, "cart.remove.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not update cart")
	}
	return h.View(c)
}

// DELETE /api/user/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(uid(c)); err != nil {
		applog.Error(c, "cart.clear.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not clear cart")
	}
	return h.View(c)
}
