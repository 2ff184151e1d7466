package handlers

import (
	"database/sql"

	applog "paperback/internal/log"
	"paperback/internal/repos"
	"paperback/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler is the customer-facing order history.
type OrderHandler struct {
	Orders    *services.OrderService
	Dashboard *services.DashboardService
}

// GET /api/user/orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Orders.ListByUser(uid(c))
	if err != nil {
		applog.Error(c, "orders.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load orders")
	}
	return c.JSON(fiber.Map{"data": orders})
}

// GET /api/user/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	o, err := h.Orders.Get(uid(c), c.Params("id"))
	if err == sql.ErrNoRows || err == repos.ErrNotFound {
		return fail(c, fiber.StatusNotFound, "order not found")
	}
	if err != nil {
		applog.Error(c, "orders.get.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load order")
	}
	return c.JSON(o)
}

// PUT /api/user/orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	o, err := h.Orders.Cancel(uid(c), id)
	if err == sql.ErrNoRows || err == repos.ErrNotFound {
		return fail(c, fiber.StatusNotFound, "order not found")
	}
	if err == services.ErrNotCancellable {
		return fail(c, fiber.StatusUnprocessableEntity, "order can no longer be cancelled")
	}
	if err != nil {
		applog.Error(c, "orders.cancel.fail", err, map[string]any{"order_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not cancel order")
	}
	applog.Audit(c, "orders.cancel", map[string]any{"order_id": id})
	return c.JSON(o)
}

// GET /api/user/dashboard
func (h *OrderHandler) UserDashboard(c *fiber.Ctx) error {
	stats, err := h.Dashboard.User(uid(c))
	if err != nil {
		applog.Error(c, "dashboard.user.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load dashboard")
	}
	return c.JSON(stats)
}
