package handlers

import (
	"database/sql"

	applog "paperback/internal/log"
	"paperback/internal/services"
	"paperback/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// AdminOrderHandler covers the back-office order/transaction/dashboard views.
type AdminOrderHandler struct {
	Orders    *services.OrderService
	Payments  *services.PaymentService
	Dashboard *services.DashboardService
}

// GET /api/admin/orders
func (h *AdminOrderHandler) List(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" && !validate.OrderStatus(status) {
		return fail(c, fiber.StatusBadRequest, "unknown status filter")
	}
	orders, err := h.Orders.AdminList(status, c.QueryInt("limit", 100))
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load orders")
	}
	return c.JSON(fiber.Map{"data": orders})
}

// GET /api/admin/orders/:id
func (h *AdminOrderHandler) Get(c *fiber.Ctx) error {
	o, err := h.Orders.AdminGet(c.Params("id"))
	if err == sql.ErrNoRows {
		return fail(c, fiber.StatusNotFound, "order not found")
	}
	if err != nil {
		applog.Error(c, "admin.orders.get.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load order")
	}
	return c.JSON(o)
}

// PUT /api/admin/orders/:id/status
func (h *AdminOrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	var in struct {
		Status         string `json:"status"`
		TrackingNumber string `json:"tracking_number"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !validate.OrderStatus(in.Status) {
		return fail(c, fiber.StatusUnprocessableEntity, "unknown status")
	}

	o, err := h.Orders.AdminUpdateStatus(id, in.Status, in.TrackingNumber)
	if err == sql.ErrNoRows {
		return fail(c, fiber.StatusNotFound, "order not found")
	}
	if err == services.ErrBadTransition {
		return fail(c, fiber.StatusUnprocessableEntity, "illegal status transition")
	}
	if err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not update order")
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": in.Status})
	return c.JSON(o)
}

// GET /api/admin/transactions
func (h *AdminOrderHandler) Transactions(c *fiber.Ctx) error {
	txns, err := h.Payments.List(c.QueryInt("limit", 100))
	if err != nil {
		applog.Error(c, "admin.transactions.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load transactions")
	}
	return c.JSON(fiber.Map{"data": txns})
}

// GET /api/admin/dashboard
func (h *AdminOrderHandler) AdminDashboard(c *fiber.Ctx) error {
	stats, err := h.Dashboard.Admin()
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load dashboard")
	}
	return c.JSON(stats)
}
