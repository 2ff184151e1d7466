package handlers

import (
	"database/sql"

	applog "paperback/internal/log"
	"paperback/internal/repos"
	"paperback/internal/services"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	Payments *services.PaymentService
}

// POST /api/user/payment/:orderId returns the provider's Snap token used to
// open the hosted checkout popup.
func (h *PaymentHandler) CreateSession(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	session, err := h.Payments.CreateSession(uid(c), orderID)
	if err == sql.ErrNoRows || err == repos.ErrNotFound {
		return fail(c, fiber.StatusNotFound, "order not found")
	}
	if err == services.ErrNotPayable {
		return fail(c, fiber.StatusUnprocessableEntity, "order is not awaiting payment")
	}
	if err != nil {
		applog.Error(c, "payment.session.fail", err, map[string]any{"order_id": orderID})
		return fail(c, fiber.StatusBadGateway, "payment provider unavailable")
	}
	applog.Audit(c, "payment.session", map[string]any{"order_id": orderID, "txn_id": session.Transaction.ID})
	return c.JSON(session)
}

// POST /api/payment/notification handles the provider's server-to-server
// callback. No bearer auth: a real deployment verifies the provider's
// signature key here instead.
func (h *PaymentHandler) Notification(c *fiber.Ctx) error {
	var in struct {
		OrderID           string `json:"order_id"`
		TransactionStatus string `json:"transaction_status"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.Payments.HandleNotification(in.OrderID, in.TransactionStatus); err != nil {
		if err == sql.ErrNoRows {
			return fail(c, fiber.StatusNotFound, "order not found")
		}
		applog.Error(c, "payment.notification.fail", err, map[string]any{"order_id": in.OrderID})
		return fail(c, fiber.StatusInternalServerError, "could not apply notification")
	}
	applog.Audit(c, "payment.notification", map[string]any{"order_id": in.OrderID, "status": in.TransactionStatus})
	return c.JSON(fiber.Map{"message": "ok"})
}
