package handlers

import (
	applog "paperback/internal/log"
	"paperback/internal/services"
	"paperback/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	fields := map[string]string{}
	name, ok := validate.Name(in.Name)
	if !ok {
		fields["name"] = "name is required"
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		fields["email"] = "valid email is required"
	}
	if !validate.Password(in.Password) {
		fields["password"] = "password needs 8+ chars with upper, lower and digit"
	}
	if len(fields) > 0 {
		return failFields(c, fiber.StatusUnprocessableEntity, "validation failed", fields)
	}

	u, err := h.Auth.Register(name, email, in.Password)
	if err == services.ErrEmailTaken {
		return failFields(c, fiber.StatusUnprocessableEntity, "validation failed",
			map[string]string{"email": "email already registered"})
	}
	if err != nil {
		applog.Error(c, "auth.register.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not register")
	}

	applog.Audit(c, "auth.register", map[string]any{"email": email})
	return c.Status(fiber.StatusCreated).JSON(u)
}

// POST /api/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if _, ok := validate.Email(in.Email); !ok || in.Password == "" {
		applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return fail(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	u, token, err := h.Auth.Login(in.Email, in.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return fail(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": in.Email})
	return c.JSON(fiber.Map{"token": token, "user": u})
}

// GET /api/user
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u, err := h.Auth.Users.ByID(uid(c))
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unknown user")
	}
	return c.JSON(u)
}

// POST /api/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if claims, ok := c.Locals("claims").(*services.Claims); ok {
		if err := h.Auth.Logout(c.Context(), claims); err != nil {
			applog.Error(c, "auth.logout.revoke.fail", err, nil)
		}
	}
	applog.Audit(c, "auth.logout", nil)
	return c.JSON(fiber.Map{"message": "logged out"})
}
