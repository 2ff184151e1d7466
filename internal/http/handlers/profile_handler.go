package handlers

import (
	applog "paperback/internal/log"
	"paperback/internal/services"
	"paperback/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves self-service profile routes. The same handler backs
// /api/user/profile and the admin's /settings/profile.
type ProfileHandler struct {
	Users *services.UserService
	Auth  *services.AuthService
}

// GET /api/user/profile and GET /settings/profile
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	u, err := h.Users.Get(uid(c))
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unknown user")
	}
	return c.JSON(u)
}

// PUT /api/user/profile and PUT /settings/profile
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var in struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	name, okName := validate.Name(in.Name)
	email, okEmail := validate.Email(in.Email)
	if !okName || !okEmail {
		return fail(c, fiber.StatusUnprocessableEntity, "name and valid email are required")
	}

	u, err := h.Users.UpdateProfile(uid(c), name, email)
	if err != nil {
		applog.Error(c, "profile.update.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not update profile")
	}
	applog.Audit(c, "profile.update", nil)
	return c.JSON(u)
}

// POST /api/user/change-password
func (h *ProfileHandler) ChangePassword(c *fiber.Ctx) error {
	var in struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !validate.Password(in.New) {
		return failFields(c, fiber.StatusUnprocessableEntity, "validation failed",
			map[string]string{"new_password": "password needs 8+ chars with upper, lower and digit"})
	}

	if err := h.Auth.ChangePassword(uid(c), in.Current, in.New); err != nil {
		if err == services.ErrBadCreds {
			return failFields(c, fiber.StatusUnprocessableEntity, "validation failed",
				map[string]string{"current_password": "current password is incorrect"})
		}
		applog.Error(c, "profile.password.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not change password")
	}
	applog.Audit(c, "profile.password.change", nil)
	return c.JSON(fiber.Map{"message": "password updated"})
}
