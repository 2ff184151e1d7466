package handlers

import (
	"database/sql"

	applog "paperback/internal/log"
	"paperback/internal/services"
	"paperback/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// UserAdminHandler is the back-office user management under /api/users.
type UserAdminHandler struct {
	Users *services.UserService
}

type userInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// GET /api/users
func (h *UserAdminHandler) List(c *fiber.Ctx) error {
	users, err := h.Users.List()
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load users")
	}
	return c.JSON(fiber.Map{"data": users})
}

// GET /api/users/:id
func (h *UserAdminHandler) Get(c *fiber.Ctx) error {
	u, err := h.Users.Get(c.Params("id"))
	if err == sql.ErrNoRows {
		return fail(c, fiber.StatusNotFound, "user not found")
	}
	if err != nil {
		applog.Error(c, "admin.users.get.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load user")
	}
	return c.JSON(u)
}

// POST /api/users
func (h *UserAdminHandler) Create(c *fiber.Ctx) error {
	var in userInput
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

	u, err := h.Users.Create(name, email, in.Password, in.Role)
	if err == services.ErrEmailTaken {
		return failFields(c, fiber.StatusUnprocessableEntity, "validation failed",
			map[string]string{"email": "email already registered"})
	}
	if err != nil {
		applog.Error(c, "admin.users.create.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not create user")
	}
	applog.Audit(c, "admin.users.create", map[string]any{"target": u.ID, "role": u.Role})
	return c.Status(fiber.StatusCreated).JSON(u)
}

// PUT /api/users/:id
func (h *UserAdminHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	var in userInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	name, okName := validate.Name(in.Name)
	email, okEmail := validate.Email(in.Email)
	if !okName || !okEmail {
		return fail(c, fiber.StatusUnprocessableEntity, "name and valid email are required")
	}
	u, err := h.Users.Update(id, name, email, in.Role)
	if err != nil {
		applog.Error(c, "admin.users.update.fail", err, map[string]any{"target": id})
		return fail(c, fiber.StatusInternalServerError, "could not update user")
	}
	applog.Audit(c, "admin.users.update", map[string]any{"target": id})
	return c.JSON(u)
}

// DELETE /api/users/:id
func (h *UserAdminHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == uid(c) {
		return fail(c, fiber.StatusUnprocessableEntity, "cannot delete your own account")
	}
	if err := h.Users.Delete(id); err != nil {
		applog.Error(c, "admin.users.delete.fail", err, map[string]any{"target": id})
		return fail(c, fiber.StatusInternalServerError, "could not delete user")
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"target": id})
	return c.JSON(fiber.Map{"message": "user deleted"})
}
