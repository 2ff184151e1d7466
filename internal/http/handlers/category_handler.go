package handlers

import (
	"database/sql"

	"paperback/internal/domain"
	applog "paperback/internal/log"
	"paperback/internal/services"
	"paperback/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

type categoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GET /api/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		applog.Error(c, "categories.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load categories")
	}
	return c.JSON(fiber.Map{"data": cats})
}

// GET /api/categories/:id
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	cat, err := h.Catalog.GetCategory(c.Params("id"))
	if err == sql.ErrNoRows {
		return fail(c, fiber.StatusNotFound, "category not found")
	}
	if err != nil {
		applog.Error(c, "categories.get.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load category")
	}
	return c.JSON(cat)
}

// POST /api/categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in categoryInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return failFields(c, fiber.StatusUnprocessableEntity, "validation failed",
			map[string]string{"name": "name is required"})
	}
	cat := domain.Category{Name: name, Description: in.Description}
	if err := h.Catalog.CreateCategory(&cat); err != nil {
		applog.Error(c, "categories.create.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not create category")
	}
	applog.Audit(c, "categories.create", map[string]any{"category_id": cat.ID})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// PUT /api/categories/:id
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	var in categoryInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return failFields(c, fiber.StatusUnprocessableEntity, "validation failed",
			map[string]string{"name": "name is required"})
	}
	if err := h.Catalog.UpdateCategory(id, name, in.Description); err != nil {
		applog.Error(c, "categories.update.fail", err, map[string]any{"category_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not update category")
	}
	cat, err := h.Catalog.GetCategory(id)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "category not found")
	}
	applog.Audit(c, "categories.update", map[string]any{"category_id": id})
	return c.JSON(cat)
}

// DELETE /api/categories/:id, refused while books still reference it.
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteCategory(id); err != nil {
		if err == services.ErrCategoryInUse {
			return fail(c, fiber.StatusConflict, "category still has books")
		}
		applog.Error(c, "categories.delete.fail", err, map[string]any{"category_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not delete category")
	}
	applog.Audit(c, "categories.delete", map[string]any{"category_id": id})
	return c.JSON(fiber.Map{"message": "category deleted"})
}
