package handlers

import (
	"database/sql"

	"paperback/internal/domain"
	applog "paperback/internal/log"
	"paperback/internal/repos"
	"paperback/internal/services"
	"paperback/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// BookHandler serves both the admin CRUD (/api/books) and the public catalog
// reads (/api/user/books).
type BookHandler struct {
	Catalog *services.CatalogService
}

type bookInput struct {
	CategoryID  string  `json:"category_id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Publisher   string  `json:"publisher"`
	Year        int     `json:"year"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
}

func (in *bookInput) check() map[string]string {
	fields := map[string]string{}
	if _, ok := validate.Name(in.Title); !ok {
		fields["title"] = "title is required"
	}
	if _, ok := validate.Name(in.Author); !ok {
		fields["author"] = "author is required"
	}
	if _, ok := validate.ID(in.CategoryID); !ok {
		fields["category_id"] = "category is required"
	}
	if in.Year != 0 && !validate.Year(in.Year) {
		fields["year"] = "year is out of range"
	}
	if !validate.Price(in.Price) {
		fields["price"] = "price must not be negative"
	}
	if in.Stock < 0 {
		fields["stock"] = "stock must not be negative"
	}
	return fields
}

// GET /api/books and /api/user/books
func (h *BookHandler) List(c *fiber.Ctx) error {
	page, err := h.Catalog.ListBooks(c.Query("search"), c.Query("category_id"),
		c.QueryInt("page", 1), c.QueryInt("per_page", 12))
	if err != nil {
		applog.Error(c, "books.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load books")
	}
	return c.JSON(page)
}

// GET /api/books/:id and /api/user/books/:id
func (h *BookHandler) Get(c *fiber.Ctx) error {
	b, err := h.Catalog.GetBook(c.Params("id"))
	if err == sql.ErrNoRows {
		return fail(c, fiber.StatusNotFound, "book not found")
	}
	if err != nil {
		applog.Error(c, "books.get.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not load book")
	}
	return c.JSON(b)
}

// POST /api/books
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var in bookInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if fields := in.check(); len(fields) > 0 {
		return failFields(c, fiber.StatusUnprocessableEntity, "validation failed", fields)
	}

	b := domain.Book{
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Author:      in.Author,
		Publisher:   in.Publisher,
		Year:        in.Year,
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
		Image:       in.Image,
	}
	if err := h.Catalog.CreateBook(&b); err != nil {
		if err == repos.ErrNotFound {
			return failFields(c, fiber.StatusUnprocessableEntity, "validation failed",
				map[string]string{"category_id": "category does not exist"})
		}
		applog.Error(c, "books.create.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not create book")
	}
	applog.Audit(c, "books.create", map[string]any{"book_id": b.ID, "title": b.Title})
	return c.Status(fiber.StatusCreated).JSON(b)
}

// PUT /api/books/:id
func (h *BookHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	var in bookInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if fields := in.check(); len(fields) > 0 {
		return failFields(c, fiber.StatusUnprocessableEntity, "validation failed", fields)
	}

	b := domain.Book{
		ID:          id,
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Author:      in.Author,
		Publisher:   in.Publisher,
		Year:        in.Year,
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
		Image:       in.Image,
	}
	if err := h.Catalog.UpdateBook(&b); err != nil {
		if err == sql.ErrNoRows {
			return fail(c, fiber.StatusNotFound, "book not found")
		}
		applog.Error(c, "books.update.fail", err, map[string]any{"book_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not update book")
	}
	applog.Audit(c, "books.update", map[string]any{"book_id": id, "stock": b.Stock})
	return c.JSON(b)
}

// DELETE /api/books/:id
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteBook(id); err != nil {
		applog.Error(c, "books.delete.fail", err, map[string]any{"book_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not delete book")
	}
	applog.Audit(c, "books.delete", map[string]any{"book_id": id})
	return c.JSON(fiber.Map{"message": "book deleted"})
}
