package services

import (
	"database/sql"
	"errors"

	"paperback/internal/domain"
	"paperback/internal/repos"

	"github.com/google/uuid"
)

var ErrCategoryInUse = errors.New("category still has books")

// StockPublisher pushes stock-change events to subscribed clients.
// Implemented by realtime.Hub (single node) and realtime.Bridge (redis).
type StockPublisher interface {
	PublishStock(id string, stock int, title string)
}

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Books *repos.BookRepo
	Stock StockPublisher
}

func NewCatalogService(cats *repos.CategoryRepo, books *repos.BookRepo, stock StockPublisher) *CatalogService {
	return &CatalogService{Cats: cats, Books: books, Stock: stock}
}

// BookPage is one page of catalog results plus the unpaginated total.
type BookPage struct {
	Books []domain.Book `json:"data"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
}

func (s *CatalogService) ListBooks(q, categoryID string, page, pageSize int) (BookPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 12
	}
	books, err := s.Books.List(q, categoryID, pageSize, (page-1)*pageSize)
	if err != nil {
		return BookPage{}, err
	}
	total, err := s.Books.Count(q, categoryID)
	if err != nil {
		return BookPage{}, err
	}
	return BookPage{Books: books, Total: total, Page: page}, nil
}

func (s *CatalogService) GetBook(id string) (domain.Book, error) {
	return s.Books.Get(id)
}

func (s *CatalogService) CreateBook(b *domain.Book) error {
	if _, err := s.Cats.Get(b.CategoryID); err != nil {
		if err == sql.ErrNoRows {
			return repos.ErrNotFound
		}
		return err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return s.Books.Create(b)
}

// UpdateBook saves the book and, when stock changed, notifies subscribers.
func (s *CatalogService) UpdateBook(b *domain.Book) error {
	prev, err := s.Books.Get(b.ID)
	if err != nil {
		return err
	}
	if err := s.Books.Update(b); err != nil {
		return err
	}
	if s.Stock != nil && prev.Stock != b.Stock {
		s.Stock.PublishStock(b.ID, b.Stock, b.Title)
	}
	return nil
}

func (s *CatalogService) DeleteBook(id string) error {
	return s.Books.Delete(id)
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

func (s *CatalogService) GetCategory(id string) (domain.Category, error) {
	return s.Cats.Get(id)
}

func (s *CatalogService) CreateCategory(c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return s.Cats.Create(c)
}

func (s *CatalogService) UpdateCategory(id, name, description string) error {
	return s.Cats.Update(id, name, description)
}

// DeleteCategory refuses while any book still references the category.
func (s *CatalogService) DeleteCategory(id string) error {
	n, err := s.Cats.BookCount(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryInUse
	}
	return s.Cats.Delete(id)
}
