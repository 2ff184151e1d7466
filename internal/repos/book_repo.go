package repos

import (
	"paperback/internal/domain"

	"github.com/jmoiron/sqlx"
)

type BookRepo struct{ db *sqlx.DB }

func NewBookRepo(db *sqlx.DB) *BookRepo { return &BookRepo{db: db} }

const bookCols = `id, category_id, title, author, publisher, year, price, stock,
  description, image, created_at, COALESCE(updated_at,'') AS updated_at`

func (r *BookRepo) Get(id string) (domain.Book, error) {
	var b domain.Book
	err := r.db.Get(&b, `SELECT `+bookCols+` FROM books WHERE id = ?`, id)
	return b, err
}

// List returns a page of books, optionally filtered by a search term
// (title/author) and a category.
func (r *BookRepo) List(q, categoryID string, limit, offset int) ([]domain.Book, error) {
	where := `1=1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(title) LIKE ? OR LOWER(author) LIKE ?)`
		pat := "%" + q + "%"
		args = append(args, pat, pat)
	}
	if categoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	args = append(args, limit, offset)

	var out []domain.Book
	err := r.db.Select(&out, `
	  SELECT `+bookCols+` FROM books
	  WHERE `+where+`
	  ORDER BY created_at DESC, id
	  LIMIT ? OFFSET ?`, args...)
	return out, err
}

func (r *BookRepo) Count(q, categoryID string) (int, error) {
	where := `1=1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(title) LIKE ? OR LOWER(author) LIKE ?)`
		pat := "%" + q + "%"
		args = append(args, pat, pat)
	}
	if categoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM books WHERE `+where, args...)
	return n, err
}

func (r *BookRepo) Create(b *domain.Book) error {
	_, err := r.db.Exec(`
	  INSERT INTO books(id,category_id,title,author,publisher,year,price,stock,description,image)
	  VALUES(?,?,?,?,?,?,?,?,?,?)
	`, b.ID, b.CategoryID, b.Title, b.Author, b.Publisher, b.Year, b.Price, b.Stock, b.Description, b.Image)
	return err
}

func (r *BookRepo) Update(b *domain.Book) error {
	_, err := r.db.Exec(`
	  UPDATE books SET category_id=?, title=?, author=?, publisher=?, year=?,
	    price=?, stock=?, description=?, image=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=?
	`, b.CategoryID, b.Title, b.Author, b.Publisher, b.Year, b.Price, b.Stock, b.Description, b.Image, b.ID)
	return err
}

func (r *BookRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM books WHERE id=?`, id)
	return err
}

// DecrementStock atomically subtracts qty if enough stock exists and reports
// the remaining stock. Returns ErrInsufficientStock-style failure via n==0.
func (r *BookRepo) DecrementStock(id string, qty int) (int, error) {
	res, err := r.db.Exec(`
	  UPDATE books SET stock = stock - ?, updated_at=CURRENT_TIMESTAMP
	  WHERE id = ? AND stock >= ?
	`, qty, id, qty)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrInsufficientStock
	}
	var remaining int
	if err := r.db.Get(&remaining, `SELECT stock FROM books WHERE id=?`, id); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *BookRepo) CountAll() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM books`)
	return n, err
}
