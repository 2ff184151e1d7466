package repos

import (
	"paperback/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// List includes the derived book count used by the delete guard.
func (r *CategoryRepo) List() ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.Select(&out, `
	  SELECT c.id, c.name, c.description,
	         (SELECT COUNT(*) FROM books b WHERE b.category_id = c.id) AS book_count,
	         c.created_at, COALESCE(c.updated_at,'') AS updated_at
	  FROM categories c
	  ORDER BY c.name
	`)
	return out, err
}

func (r *CategoryRepo) Get(id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `
	  SELECT c.id, c.name, c.description,
	         (SELECT COUNT(*) FROM books b WHERE b.category_id = c.id) AS book_count,
	         c.created_at, COALESCE(c.updated_at,'') AS updated_at
	  FROM categories c
	  WHERE c.id = ?
	`, id)
	return c, err
}

func (r *CategoryRepo) Create(c *domain.Category) error {
	_, err := r.db.Exec(`
	  INSERT INTO categories(id,name,description) VALUES(?,?,?)
	`, c.ID, c.Name, c.Description)
	return err
}

func (r *CategoryRepo) Update(id, name, description string) error {
	_, err := r.db.Exec(`
	  UPDATE categories SET name=?, description=?, updated_at=CURRENT_TIMESTAMP WHERE id=?
	`, name, description, id)
	return err
}

func (r *CategoryRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM categories WHERE id=?`, id)
	return err
}

func (r *CategoryRepo) BookCount(id string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM books WHERE category_id=?`, id)
	return n, err
}
