package repos

import (
	"paperback/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// ListByUser joins cart rows with their books so the storefront gets
// current title/price/stock in one read.
func (r *CartRepo) ListByUser(userID string) ([]domain.CartItem, error) {
	rows := []domain.CartItem{}
	err := r.db.Select(&rows, `
	  SELECT ci.id, ci.book_id, b.title, b.price, b.stock, ci.qty,
	         (ci.qty * b.price) AS subtotal
	  FROM cart_items ci JOIN books b ON b.id = ci.book_id
	  WHERE ci.user_id = ?
	  ORDER BY ci.created_at, ci.id
	`, userID)
	return rows, err
}

// Upsert adds qty to an existing line or creates a new one.
func (r *CartRepo) Upsert(userID, bookID string, qty int) error {
	_, err := r.db.Exec(`
	  INSERT INTO cart_items(id,user_id,book_id,qty)
	  VALUES(?,?,?,?)
	  ON CONFLICT(user_id,book_id) DO UPDATE
	  SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, uuid.NewString(), userID, bookID, qty)
	return err
}

// UpdateQty replaces the quantity of one line; the item must belong to userID.
func (r *CartRepo) UpdateQty(userID, itemID string, qty int) error {
	res, err := r.db.Exec(`
	  UPDATE cart_items SET qty=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=? AND user_id=?
	`, qty, itemID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CartRepo) Remove(userID, itemID string) error {
	res, err := r.db.Exec(`DELETE FROM cart_items WHERE id=? AND user_id=?`, itemID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CartRepo) Clear(userID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE user_id=?`, userID)
	return err
}
