package repos

import (
	"paperback/internal/domain"

	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, user_id, status, total, tracking_number, notes,
  shipping_recipient, shipping_phone, shipping_address, shipping_city,
  shipping_province, shipping_postal_code,
  created_at, COALESCE(updated_at,'') AS updated_at`

// Create inserts the order header and all line items in one transaction.
func (r *OrderRepo) Create(o *domain.Order, items []domain.OrderItem) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders(id, user_id, status, total, notes,
	    shipping_recipient, shipping_phone, shipping_address,
	    shipping_city, shipping_province, shipping_postal_code)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?)
	`, o.ID, o.UserID, o.Status, o.Total, o.Notes,
		o.Recipient, o.Phone, o.Address, o.City, o.Province, o.PostalCode); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, book_id, title, qty, price)
		  VALUES(?,?,?,?,?)
		`, o.ID, it.BookID, it.Title, it.Qty, it.Price); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(id string) (domain.Order, error) {
	var o domain.Order
	if err := r.db.Get(&o, `SELECT `+orderCols+` FROM orders WHERE id=?`, id); err != nil {
		return domain.Order{}, err
	}
	items := []domain.OrderItem{}
	if err := r.db.Select(&items, `
	  SELECT order_id, book_id, title, qty, price
	  FROM order_items WHERE order_id=? ORDER BY title
	`, id); err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepo) ListByUser(userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.Select(&out, `
	  SELECT `+orderCols+` FROM orders
	  WHERE user_id=? ORDER BY datetime(created_at) DESC, id
	`, userID)
	return out, err
}

// List returns newest orders first, optionally filtered by status.
func (r *OrderRepo) List(status string, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Order{}
	if status != "" {
		err := r.db.Select(&out, `
		  SELECT `+orderCols+` FROM orders
		  WHERE status=? ORDER BY datetime(created_at) DESC, id LIMIT ?
		`, status, limit)
		return out, err
	}
	err := r.db.Select(&out, `
	  SELECT `+orderCols+` FROM orders
	  ORDER BY datetime(created_at) DESC, id LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) UpdateStatus(id, status, trackingNumber string) error {
	_, err := r.db.Exec(`
	  UPDATE orders SET status=?, tracking_number=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=?
	`, status, trackingNumber, id)
	return err
}

func (r *OrderRepo) CountByStatus(userID string) (map[string]int, error) {
	rows := []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}{}
	q := `SELECT status, COUNT(*) AS n FROM orders GROUP BY status`
	args := []any{}
	if userID != "" {
		q = `SELECT status, COUNT(*) AS n FROM orders WHERE user_id=? GROUP BY status`
		args = append(args, userID)
	}
	if err := r.db.Select(&rows, q, args...); err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// Revenue sums totals of orders that reached at least the paid state.
func (r *OrderRepo) Revenue() (float64, error) {
	var total float64
	err := r.db.Get(&total, `
	  SELECT COALESCE(SUM(total),0) FROM orders
	  WHERE status IN ('paid','shipped','completed')
	`)
	return total, err
}

func (r *OrderRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM orders`)
	return n, err
}
