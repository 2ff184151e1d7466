package repos

import (
	"paperback/internal/domain"

	"github.com/jmoiron/sqlx"
)

type TransactionRepo struct{ db *sqlx.DB }

func NewTransactionRepo(db *sqlx.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txnCols = `id, order_id, user_id, amount, snap_token, status,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *TransactionRepo) Create(t *domain.Transaction) error {
	_, err := r.db.Exec(`
	  INSERT INTO transactions(id, order_id, user_id, amount, snap_token, status)
	  VALUES(?,?,?,?,?,?)
	`, t.ID, t.OrderID, t.UserID, t.Amount, t.SnapToken, t.Status)
	return err
}

// LatestByOrder returns the most recent payment attempt for an order.
func (r *TransactionRepo) LatestByOrder(orderID string) (domain.Transaction, error) {
	var t domain.Transaction
	err := r.db.Get(&t, `
	  SELECT `+txnCols+` FROM transactions
	  WHERE order_id=? ORDER BY datetime(created_at) DESC, id LIMIT 1
	`, orderID)
	return t, err
}

func (r *TransactionRepo) UpdateStatusByOrder(orderID, status string) error {
	_, err := r.db.Exec(`
	  UPDATE transactions SET status=?, updated_at=CURRENT_TIMESTAMP WHERE order_id=?
	`, status, orderID)
	return err
}

func (r *TransactionRepo) List(limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Transaction{}
	err := r.db.Select(&out, `
	  SELECT `+txnCols+` FROM transactions
	  ORDER BY datetime(created_at) DESC, id LIMIT ?
	`, limit)
	return out, err
}
