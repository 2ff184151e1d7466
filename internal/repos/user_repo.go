package repos

import (
	"paperback/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id,name,email,password_hash,role,google_id,created_at`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.db.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.db.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByGoogleID(googleID string) (*domain.User, error) {
	var u domain.User
	err := r.db.Get(&u, `SELECT `+userCols+` FROM users WHERE google_id=? AND google_id != ''`, googleID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(u *domain.User) error {
	_, err := r.db.Exec(`
		INSERT INTO users(id,name,email,password_hash,role,google_id)
		VALUES(?,?,?,?,?,?)
	`, u.ID, u.Name, u.Email, u.Hash, u.Role, u.GoogleID)
	return err
}

func (r *UserRepo) Update(id, name, email, role string) error {
	_, err := r.db.Exec(`
		UPDATE users SET name=?, email=?, role=?, updated_at=CURRENT_TIMESTAMP WHERE id=?
	`, name, email, role, id)
	return err
}

func (r *UserRepo) UpdateProfile(id, name, email string) error {
	_, err := r.db.Exec(`
		UPDATE users SET name=?, email=?, updated_at=CURRENT_TIMESTAMP WHERE id=?
	`, name, email, id)
	return err
}

func (r *UserRepo) UpdatePassword(id, hash string) error {
	_, err := r.db.Exec(`
		UPDATE users SET password_hash=?, updated_at=CURRENT_TIMESTAMP WHERE id=?
	`, hash, id)
	return err
}

// LinkGoogle attaches a Google subject to an existing account.
func (r *UserRepo) LinkGoogle(id, googleID string) error {
	_, err := r.db.Exec(`
		UPDATE users SET google_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?
	`, googleID, id)
	return err
}

func (r *UserRepo) List() ([]domain.User, error) {
	var out []domain.User
	err := r.db.Select(&out, `SELECT `+userCols+` FROM users ORDER BY LOWER(email)`)
	return out, err
}

func (r *UserRepo) Delete(id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Keep orders for audit; cancel anything still open.
	if _, err := tx.Exec(`
		UPDATE orders SET status='cancelled', updated_at=CURRENT_TIMESTAMP
		WHERE user_id=? AND status IN ('pending','paid')
	`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM cart_items WHERE user_id=?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM users WHERE id=?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *UserRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM users`)
	return n, err
}
