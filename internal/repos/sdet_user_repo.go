package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type SdetUserRepo struct{ db *sqlx.DB }

func NewSdetUserRepo(db *sqlx.DB) *SdetUserRepo { return &SdetUserRepo{db: db} }

const sdetCols = `uid, email, display_name, name, bugs_enabled, bugs_found, created_at, updated_at`

// Get returns sql.ErrNoRows when the profile does not exist.
func (r *SdetUserRepo) Get(ctx context.Context, uid string) (domain.SdetUser, error) {
	var u domain.SdetUser
	err := r.db.GetContext(ctx, &u, `SELECT `+sdetCols+` FROM sdet_user WHERE uid = ?`, uid)
	return u, err
}

// Insert creates the profile unless one already exists for uid.
func (r *SdetUserRepo) Insert(ctx context.Context, u *domain.SdetUser) error {
	ts := now()
	if u.CreatedAt == "" {
		u.CreatedAt = ts
	}
	if u.UpdatedAt == "" {
		u.UpdatedAt = ts
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sdet_user(`+sdetCols+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO NOTHING
	`, u.UID, u.Email, u.DisplayName, u.Name, u.BugsEnabled, u.BugsFound, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *SdetUserRepo) UpdateName(ctx context.Context, uid, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sdet_user SET name = ?, updated_at = ? WHERE uid = ?`, name, now(), uid)
	return err
}
