package repos

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrStaleWrite is returned when a conditional update matched no row: the record changed
// (or left the writable state) since it was read.
var ErrStaleWrite = errors.New("stale write")

// InTx runs fn inside a transaction and commits when fn returns nil.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
