package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// isDuplicateKey reports whether err is a unique-constraint violation. The
// unique indexes are the backstop for every "already exists" check: when two
// transactions race past the in-transaction count, the loser surfaces here.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// sqlite (used by the test suite) reports constraint failures as text
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
