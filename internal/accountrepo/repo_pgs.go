// Package accountrepo manages repository layer of account balances.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/pkg/dbpkg"
	"github.com/kodbank/kodbank/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// The adjustment is a relative update evaluated by the database, never a
// read-modify-write in application code. The users_balance_check constraint
// rejects any delta that would drive the balance negative, in the same
// atomic statement as the update itself.
const addBalanceQuery = `
UPDATE users
SET balance = balance + $1
WHERE id = $2
RETURNING id, email, hashed_password, full_name, balance, created_at
`

// AddBalance atomically adds amount (positive or negative) to the user's
// balance and returns the updated user.
func (r *RepoPGS) AddBalance(ctx context.Context, amount string, id int64) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addBalanceQuery, amount, id)

	var u domain.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.HashedPassword,
		&u.FullName,
		&u.Balance,
		&u.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			l.Warn().Err(err).Int64("user_id", id).Send()
			return u, domain.ErrUserNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "users_balance_check" {
				return u, domain.ErrInsufficientBalance
			}
		}

		l.Error().Err(err).Send()

		return u, MapSQLError(err)
	}

	return u, nil
}

const getQuery = `
SELECT
	id, email, hashed_password, full_name, balance, created_at
FROM users
WHERE id = $1
`

// Get returns the user owning the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var u domain.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.HashedPassword,
		&u.FullName,
		&u.Balance,
		&u.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return u, domain.ErrUserNotFound
		}

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

// MapSQLError converts low level storage failures into app errors so that no
// storage error text ever reaches a client. Serialization failures, deadlocks
// and lock timeouts are surfaced as retryable.
func MapSQLError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch string(pqErr.Code) {
		case "40001", "40P01", "55P03":
			return errorspkg.ErrTransient
		}
	}

	return errorspkg.ErrInternal
}
