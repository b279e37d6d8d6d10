// Package ledgerrepo manages repository layer of the transaction ledger.
//
// Every money movement is one database transaction spanning the balance
// mutation and the ledger append, so a movement is either fully applied or
// leaves no trace.
package ledgerrepo

import (
	"context"
	"database/sql"

	"github.com/kodbank/kodbank/internal/accountrepo"
	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/pkg/dbpkg"
	"github.com/kodbank/kodbank/pkg/errorspkg"

	"github.com/rs/zerolog"
)

// Descriptions recorded on ledger entries.
const (
	DescriptionDeposit    = "Cash deposit"
	DescriptionWithdrawal = "Cash withdrawal"
)

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns ledger RepoPGS bound to an already open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns ledger RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
    transactions (user_id, type, amount, balance_after, description, related_user_id)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, type, amount, balance_after, description, related_user_id, created_at
`

// CreateEntry appends one ledger entry and then returns it.
func (r *RepoPGS) CreateEntry(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var related sql.NullInt64
	if arg.RelatedUserID != nil {
		related = sql.NullInt64{Int64: *arg.RelatedUserID, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.UserID,
		arg.Type,
		arg.Amount,
		arg.BalanceAfter,
		arg.Description,
		related,
	)

	entry, err := scanEntry(row)
	if err != nil {
		l.Error().Err(err).Send()
		return entry, accountrepo.MapSQLError(err)
	}

	return entry, nil
}

const listQuery = `
SELECT id, user_id, type, amount, balance_after, description, related_user_id, created_at
FROM transactions
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

// List returns the user's ledger entries, newest first.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var (
			t       domain.Transaction
			related sql.NullInt64
		)

		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Type,
			&t.Amount,
			&t.BalanceAfter,
			&t.Description,
			&related,
			&t.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		if related.Valid {
			t.RelatedUserID = &related.Int64
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

// Deposit credits the user and appends the matching ledger entry within a
// single database transaction.
func (r *RepoPGS) Deposit(ctx context.Context, userID int64, amount string) (domain.MovementTxResult, error) {
	return r.movement(ctx, userID, amount, domain.TypeDeposit)
}

// Withdraw debits the user and appends the matching ledger entry within a
// single database transaction. The sufficiency check and the debit are one
// atomic statement, so concurrent withdrawals can never drive the balance
// negative.
func (r *RepoPGS) Withdraw(ctx context.Context, userID int64, amount string) (domain.MovementTxResult, error) {
	return r.movement(ctx, userID, amount, domain.TypeWithdraw)
}

func (r *RepoPGS) movement(ctx context.Context, userID int64, amount string, entryType domain.TransactionType) (domain.MovementTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.MovementTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, accountrepo.MapSQLError(err)
	}

	defer rollback(ctx, tx)

	accountRepo := accountrepo.NewRepoPGS(tx)
	ledgerRepo := NewTxRepoPGS(tx)

	delta := amount
	description := DescriptionDeposit

	if entryType == domain.TypeWithdraw {
		delta = "-" + amount
		description = DescriptionWithdrawal
	}

	result.User, err = accountRepo.AddBalance(ctx, delta, userID)
	if err != nil {
		return result, err
	}

	result.Entry, err = ledgerRepo.CreateEntry(ctx, domain.CreateTransactionParams{
		UserID:       userID,
		Type:         entryType,
		Amount:       delta,
		BalanceAfter: result.User.Balance,
		Description:  description,
	})
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.MovementTxResult{}, accountrepo.MapSQLError(err)
	}

	return result, nil
}

// Transfer moves money between two users.
//
// It debits the sender, credits the recipient and appends both ledger entries
// within a single database transaction. Balance updates always execute in
// ascending user id order so that two opposite transfers between the same
// pair of accounts cannot deadlock.
func (r *RepoPGS) Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, accountrepo.MapSQLError(err)
	}

	defer rollback(ctx, tx)

	accountRepo := accountrepo.NewRepoPGS(tx)
	ledgerRepo := NewTxRepoPGS(tx)

	debit := "-" + arg.Amount

	if arg.SenderID < arg.RecipientID {
		result.Sender, err = accountRepo.AddBalance(ctx, debit, arg.SenderID)
		if err == nil {
			result.Recipient, err = accountRepo.AddBalance(ctx, arg.Amount, arg.RecipientID)
		}
	} else {
		result.Recipient, err = accountRepo.AddBalance(ctx, arg.Amount, arg.RecipientID)
		if err == nil {
			result.Sender, err = accountRepo.AddBalance(ctx, debit, arg.SenderID)
		}
	}

	if err != nil {
		return result, err
	}

	result.OutEntry, err = ledgerRepo.CreateEntry(ctx, domain.CreateTransactionParams{
		UserID:        arg.SenderID,
		Type:          domain.TypeTransferOut,
		Amount:        debit,
		BalanceAfter:  result.Sender.Balance,
		Description:   "To: " + result.Recipient.FullName,
		RelatedUserID: &result.Recipient.ID,
	})
	if err != nil {
		return result, err
	}

	result.InEntry, err = ledgerRepo.CreateEntry(ctx, domain.CreateTransactionParams{
		UserID:        arg.RecipientID,
		Type:          domain.TypeTransferIn,
		Amount:        arg.Amount,
		BalanceAfter:  result.Recipient.Balance,
		Description:   "From: " + result.Sender.FullName,
		RelatedUserID: &result.Sender.ID,
	})
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.TransferTxResult{}, accountrepo.MapSQLError(err)
	}

	return result, nil
}

func rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		zerolog.Ctx(ctx).Error().Err(err).Send()
	}
}

func scanEntry(row *sql.Row) (domain.Transaction, error) {
	var (
		t       domain.Transaction
		related sql.NullInt64
	)

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Type,
		&t.Amount,
		&t.BalanceAfter,
		&t.Description,
		&related,
		&t.CreatedAt,
	)

	if related.Valid {
		t.RelatedUserID = &related.Int64
	}

	return t, err
}
