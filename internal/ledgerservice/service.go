// Package ledgerservice manages business logic layer of the transaction ledger.
package ledgerservice

import (
	"context"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/events"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// History paging bounds.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// Repo provides data access layer interface needed by ledger service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Repo interface {
	Deposit(ctx context.Context, userID int64, amount string) (domain.MovementTxResult, error)
	Withdraw(ctx context.Context, userID int64, amount string) (domain.MovementTxResult, error)
	Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
	List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
}

// UserRepo resolves transfer recipients.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// Service facilitates ledger service layer logic.
type Service struct {
	repo      Repo
	users     UserRepo
	publisher events.Publisher
}

// New returns ledger service struct to manage money movement business logic.
// The publisher may be nil, which disables event publishing.
func New(lr Repo, ur UserRepo, pub events.Publisher) *Service {
	return &Service{
		repo:      lr,
		users:     ur,
		publisher: pub,
	}
}

// validAmount parses the caller's amount and returns it in canonical decimal
// form. Inputs like "+5" or "1e2" are valid decimals but not valid numeric
// literals for the store, so the canonical form is what flows to SQL.
func validAmount(ctx context.Context, amount string) (string, error) {
	l := zerolog.Ctx(ctx)

	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		l.Info().Err(err).Str("amount", amount).Send()
		return "", domain.ErrInvalidAmount
	}

	if amountDecimal.LessThanOrEqual(decimal.Zero) {
		l.Info().Str("amount", amount).Msg("non-positive amount")
		return "", domain.ErrInvalidAmount
	}

	// The store keeps four decimal places; anything finer would round to a
	// zero-amount entry with an unchanged balance.
	if !amountDecimal.Equal(amountDecimal.Truncate(4)) {
		l.Info().Str("amount", amount).Msg("amount finer than four decimal places")
		return "", domain.ErrInvalidAmount
	}

	return amountDecimal.String(), nil
}

// Deposit credits the user's account and appends a deposit ledger entry.
func (s *Service) Deposit(ctx context.Context, userID int64, amount string) (domain.MovementTxResult, error) {
	amount, err := validAmount(ctx, amount)
	if err != nil {
		return domain.MovementTxResult{}, err
	}

	result, err := s.repo.Deposit(ctx, userID, amount)
	if err != nil {
		return result, err
	}

	s.publish(ctx, result.Entry)

	return result, nil
}

// Withdraw debits the user's account and appends a withdraw ledger entry.
// The sufficiency check and the debit happen atomically in the store.
func (s *Service) Withdraw(ctx context.Context, userID int64, amount string) (domain.MovementTxResult, error) {
	amount, err := validAmount(ctx, amount)
	if err != nil {
		return domain.MovementTxResult{}, err
	}

	result, err := s.repo.Withdraw(ctx, userID, amount)
	if err != nil {
		return result, err
	}

	s.publish(ctx, result.Entry)

	return result, nil
}

// Transfer moves money from the sender to the account registered under the
// recipient email, producing exactly two cross-referencing ledger entries.
func (s *Service) Transfer(ctx context.Context, senderID int64, recipientEmail, amount string) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	amount, err := validAmount(ctx, amount)
	if err != nil {
		return result, err
	}

	recipient, err := s.users.GetByEmail(ctx, recipientEmail)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return result, domain.ErrRecipientNotFound
		}

		l.Error().Err(err).Send()

		return result, err
	}

	if recipient.ID == senderID {
		return result, domain.ErrSelfTransfer
	}

	result, err = s.repo.Transfer(ctx, domain.CreateTransferParams{
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Amount:      amount,
	})
	if err != nil {
		return result, err
	}

	s.publish(ctx, result.OutEntry, result.InEntry)

	return result, nil
}

// List returns the user's ledger entries, newest first, clamping limit and
// offset to the supported paging bounds.
func (s *Service) List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	if offset < 0 {
		offset = 0
	}

	return s.repo.List(ctx, domain.ListTransactionsParams{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
}

// publish sends movement events after the commit. Failures are logged and
// never surfaced: the commit is the source of truth.
func (s *Service) publish(ctx context.Context, entries ...domain.Transaction) {
	if s.publisher == nil {
		return
	}

	l := zerolog.Ctx(ctx)

	for _, entry := range entries {
		if err := s.publisher.Publish(ctx, events.NewMovementCompleted(entry)); err != nil {
			l.Warn().Err(err).Int64("entry_id", entry.ID).Msg("publish movement event")
		}
	}
}
