// Package events publishes committed ledger movements to a message broker.
//
// Publishing is best effort: the database commit is the source of truth and a
// broker failure never fails the originating operation.
package events

import (
	"context"
	"time"

	"github.com/kodbank/kodbank/internal/domain"
)

// Publisher sends movement events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event MovementCompleted) error
	Close() error
}

// MovementCompleted describes one committed ledger entry.
type MovementCompleted struct {
	EntryID       int64     `json:"entry_id"`
	UserID        int64     `json:"user_id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	BalanceAfter  string    `json:"balance_after"`
	RelatedUserID *int64    `json:"related_user_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewMovementCompleted builds the event for a committed ledger entry.
func NewMovementCompleted(entry domain.Transaction) MovementCompleted {
	return MovementCompleted{
		EntryID:       entry.ID,
		UserID:        entry.UserID,
		Type:          string(entry.Type),
		Amount:        entry.Amount,
		BalanceAfter:  entry.BalanceAfter,
		RelatedUserID: entry.RelatedUserID,
		OccurredAt:    entry.CreatedAt,
	}
}
