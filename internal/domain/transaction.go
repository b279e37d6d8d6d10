package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidAmount indicates a non-positive or non-numeric amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrRecipientNotFound indicates that the transfer recipient does not exist.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrSelfTransfer indicates a transfer where sender and recipient are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to yourself")
)

// TransactionType classifies a ledger entry.
type TransactionType string

// Supported ledger entry types.
const (
	TypeDeposit     TransactionType = "deposit"
	TypeWithdraw    TransactionType = "withdraw"
	TypeTransferIn  TransactionType = "transfer_in"
	TypeTransferOut TransactionType = "transfer_out"
)

// Transaction holds one immutable ledger entry. Amount is the signed delta
// applied to the owning user's balance and BalanceAfter is the balance
// produced by applying exactly this entry.
type Transaction struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Type          TransactionType `json:"type"`
	Amount        string          `json:"amount"`
	BalanceAfter  string          `json:"balance_after"`
	Description   string          `json:"description"`
	RelatedUserID *int64          `json:"related_user_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CreateTransactionParams is the input data to append one ledger entry.
type CreateTransactionParams struct {
	UserID        int64           `json:"user_id"`
	Type          TransactionType `json:"type"`
	Amount        string          `json:"amount"`
	BalanceAfter  string          `json:"balance_after"`
	Description   string          `json:"description"`
	RelatedUserID *int64          `json:"related_user_id"`
}

// ListTransactionsParams is the input data to page through a user's ledger.
type ListTransactionsParams struct {
	UserID int64 `json:"user_id"`
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

// CreateTransferParams is the input data for the transfer transaction.
type CreateTransferParams struct {
	SenderID    int64  `json:"sender_id"`
	RecipientID int64  `json:"recipient_id"`
	Amount      string `json:"amount"`
}

// MovementTxResult is the result of a deposit or withdrawal transaction.
type MovementTxResult struct {
	User  User        `json:"user"`
	Entry Transaction `json:"entry"`
}

// TransferTxResult is the result of the transfer transaction.
type TransferTxResult struct {
	Sender    User        `json:"sender"`
	Recipient User        `json:"recipient"`
	OutEntry  Transaction `json:"out_entry"`
	InEntry   Transaction `json:"in_entry"`
}
