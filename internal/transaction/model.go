package transaction

import (
	"errors"
	"time"
)

// Wire values match the labels the dashboard renders; the frontend filters on
// them directly.
const (
	TypeDeposit  = "Depot"
	TypeTransfer = "Transfert"

	StatusSuccess   = "Succès"
	StatusFailed    = "Échec"
	StatusPending   = "En attente"
	StatusCancelled = "Annulé"
)

// MinDepositAmount is the smallest accepted deposit, in FCFA.
const MinDepositAmount = 100

// Transaction is a recorded money movement touching a client or distributor
// account.
type Transaction struct {
	ID            string
	Type          string
	Amount        int64
	Reference     string
	Status        string
	Sender        string
	Recipient     string
	AccountNumber string
	UserType      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

var (
	// ErrInvalidRequest means required deposit fields were missing.
	ErrInvalidRequest = errors.New("account number and amount are required")

	// ErrAmountTooSmall rejects deposits below the minimum.
	ErrAmountTooSmall = errors.New("amount below minimum deposit")

	// ErrAccountNotFound means the deposit target account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNotFound is returned when a reference matches no transaction.
	ErrNotFound = errors.New("transaction not found")

	// ErrAlreadyCancelled rejects a second cancellation of the same transaction.
	ErrAlreadyCancelled = errors.New("transaction already cancelled")
)
