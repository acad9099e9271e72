// model/transaction.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	// TransactionLend is recorded when an instance becomes available.
	TransactionLend TransactionType = "LEND"
	// TransactionBorrow is recorded when a reservation is confirmed.
	TransactionBorrow TransactionType = "BORROW"
)

// Transaction is an immutable audit record feeding the recommendation and
// trend engines. Not a database transaction.
type Transaction struct {
	ID         uuid.UUID       `json:"id"`
	Type       TransactionType `json:"type"`
	InstanceID uuid.UUID       `json:"instance_id"`
	UserID     uuid.UUID       `json:"user_id"`
	CreatedAt  time.Time       `json:"created_at"`
}
