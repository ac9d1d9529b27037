package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is the mutable balance projection for one owner. The balance is a
// cached sum of the owner's ledger entries; it is only ever written together
// with a ledger append inside the same database transaction.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CanDebit reports whether subtracting amount keeps the balance non-negative.
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Balance.Sub(amount).Sign() >= 0
}
