package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind classifies a ledger entry.
type EntryKind string

const (
	EntryKindDeposit   EntryKind = "DEPOSIT"
	EntryKindWithdraw  EntryKind = "WITHDRAW"
	EntryKindPurchase  EntryKind = "PURCHASE"
	EntryKindDeduction EntryKind = "DEDUCTION"
	EntryKindPayment   EntryKind = "PAYMENT"
	EntryKindRefund    EntryKind = "REFUND"
)

// LedgerEntry is one immutable row of the append-only balance ledger.
// Positive amounts are credits, negative amounts are debits. Entries are
// never updated or deleted; the sum of an owner's entries always equals the
// owner's stored wallet balance.
type LedgerEntry struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        EntryKind       `json:"kind"`
	Description string          `json:"description"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// IsCredit returns true for entries that increase the balance.
func (e *LedgerEntry) IsCredit() bool {
	return e.Amount.IsPositive()
}
