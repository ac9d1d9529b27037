package domain

import (
	"github.com/shopspring/decimal"
)

// Typed payload shapes, one per ActionType. Payloads travel as raw JSON on
// the ActionRequest and are parsed into these shapes by the registered
// handler's Validate at submission time, so a malformed payload is rejected
// before anything is persisted.

// PricePayload is the payload for UpdatePrice requests. ProductID mirrors the
// request's TargetEntityID; Price is the proposed new price.
type PricePayload struct {
	ProductID string          `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
}

// WithdrawPayload is the payload for WithdrawFunds requests. The amount is
// debited from the requester's wallet at approval time, never at submission.
type WithdrawPayload struct {
	Amount      decimal.Decimal `json:"amount"`
	BankAccount string          `json:"bank_account,omitempty"`
	Note        string          `json:"note,omitempty"`
}

// CategoryPayload is the payload for ProposeCategory requests.
type CategoryPayload struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

// AppliedEffect summarises what a handler's Apply actually did, for the audit
// trail and the operator-facing response.
type AppliedEffect struct {
	Summary string       `json:"summary"`
	Entry   *LedgerEntry `json:"ledger_entry,omitempty"`
}
