package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActionType tags the kind of merchant-initiated change a request proposes.
type ActionType string

const (
	ActionTypeUpdatePrice     ActionType = "UpdatePrice"
	ActionTypeWithdrawFunds   ActionType = "WithdrawFunds"
	ActionTypeProposeCategory ActionType = "ProposeCategory"
)

// RequestStatus represents the lifecycle state of an action request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// ActionRequest is a merchant-submitted proposal that requires admin review
// before its effect is applied. A request is created Pending and resolved
// exactly once; Approved and Rejected are terminal.
type ActionRequest struct {
	ID               uuid.UUID       `json:"id"`
	RequesterID      uuid.UUID       `json:"requester_id"`
	ActionType       ActionType      `json:"action_type"`
	TargetEntityType string          `json:"target_entity_type"`
	TargetEntityID   string          `json:"target_entity_id"`
	PayloadBefore    json.RawMessage `json:"payload_before,omitempty"` // snapshot prior to the change, may be empty
	PayloadAfter     json.RawMessage `json:"payload_after"`
	Status           RequestStatus   `json:"status"`
	SubmittedAt      time.Time       `json:"submitted_at"`
	ResolvedAt       *time.Time      `json:"resolved_at,omitempty"`
	ResolverID       *uuid.UUID      `json:"resolver_id,omitempty"`
	ResolverComment  *string         `json:"resolver_comment,omitempty"`
}

// IsPending returns true while the request awaits an admin decision.
func (r *ActionRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// IsTerminal returns true once the request has been resolved.
func (r *ActionRequest) IsTerminal() bool {
	return r.Status == RequestStatusApproved || r.Status == RequestStatusRejected
}

// CanTransitionTo reports whether the status machine permits moving to next.
// The only legal moves are Pending->Approved and Pending->Rejected.
func (r *ActionRequest) CanTransitionTo(next RequestStatus) bool {
	if r.Status != RequestStatusPending {
		return false
	}
	return next == RequestStatusApproved || next == RequestStatusRejected
}

// Actor identifies an authenticated caller together with its role.
// Identity itself is established by the external identity provider; the core
// only trusts the already-authenticated ID and role.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Role is the coarse capability class of an actor.
type Role string

const (
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)
