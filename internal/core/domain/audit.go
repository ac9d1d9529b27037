package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionSubmit  AuditAction = "SUBMIT_REQUEST"
	AuditActionApprove AuditAction = "APPROVE_REQUEST"
	AuditActionReject  AuditAction = "REJECT_REQUEST"
	AuditActionCredit  AuditAction = "CREDIT_WALLET"
	AuditActionDebit   AuditAction = "DEBIT_WALLET"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID         uuid.UUID   `json:"id"`
	ActorID    *uuid.UUID  `json:"actor_id,omitempty"`
	Action     AuditAction `json:"action"`
	EntityName string      `json:"entity_name"`
	EntityID   string      `json:"entity_id,omitempty"`
	Details    string      `json:"details,omitempty"` // JSON string
	SourceAddr string      `json:"source_addr"`
	CreatedAt  time.Time   `json:"created_at"`
}
