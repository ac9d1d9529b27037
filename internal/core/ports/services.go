package ports

import (
	"context"
	"encoding/json"
	"time"

	"storefront-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

// WalletService is the single choke point for balance mutations. No other
// component may write a wallet balance; every mutation pairs 1:1 with an
// immutable ledger entry inside one database transaction.
type WalletService interface {
	Credit(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal,
		kind domain.EntryKind, description string) (*domain.LedgerEntry, error)
	Debit(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal,
		kind domain.EntryKind, description string, allowNegative bool) (*domain.LedgerEntry, error)
	// DebitInTx performs a debit inside a caller-owned transaction so that
	// the approval engine can commit the debit and the request resolution
	// as one atomic unit.
	DebitInTx(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, amount decimal.Decimal,
		kind domain.EntryKind, description string, allowNegative bool) (*domain.LedgerEntry, error)
	GetBalance(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
	GetHistory(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, int64, error)
	BalanceAsOf(ctx context.Context, ownerID uuid.UUID, asOf time.Time) (decimal.Decimal, error)
}

// ActionHandler interprets and applies the payload of one action type.
type ActionHandler interface {
	Type() domain.ActionType
	// Validate structurally checks payloadAfter at submission time so a
	// malformed payload never reaches the approval path.
	Validate(payloadAfter json.RawMessage) error
	// Apply performs the effect at approval time inside the workflow
	// engine's transaction. It is only invoked after the Pending->Approved
	// compare-and-swap succeeded.
	Apply(ctx context.Context, tx pgx.Tx, request *domain.ActionRequest) (*domain.AppliedEffect, error)
}

// ActionRegistry maps action type tags to their handlers.
type ActionRegistry interface {
	Handler(actionType domain.ActionType) (ActionHandler, bool)
	Types() []domain.ActionType
}

// ApprovalService orchestrates the submit/approve/reject state machine.
type ApprovalService interface {
	Submit(ctx context.Context, requester domain.Actor, input SubmitInput) (*domain.ActionRequest, error)
	Approve(ctx context.Context, requestID uuid.UUID, resolver domain.Actor, comment *string) (*domain.ActionRequest, error)
	Reject(ctx context.Context, requestID uuid.UUID, resolver domain.Actor, comment string) (*domain.ActionRequest, error)
	Get(ctx context.Context, requestID uuid.UUID) (*domain.ActionRequest, error)
	ListPending(ctx context.Context, params RequestListParams) ([]domain.ActionRequest, int64, error)
}

// SubmitInput holds validated input for submitting an action request.
type SubmitInput struct {
	ActionType       domain.ActionType
	TargetEntityType string
	TargetEntityID   string
	PayloadBefore    json.RawMessage
	PayloadAfter     json.RawMessage
	SourceAddr       string
}

// Authorizer is the single capability gate evaluated before dispatching
// into the workflow engine.
type Authorizer interface {
	CanResolve(actor domain.Actor) bool
}

// ReportingService provides dashboard aggregates over requests and ledgers.
type ReportingService interface {
	GetDashboardStats(ctx context.Context, period string) (*RequestStats, error)
}

// --- Collaborator Ports (external systems, consumed not reimplemented) ---

// CatalogService is the external catalog collaborator. Approved price and
// category changes are pushed through it.
type CatalogService interface {
	GetProductPrice(ctx context.Context, productID string) (decimal.Decimal, error)
	SetProductPrice(ctx context.Context, productID string, price decimal.Decimal) error
	CreateCategory(ctx context.Context, proposal domain.CategoryPayload) error
}

// Notifier delivers a message to an owner's notification inbox. The core
// awaits delivery after a successful transition but treats failures as
// best-effort: they are logged, never rolled back into the transition.
type Notifier interface {
	Notify(ctx context.Context, ownerID uuid.UUID, title, message string,
		category domain.NotificationCategory, link string) error
}

// AuditService records audit entries asynchronously (fire-and-forget).
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// TokenService validates actor tokens issued by the identity service.
type TokenService interface {
	Generate(actorID uuid.UUID, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	ActorID uuid.UUID
	Role    domain.Role
}
