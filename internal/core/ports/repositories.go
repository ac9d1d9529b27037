package ports

import (
	"context"
	"time"

	"storefront-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

// WalletRepository defines persistence operations for wallet balance
// projections. Methods accepting pgx.Tx are used inside transaction blocks
// for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error)
	GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
}

// LedgerRepository defines persistence for the append-only ledger. Entries
// are inserted inside the same transaction that updates the wallet balance
// and are never updated or deleted afterwards.
type LedgerRepository interface {
	Append(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	ListByOwner(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, int64, error)
	// SumByOwner returns the signed sum of entries with occurredAt <= asOf,
	// or of all entries when asOf is nil. Used for audit reconciliation.
	SumByOwner(ctx context.Context, ownerID uuid.UUID, asOf *time.Time) (decimal.Decimal, error)
}

// LedgerListParams holds filter + pagination for ledger history queries.
type LedgerListParams struct {
	OwnerID  uuid.UUID
	Kind     *domain.EntryKind
	From     *int64 // Unix timestamp
	To       *int64 // Unix timestamp
	Page     int
	PageSize int
}

// ActionRequestRepository defines persistence for approval requests.
type ActionRequestRepository interface {
	Create(ctx context.Context, request *domain.ActionRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ActionRequest, error)
	ListPending(ctx context.Context, params RequestListParams) ([]domain.ActionRequest, int64, error)
	// Resolve conditionally flips a pending request to the given terminal
	// status. It returns false when the request was not pending anymore:
	// the compare-and-swap that makes concurrent resolutions race-safe.
	Resolve(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.RequestStatus,
		resolverID uuid.UUID, comment *string, resolvedAt time.Time) (bool, error)
	GetStats(ctx context.Context, params StatsParams) (*RequestStats, error)
}

// RequestListParams holds filter + pagination for listing action requests.
type RequestListParams struct {
	RequesterID *uuid.UUID
	ActionType  *domain.ActionType
	Page        int
	PageSize    int
}

// StatsParams scopes dashboard statistics.
type StatsParams struct {
	From *int64 // Unix timestamp
	To   *int64 // Unix timestamp
}

// RequestStats holds aggregated request counts for the admin dashboard.
type RequestStats struct {
	Total          int64
	Pending        int64
	Approved       int64
	Rejected       int64
	TotalWithdrawn decimal.Decimal // Sum of approved withdrawal amounts
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page, pageSize int) ([]domain.Notification, int64, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
