package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// memTx is an in-memory pgx.Tx stand-in. Repos register undo hooks and lock
// releases on it so that transactional semantics (rollback reverting writes,
// row locks held until commit) survive without a real database.
type memTx struct {
	mu       sync.Mutex
	done     bool
	undo     []func()
	releases []func()
}

func (t *memTx) onRollback(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.undo = append(t.undo, fn)
}

func (t *memTx) onDone(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.releases = append(t.releases, fn)
}

func (t *memTx) finish(rollback bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	if rollback {
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
	}
	for i := len(t.releases) - 1; i >= 0; i-- {
		t.releases[i]()
	}
}

func (t *memTx) Commit(ctx context.Context) error   { t.finish(false); return nil }
func (t *memTx) Rollback(ctx context.Context) error { t.finish(true); return nil }

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *memTx) Conn() *pgx.Conn                                              { return nil }

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor { return &inMemoryTransactor{} }

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &memTx{}, nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	lockMu  sync.Mutex // simulates row-level locks across FOR UPDATE reads
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.OwnerID == ownerID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByOwnerForUpdate takes the repo-wide lock and holds it until the
// transaction finishes, mirroring SELECT ... FOR UPDATE serialization.
func (r *inMemoryWalletRepo) GetByOwnerForUpdate(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID) (*domain.Wallet, error) {
	r.lockMu.Lock()
	if m, ok := tx.(*memTx); ok {
		m.onDone(r.lockMu.Unlock)
	} else {
		defer r.lockMu.Unlock()
	}
	return r.GetByOwner(ctx, ownerID)
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	prev := w.Balance
	w.Balance = balance
	w.UpdatedAt = time.Now()
	if m, ok := tx.(*memTx); ok {
		m.onRollback(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			w.Balance = prev
		})
	}
	return nil
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.RWMutex
	entries []domain.LedgerEntry
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{}
}

func (r *inMemoryLedgerRepo) Append(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	id := entry.ID
	if m, ok := tx.(*memTx); ok {
		m.onRollback(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i := range r.entries {
				if r.entries[i].ID == id {
					r.entries = append(r.entries[:i], r.entries[i+1:]...)
					break
				}
			}
		})
	}
	return nil
}

func (r *inMemoryLedgerRepo) ListByOwner(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.LedgerEntry
	for _, e := range r.entries {
		if e.OwnerID != params.OwnerID {
			continue
		}
		if params.Kind != nil && e.Kind != *params.Kind {
			continue
		}
		if params.From != nil && e.OccurredAt.Unix() < *params.From {
			continue
		}
		if params.To != nil && e.OccurredAt.Unix() > *params.To {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].OccurredAt.After(result[j].OccurredAt)
	})
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.LedgerEntry{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryLedgerRepo) SumByOwner(ctx context.Context, ownerID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range r.entries {
		if e.OwnerID != ownerID {
			continue
		}
		if asOf != nil && e.OccurredAt.After(*asOf) {
			continue
		}
		sum = sum.Add(e.Amount)
	}
	return sum, nil
}

// --- In-Memory Action Request Repo ---

type inMemoryRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*domain.ActionRequest
}

func newInMemoryRequestRepo() *inMemoryRequestRepo {
	return &inMemoryRequestRepo{requests: make(map[uuid.UUID]*domain.ActionRequest)}
}

func (r *inMemoryRequestRepo) Create(ctx context.Context, request *domain.ActionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *request
	r.requests[request.ID] = &cp
	return nil
}

func (r *inMemoryRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ActionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *inMemoryRequestRepo) ListPending(ctx context.Context, params ports.RequestListParams) ([]domain.ActionRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ActionRequest
	for _, req := range r.requests {
		if req.Status != domain.RequestStatusPending {
			continue
		}
		if params.RequesterID != nil && req.RequesterID != *params.RequesterID {
			continue
		}
		if params.ActionType != nil && req.ActionType != *params.ActionType {
			continue
		}
		result = append(result, *req)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SubmittedAt.Before(result[j].SubmittedAt)
	})
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.ActionRequest{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

// Resolve is the compare-and-swap: the mutex makes the pending check and the
// status write one atomic step, like the conditional UPDATE it stands in for.
func (r *inMemoryRequestRepo) Resolve(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.RequestStatus,
	resolverID uuid.UUID, comment *string, resolvedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != domain.RequestStatusPending {
		return false, nil
	}
	req.Status = status
	req.ResolverID = &resolverID
	req.ResolverComment = comment
	req.ResolvedAt = &resolvedAt
	if m, ok := tx.(*memTx); ok {
		m.onRollback(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			req.Status = domain.RequestStatusPending
			req.ResolverID = nil
			req.ResolverComment = nil
			req.ResolvedAt = nil
		})
	}
	return true, nil
}

func (r *inMemoryRequestRepo) GetStats(ctx context.Context, params ports.StatsParams) (*ports.RequestStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &ports.RequestStats{TotalWithdrawn: decimal.Zero}
	for _, req := range r.requests {
		if params.From != nil && req.SubmittedAt.Unix() < *params.From {
			continue
		}
		if params.To != nil && req.SubmittedAt.Unix() > *params.To {
			continue
		}
		stats.Total++
		switch req.Status {
		case domain.RequestStatusPending:
			stats.Pending++
		case domain.RequestStatusApproved:
			stats.Approved++
		case domain.RequestStatusRejected:
			stats.Rejected++
		}
		if req.ActionType == domain.ActionTypeWithdrawFunds && req.Status == domain.RequestStatusApproved {
			var payload domain.WithdrawPayload
			if err := json.Unmarshal(req.PayloadAfter, &payload); err == nil {
				stats.TotalWithdrawn = stats.TotalWithdrawn.Add(payload.Amount)
			}
		}
	}
	return stats, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo { return &inMemoryAuditRepo{} }

func (r *inMemoryAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

// --- In-Memory Notification Repo ---

type inMemoryNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func newInMemoryNotificationRepo() *inMemoryNotificationRepo {
	return &inMemoryNotificationRepo{}
}

func (r *inMemoryNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *inMemoryNotificationRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, pageSize int) ([]domain.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for _, n := range r.notifications {
		if n.OwnerID == ownerID {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))

	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.Notification{}, total, nil
	}
	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

// --- Fake Catalog Service ---

type fakeCatalog struct {
	mu         sync.Mutex
	prices     map[string]decimal.Decimal
	categories []domain.CategoryPayload
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{prices: make(map[string]decimal.Decimal)}
}

func (c *fakeCatalog) GetProductPrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	price, ok := c.prices[productID]
	if !ok {
		return decimal.Zero, fmt.Errorf("product %s not found", productID)
	}
	return price, nil
}

func (c *fakeCatalog) SetProductPrice(ctx context.Context, productID string, price decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[productID] = price
	return nil
}

func (c *fakeCatalog) CreateCategory(ctx context.Context, proposal domain.CategoryPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = append(c.categories, proposal)
	return nil
}
