package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerRepo implements ports.LedgerRepository. The ledger_entries table is
// append-only; there is no update or delete path by construction.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Append inserts a ledger entry within a database transaction. It is always
// called from the same transaction that writes the wallet balance.
func (r *LedgerRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (id, owner_id, amount, kind, description, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.OwnerID, e.Amount, e.Kind, e.Description, e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByOwner fetches ledger entries with filtering and pagination, newest
// first.
func (r *LedgerRepo) ListByOwner(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argIdx))
	args = append(args, params.OwnerID)
	argIdx++

	if params.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, *params.Kind)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM ledger_entries %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT id, owner_id, amount, kind, description, occurred_at
		FROM ledger_entries %s ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e := domain.LedgerEntry{}
		err := rows.Scan(&e.ID, &e.OwnerID, &e.Amount, &e.Kind, &e.Description, &e.OccurredAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return entries, total, nil
}

// SumByOwner returns the signed sum of an owner's entries up to asOf (all
// entries when asOf is nil). The result must always equal the stored wallet
// balance when asOf is nil; reconciliation jobs rely on this.
func (r *LedgerRepo) SumByOwner(ctx context.Context, ownerID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	var args []any
	argIdx := 1

	condition := fmt.Sprintf("owner_id = $%d", argIdx)
	args = append(args, ownerID)
	argIdx++

	if asOf != nil {
		condition += fmt.Sprintf(" AND occurred_at <= $%d", argIdx)
		args = append(args, *asOf)
	}

	query := fmt.Sprintf("SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE %s", condition)

	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx, query, args...).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum ledger entries: %w", err)
	}
	return sum, nil
}
