package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RequestRepo implements ports.ActionRequestRepository.
type RequestRepo struct {
	pool Pool
}

// NewRequestRepo creates a new RequestRepo.
func NewRequestRepo(pool Pool) *RequestRepo {
	return &RequestRepo{pool: pool}
}

// Create inserts a new action request.
func (r *RequestRepo) Create(ctx context.Context, req *domain.ActionRequest) error {
	query := `INSERT INTO action_requests (id, requester_id, action_type, target_entity_type, target_entity_id,
		payload_before, payload_after, status, submitted_at, resolved_at, resolver_id, resolver_comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.RequesterID, req.ActionType, req.TargetEntityType, req.TargetEntityID,
		req.PayloadBefore, req.PayloadAfter, req.Status, req.SubmittedAt,
		req.ResolvedAt, req.ResolverID, req.ResolverComment,
	)
	if err != nil {
		return fmt.Errorf("insert action request: %w", err)
	}
	return nil
}

// GetByID fetches an action request by UUID.
func (r *RequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ActionRequest, error) {
	query := `SELECT id, requester_id, action_type, target_entity_type, target_entity_id,
		payload_before, payload_after, status, submitted_at, resolved_at, resolver_id, resolver_comment
		FROM action_requests WHERE id = $1`

	return r.scanRequest(r.pool.QueryRow(ctx, query, id))
}

// ListPending fetches pending requests with filtering and pagination, oldest
// first so reviewers work through the queue in submission order.
func (r *RequestRepo) ListPending(ctx context.Context, params ports.RequestListParams) ([]domain.ActionRequest, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "status = 'PENDING'")

	if params.RequesterID != nil {
		conditions = append(conditions, fmt.Sprintf("requester_id = $%d", argIdx))
		args = append(args, *params.RequesterID)
		argIdx++
	}
	if params.ActionType != nil {
		conditions = append(conditions, fmt.Sprintf("action_type = $%d", argIdx))
		args = append(args, *params.ActionType)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM action_requests %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count pending requests: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT id, requester_id, action_type, target_entity_type, target_entity_id,
		payload_before, payload_after, status, submitted_at, resolved_at, resolver_id, resolver_comment
		FROM action_requests %s ORDER BY submitted_at ASC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	var reqs []domain.ActionRequest
	for rows.Next() {
		req := domain.ActionRequest{}
		err := rows.Scan(
			&req.ID, &req.RequesterID, &req.ActionType, &req.TargetEntityType, &req.TargetEntityID,
			&req.PayloadBefore, &req.PayloadAfter, &req.Status, &req.SubmittedAt,
			&req.ResolvedAt, &req.ResolverID, &req.ResolverComment,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan request row: %w", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate request rows: %w", err)
	}
	return reqs, total, nil
}

// Resolve conditionally flips a pending request to a terminal status within
// a transaction. The status predicate in the WHERE clause is the
// compare-and-swap: of two concurrent resolvers exactly one sees
// RowsAffected == 1, the other gets false and no row is touched.
func (r *RequestRepo) Resolve(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.RequestStatus,
	resolverID uuid.UUID, comment *string, resolvedAt time.Time) (bool, error) {
	query := `UPDATE action_requests
		SET status = $1, resolver_id = $2, resolver_comment = $3, resolved_at = $4
		WHERE id = $5 AND status = 'PENDING'`

	tag, err := tx.Exec(ctx, query, status, resolverID, comment, resolvedAt, id)
	if err != nil {
		return false, fmt.Errorf("resolve action request: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetStats retrieves aggregated request counts for the admin dashboard.
func (r *RequestRepo) GetStats(ctx context.Context, params ports.StatsParams) (*ports.RequestStats, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("submitted_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("submitted_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
		COUNT(*) FILTER (WHERE status = 'APPROVED') AS approved,
		COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected,
		COALESCE(SUM((payload_after->>'amount')::numeric)
			FILTER (WHERE action_type = 'WithdrawFunds' AND status = 'APPROVED'), 0) AS total_withdrawn
		FROM action_requests %s`, where)

	stats := &ports.RequestStats{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.Total, &stats.Pending, &stats.Approved, &stats.Rejected, &stats.TotalWithdrawn,
	)
	if err != nil {
		return nil, fmt.Errorf("get request stats: %w", err)
	}
	return stats, nil
}

// scanRequest is a helper to scan a single row into an ActionRequest.
func (r *RequestRepo) scanRequest(row pgx.Row) (*domain.ActionRequest, error) {
	req := &domain.ActionRequest{}
	err := row.Scan(
		&req.ID, &req.RequesterID, &req.ActionType, &req.TargetEntityType, &req.TargetEntityID,
		&req.PayloadBefore, &req.PayloadAfter, &req.Status, &req.SubmittedAt,
		&req.ResolvedAt, &req.ResolverID, &req.ResolverComment,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get action request: %w", err)
	}
	return req, nil
}
