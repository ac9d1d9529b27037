package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest(requesterID uuid.UUID) *domain.ActionRequest {
	return &domain.ActionRequest{
		ID:               uuid.New(),
		RequesterID:      requesterID,
		ActionType:       domain.ActionTypeWithdrawFunds,
		TargetEntityType: "wallet",
		TargetEntityID:   requesterID.String(),
		PayloadAfter:     json.RawMessage(`{"amount":"100"}`),
		Status:           domain.RequestStatusPending,
		SubmittedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func requestColumns() []string {
	return []string{"id", "requester_id", "action_type", "target_entity_type", "target_entity_id",
		"payload_before", "payload_after", "status", "submitted_at", "resolved_at", "resolver_id", "resolver_comment"}
}

func requestRow(req *domain.ActionRequest) *pgxmock.Rows {
	return pgxmock.NewRows(requestColumns()).AddRow(
		req.ID, req.RequesterID, req.ActionType, req.TargetEntityType, req.TargetEntityID,
		req.PayloadBefore, req.PayloadAfter, req.Status, req.SubmittedAt,
		req.ResolvedAt, req.ResolverID, req.ResolverComment,
	)
}

func TestRequestRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRequestRepo(mock)
	req := newTestRequest(uuid.New())

	mock.ExpectExec("INSERT INTO action_requests").
		WithArgs(req.ID, req.RequesterID, req.ActionType, req.TargetEntityType, req.TargetEntityID,
			req.PayloadBefore, req.PayloadAfter, req.Status, req.SubmittedAt,
			req.ResolvedAt, req.ResolverID, req.ResolverComment).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), req)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRequestRepo(mock)
	req := newTestRequest(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM action_requests WHERE id").
		WithArgs(req.ID).
		WillReturnRows(requestRow(req))

	result, err := repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, req.ID, result.ID)
	assert.Equal(t, domain.RequestStatusPending, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRequestRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM action_requests WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(requestColumns()))

	result, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepo_ListPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRequestRepo(mock)
	req := newTestRequest(uuid.New())

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectQuery("SELECT .+ FROM action_requests .+ ORDER BY submitted_at ASC").
		WithArgs(20, 0).
		WillReturnRows(requestRow(req))

	reqs, total, err := repo.ListPending(context.Background(), ports.RequestListParams{
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, reqs, 1)
	assert.Equal(t, req.ID, reqs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepo_ListPending_RequesterFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRequestRepo(mock)
	requesterID := uuid.New()
	req := newTestRequest(requesterID)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(requesterID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectQuery("SELECT .+ FROM action_requests .+ requester_id").
		WithArgs(requesterID, 10, 0).
		WillReturnRows(requestRow(req))

	reqs, total, err := repo.ListPending(context.Background(), ports.RequestListParams{
		RequesterID: &requesterID,
		Page:        1,
		PageSize:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, reqs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepo_Resolve(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRequestRepo(mock)
	id := uuid.New()
	resolverID := uuid.New()
	comment := "looks good"
	resolvedAt := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE action_requests").
		WithArgs(domain.RequestStatusApproved, resolverID, &comment, resolvedAt, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ok, err := repo.Resolve(context.Background(), tx, id, domain.RequestStatusApproved, resolverID, &comment, resolvedAt)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A request already resolved by a concurrent admin must yield false, not an
// error: the caller maps it to an invalid state transition.
func TestRequestRepo_Resolve_AlreadyResolved(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRequestRepo(mock)
	id := uuid.New()
	resolverID := uuid.New()
	resolvedAt := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE action_requests").
		WithArgs(domain.RequestStatusRejected, resolverID, (*string)(nil), resolvedAt, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ok, err := repo.Resolve(context.Background(), tx, id, domain.RequestStatusRejected, resolverID, nil, resolvedAt)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepo_GetStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRequestRepo(mock)

	mock.ExpectQuery("SELECT").
		WillReturnRows(pgxmock.NewRows([]string{"total", "pending", "approved", "rejected", "total_withdrawn"}).
			AddRow(int64(10), int64(3), int64(5), int64(2), decimal.NewFromInt(1200)))

	stats, err := repo.GetStats(context.Background(), ports.StatsParams{})
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(10), stats.Total)
	assert.Equal(t, int64(3), stats.Pending)
	assert.Equal(t, int64(5), stats.Approved)
	assert.Equal(t, int64(2), stats.Rejected)
	assert.True(t, decimal.NewFromInt(1200).Equal(stats.TotalWithdrawn))
	assert.NoError(t, mock.ExpectationsWereMet())
}
