package postgres

import (
	"context"
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

func newTestEntry(ownerID uuid.UUID, amount int64, kind domain.EntryKind) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Amount:      decimal.NewFromInt(amount),
		Kind:        kind,
		Description: "test entry",
		OccurredAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func ledgerColumns() []string {
	return []string{"id", "owner_id", "amount", "kind", "description", "occurred_at"}
}

func TestLedgerRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := newTestEntry(uuid.New(), 500, domain.EntryKindDeposit)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(e.ID, e.OwnerID, e.Amount, e.Kind, e.Description, e.OccurredAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Append(context.Background(), tx, e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListByOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	ownerID := uuid.New()
	e1 := newTestEntry(ownerID, 500, domain.EntryKindDeposit)
	e2 := newTestEntry(ownerID, -200, domain.EntryKindWithdraw)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(ownerID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

	mock.ExpectQuery("SELECT .+ FROM ledger_entries .+ ORDER BY occurred_at DESC").
		WithArgs(ownerID, 20, 0).
		WillReturnRows(pgxmock.NewRows(ledgerColumns()).
			AddRow(e2.ID, e2.OwnerID, e2.Amount, e2.Kind, e2.Description, e2.OccurredAt).
			AddRow(e1.ID, e1.OwnerID, e1.Amount, e1.Kind, e1.Description, e1.OccurredAt))

	entries, total, err := repo.ListByOwner(context.Background(), ports.LedgerListParams{
		OwnerID:  ownerID,
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
	assert.Equal(t, e2.ID, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListByOwner_KindFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	ownerID := uuid.New()
	kind := domain.EntryKindWithdraw
	e := newTestEntry(ownerID, -200, kind)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(ownerID, kind).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectQuery("SELECT .+ FROM ledger_entries .+ kind").
		WithArgs(ownerID, kind, 10, 0).
		WillReturnRows(pgxmock.NewRows(ledgerColumns()).
			AddRow(e.ID, e.OwnerID, e.Amount, e.Kind, e.Description, e.OccurredAt))

	entries, total, err := repo.ListByOwner(context.Background(), ports.LedgerListParams{
		OwnerID:  ownerID,
		Kind:     &kind,
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, kind, entries[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_SumByOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	ownerID := uuid.New()

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(ownerID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(decimal.NewFromInt(300)))

	sum, err := repo.SumByOwner(context.Background(), ownerID, nil)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(sum))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_SumByOwner_AsOf(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	ownerID := uuid.New()
	asOf := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(ownerID, asOf).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(decimal.NewFromInt(150)))

	sum, err := repo.SumByOwner(context.Background(), ownerID, &asOf)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(sum))
	assert.NoError(t, mock.ExpectationsWereMet())
}
