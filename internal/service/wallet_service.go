package service

import (
	"context"
	"fmt"
	"time"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"
	"storefront-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService with pessimistic locking.
// Every balance write locks the wallet row, re-checks funds against the
// locked balance, and appends the matching ledger entry before commit, so
// the ledger sum and the stored balance can never diverge.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		transactor: transactor,
		log:        log,
	}
}

// Credit adds funds to an owner's wallet and appends the credit entry.
func (s *WalletServiceImpl) Credit(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal,
	kind domain.EntryKind, description string) (*domain.LedgerEntry, error) {
	if amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	entry, err := s.creditLocked(ctx, dbTx, ownerID, amount, kind, description)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit credit: %w", err))
	}

	s.log.Info().
		Str("owner_id", ownerID.String()).
		Str("amount", amount.String()).
		Str("kind", string(kind)).
		Msg("wallet credited")
	return entry, nil
}

// Debit removes funds from an owner's wallet and appends the debit entry.
// Unless allowNegative is set, the debit fails with ErrInsufficientFunds
// when the locked balance cannot cover the amount, and nothing is written.
func (s *WalletServiceImpl) Debit(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal,
	kind domain.EntryKind, description string, allowNegative bool) (*domain.LedgerEntry, error) {
	if amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	entry, err := s.debitLocked(ctx, dbTx, ownerID, amount, kind, description, allowNegative)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit debit: %w", err))
	}

	s.log.Info().
		Str("owner_id", ownerID.String()).
		Str("amount", amount.String()).
		Str("kind", string(kind)).
		Msg("wallet debited")
	return entry, nil
}

// DebitInTx performs a debit inside a caller-owned transaction. The caller
// is responsible for commit/rollback; on error the caller must roll back.
func (s *WalletServiceImpl) DebitInTx(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, amount decimal.Decimal,
	kind domain.EntryKind, description string, allowNegative bool) (*domain.LedgerEntry, error) {
	if amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	return s.debitLocked(ctx, tx, ownerID, amount, kind, description, allowNegative)
}

// GetBalance returns the current wallet balance for an owner.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return decimal.Zero, apperror.ErrNotFound("wallet")
	}
	return wallet.Balance, nil
}

// GetHistory returns a filtered, paginated page of ledger entries.
func (s *WalletServiceImpl) GetHistory(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	entries, total, err := s.ledgerRepo.ListByOwner(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list ledger: %w", err))
	}
	return entries, total, nil
}

// BalanceAsOf reconstructs the balance at a past instant by summing ledger
// entries, which is possible because entries are never rewritten.
func (s *WalletServiceImpl) BalanceAsOf(ctx context.Context, ownerID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	sum, err := s.ledgerRepo.SumByOwner(ctx, ownerID, &asOf)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("sum ledger: %w", err))
	}
	return sum, nil
}

// debitLocked locks the wallet, checks funds and writes balance + entry.
func (s *WalletServiceImpl) debitLocked(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, amount decimal.Decimal,
	kind domain.EntryKind, description string, allowNegative bool) (*domain.LedgerEntry, error) {
	wallet, err := s.walletRepo.GetByOwnerForUpdate(ctx, tx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	if !allowNegative && !wallet.CanDebit(amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	newBalance := wallet.Balance.Sub(amount)
	if err := s.walletRepo.UpdateBalance(ctx, tx, wallet.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Amount:      amount.Neg(),
		Kind:        kind,
		Description: description,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.ledgerRepo.Append(ctx, tx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
	}
	return entry, nil
}

// creditLocked locks the wallet and applies a credit (positive amount).
func (s *WalletServiceImpl) creditLocked(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, amount decimal.Decimal,
	kind domain.EntryKind, description string) (*domain.LedgerEntry, error) {
	wallet, err := s.walletRepo.GetByOwnerForUpdate(ctx, tx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	newBalance := wallet.Balance.Add(amount)
	if err := s.walletRepo.UpdateBalance(ctx, tx, wallet.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.ledgerRepo.Append(ctx, tx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
	}
	return entry, nil
}
