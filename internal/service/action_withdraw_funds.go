package service

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"
	"storefront-core/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// WithdrawFundsHandler debits the requester's wallet when a withdrawal is
// approved. No funds move at submission; the balance check runs against the
// locked balance at approval time, inside the approval transaction.
type WithdrawFundsHandler struct {
	walletSvc ports.WalletService
	log       zerolog.Logger
}

// NewWithdrawFundsHandler creates a WithdrawFundsHandler.
func NewWithdrawFundsHandler(walletSvc ports.WalletService, log zerolog.Logger) *WithdrawFundsHandler {
	return &WithdrawFundsHandler{walletSvc: walletSvc, log: log}
}

func (h *WithdrawFundsHandler) Type() domain.ActionType {
	return domain.ActionTypeWithdrawFunds
}

// Validate checks the withdrawal payload at submission time. Deliberately no
// balance check here: the balance that matters is the one at approval.
func (h *WithdrawFundsHandler) Validate(payloadAfter json.RawMessage) error {
	var p domain.WithdrawPayload
	if err := json.Unmarshal(payloadAfter, &p); err != nil {
		return apperror.Validation("malformed withdrawal payload")
	}
	if p.Amount.Sign() <= 0 {
		return apperror.ErrInvalidAmount()
	}
	return nil
}

// Apply debits the requester inside the approval transaction. Insufficient
// funds surfaces as WAL_002 and rolls the whole approval back.
func (h *WithdrawFundsHandler) Apply(ctx context.Context, tx pgx.Tx, req *domain.ActionRequest) (*domain.AppliedEffect, error) {
	var p domain.WithdrawPayload
	if err := json.Unmarshal(req.PayloadAfter, &p); err != nil {
		return nil, fmt.Errorf("unmarshal withdrawal payload: %w", err)
	}

	description := fmt.Sprintf("withdrawal via request %s", req.ID)
	if p.Note != "" {
		description = fmt.Sprintf("%s (%s)", description, p.Note)
	}

	entry, err := h.walletSvc.DebitInTx(ctx, tx, req.RequesterID, p.Amount,
		domain.EntryKindWithdraw, description, false)
	if err != nil {
		return nil, err
	}

	h.log.Info().
		Str("request_id", req.ID.String()).
		Str("owner_id", req.RequesterID.String()).
		Str("amount", p.Amount.String()).
		Msg("withdrawal debited")
	return &domain.AppliedEffect{
		Summary: fmt.Sprintf("withdrew %s from wallet", p.Amount),
		Entry:   entry,
	}, nil
}
