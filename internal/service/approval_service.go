package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"
	"storefront-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Snapshotter is an optional handler capability. Handlers that can capture
// the current state of their target (e.g. the live product price) implement
// it, and Submit stores the result as payload_before for the reviewer diff.
type Snapshotter interface {
	Snapshot(ctx context.Context, input ports.SubmitInput) (json.RawMessage, error)
}

// ApprovalServiceImpl implements ports.ApprovalService. It owns the
// Pending -> Approved/Rejected state machine; the conditional update in the
// repository is the only place a status ever changes.
type ApprovalServiceImpl struct {
	reqRepo    ports.ActionRequestRepository
	registry   ports.ActionRegistry
	authorizer ports.Authorizer
	transactor ports.DBTransactor
	notifier   ports.Notifier
	auditSvc   ports.AuditService
	log        zerolog.Logger
}

// NewApprovalService creates a new ApprovalServiceImpl.
func NewApprovalService(
	reqRepo ports.ActionRequestRepository,
	registry ports.ActionRegistry,
	authorizer ports.Authorizer,
	transactor ports.DBTransactor,
	notifier ports.Notifier,
	auditSvc ports.AuditService,
	log zerolog.Logger,
) *ApprovalServiceImpl {
	return &ApprovalServiceImpl{
		reqRepo:    reqRepo,
		registry:   registry,
		authorizer: authorizer,
		transactor: transactor,
		notifier:   notifier,
		auditSvc:   auditSvc,
		log:        log,
	}
}

// Submit validates and persists a new pending action request. The payload is
// structurally checked by the type's handler before anything is stored; no
// effect of any kind happens here.
func (s *ApprovalServiceImpl) Submit(ctx context.Context, requester domain.Actor, input ports.SubmitInput) (*domain.ActionRequest, error) {
	handler, ok := s.registry.Handler(input.ActionType)
	if !ok {
		return nil, apperror.ErrUnknownActionType(string(input.ActionType))
	}

	if err := handler.Validate(input.PayloadAfter); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.Validation(err.Error())
	}

	payloadBefore := input.PayloadBefore
	if len(payloadBefore) == 0 {
		if snap, ok := handler.(Snapshotter); ok {
			before, err := snap.Snapshot(ctx, input)
			if err != nil {
				// A missing snapshot degrades the reviewer diff, not the
				// request itself.
				s.log.Warn().Err(err).
					Str("action_type", string(input.ActionType)).
					Msg("payload_before snapshot failed")
			} else {
				payloadBefore = before
			}
		}
	}

	req := &domain.ActionRequest{
		ID:               uuid.New(),
		RequesterID:      requester.ID,
		ActionType:       input.ActionType,
		TargetEntityType: input.TargetEntityType,
		TargetEntityID:   input.TargetEntityID,
		PayloadBefore:    payloadBefore,
		PayloadAfter:     input.PayloadAfter,
		Status:           domain.RequestStatusPending,
		SubmittedAt:      time.Now().UTC(),
	}

	if err := s.reqRepo.Create(ctx, req); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create action request: %w", err))
	}

	s.auditSvc.Log(ctx, &domain.AuditLog{
		ID:         uuid.New(),
		ActorID:    &requester.ID,
		Action:     domain.AuditActionSubmit,
		EntityName: "action_request",
		EntityID:   req.ID.String(),
		Details:    fmt.Sprintf(`{"action_type":%q}`, req.ActionType),
		SourceAddr: input.SourceAddr,
		CreatedAt:  time.Now().UTC(),
	})

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("requester_id", requester.ID.String()).
		Str("action_type", string(req.ActionType)).
		Msg("action request submitted")
	return req, nil
}

// Approve resolves a pending request and applies its effect atomically.
// The status flip and the handler's effect (including any wallet debit)
// commit as one transaction: if Apply fails, the request observably stays
// pending and no money moved.
func (s *ApprovalServiceImpl) Approve(ctx context.Context, requestID uuid.UUID, resolver domain.Actor, comment *string) (*domain.ActionRequest, error) {
	if !s.authorizer.CanResolve(resolver) {
		return nil, apperror.ErrForbidden()
	}

	req, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get action request: %w", err))
	}
	if req == nil {
		return nil, apperror.ErrNotFound("action request")
	}
	if !req.IsPending() {
		return nil, apperror.ErrInvalidStateTransition(requestID.String())
	}

	handler, ok := s.registry.Handler(req.ActionType)
	if !ok {
		return nil, apperror.ErrUnknownActionType(string(req.ActionType))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	resolvedAt := time.Now().UTC()
	flipped, err := s.reqRepo.Resolve(ctx, dbTx, requestID, domain.RequestStatusApproved, resolver.ID, comment, resolvedAt)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve request: %w", err))
	}
	if !flipped {
		// A concurrent resolver won the compare-and-swap.
		return nil, apperror.ErrInvalidStateTransition(requestID.String())
	}

	effect, err := handler.Apply(ctx, dbTx, req)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.ErrEffectApplication(requestID.String(), string(req.ActionType), err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit approval: %w", err))
	}

	req.Status = domain.RequestStatusApproved
	req.ResolverID = &resolver.ID
	req.ResolverComment = comment
	req.ResolvedAt = &resolvedAt

	s.afterResolution(ctx, req, resolver, effect)
	return req, nil
}

// Reject resolves a pending request without applying any effect. A reason
// comment is mandatory so the requester learns why.
func (s *ApprovalServiceImpl) Reject(ctx context.Context, requestID uuid.UUID, resolver domain.Actor, comment string) (*domain.ActionRequest, error) {
	if !s.authorizer.CanResolve(resolver) {
		return nil, apperror.ErrForbidden()
	}
	if comment == "" {
		return nil, apperror.Validation("rejection requires a comment")
	}

	req, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get action request: %w", err))
	}
	if req == nil {
		return nil, apperror.ErrNotFound("action request")
	}
	if !req.IsPending() {
		return nil, apperror.ErrInvalidStateTransition(requestID.String())
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	resolvedAt := time.Now().UTC()
	flipped, err := s.reqRepo.Resolve(ctx, dbTx, requestID, domain.RequestStatusRejected, resolver.ID, &comment, resolvedAt)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve request: %w", err))
	}
	if !flipped {
		return nil, apperror.ErrInvalidStateTransition(requestID.String())
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit rejection: %w", err))
	}

	req.Status = domain.RequestStatusRejected
	req.ResolverID = &resolver.ID
	req.ResolverComment = &comment
	req.ResolvedAt = &resolvedAt

	s.afterResolution(ctx, req, resolver, nil)
	return req, nil
}

// Get fetches a single action request.
func (s *ApprovalServiceImpl) Get(ctx context.Context, requestID uuid.UUID) (*domain.ActionRequest, error) {
	req, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get action request: %w", err))
	}
	if req == nil {
		return nil, apperror.ErrNotFound("action request")
	}
	return req, nil
}

// ListPending returns the review queue, oldest first.
func (s *ApprovalServiceImpl) ListPending(ctx context.Context, params ports.RequestListParams) ([]domain.ActionRequest, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	reqs, total, err := s.reqRepo.ListPending(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list pending requests: %w", err))
	}
	return reqs, total, nil
}

// afterResolution fires the post-commit side effects exactly once per
// resolution: requester notification and audit entry. Both are best-effort;
// a failure here never unwinds the already-committed transition.
func (s *ApprovalServiceImpl) afterResolution(ctx context.Context, req *domain.ActionRequest, resolver domain.Actor, effect *domain.AppliedEffect) {
	title := fmt.Sprintf("Request %s", req.Status)
	message := fmt.Sprintf("Your %s request was %s.", req.ActionType, req.Status)
	if req.ResolverComment != nil && *req.ResolverComment != "" {
		message = fmt.Sprintf("%s Comment: %s", message, *req.ResolverComment)
	}
	if err := s.notifier.Notify(ctx, req.RequesterID, title, message,
		domain.NotificationCategoryApproval, "/requests/"+req.ID.String()); err != nil {
		s.log.Error().Err(err).
			Str("request_id", req.ID.String()).
			Msg("resolution notification failed")
	}

	auditAction := domain.AuditActionApprove
	if req.Status == domain.RequestStatusRejected {
		auditAction = domain.AuditActionReject
	}
	details := fmt.Sprintf(`{"action_type":%q}`, req.ActionType)
	if effect != nil {
		details = fmt.Sprintf(`{"action_type":%q,"effect":%q}`, req.ActionType, effect.Summary)
	}
	s.auditSvc.Log(ctx, &domain.AuditLog{
		ID:         uuid.New(),
		ActorID:    &resolver.ID,
		Action:     auditAction,
		EntityName: "action_request",
		EntityID:   req.ID.String(),
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	})

	transitionsTotal.WithLabelValues(string(req.ActionType), string(req.Status)).Inc()

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("resolver_id", resolver.ID.String()).
		Str("status", string(req.Status)).
		Msg("action request resolved")
}
