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

// ProposeCategoryHandler creates merchant-proposed categories in the
// external catalog once an admin approves them.
type ProposeCategoryHandler struct {
	catalog ports.CatalogService
	log     zerolog.Logger
}

// NewProposeCategoryHandler creates a ProposeCategoryHandler.
func NewProposeCategoryHandler(catalog ports.CatalogService, log zerolog.Logger) *ProposeCategoryHandler {
	return &ProposeCategoryHandler{catalog: catalog, log: log}
}

func (h *ProposeCategoryHandler) Type() domain.ActionType {
	return domain.ActionTypeProposeCategory
}

// Validate checks the category proposal at submission time.
func (h *ProposeCategoryHandler) Validate(payloadAfter json.RawMessage) error {
	var p domain.CategoryPayload
	if err := json.Unmarshal(payloadAfter, &p); err != nil {
		return apperror.Validation("malformed category payload")
	}
	if p.Name == "" {
		return apperror.Validation("category name is required")
	}
	return nil
}

// Apply creates the category in the catalog. A catalog failure rolls the
// approval back.
func (h *ProposeCategoryHandler) Apply(ctx context.Context, _ pgx.Tx, req *domain.ActionRequest) (*domain.AppliedEffect, error) {
	var p domain.CategoryPayload
	if err := json.Unmarshal(req.PayloadAfter, &p); err != nil {
		return nil, fmt.Errorf("unmarshal category payload: %w", err)
	}

	if err := h.catalog.CreateCategory(ctx, p); err != nil {
		return nil, fmt.Errorf("create category in catalog: %w", err)
	}

	h.log.Info().
		Str("request_id", req.ID.String()).
		Str("name", p.Name).
		Msg("category created")
	return &domain.AppliedEffect{
		Summary: fmt.Sprintf("category %q created", p.Name),
	}, nil
}
