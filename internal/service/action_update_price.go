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

// UpdatePriceHandler applies approved product price changes through the
// external catalog service.
type UpdatePriceHandler struct {
	catalog ports.CatalogService
	log     zerolog.Logger
}

// NewUpdatePriceHandler creates an UpdatePriceHandler.
func NewUpdatePriceHandler(catalog ports.CatalogService, log zerolog.Logger) *UpdatePriceHandler {
	return &UpdatePriceHandler{catalog: catalog, log: log}
}

func (h *UpdatePriceHandler) Type() domain.ActionType {
	return domain.ActionTypeUpdatePrice
}

// Validate checks the proposed price payload at submission time.
func (h *UpdatePriceHandler) Validate(payloadAfter json.RawMessage) error {
	var p domain.PricePayload
	if err := json.Unmarshal(payloadAfter, &p); err != nil {
		return apperror.Validation("malformed price payload")
	}
	if p.ProductID == "" {
		return apperror.Validation("product_id is required")
	}
	if p.Price.Sign() <= 0 {
		return apperror.Validation("price must be greater than zero")
	}
	return nil
}

// Snapshot captures the product's current price as payload_before so the
// reviewer sees the actual diff at decision time.
func (h *UpdatePriceHandler) Snapshot(ctx context.Context, input ports.SubmitInput) (json.RawMessage, error) {
	price, err := h.catalog.GetProductPrice(ctx, input.TargetEntityID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(domain.PricePayload{ProductID: input.TargetEntityID, Price: price})
}

// Apply pushes the approved price to the catalog. The push happens before
// commit: if the catalog rejects it, the surrounding transaction rolls back
// and the request stays pending.
func (h *UpdatePriceHandler) Apply(ctx context.Context, _ pgx.Tx, req *domain.ActionRequest) (*domain.AppliedEffect, error) {
	var p domain.PricePayload
	if err := json.Unmarshal(req.PayloadAfter, &p); err != nil {
		return nil, fmt.Errorf("unmarshal price payload: %w", err)
	}

	if err := h.catalog.SetProductPrice(ctx, p.ProductID, p.Price); err != nil {
		return nil, fmt.Errorf("push price to catalog: %w", err)
	}

	h.log.Info().
		Str("request_id", req.ID.String()).
		Str("product_id", p.ProductID).
		Str("price", p.Price.String()).
		Msg("product price updated")
	return &domain.AppliedEffect{
		Summary: fmt.Sprintf("price of %s set to %s", p.ProductID, p.Price),
	}, nil
}
