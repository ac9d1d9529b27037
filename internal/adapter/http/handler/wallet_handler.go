package handler

import (
	"strconv"
	"time"

	"storefront-core/internal/adapter/http/dto"
	"storefront-core/internal/adapter/http/middleware"
	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"
	"storefront-core/pkg/apperror"
	"storefront-core/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet balance and history endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// resolveOwner determines whose wallet the request targets. Merchants are
// pinned to their own wallet; admins may target any owner via ?owner_id.
func resolveOwner(c *gin.Context, actor domain.Actor) (uuid.UUID, error) {
	raw := c.Query("owner_id")
	if raw == "" {
		return actor.ID, nil
	}
	if actor.Role != domain.RoleAdmin {
		return uuid.Nil, apperror.ErrForbidden()
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid owner_id")
	}
	return id, nil
}

// GetBalance handles GET /api/v1/wallets/balance. An optional as_of query
// parameter (Unix seconds) returns the reconstructed historical balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	ownerID, err := resolveOwner(c, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.WalletBalanceResponse{OwnerID: ownerID.String()}

	if raw := c.Query("as_of"); raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, apperror.Validation("as_of must be a unix timestamp"))
			return
		}
		asOf := time.Unix(ts, 0).UTC()
		balance, err := h.walletSvc.BalanceAsOf(c.Request.Context(), ownerID, asOf)
		if err != nil {
			response.Error(c, err)
			return
		}
		resp.Balance = balance.String()
		resp.AsOf = asOf.Format(time.RFC3339)
		response.OK(c, resp)
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp.Balance = balance.String()
	response.OK(c, resp)
}

// GetHistory handles GET /api/v1/wallets/history.
func (h *WalletHandler) GetHistory(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	ownerID, err := resolveOwner(c, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.LedgerListParams{
		OwnerID:  ownerID,
		Page:     page,
		PageSize: pageSize,
	}
	if k := c.Query("kind"); k != "" {
		kind := domain.EntryKind(k)
		params.Kind = &kind
	}
	if f := c.Query("from"); f != "" {
		if v, err := strconv.ParseInt(f, 10, 64); err == nil {
			params.From = &v
		}
	}
	if t := c.Query("to"); t != "" {
		if v, err := strconv.ParseInt(t, 10, 64); err == nil {
			params.To = &v
		}
	}

	entries, total, err := h.walletSvc.GetHistory(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToLedgerListResponse(entries, total, page, pageSize))
}

// Credit handles POST /api/v1/wallets/credit, the administrative deposit
// into a merchant wallet. Debits never go through here; they only happen
// via an approved withdrawal request.
func (h *WalletHandler) Credit(c *gin.Context) {
	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid owner_id"))
		return
	}

	entry, err := h.walletSvc.Credit(c.Request.Context(), ownerID, req.Amount,
		domain.EntryKindDeposit, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToLedgerEntryResponse(entry))
}
