package handler

import (
	"strconv"

	"storefront-core/internal/adapter/http/dto"
	"storefront-core/internal/adapter/http/middleware"
	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"
	"storefront-core/pkg/apperror"
	"storefront-core/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActionHandler handles action request endpoints.
type ActionHandler struct {
	approvalSvc ports.ApprovalService
}

// NewActionHandler creates a new ActionHandler.
func NewActionHandler(approvalSvc ports.ApprovalService) *ActionHandler {
	return &ActionHandler{approvalSvc: approvalSvc}
}

// Submit handles POST /api/v1/actions.
func (h *ActionHandler) Submit(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SubmitActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.approvalSvc.Submit(c.Request.Context(), actor, ports.SubmitInput{
		ActionType:       domain.ActionType(req.ActionType),
		TargetEntityType: req.TargetEntityType,
		TargetEntityID:   req.TargetEntityID,
		PayloadBefore:    req.PayloadBefore,
		PayloadAfter:     req.PayloadAfter,
		SourceAddr:       c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToActionRequestResponse(result))
}

// Get handles GET /api/v1/actions/:id.
func (h *ActionHandler) Get(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid request id"))
		return
	}

	result, err := h.approvalSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Merchants only see their own requests; admins see everything.
	if actor.Role != domain.RoleAdmin && result.RequesterID != actor.ID {
		response.Error(c, apperror.ErrForbidden())
		return
	}

	response.OK(c, dto.ToActionRequestResponse(result))
}

// ListPending handles GET /api/v1/actions/pending.
func (h *ActionHandler) ListPending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.RequestListParams{
		Page:     page,
		PageSize: pageSize,
	}
	if r := c.Query("requester_id"); r != "" {
		id, err := uuid.Parse(r)
		if err != nil {
			response.Error(c, apperror.Validation("invalid requester_id"))
			return
		}
		params.RequesterID = &id
	}
	if t := c.Query("action_type"); t != "" {
		at := domain.ActionType(t)
		params.ActionType = &at
	}

	items, total, err := h.approvalSvc.ListPending(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToActionRequestListResponse(items, total, page, pageSize))
}

// Approve handles POST /api/v1/actions/:id/approve.
func (h *ActionHandler) Approve(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid request id"))
		return
	}

	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.approvalSvc.Approve(c.Request.Context(), id, actor, req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToActionRequestResponse(result))
}

// Reject handles POST /api/v1/actions/:id/reject.
func (h *ActionHandler) Reject(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid request id"))
		return
	}

	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	comment := ""
	if req.Comment != nil {
		comment = *req.Comment
	}

	result, err := h.approvalSvc.Reject(c.Request.Context(), id, actor, comment)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToActionRequestResponse(result))
}
