package handler

import (
	"strconv"

	"storefront-core/internal/adapter/http/dto"
	"storefront-core/internal/adapter/http/middleware"
	"storefront-core/internal/core/ports"
	"storefront-core/pkg/apperror"
	"storefront-core/pkg/response"

	"github.com/gin-gonic/gin"
)

// DashboardHandler handles admin dashboard and notification endpoints.
type DashboardHandler struct {
	reportingSvc     ports.ReportingService
	notificationRepo ports.NotificationRepository
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportingSvc ports.ReportingService, notificationRepo ports.NotificationRepository) *DashboardHandler {
	return &DashboardHandler{
		reportingSvc:     reportingSvc,
		notificationRepo: notificationRepo,
	}
}

// GetStats handles GET /api/v1/dashboard/stats.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	period := c.DefaultQuery("period", "all")
	stats, err := h.reportingSvc.GetDashboardStats(c.Request.Context(), period)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToDashboardStatsResponse(stats))
}

// ListNotifications handles GET /api/v1/notifications, the authenticated
// actor's in-app inbox.
func (h *DashboardHandler) ListNotifications(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
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

	items, total, err := h.notificationRepo.ListByOwner(c.Request.Context(), actor.ID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToNotificationListResponse(items, total, page, pageSize))
}
