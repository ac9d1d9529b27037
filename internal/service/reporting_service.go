package service

import (
	"context"
	"time"

	"storefront-core/internal/core/ports"
	"storefront-core/pkg/apperror"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	reqRepo ports.ActionRequestRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(reqRepo ports.ActionRequestRepository) ports.ReportingService {
	return &reportingService{reqRepo: reqRepo}
}

// GetDashboardStats returns aggregated request counts for the admin
// dashboard, optionally scoped to a trailing period.
func (s *reportingService) GetDashboardStats(ctx context.Context, period string) (*ports.RequestStats, error) {
	var from *int64

	switch period {
	case "day":
		t := time.Now().AddDate(0, 0, -1).Unix()
		from = &t
	case "week":
		t := time.Now().AddDate(0, 0, -7).Unix()
		from = &t
	case "month":
		t := time.Now().AddDate(0, -1, 0).Unix()
		from = &t
	case "all", "":
		// No time filter
	default:
		return nil, apperror.Validation("invalid period: must be day, week, month, or all")
	}

	stats, err := s.reqRepo.GetStats(ctx, ports.StatsParams{From: from})
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	return stats, nil
}
