package dto

import (
	"encoding/json"
	"math"
	"time"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"

	"github.com/shopspring/decimal"
)

// SubmitActionRequest is the request body for submitting an action request.
type SubmitActionRequest struct {
	ActionType       string          `json:"action_type" binding:"required,safe_id,max=64"`
	TargetEntityType string          `json:"target_entity_type" binding:"required,safe_id,max=64"`
	TargetEntityID   string          `json:"target_entity_id" binding:"required,safe_id,max=100"`
	PayloadBefore    json.RawMessage `json:"payload_before,omitempty"`
	PayloadAfter     json.RawMessage `json:"payload_after" binding:"required"`
}

// ResolveRequest is the request body for approving or rejecting a request.
// Comment is optional on approval and mandatory on rejection; the service
// enforces the latter.
type ResolveRequest struct {
	Comment *string `json:"comment,omitempty" binding:"omitempty,max=500"`
}

// CreditRequest is the request body for an administrative wallet credit.
type CreditRequest struct {
	OwnerID     string          `json:"owner_id" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required,max=255"`
}

// ActionRequestResponse is the response body for a single action request.
type ActionRequestResponse struct {
	ID               string          `json:"id"`
	RequesterID      string          `json:"requester_id"`
	ActionType       string          `json:"action_type"`
	TargetEntityType string          `json:"target_entity_type"`
	TargetEntityID   string          `json:"target_entity_id"`
	PayloadBefore    json.RawMessage `json:"payload_before,omitempty"`
	PayloadAfter     json.RawMessage `json:"payload_after"`
	Status           string          `json:"status"`
	SubmittedAt      string          `json:"submitted_at"`
	ResolvedAt       *string         `json:"resolved_at,omitempty"`
	ResolverID       *string         `json:"resolver_id,omitempty"`
	ResolverComment  *string         `json:"resolver_comment,omitempty"`
}

// ActionRequestListResponse wraps a paginated list of action requests.
type ActionRequestListResponse struct {
	Items      []ActionRequestResponse `json:"items"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalPages int                     `json:"total_pages"`
}

// WalletBalanceResponse is the response for a balance query.
type WalletBalanceResponse struct {
	OwnerID string `json:"owner_id"`
	Balance string `json:"balance"`
	AsOf    string `json:"as_of,omitempty"`
}

// LedgerEntryResponse is one row of the wallet history.
type LedgerEntryResponse struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	OccurredAt  string `json:"occurred_at"`
}

// LedgerListResponse wraps a paginated wallet history.
type LedgerListResponse struct {
	Items      []LedgerEntryResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// DashboardStatsResponse is the response for dashboard statistics.
type DashboardStatsResponse struct {
	Total          int64  `json:"total_requests"`
	Pending        int64  `json:"pending"`
	Approved       int64  `json:"approved"`
	Rejected       int64  `json:"rejected"`
	TotalWithdrawn string `json:"total_withdrawn"`
}

// NotificationResponse is one in-app notification.
type NotificationResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Category  string  `json:"category"`
	Link      string  `json:"link,omitempty"`
	ReadAt    *string `json:"read_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// NotificationListResponse wraps a paginated notification list.
type NotificationListResponse struct {
	Items      []NotificationResponse `json:"items"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}

// ToActionRequestResponse converts a domain action request for the wire.
func ToActionRequestResponse(r *domain.ActionRequest) ActionRequestResponse {
	resp := ActionRequestResponse{
		ID:               r.ID.String(),
		RequesterID:      r.RequesterID.String(),
		ActionType:       string(r.ActionType),
		TargetEntityType: r.TargetEntityType,
		TargetEntityID:   r.TargetEntityID,
		PayloadBefore:    r.PayloadBefore,
		PayloadAfter:     r.PayloadAfter,
		Status:           string(r.Status),
		SubmittedAt:      r.SubmittedAt.Format(time.RFC3339),
		ResolverComment:  r.ResolverComment,
	}
	if r.ResolvedAt != nil {
		s := r.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &s
	}
	if r.ResolverID != nil {
		s := r.ResolverID.String()
		resp.ResolverID = &s
	}
	return resp
}

// ToActionRequestListResponse converts a page of action requests.
func ToActionRequestListResponse(items []domain.ActionRequest, total int64, page, pageSize int) ActionRequestListResponse {
	resp := ActionRequestListResponse{
		Items:      make([]ActionRequestResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}
	for i := range items {
		resp.Items = append(resp.Items, ToActionRequestResponse(&items[i]))
	}
	return resp
}

// ToLedgerEntryResponse converts a domain ledger entry for the wire.
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:          e.ID.String(),
		Amount:      e.Amount.String(),
		Kind:        string(e.Kind),
		Description: e.Description,
		OccurredAt:  e.OccurredAt.Format(time.RFC3339),
	}
}

// ToLedgerListResponse converts a page of ledger entries.
func ToLedgerListResponse(items []domain.LedgerEntry, total int64, page, pageSize int) LedgerListResponse {
	resp := LedgerListResponse{
		Items:      make([]LedgerEntryResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}
	for i := range items {
		resp.Items = append(resp.Items, ToLedgerEntryResponse(&items[i]))
	}
	return resp
}

// ToDashboardStatsResponse converts aggregated request stats for the wire.
func ToDashboardStatsResponse(s *ports.RequestStats) DashboardStatsResponse {
	return DashboardStatsResponse{
		Total:          s.Total,
		Pending:        s.Pending,
		Approved:       s.Approved,
		Rejected:       s.Rejected,
		TotalWithdrawn: s.TotalWithdrawn.String(),
	}
}

// ToNotificationResponse converts a domain notification for the wire.
func ToNotificationResponse(n *domain.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Title:     n.Title,
		Message:   n.Message,
		Category:  string(n.Category),
		Link:      n.Link,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.ReadAt != nil {
		s := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &s
	}
	return resp
}

// ToNotificationListResponse converts a page of notifications.
func ToNotificationListResponse(items []domain.Notification, total int64, page, pageSize int) NotificationListResponse {
	resp := NotificationListResponse{
		Items:      make([]NotificationResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}
	for i := range items {
		resp.Items = append(resp.Items, ToNotificationResponse(&items[i]))
	}
	return resp
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}
