package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationCategory groups notifications in the merchant's inbox.
type NotificationCategory string

const (
	NotificationCategoryApproval NotificationCategory = "APPROVAL"
	NotificationCategoryWallet   NotificationCategory = "WALLET"
)

// Notification is one in-app message delivered to a merchant, e.g. the
// outcome of an action request they submitted.
type Notification struct {
	ID        uuid.UUID            `json:"id"`
	OwnerID   uuid.UUID            `json:"owner_id"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Category  NotificationCategory `json:"category"`
	Link      string               `json:"link,omitempty"`
	ReadAt    *time.Time           `json:"read_at,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}
