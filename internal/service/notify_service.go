package service

import (
	"context"
	"fmt"
	"time"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type notifyService struct {
	repo ports.NotificationRepository
	log  zerolog.Logger
}

// NewNotifyService creates an inbox-backed Notifier.
func NewNotifyService(repo ports.NotificationRepository, log zerolog.Logger) ports.Notifier {
	return &notifyService{repo: repo, log: log}
}

// Notify writes a message to the owner's notification inbox.
func (s *notifyService) Notify(ctx context.Context, ownerID uuid.UUID, title, message string,
	category domain.NotificationCategory, link string) error {
	n := &domain.Notification{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		Message:   message,
		Category:  category,
		Link:      link,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}
