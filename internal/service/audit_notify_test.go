package service

import (
	"context"
	"testing"
	"time"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuditService_Log_PersistsToRepo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(mockRepo, zerolog.Nop())

	done := make(chan struct{})
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, entry *domain.AuditLog) error {
			if entry.Action != domain.AuditActionApprove {
				t.Errorf("expected APPROVE_REQUEST, got %s", entry.Action)
			}
			close(done)
			return nil
		},
	)

	adminID := uuid.New()
	svc.Log(context.Background(), &domain.AuditLog{
		ID:         uuid.New(),
		ActorID:    &adminID,
		Action:     domain.AuditActionApprove,
		EntityName: "action_request",
		EntityID:   uuid.New().String(),
		SourceAddr: "127.0.0.1",
		CreatedAt:  time.Now(),
	})

	select {
	case <-done:
		// OK
	case <-time.After(2 * time.Second):
		t.Fatal("audit log not persisted in time")
	}
}

func TestAuditService_Log_NilRepo(t *testing.T) {
	svc := NewAuditService(nil, zerolog.Nop())

	// Should not panic
	svc.Log(context.Background(), &domain.AuditLog{
		ID:         uuid.New(),
		Action:     domain.AuditActionSubmit,
		EntityName: "action_request",
		SourceAddr: "127.0.0.1",
		CreatedAt:  time.Now(),
	})

	time.Sleep(50 * time.Millisecond) // let goroutine run
}

func TestNotifyService_Notify(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockNotificationRepository(ctrl)
	svc := NewNotifyService(mockRepo, zerolog.Nop())

	ownerID := uuid.New()
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, n *domain.Notification) error {
			assert.Equal(t, ownerID, n.OwnerID)
			assert.Equal(t, "Request approved", n.Title)
			assert.Equal(t, domain.NotificationCategoryApproval, n.Category)
			assert.NotEqual(t, uuid.Nil, n.ID)
			return nil
		},
	)

	err := svc.Notify(context.Background(), ownerID, "Request approved",
		"Your withdrawal request was approved", domain.NotificationCategoryApproval, "/actions/123")
	require.NoError(t, err)
}

func TestNotifyService_Notify_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockNotificationRepository(ctrl)
	svc := NewNotifyService(mockRepo, zerolog.Nop())

	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(assert.AnError)

	err := svc.Notify(context.Background(), uuid.New(), "t", "m",
		domain.NotificationCategoryWallet, "")
	require.Error(t, err)
}
