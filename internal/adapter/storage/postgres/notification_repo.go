package postgres

import (
	"context"
	"fmt"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"

	"github.com/google/uuid"
)

type notificationRepo struct {
	pool Pool
}

// NewNotificationRepository creates a PostgreSQL-backed NotificationRepository.
func NewNotificationRepository(pool Pool) ports.NotificationRepository {
	return &notificationRepo{pool: pool}
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, owner_id, title, message, category, link, read_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.OwnerID, n.Title, n.Message, string(n.Category), n.Link, n.ReadAt, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *notificationRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, pageSize int) ([]domain.Notification, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE owner_id = $1`, ownerID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, title, message, category, link, read_at, created_at
		 FROM notifications WHERE owner_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, pageSize, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		n := domain.Notification{}
		err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Message, &n.Category, &n.Link, &n.ReadAt, &n.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan notification row: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate notification rows: %w", err)
	}
	return items, total, nil
}
