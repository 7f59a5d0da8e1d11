package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/models"
	apperrors "github.com/crewlinkhq/crewlink/pkg/errors"
)

// NotificationService is the read side of the notification store: listing and
// acknowledgement. Writing happens in the notifications dispatcher.
type NotificationService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{db: db, now: time.Now}, nil
}

// ListInput defines filters for querying an actor's notifications.
type ListInput struct {
	Actor  Actor
	Unread bool
	Limit  int
	Offset int
}

// List returns the actor's notifications ordered by recency.
func (s *NotificationService) List(ctx context.Context, input ListInput) ([]models.Notification, error) {
	ctx = ensureContext(ctx)

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).
		Where("recipient_id = ? AND recipient_role = ?", input.Actor.ID, input.Actor.Role)
	if input.Unread {
		query = query.Where("is_read = ?", false)
	}

	var rows []models.Notification
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list: %w", err)
	}
	return rows, nil
}

// MarkRead acknowledges a single notification owned by the actor.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID string, actor Actor) error {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND recipient_role = ?", notificationID, actor.ID, actor.Role).
		Updates(map[string]any{"is_read": true, "read_at": s.now()})
	if res.Error != nil {
		return fmt.Errorf("notification service: mark read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFound("notification", notificationID)
	}
	return nil
}

// MarkAllRead acknowledges every unread notification owned by the actor.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND recipient_role = ? AND is_read = ?", actor.ID, actor.Role, false).
		Updates(map[string]any{"is_read": true, "read_at": s.now()})
	if res.Error != nil {
		return 0, fmt.Errorf("notification service: mark all read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
