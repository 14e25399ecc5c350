package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ris/ris-api/internal/models"
)

// NotificationRepository manages persistence for notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, recipient_id, recipient_kind, message, type, status, related_data, created_at`

// Create persists a notification.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.Status == "" {
		notification.Status = models.NotificationUnread
	}
	notification.CreatedAt = time.Now().UTC()

	query := `INSERT INTO notifications (id, recipient_id, recipient_kind, message, type, status, related_data, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		notification.ID, notification.RecipientID, notification.RecipientKind,
		notification.Message, notification.Type, notification.Status,
		notification.RelatedData, notification.CreatedAt); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByRecipient returns a recipient's notifications, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, kind models.AccountKind) ([]models.Notification, error) {
	query := fmt.Sprintf(`SELECT %s FROM notifications WHERE recipient_id = $1 AND recipient_kind = $2 ORDER BY created_at DESC`, notificationColumns)
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, recipientID, kind); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// FindByID fetches one notification.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	query := fmt.Sprintf("SELECT %s FROM notifications WHERE id = $1", notificationColumns)
	var notification models.Notification
	if err := r.db.GetContext(ctx, &notification, query, id); err != nil {
		return nil, err
	}
	return &notification, nil
}

// UpdateStatus flips a notification's status. The recipient id scopes the
// update so one account cannot mark another's notifications.
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id, recipientID string, status models.NotificationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = $1 WHERE id = $2 AND recipient_id = $3`,
		status, id, recipientID)
	if err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountUnread returns the number of unread notifications for a recipient.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string, kind models.AccountKind) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND recipient_kind = $2 AND status = $3`,
		recipientID, kind, models.NotificationUnread); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
