package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/campus-ris/ris-api/internal/models"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/jobs"
)

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, kind models.AccountKind) ([]models.Notification, error)
	UpdateStatus(ctx context.Context, id, recipientID string, status models.NotificationStatus) error
	CountUnread(ctx context.Context, recipientID string, kind models.AccountKind) (int, error)
}

// NotificationService records workflow events and serves them back to their
// recipients. Writes ride the background queue so a slow notification store
// never stalls the workflow that produced the event.
type NotificationService struct {
	repo   notificationRepository
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService with its dispatch
// queue. Call Start before dispatching and Stop on shutdown.
func NewNotificationService(repo notificationRepository, logger *zap.Logger, cfg jobs.QueueConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{repo: repo, logger: logger}
	cfg.Logger = logger
	s.queue = jobs.NewQueue("notifications", s.persist, cfg)
	return s
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains and stops the dispatch workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

func (s *NotificationService) persist(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(*models.Notification)
	if !ok {
		return errors.New("unexpected notification payload type")
	}
	return s.repo.Create(ctx, notification)
}

// Dispatch enqueues a notification write. When the queue is saturated or not
// running the write happens synchronously instead of being dropped.
func (s *NotificationService) Dispatch(ctx context.Context, notification *models.Notification) {
	if notification.Status == "" {
		notification.Status = models.NotificationUnread
	}
	if err := s.queue.Enqueue(jobs.Job{Type: string(notification.Type), Payload: notification}); err != nil {
		s.logger.Warn("notification queue unavailable, writing synchronously", zap.Error(err))
		if err := s.repo.Create(ctx, notification); err != nil {
			s.logger.Error("failed to persist notification",
				zap.String("recipient_id", notification.RecipientID),
				zap.String("type", string(notification.Type)),
				zap.Error(err))
		}
	}
}

// RelatedPayload marshals the free-form payload attached to a notification.
func RelatedPayload(fields map[string]interface{}) types.JSONText {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return types.JSONText(raw)
}

// List returns the recipient's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, recipientID string, kind models.AccountKind) ([]models.Notification, error) {
	notifications, err := s.repo.ListByRecipient(ctx, recipientID, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// CountUnread returns the recipient's unread count.
func (s *NotificationService) CountUnread(ctx context.Context, recipientID string, kind models.AccountKind) (int, error) {
	count, err := s.repo.CountUnread(ctx, recipientID, kind)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}

// MarkStatus flips a notification's status on behalf of its recipient.
// Notifications are otherwise immutable.
func (s *NotificationService) MarkStatus(ctx context.Context, id, recipientID string, status models.NotificationStatus) error {
	switch status {
	case models.NotificationRead, models.NotificationApproved, models.NotificationRejected:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unsupported notification status")
	}

	if err := s.repo.UpdateStatus(ctx, id, recipientID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notification")
	}
	return nil
}
