package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-ris/ris-api/internal/models"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/jobs"
)

type mockNotificationRepo struct {
	mu      sync.Mutex
	created []*models.Notification
	updates map[string]models.NotificationStatus
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, notification)
	return nil
}

func (m *mockNotificationRepo) ListByRecipient(ctx context.Context, recipientID string, kind models.AccountKind) ([]models.Notification, error) {
	return nil, nil
}

func (m *mockNotificationRepo) UpdateStatus(ctx context.Context, id, recipientID string, status models.NotificationStatus) error {
	if m.updates == nil {
		return sql.ErrNoRows
	}
	m.updates[id] = status
	return nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, recipientID string, kind models.AccountKind) (int, error) {
	return 0, nil
}

func (m *mockNotificationRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

func TestNotificationServiceDispatchThroughQueue(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, zap.NewNop(), jobs.QueueConfig{Workers: 1, BufferSize: 4})
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Dispatch(context.Background(), &models.Notification{
		RecipientID:   "stu-1",
		RecipientKind: models.KindStudent,
		Message:       "Your research has been accepted",
		Type:          models.NotifyResearchAccepted,
	})

	require.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, models.NotificationUnread, repo.created[0].Status)
}

func TestNotificationServiceDispatchSynchronousFallback(t *testing.T) {
	repo := &mockNotificationRepo{}
	// Queue never started: enqueue fails and the write happens inline.
	svc := NewNotificationService(repo, zap.NewNop(), jobs.QueueConfig{Workers: 1})

	svc.Dispatch(context.Background(), &models.Notification{
		RecipientID:   "ins-1",
		RecipientKind: models.KindInstructor,
		Message:       "New submission",
		Type:          models.NotifyResearchSubmission,
	})

	assert.Equal(t, 1, repo.count())
}

func TestNotificationServiceMarkStatus(t *testing.T) {
	repo := &mockNotificationRepo{updates: map[string]models.NotificationStatus{}}
	svc := NewNotificationService(repo, zap.NewNop(), jobs.QueueConfig{})

	err := svc.MarkStatus(context.Background(), "n-1", "stu-1", models.NotificationRead)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationRead, repo.updates["n-1"])

	err = svc.MarkStatus(context.Background(), "n-1", "stu-1", models.NotificationUnread)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestNotificationServiceMarkStatusMissing(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, zap.NewNop(), jobs.QueueConfig{})

	err := svc.MarkStatus(context.Background(), "missing", "stu-1", models.NotificationRead)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
