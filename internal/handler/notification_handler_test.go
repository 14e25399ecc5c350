package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/campus-ris/ris-api/internal/middleware"
	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/service"
	"github.com/campus-ris/ris-api/pkg/jobs"
)

type notificationRepoMock struct {
	items map[string]*models.Notification
}

func (m *notificationRepoMock) Create(ctx context.Context, n *models.Notification) error {
	m.items[n.ID] = n
	return nil
}

func (m *notificationRepoMock) ListByRecipient(ctx context.Context, recipientID string, kind models.AccountKind) ([]models.Notification, error) {
	items := []models.Notification{}
	for _, n := range m.items {
		if n.RecipientID == recipientID && n.RecipientKind == kind {
			items = append(items, *n)
		}
	}
	return items, nil
}

func (m *notificationRepoMock) UpdateStatus(ctx context.Context, id, recipientID string, status models.NotificationStatus) error {
	n, ok := m.items[id]
	if !ok || n.RecipientID != recipientID {
		return sql.ErrNoRows
	}
	n.Status = status
	return nil
}

func (m *notificationRepoMock) CountUnread(ctx context.Context, recipientID string, kind models.AccountKind) (int, error) {
	count := 0
	for _, n := range m.items {
		if n.RecipientID == recipientID && n.RecipientKind == kind && n.Status == models.NotificationUnread {
			count++
		}
	}
	return count, nil
}

func TestNotificationHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &notificationRepoMock{items: map[string]*models.Notification{
		"ntf-1": {ID: "ntf-1", RecipientID: "stu-1", RecipientKind: models.KindStudent, Status: models.NotificationUnread},
		"ntf-2": {ID: "ntf-2", RecipientID: "stu-2", RecipientKind: models.KindStudent, Status: models.NotificationUnread},
	}}
	handler := NewNotificationHandler(service.NewNotificationService(repo, nil, jobs.QueueConfig{}))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/notifications", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Kind: models.KindStudent})

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.Notification  `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.EqualValues(t, 1, envelope.Meta["unread_count"])
}

func TestNotificationHandlerUpdateStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &notificationRepoMock{items: map[string]*models.Notification{
		"ntf-1": {ID: "ntf-1", RecipientID: "stu-1", RecipientKind: models.KindStudent, Status: models.NotificationUnread},
	}}
	handler := NewNotificationHandler(service.NewNotificationService(repo, nil, jobs.QueueConfig{}))

	payload, _ := json.Marshal(models.NotificationStatusRequest{Status: models.NotificationRead})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/notifications/ntf-1/status", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "ntf-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Kind: models.KindStudent})

	handler.UpdateStatus(c)
	// CreateTestContext does not flush a bare status until the writer is told to.
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, models.NotificationRead, repo.items["ntf-1"].Status)
}

func TestNotificationHandlerUpdateStatusNotOwned(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &notificationRepoMock{items: map[string]*models.Notification{
		"ntf-1": {ID: "ntf-1", RecipientID: "stu-2", RecipientKind: models.KindStudent, Status: models.NotificationUnread},
	}}
	handler := NewNotificationHandler(service.NewNotificationService(repo, nil, jobs.QueueConfig{}))

	payload, _ := json.Marshal(models.NotificationStatusRequest{Status: models.NotificationRead})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/notifications/ntf-1/status", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "ntf-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Kind: models.KindStudent})

	handler.UpdateStatus(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, models.NotificationUnread, repo.items["ntf-1"].Status)
}
