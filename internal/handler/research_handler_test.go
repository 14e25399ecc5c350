package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/campus-ris/ris-api/internal/middleware"
	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/service"
	"github.com/campus-ris/ris-api/pkg/storage"
)

type researchRepoMock struct {
	details map[string]*models.ResearchDetail
	created *models.Research
}

func (m *researchRepoMock) List(ctx context.Context, filter models.ResearchFilter) ([]models.ResearchDetail, int, error) {
	items := make([]models.ResearchDetail, 0, len(m.details))
	for _, d := range m.details {
		items = append(items, *d)
	}
	return items, len(items), nil
}

func (m *researchRepoMock) FindByID(ctx context.Context, id string) (*models.ResearchDetail, error) {
	detail, ok := m.details[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *detail
	return &clone, nil
}

func (m *researchRepoMock) ListByStudentNumber(ctx context.Context, studentNumber string) ([]models.ResearchDetail, error) {
	items := []models.ResearchDetail{}
	for _, d := range m.details {
		if d.StudentNumber == studentNumber {
			items = append(items, *d)
		}
	}
	return items, nil
}

func (m *researchRepoMock) Create(ctx context.Context, research *models.Research) error {
	m.created = research
	return nil
}

func (m *researchRepoMock) UpdateStatus(ctx context.Context, id string, status models.ResearchStatus, comments *string) error {
	detail, ok := m.details[id]
	if !ok {
		return sql.ErrNoRows
	}
	detail.Status = status
	detail.Comments = comments
	return nil
}

func (m *researchRepoMock) UpdateArtifact(ctx context.Context, research *models.Research) error {
	return nil
}

func (m *researchRepoMock) SetArchived(ctx context.Context, id string, archived bool) error {
	return nil
}

type studentReaderMock struct {
	students map[string]*models.Student
}

func (m *studentReaderMock) FindByID(ctx context.Context, id string) (*models.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

type dispatcherMock struct {
	sent []*models.Notification
}

func (m *dispatcherMock) Dispatch(ctx context.Context, n *models.Notification) {
	m.sent = append(m.sent, n)
}

func newResearchHandler(t *testing.T, repo *researchRepoMock) (*ResearchHandler, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	students := &studentReaderMock{students: map[string]*models.Student{
		"stu-1": {ID: "stu-1", StudentNumber: "2021-00123", Name: "Bea Santos"},
	}}
	svc := service.NewResearchService(repo, students, &dispatcherMock{}, signer, nil, nil, service.ResearchConfig{AllowReReview: true})
	return NewResearchHandler(svc, store), store
}

func multipartBody(t *testing.T, fields map[string]string, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 research"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestResearchHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &researchRepoMock{details: map[string]*models.ResearchDetail{}}
	handler, _ := newResearchHandler(t, repo)

	body, contentType := multipartBody(t, map[string]string{
		"title":   "Water Quality Study",
		"authors": "Bea Santos",
	}, "study.pdf")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/research", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Kind: models.KindStudent})

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.created)
	require.Equal(t, models.StatusPending, repo.created.Status)
	require.NotEmpty(t, repo.created.FileRef)
}

func TestResearchHandlerSubmitMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &researchRepoMock{details: map[string]*models.ResearchDetail{}}
	handler, _ := newResearchHandler(t, repo)

	body, contentType := multipartBody(t, map[string]string{
		"title":   "Water Quality Study",
		"authors": "Bea Santos",
	}, "")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/research", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Kind: models.KindStudent})

	handler.Submit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Nil(t, repo.created)
}

func TestResearchHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &researchRepoMock{details: map[string]*models.ResearchDetail{}}
	handler, _ := newResearchHandler(t, repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/research/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "adm-1", Kind: models.KindAdmin})

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestResearchHandlerUpdateStatusForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &researchRepoMock{details: map[string]*models.ResearchDetail{
		"res-1": {Research: models.Research{ID: "res-1", StudentID: "stu-1", StudentNumber: "2021-00123", Status: models.StatusPending}},
	}}
	handler, _ := newResearchHandler(t, repo)

	payload, _ := json.Marshal(models.ResearchStatusRequest{Status: models.StatusAccepted})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/research/res-1/status", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Kind: models.KindStudent})

	handler.UpdateStatus(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, models.StatusPending, repo.details["res-1"].Status)
}

func TestResearchHandlerDownloadRoundtrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &researchRepoMock{details: map[string]*models.ResearchDetail{}}
	handler, store := newResearchHandler(t, repo)

	stored, err := store.Save("study.pdf", []byte("artifact bytes"))
	require.NoError(t, err)
	repo.details["res-1"] = &models.ResearchDetail{Research: models.Research{
		ID:            "res-1",
		StudentID:     "stu-1",
		StudentNumber: "2021-00123",
		Status:        models.StatusAccepted,
		FileRef:       stored.FileRef,
	}}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/research/res-1/download-token", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "adm-1", Kind: models.KindAdmin})

	handler.DownloadToken(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	req, _ = http.NewRequest(http.MethodGet, fmt.Sprintf("/research/res-1/file?token=%s", envelope.Data.Token), nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "artifact bytes", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}
