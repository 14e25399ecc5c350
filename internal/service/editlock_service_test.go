package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-ris/ris-api/internal/models"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/realtime"
)

type memoryLeaseStore struct {
	mu     sync.Mutex
	holder string
}

func (s *memoryLeaseStore) AcquireLease(ctx context.Context, key, holder string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holder != "" {
		return false, nil
	}
	s.holder = holder
	return true, nil
}

func (s *memoryLeaseStore) GetLease(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holder, nil
}

func (s *memoryLeaseStore) ReleaseLease(ctx context.Context, key, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holder == holder {
		s.holder = ""
	}
	return nil
}

type capturingHub struct {
	events []realtime.Event
}

func (h *capturingHub) Broadcast(event realtime.Event) {
	h.events = append(h.events, event)
}

func editorClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Kind: models.KindAdmin, Role: models.AdminRoleAdmin}
}

func TestEditLockMutualExclusion(t *testing.T) {
	store := &memoryLeaseStore{}
	hub := &capturingHub{}
	svc := NewEditLockService(store, hub, time.Minute, zap.NewNop())

	lock, err := svc.Toggle(context.Background(), editorClaims("adm-1"), true)
	require.NoError(t, err)
	assert.True(t, lock.Enabled)
	assert.Equal(t, "adm-1", lock.HolderID)

	_, err = svc.Toggle(context.Background(), editorClaims("adm-2"), true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// Re-enabling by the holder is idempotent.
	_, err = svc.Toggle(context.Background(), editorClaims("adm-1"), true)
	require.NoError(t, err)
}

func TestEditLockReleaseAndBroadcast(t *testing.T) {
	store := &memoryLeaseStore{}
	hub := &capturingHub{}
	svc := NewEditLockService(store, hub, time.Minute, zap.NewNop())

	_, err := svc.Toggle(context.Background(), editorClaims("adm-1"), true)
	require.NoError(t, err)

	_, err = svc.Toggle(context.Background(), editorClaims("adm-2"), false)
	require.Error(t, err)

	lock, err := svc.Toggle(context.Background(), editorClaims("adm-1"), false)
	require.NoError(t, err)
	assert.False(t, lock.Enabled)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Enabled)

	require.Len(t, hub.events, 2)
	assert.Equal(t, "editModeChange", hub.events[0].Name)
}

func TestEditLockSuperAdminOverride(t *testing.T) {
	store := &memoryLeaseStore{holder: "adm-1"}
	svc := NewEditLockService(store, &capturingHub{}, time.Minute, zap.NewNop())

	super := &models.JWTClaims{UserID: "root", Kind: models.KindAdmin, Role: models.AdminRoleSuperAdmin}
	lock, err := svc.Toggle(context.Background(), super, false)
	require.NoError(t, err)
	assert.False(t, lock.Enabled)

	holder, _ := store.GetLease(context.Background(), editLockKey)
	assert.Empty(t, holder)
}
