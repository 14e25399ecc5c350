package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ris/ris-api/internal/models"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/realtime"
)

const editLockKey = "editlock:admin"

type leaseStore interface {
	AcquireLease(ctx context.Context, key, holder string, ttl time.Duration) (bool, error)
	GetLease(ctx context.Context, key string) (string, error)
	ReleaseLease(ctx context.Context, key, holder string) error
}

type eventBroadcaster interface {
	Broadcast(event realtime.Event)
}

// EditLockService guards the admin edit surface with a TTL-bound Redis
// lease. A crashed holder never wedges the lock: the lease expires. Change
// events fan out to connected viewers, best effort.
type EditLockService struct {
	store  leaseStore
	hub    eventBroadcaster
	ttl    time.Duration
	logger *zap.Logger
}

// NewEditLockService constructs an EditLockService.
func NewEditLockService(store leaseStore, hub eventBroadcaster, ttl time.Duration, logger *zap.Logger) *EditLockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &EditLockService{store: store, hub: hub, ttl: ttl, logger: logger}
}

// Toggle enables or disables edit mode for the calling admin. Enabling while
// another admin holds the lease is refused; enabling while already holding
// it renews nothing but succeeds.
func (s *EditLockService) Toggle(ctx context.Context, claims *models.JWTClaims, enable bool) (*models.EditLock, error) {
	if enable {
		return s.enable(ctx, claims)
	}
	return s.disable(ctx, claims)
}

func (s *EditLockService) enable(ctx context.Context, claims *models.JWTClaims) (*models.EditLock, error) {
	ok, err := s.store.AcquireLease(ctx, editLockKey, claims.UserID, s.ttl)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire edit lock")
	}
	if !ok {
		holder, err := s.store.GetLease(ctx, editLockKey)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read edit lock")
		}
		if holder != claims.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "edit mode is held by another admin")
		}
	}

	lock := &models.EditLock{
		Enabled:   true,
		HolderID:  claims.UserID,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	s.broadcast(lock)
	s.logger.Info("edit mode enabled", zap.String("admin_id", claims.UserID))
	return lock, nil
}

func (s *EditLockService) disable(ctx context.Context, claims *models.JWTClaims) (*models.EditLock, error) {
	holder, err := s.store.GetLease(ctx, editLockKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read edit lock")
	}
	if holder != "" && holder != claims.UserID && !claims.IsSuperAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "edit mode is held by another admin")
	}

	if err := s.store.ReleaseLease(ctx, editLockKey, holder); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release edit lock")
	}

	lock := &models.EditLock{Enabled: false}
	s.broadcast(lock)
	s.logger.Info("edit mode disabled", zap.String("admin_id", claims.UserID))
	return lock, nil
}

// Status reports the current lease holder.
func (s *EditLockService) Status(ctx context.Context) (*models.EditLock, error) {
	holder, err := s.store.GetLease(ctx, editLockKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read edit lock")
	}
	return &models.EditLock{Enabled: holder != "", HolderID: holder}, nil
}

func (s *EditLockService) broadcast(lock *models.EditLock) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(realtime.Event{Name: "editModeChange", Data: lock})
}
