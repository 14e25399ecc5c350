package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/repository"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
)

type adviserRequestRepository interface {
	Create(ctx context.Context, request *models.AdviserRequest) error
	FindByID(ctx context.Context, id string) (*models.AdviserRequest, error)
	ExistsPending(ctx context.Context, researchID, instructorID string) (bool, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]models.AdviserRequest, error)
	ListAll(ctx context.Context) ([]models.AdviserRequest, error)
	CountPending(ctx context.Context) (int, error)
	Approve(ctx context.Context, request *models.AdviserRequest) error
	Reject(ctx context.Context, id string) error
}

type adviserResearchReader interface {
	FindByID(ctx context.Context, id string) (*models.ResearchDetail, error)
	ListUnassigned(ctx context.Context) ([]models.ResearchDetail, error)
}

type adviserInstructorReader interface {
	CountAll(ctx context.Context) (int, error)
	CountWithRole(ctx context.Context, role string) (int, error)
}

// AdviserService implements the adviser-request workflow: instructors
// volunteer for unclaimed research, admins decide.
type AdviserService struct {
	requests      adviserRequestRepository
	research      adviserResearchReader
	instructors   adviserInstructorReader
	notifications notificationDispatcher
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAdviserService constructs an AdviserService.
func NewAdviserService(requests adviserRequestRepository, research adviserResearchReader, instructors adviserInstructorReader, notifications notificationDispatcher, validate *validator.Validate, logger *zap.Logger) *AdviserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AdviserService{
		requests:      requests,
		research:      research,
		instructors:   instructors,
		notifications: notifications,
		validator:     validate,
		logger:        logger,
	}
}

// SubmitRequest files a pending request. Title and instructor identity are
// snapshotted so the deciding admin sees what existed at submission time.
func (s *AdviserService) SubmitRequest(ctx context.Context, claims *models.JWTClaims, req models.CreateAdviserRequestRequest) (*models.AdviserRequest, error) {
	if claims.Kind != models.KindInstructor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only instructors request advisership")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	detail, err := s.research.FindByID(ctx, req.ResearchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "research not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load research")
	}
	if detail.AdviserID != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "research already has an adviser")
	}

	pending, err := s.requests.ExistsPending(ctx, req.ResearchID, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending requests")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a pending request for this research already exists")
	}

	request := &models.AdviserRequest{
		ResearchID:      detail.ID,
		ResearchTitle:   detail.Title,
		InstructorID:    claims.UserID,
		InstructorName:  claims.Name,
		InstructorEmail: claims.Email,
		Message:         req.Message,
		Status:          models.RequestPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}

	s.logger.Info("adviser request filed",
		zap.String("request_id", request.ID),
		zap.String("research_id", detail.ID),
		zap.String("instructor_id", claims.UserID))

	return request, nil
}

// Decide applies an admin decision. Approval assigns the adviser, grants the
// capability, and force-rejects competitors in one transaction; when the
// research gained an adviser since the request was filed the decision is
// refused and the request stays pending.
func (s *AdviserService) Decide(ctx context.Context, id string, req models.DecideAdviserRequestRequest) (*models.AdviserRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "adviser request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if request.Status != models.RequestPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request has already been decided")
	}

	if req.Status == models.RequestApproved {
		if err := s.requests.Approve(ctx, request); err != nil {
			switch {
			case errors.Is(err, repository.ErrAdviserAssigned):
				return nil, appErrors.Clone(appErrors.ErrConflict, "research already has an adviser")
			case errors.Is(err, repository.ErrRequestDecided):
				return nil, appErrors.Clone(appErrors.ErrConflict, "request has already been decided")
			default:
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve request")
			}
		}
		request.Status = models.RequestApproved
	} else {
		if err := s.requests.Reject(ctx, request.ID); err != nil {
			if errors.Is(err, repository.ErrRequestDecided) {
				return nil, appErrors.Clone(appErrors.ErrConflict, "request has already been decided")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject request")
		}
		request.Status = models.RequestRejected
	}

	s.logger.Info("adviser request decided",
		zap.String("request_id", request.ID),
		zap.String("status", string(request.Status)))

	s.notifications.Dispatch(ctx, &models.Notification{
		RecipientID:   request.InstructorID,
		RecipientKind: models.KindInstructor,
		Message:       fmt.Sprintf("Your adviser request for \"%s\" was %s", request.ResearchTitle, request.Status),
		Type:          models.NotifyTeamRequestResponse,
		RelatedData: RelatedPayload(map[string]interface{}{
			"request_id":  request.ID,
			"research_id": request.ResearchID,
			"title":       request.ResearchTitle,
			"status":      string(request.Status),
		}),
	})

	return request, nil
}

// ListOwn returns the calling instructor's requests.
func (s *AdviserService) ListOwn(ctx context.Context, claims *models.JWTClaims) ([]models.AdviserRequest, error) {
	requests, err := s.requests.ListByInstructor(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	if requests == nil {
		requests = []models.AdviserRequest{}
	}
	return requests, nil
}

// ListAll returns every request. Admin surface.
func (s *AdviserService) ListAll(ctx context.Context) ([]models.AdviserRequest, error) {
	requests, err := s.requests.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	if requests == nil {
		requests = []models.AdviserRequest{}
	}
	return requests, nil
}

// Stats summarizes the request queue for the admin dashboard.
func (s *AdviserService) Stats(ctx context.Context) (*models.AdviserRequestStats, error) {
	total, err := s.instructors.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count instructors")
	}
	advisers, err := s.instructors.CountWithRole(ctx, models.RoleAdviser)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count advisers")
	}
	pending, err := s.requests.CountPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending requests")
	}

	return &models.AdviserRequestStats{
		TotalInstructors: total,
		TotalAdvisers:    advisers,
		PendingRequests:  pending,
	}, nil
}

// ListAvailableResearch returns non-archived research with no adviser.
func (s *AdviserService) ListAvailableResearch(ctx context.Context) ([]models.ResearchDetail, error) {
	items, err := s.research.ListUnassigned(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available research")
	}
	if items == nil {
		items = []models.ResearchDetail{}
	}
	return items, nil
}
