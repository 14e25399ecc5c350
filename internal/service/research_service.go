package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-ris/ris-api/internal/models"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
)

type researchRepository interface {
	List(ctx context.Context, filter models.ResearchFilter) ([]models.ResearchDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ResearchDetail, error)
	ListByStudentNumber(ctx context.Context, studentNumber string) ([]models.ResearchDetail, error)
	Create(ctx context.Context, research *models.Research) error
	UpdateStatus(ctx context.Context, id string, status models.ResearchStatus, comments *string) error
	UpdateArtifact(ctx context.Context, research *models.Research) error
	SetArchived(ctx context.Context, id string, archived bool) error
}

type researchStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type notificationDispatcher interface {
	Dispatch(ctx context.Context, notification *models.Notification)
}

type downloadSigner interface {
	Generate(researchID, fileRef string) (string, time.Time, error)
	Parse(token string) (researchID, fileRef string, expiresAt time.Time, err error)
}

// ResearchConfig governs review policy.
type ResearchConfig struct {
	// AllowReReview permits moving an Accepted or Rejected submission back
	// through the review cycle. When false those states are terminal.
	AllowReReview bool
}

// ResearchService implements the submission and review workflow.
type ResearchService struct {
	repo          researchRepository
	students      researchStudentReader
	notifications notificationDispatcher
	signer        downloadSigner
	validator     *validator.Validate
	logger        *zap.Logger
	config        ResearchConfig
}

// NewResearchService constructs a ResearchService.
func NewResearchService(repo researchRepository, students researchStudentReader, notifications notificationDispatcher, signer downloadSigner, validate *validator.Validate, logger *zap.Logger, config ResearchConfig) *ResearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ResearchService{
		repo:          repo,
		students:      students,
		notifications: notifications,
		signer:        signer,
		validator:     validate,
		logger:        logger,
		config:        config,
	}
}

// Submit registers a new research artifact owned by the calling student and
// notifies the managing instructor when one exists.
func (s *ResearchService) Submit(ctx context.Context, claims *models.JWTClaims, req models.SubmitResearchRequest) (*models.Research, error) {
	if claims.Kind != models.KindStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students submit research")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid research payload")
	}

	student, err := s.students.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	research := &models.Research{
		StudentNumber:  student.StudentNumber,
		StudentID:      student.ID,
		Title:          req.Title,
		Abstract:       req.Abstract,
		Authors:        req.Authors,
		Keywords:       req.Keywords,
		FileRef:        req.FileRef,
		ExternalFileID: optionalString(req.ExternalFileID),
		Status:         models.StatusPending,
	}
	if err := s.repo.Create(ctx, research); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create research")
	}

	s.logger.Info("research submitted",
		zap.String("research_id", research.ID),
		zap.String("student_number", student.StudentNumber))

	if student.ManagedBy != nil {
		s.notifications.Dispatch(ctx, &models.Notification{
			RecipientID:   *student.ManagedBy,
			RecipientKind: models.KindInstructor,
			Message:       fmt.Sprintf("%s submitted \"%s\" for review", student.Name, research.Title),
			Type:          models.NotifyResearchSubmission,
			RelatedData: RelatedPayload(map[string]interface{}{
				"research_id": research.ID,
				"title":       research.Title,
			}),
		})
	}

	return research, nil
}

// Get returns a research detail visible to the caller: the owning student,
// the assigned adviser, the managing instructor, or any admin.
func (s *ResearchService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.ResearchDetail, error) {
	detail, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReadAccess(ctx, claims, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// List returns research details matching the filter. Admin surface.
func (s *ResearchService) List(ctx context.Context, filter models.ResearchFilter) ([]models.ResearchDetail, int, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list research")
	}
	if items == nil {
		items = []models.ResearchDetail{}
	}
	return items, total, nil
}

// ListOwn returns the calling student's submissions.
func (s *ResearchService) ListOwn(ctx context.Context, claims *models.JWTClaims) ([]models.ResearchDetail, error) {
	student, err := s.students.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	items, err := s.repo.ListByStudentNumber(ctx, student.StudentNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list research")
	}
	if items == nil {
		items = []models.ResearchDetail{}
	}
	return items, nil
}

// Update lets the owning student edit the artifact while it is editable.
// A resubmission out of Revision resets the status to Pending.
func (s *ResearchService) Update(ctx context.Context, claims *models.JWTClaims, id string, req models.UpdateResearchRequest) (*models.Research, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid research payload")
	}

	detail, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.StudentID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owning student may edit a submission")
	}
	if !detail.CanEdit() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "submission is not editable in its current status")
	}

	research := detail.Research
	research.Title = req.Title
	research.Abstract = req.Abstract
	research.Authors = req.Authors
	research.Keywords = req.Keywords
	if req.FileRef != "" {
		research.FileRef = req.FileRef
		research.ExternalFileID = optionalString(req.ExternalFileID)
		research.UploadedAt = time.Now().UTC()
	}
	research.Status = models.StatusPending

	if err := s.repo.UpdateArtifact(ctx, &research); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "research not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update research")
	}

	s.logger.Info("research resubmitted", zap.String("research_id", research.ID))
	return &research, nil
}

// UpdateStatus applies a review decision. Only the assigned adviser or an
// admin may decide, and finalized reviews reopen only when policy allows.
func (s *ResearchService) UpdateStatus(ctx context.Context, claims *models.JWTClaims, id string, req models.ResearchStatusRequest) (*models.ResearchDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !models.ValidResearchStatus(req.Status) || req.Status == models.StatusPending {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported review status")
	}

	detail, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canReview(claims, detail) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to review this submission")
	}

	if (detail.Status == models.StatusAccepted || detail.Status == models.StatusRejected) && !s.config.AllowReReview {
		return nil, appErrors.Clone(appErrors.ErrConflict, "review decision is final")
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, req.Comments); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "research not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}

	s.logger.Info("research status changed",
		zap.String("research_id", id),
		zap.String("status", string(req.Status)),
		zap.String("reviewer_id", claims.UserID))

	s.notifyStatusChange(ctx, detail, req)

	detail.Status = req.Status
	detail.Comments = req.Comments
	return detail, nil
}

// SetArchived flips the archive flag. Submissions are never hard-deleted.
func (s *ResearchService) SetArchived(ctx context.Context, id string, archived bool) error {
	if err := s.repo.SetArchived(ctx, id, archived); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "research not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive research")
	}
	return nil
}

// GenerateDownloadToken issues a short-lived signed token for the artifact.
func (s *ResearchService) GenerateDownloadToken(ctx context.Context, claims *models.JWTClaims, id string) (string, time.Time, error) {
	detail, err := s.findDetail(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.checkReadAccess(ctx, claims, detail); err != nil {
		return "", time.Time{}, err
	}

	token, expiresAt, err := s.signer.Generate(detail.ID, detail.FileRef)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	return token, expiresAt, nil
}

// ResolveDownload validates a signed token against the research item and
// returns the artifact reference to stream.
func (s *ResearchService) ResolveDownload(ctx context.Context, id, token string) (string, error) {
	researchID, fileRef, _, err := s.signer.Parse(token)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	if researchID != id {
		return "", appErrors.Clone(appErrors.ErrForbidden, "token does not match this research item")
	}
	return fileRef, nil
}

func (s *ResearchService) findDetail(ctx context.Context, id string) (*models.ResearchDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "research not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load research")
	}
	return detail, nil
}

func (s *ResearchService) canReview(claims *models.JWTClaims, detail *models.ResearchDetail) bool {
	if claims.IsAdmin() {
		return true
	}
	if claims.Kind == models.KindInstructor && detail.AdviserID != nil && *detail.AdviserID == claims.UserID {
		return true
	}
	return false
}

func (s *ResearchService) checkReadAccess(ctx context.Context, claims *models.JWTClaims, detail *models.ResearchDetail) error {
	if claims.IsAdmin() {
		return nil
	}
	if claims.Kind == models.KindStudent && detail.StudentID == claims.UserID {
		return nil
	}
	if claims.Kind == models.KindInstructor {
		if detail.AdviserID != nil && *detail.AdviserID == claims.UserID {
			return nil
		}
		student, err := s.students.FindByID(ctx, detail.StudentID)
		if err == nil && student.ManagedBy != nil && *student.ManagedBy == claims.UserID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not authorized to view this submission")
}

func (s *ResearchService) notifyStatusChange(ctx context.Context, detail *models.ResearchDetail, req models.ResearchStatusRequest) {
	var (
		notifyType models.NotificationType
		message    string
	)
	switch req.Status {
	case models.StatusAccepted:
		notifyType = models.NotifyResearchAccepted
		message = fmt.Sprintf("Your research \"%s\" has been accepted", detail.Title)
	case models.StatusRejected:
		notifyType = models.NotifyResearchRejected
		message = fmt.Sprintf("Your research \"%s\" has been rejected", detail.Title)
	default:
		notifyType = models.NotifyGeneral
		message = fmt.Sprintf("Your research \"%s\" needs revision", detail.Title)
	}

	related := map[string]interface{}{
		"research_id": detail.ID,
		"title":       detail.Title,
		"status":      string(req.Status),
	}
	if req.Comments != nil {
		related["note"] = *req.Comments
	}

	s.notifications.Dispatch(ctx, &models.Notification{
		RecipientID:   detail.StudentID,
		RecipientKind: models.KindStudent,
		Message:       message,
		Type:          notifyType,
		RelatedData:   RelatedPayload(related),
	})
}

// optionalString maps an empty form value to NULL.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
