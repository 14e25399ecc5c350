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

type managedStudentRepository interface {
	List(ctx context.Context, filter repository.StudentFilter) ([]models.Student, int, error)
	AssignManager(ctx context.Context, studentNumber, section, instructorID string) (*models.Student, error)
	ClearManager(ctx context.Context, studentNumber, instructorID string) error
}

type managedResearchReader interface {
	ListByManagingInstructor(ctx context.Context, instructorID string) ([]models.ResearchDetail, error)
}

// StudentService implements the instructor-facing roster: claiming students
// into a section and reading their submissions.
type StudentService struct {
	students      managedStudentRepository
	research      managedResearchReader
	notifications notificationDispatcher
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(students managedStudentRepository, research managedResearchReader, notifications notificationDispatcher, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{
		students:      students,
		research:      research,
		notifications: notifications,
		validator:     validate,
		logger:        logger,
	}
}

// AddManagedStudent claims a student into the calling instructor's section.
// A student belongs to at most one instructor; claiming an already-managed
// student is refused even when the caller is the current manager.
func (s *StudentService) AddManagedStudent(ctx context.Context, claims *models.JWTClaims, req models.AddManagedStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	student, err := s.students.AssignManager(ctx, req.StudentNumber, req.Section, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		case errors.Is(err, repository.ErrAlreadyManaged):
			return nil, appErrors.Clone(appErrors.ErrConflict, "student is already managed by an instructor")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add student")
		}
	}

	s.logger.Info("student claimed",
		zap.String("student_number", req.StudentNumber),
		zap.String("instructor_id", claims.UserID))

	s.notifications.Dispatch(ctx, &models.Notification{
		RecipientID:   student.ID,
		RecipientKind: models.KindStudent,
		Message:       fmt.Sprintf("%s added you to section %s", claims.Name, req.Section),
		Type:          models.NotifyGeneral,
		RelatedData: RelatedPayload(map[string]interface{}{
			"instructor_id": claims.UserID,
			"section":       req.Section,
		}),
	})

	return student, nil
}

// RemoveManagedStudent releases a student from the caller's roster. Removing
// a student the caller does not manage is refused.
func (s *StudentService) RemoveManagedStudent(ctx context.Context, claims *models.JWTClaims, studentNumber string) error {
	if err := s.students.ClearManager(ctx, studentNumber, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrNotManaged) {
			return appErrors.Clone(appErrors.ErrForbidden, "student is not managed by you")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove student")
	}

	s.logger.Info("student released",
		zap.String("student_number", studentNumber),
		zap.String("instructor_id", claims.UserID))
	return nil
}

// ListManagedStudents returns the caller's roster.
func (s *StudentService) ListManagedStudents(ctx context.Context, claims *models.JWTClaims, search string) ([]models.Student, error) {
	archived := false
	students, _, err := s.students.List(ctx, repository.StudentFilter{
		Search:    search,
		Archived:  &archived,
		ManagedBy: claims.UserID,
		PageSize:  100,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// ListManagedSubmissions returns submissions belonging to the caller's
// roster. The scope is strict: no other students' work is visible here.
func (s *StudentService) ListManagedSubmissions(ctx context.Context, claims *models.JWTClaims) ([]models.ResearchDetail, error) {
	items, err := s.research.ListByManagingInstructor(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	if items == nil {
		items = []models.ResearchDetail{}
	}
	return items, nil
}
