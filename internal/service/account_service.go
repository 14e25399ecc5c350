package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/repository"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
)

type accountStudentRepository interface {
	List(ctx context.Context, filter repository.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateProfile(ctx context.Context, id, name, email, course string) error
	SetArchived(ctx context.Context, id string, archived bool) error
}

type accountInstructorRepository interface {
	List(ctx context.Context, search string, archived *bool) ([]models.Instructor, error)
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
	UpdateProfile(ctx context.Context, id, name, email string) error
	SetArchived(ctx context.Context, id string, archived bool) error
}

type accountAdminRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, admin *models.Admin) error
	List(ctx context.Context) ([]models.Admin, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetPermissions(ctx context.Context, id string, permissions []string) error
}

// AccountService implements the admin account surface and self-service
// profiles. Accounts are archived, never deleted.
type AccountService struct {
	students    accountStudentRepository
	instructors accountInstructorRepository
	admins      accountAdminRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAccountService constructs an AccountService.
func NewAccountService(students accountStudentRepository, instructors accountInstructorRepository, admins accountAdminRepository, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccountService{
		students:    students,
		instructors: instructors,
		admins:      admins,
		validator:   validate,
		logger:      logger,
	}
}

// ListStudents returns students for the admin account surface.
func (s *AccountService) ListStudents(ctx context.Context, filter repository.StudentFilter) ([]models.Student, int, error) {
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, total, nil
}

// GetStudent fetches one student account.
func (s *AccountService) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// SetStudentArchived flips the student's archive flag.
func (s *AccountService) SetStudentArchived(ctx context.Context, id string, archived bool) error {
	if err := s.students.SetArchived(ctx, id, archived); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive student")
	}
	s.logger.Info("student archive flag set", zap.String("student_id", id), zap.Bool("archived", archived))
	return nil
}

// ListInstructors returns instructors for the admin account surface.
func (s *AccountService) ListInstructors(ctx context.Context, search string, archived *bool) ([]models.Instructor, error) {
	instructors, err := s.instructors.List(ctx, search, archived)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	if instructors == nil {
		instructors = []models.Instructor{}
	}
	return instructors, nil
}

// GetInstructor fetches one instructor account.
func (s *AccountService) GetInstructor(ctx context.Context, id string) (*models.Instructor, error) {
	instructor, err := s.instructors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return instructor, nil
}

// SetInstructorArchived flips the instructor's archive flag.
func (s *AccountService) SetInstructorArchived(ctx context.Context, id string, archived bool) error {
	if err := s.instructors.SetArchived(ctx, id, archived); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive instructor")
	}
	s.logger.Info("instructor archive flag set", zap.String("instructor_id", id), zap.Bool("archived", archived))
	return nil
}

// UpdateProfile applies a self-service profile edit for the calling student
// or instructor.
func (s *AccountService) UpdateProfile(ctx context.Context, claims *models.JWTClaims, req models.UpdateProfileRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	var err error
	switch claims.Kind {
	case models.KindStudent:
		err = s.students.UpdateProfile(ctx, claims.UserID, req.Name, req.Email, req.Course)
	case models.KindInstructor:
		err = s.instructors.UpdateProfile(ctx, claims.UserID, req.Name, req.Email)
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "profile editing is for students and instructors")
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return nil
}

// Profile returns the calling account's profile.
func (s *AccountService) Profile(ctx context.Context, claims *models.JWTClaims) (*models.AccountInfo, error) {
	switch claims.Kind {
	case models.KindStudent:
		student, err := s.GetStudent(ctx, claims.UserID)
		if err != nil {
			return nil, err
		}
		return &models.AccountInfo{ID: student.ID, Kind: models.KindStudent, Name: student.Name, Email: student.Email}, nil
	case models.KindInstructor:
		instructor, err := s.GetInstructor(ctx, claims.UserID)
		if err != nil {
			return nil, err
		}
		return &models.AccountInfo{ID: instructor.ID, Kind: models.KindInstructor, Name: instructor.Name, Email: instructor.Email, Roles: instructor.RoleSet()}, nil
	default:
		return &models.AccountInfo{ID: claims.UserID, Kind: claims.Kind, Name: claims.Name, Email: claims.Email, Role: claims.Role, Permissions: claims.Permissions}, nil
	}
}

// CreateAdmin provisions a new admin account. Superadmin surface.
func (s *AccountService) CreateAdmin(ctx context.Context, req models.CreateAdminRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin payload")
	}

	exists, err := s.admins.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admin email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an admin with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	admin := &models.Admin{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.AdminRoleAdmin,
		Active:       true,
		Permissions:  req.Permissions,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}

	s.logger.Info("admin account created", zap.String("admin_id", admin.ID))
	return admin, nil
}

// ListAdmins returns every admin account. Superadmin surface.
func (s *AccountService) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
	}
	if admins == nil {
		admins = []models.Admin{}
	}
	return admins, nil
}

// SetAdminActive toggles an admin account. Superadmin surface.
func (s *AccountService) SetAdminActive(ctx context.Context, id string, active bool) error {
	if err := s.admins.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update admin")
	}
	s.logger.Info("admin active flag set", zap.String("admin_id", id), zap.Bool("active", active))
	return nil
}

// SetAdminPermissions replaces an admin's permission set. Superadmin surface.
func (s *AccountService) SetAdminPermissions(ctx context.Context, id string, req models.UpdateAdminPermissionsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid permissions payload")
	}
	if err := s.admins.SetPermissions(ctx, id, req.Permissions); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update permissions")
	}
	s.logger.Info("admin permissions updated", zap.String("admin_id", id))
	return nil
}
