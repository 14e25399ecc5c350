package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-ris/ris-api/internal/models"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
)

type authAdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
}

type authStudentRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

type authInstructorRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Instructor, error)
	Create(ctx context.Context, instructor *models.Instructor) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string

	// Fixed credential that bypasses the admin store entirely.
	SuperAdminEmail    string
	SuperAdminPassword string

	// First-sight signup policy for federated logins.
	AllowStudentSignup    bool
	AllowInstructorSignup bool
	SignupEmailDomain     string
}

// AuthService provides the authentication gate: admin password login,
// federated student/instructor login, and token validation.
type AuthService struct {
	admins      authAdminRepository
	students    authStudentRepository
	instructors authInstructorRepository
	validator   *validator.Validate
	logger      *zap.Logger
	config      AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(admins authAdminRepository, students authStudentRepository, instructors authInstructorRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{admins: admins, students: students, instructors: instructors, validator: validate, logger: logger, config: config}
}

// AdminLogin authenticates an admin by email and password. A correct
// password against an inactive account is still refused, with Forbidden
// rather than InvalidCredentials so the caller can tell the cases apart.
func (s *AuthService) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	if s.config.SuperAdminEmail != "" && strings.EqualFold(req.Email, s.config.SuperAdminEmail) {
		return s.superAdminLogin(req)
	}

	admin, err := s.admins.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	if !admin.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account has been deactivated")
	}

	claims := &models.JWTClaims{
		UserID:      admin.ID,
		Kind:        models.KindAdmin,
		Role:        admin.Role,
		Permissions: admin.Permissions,
		Email:       admin.Email,
		Name:        admin.Name,
	}
	token, expiresAt, err := s.signToken(claims)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("admin logged in", zap.String("admin_id", admin.ID))

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		IssuedAt:    time.Now().UTC(),
		Account: models.AccountInfo{
			ID:          admin.ID,
			Kind:        models.KindAdmin,
			Name:        admin.Name,
			Email:       admin.Email,
			Role:        admin.Role,
			Permissions: admin.Permissions,
		},
	}, nil
}

func (s *AuthService) superAdminLogin(req models.AdminLoginRequest) (*models.LoginResponse, error) {
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.config.SuperAdminPassword)) != 1 {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	claims := &models.JWTClaims{
		UserID: "superadmin",
		Kind:   models.KindAdmin,
		Role:   models.AdminRoleSuperAdmin,
		Email:  s.config.SuperAdminEmail,
		Name:   "Super Admin",
	}
	token, expiresAt, err := s.signToken(claims)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("super admin logged in")

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		IssuedAt:    time.Now().UTC(),
		Account: models.AccountInfo{
			ID:    "superadmin",
			Kind:  models.KindAdmin,
			Name:  "Super Admin",
			Email: s.config.SuperAdminEmail,
			Role:  models.AdminRoleSuperAdmin,
		},
	}, nil
}

// FederatedLogin exchanges a collaborator-verified identity for an internal
// account and token. On first sight the account is created when the signup
// policy allows it.
func (s *AuthService) FederatedLogin(ctx context.Context, req models.FederatedLoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	switch req.Kind {
	case models.KindStudent:
		return s.federatedStudentLogin(ctx, req)
	case models.KindInstructor:
		return s.federatedInstructorLogin(ctx, req)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported account kind")
	}
}

func (s *AuthService) federatedStudentLogin(ctx context.Context, req models.FederatedLoginRequest) (*models.LoginResponse, error) {
	student, err := s.students.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
		}
		if !s.config.AllowStudentSignup {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student signup is disabled")
		}
		if err := s.checkSignupDomain(req.Email); err != nil {
			return nil, err
		}
		student = &models.Student{
			StudentNumber: studentNumberFromEmail(req.Email),
			Name:          req.DisplayName,
			Email:         req.Email,
			GoogleUID:     &req.ExternalUID,
		}
		if err := s.students.Create(ctx, student); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student account")
		}
		s.logger.Info("student account created on first login", zap.String("student_id", student.ID))
	}

	if student.Archived {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account has been archived")
	}

	claims := &models.JWTClaims{
		UserID: student.ID,
		Kind:   models.KindStudent,
		Email:  student.Email,
		Name:   student.Name,
	}
	token, expiresAt, err := s.signToken(claims)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		IssuedAt:    time.Now().UTC(),
		Account: models.AccountInfo{
			ID:    student.ID,
			Kind:  models.KindStudent,
			Name:  student.Name,
			Email: student.Email,
		},
	}, nil
}

func (s *AuthService) federatedInstructorLogin(ctx context.Context, req models.FederatedLoginRequest) (*models.LoginResponse, error) {
	instructor, err := s.instructors.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch instructor")
		}
		if !s.config.AllowInstructorSignup {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "instructor signup is disabled")
		}
		if err := s.checkSignupDomain(req.Email); err != nil {
			return nil, err
		}
		instructor = &models.Instructor{
			Name:      req.DisplayName,
			Email:     req.Email,
			GoogleUID: &req.ExternalUID,
		}
		if err := s.instructors.Create(ctx, instructor); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor account")
		}
		s.logger.Info("instructor account created on first login", zap.String("instructor_id", instructor.ID))
	}

	if instructor.Archived {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account has been archived")
	}

	claims := &models.JWTClaims{
		UserID: instructor.ID,
		Kind:   models.KindInstructor,
		Roles:  instructor.RoleSet(),
		Email:  instructor.Email,
		Name:   instructor.Name,
	}
	token, expiresAt, err := s.signToken(claims)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		IssuedAt:    time.Now().UTC(),
		Account: models.AccountInfo{
			ID:    instructor.ID,
			Kind:  models.KindInstructor,
			Name:  instructor.Name,
			Email: instructor.Email,
			Roles: instructor.RoleSet(),
		},
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) signToken(claims *models.JWTClaims) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.config.Issuer,
		Subject:   claims.UserID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) checkSignupDomain(email string) error {
	if s.config.SignupEmailDomain == "" {
		return nil
	}
	if !strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(s.config.SignupEmailDomain)) {
		return appErrors.Clone(appErrors.ErrForbidden, "email domain is not allowed to sign up")
	}
	return nil
}

// studentNumberFromEmail derives a provisional student number from the email
// local part. The registrar-assigned number replaces it on profile update.
func studentNumberFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
