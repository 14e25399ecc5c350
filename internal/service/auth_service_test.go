package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-ris/ris-api/internal/models"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
)

type mockAdminRepo struct {
	adminByEmail *models.Admin
}

func (m *mockAdminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if m.adminByEmail == nil || m.adminByEmail.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.adminByEmail, nil
}

func (m *mockAdminRepo) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if m.adminByEmail == nil || m.adminByEmail.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.adminByEmail, nil
}

type mockStudentAuthRepo struct {
	studentByEmail *models.Student
	created        *models.Student
}

func (m *mockStudentAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	if m.studentByEmail == nil || m.studentByEmail.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.studentByEmail, nil
}

func (m *mockStudentAuthRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = "stu-new"
	m.created = student
	return nil
}

type mockInstructorAuthRepo struct {
	instructorByEmail *models.Instructor
	created           *models.Instructor
}

func (m *mockInstructorAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	if m.instructorByEmail == nil || m.instructorByEmail.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.instructorByEmail, nil
}

func (m *mockInstructorAuthRepo) Create(ctx context.Context, instructor *models.Instructor) error {
	instructor.ID = "ins-new"
	m.created = instructor
	return nil
}

func newAuthService(admins *mockAdminRepo, students *mockStudentAuthRepo, instructors *mockInstructorAuthRepo, cfg AuthConfig) *AuthService {
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = "secret"
	}
	if cfg.TokenExpiry == 0 {
		cfg.TokenExpiry = time.Hour
	}
	return NewAuthService(admins, students, instructors, validator.New(), zap.NewNop(), cfg)
}

func TestAuthServiceAdminLoginSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	admins := &mockAdminRepo{adminByEmail: &models.Admin{
		ID: "adm-1", Email: "admin@example.edu", PasswordHash: string(hash),
		Role: models.AdminRoleAdmin, Active: true,
		Permissions: []string{models.PermManageResearch},
	}}
	svc := newAuthService(admins, &mockStudentAuthRepo{}, &mockInstructorAuthRepo{}, AuthConfig{})

	res, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Email: "admin@example.edu", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, models.KindAdmin, res.Account.Kind)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "adm-1", claims.UserID)
	assert.True(t, claims.HasPermission(models.PermManageResearch))
	assert.False(t, claims.HasPermission(models.PermManageAccounts))
}

func TestAuthServiceAdminLoginInactive(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	admins := &mockAdminRepo{adminByEmail: &models.Admin{
		ID: "adm-1", Email: "admin@example.edu", PasswordHash: string(hash), Active: false,
	}}
	svc := newAuthService(admins, &mockStudentAuthRepo{}, &mockInstructorAuthRepo{}, AuthConfig{})

	_, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Email: "admin@example.edu", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
	assert.Equal(t, 403, appErr.Status)
}

func TestAuthServiceAdminLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	admins := &mockAdminRepo{adminByEmail: &models.Admin{
		ID: "adm-1", Email: "admin@example.edu", PasswordHash: string(hash), Active: true,
	}}
	svc := newAuthService(admins, &mockStudentAuthRepo{}, &mockInstructorAuthRepo{}, AuthConfig{})

	_, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Email: "admin@example.edu", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceSuperAdminLogin(t *testing.T) {
	svc := newAuthService(&mockAdminRepo{}, &mockStudentAuthRepo{}, &mockInstructorAuthRepo{}, AuthConfig{
		SuperAdminEmail:    "root@example.edu",
		SuperAdminPassword: "rootpass",
	})

	res, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Email: "root@example.edu", Password: "rootpass"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsSuperAdmin())
	assert.True(t, claims.HasPermission(models.PermManageAccounts))

	_, err = svc.AdminLogin(context.Background(), models.AdminLoginRequest{Email: "root@example.edu", Password: "bad"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceFederatedLoginExisting(t *testing.T) {
	students := &mockStudentAuthRepo{studentByEmail: &models.Student{
		ID: "stu-1", StudentNumber: "2021-00123", Name: "Ana Cruz", Email: "ana@example.edu",
	}}
	svc := newAuthService(&mockAdminRepo{}, students, &mockInstructorAuthRepo{}, AuthConfig{})

	res, err := svc.FederatedLogin(context.Background(), models.FederatedLoginRequest{
		Kind: models.KindStudent, DisplayName: "Ana Cruz", Email: "ana@example.edu", ExternalUID: "uid-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "stu-1", res.Account.ID)
	assert.Nil(t, students.created)
}

func TestAuthServiceFederatedFirstSightSignup(t *testing.T) {
	students := &mockStudentAuthRepo{}
	svc := newAuthService(&mockAdminRepo{}, students, &mockInstructorAuthRepo{}, AuthConfig{
		AllowStudentSignup: true,
		SignupEmailDomain:  "example.edu",
	})

	res, err := svc.FederatedLogin(context.Background(), models.FederatedLoginRequest{
		Kind: models.KindStudent, DisplayName: "Ben Uy", Email: "ben@example.edu", ExternalUID: "uid-2",
	})
	require.NoError(t, err)
	require.NotNil(t, students.created)
	assert.Equal(t, "ben", students.created.StudentNumber)
	assert.Equal(t, res.Account.ID, students.created.ID)
}

func TestAuthServiceFederatedSignupDisabled(t *testing.T) {
	svc := newAuthService(&mockAdminRepo{}, &mockStudentAuthRepo{}, &mockInstructorAuthRepo{}, AuthConfig{})

	_, err := svc.FederatedLogin(context.Background(), models.FederatedLoginRequest{
		Kind: models.KindStudent, DisplayName: "Ben Uy", Email: "ben@example.edu", ExternalUID: "uid-2",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceFederatedSignupWrongDomain(t *testing.T) {
	svc := newAuthService(&mockAdminRepo{}, &mockStudentAuthRepo{}, &mockInstructorAuthRepo{}, AuthConfig{
		AllowStudentSignup: true,
		SignupEmailDomain:  "example.edu",
	})

	_, err := svc.FederatedLogin(context.Background(), models.FederatedLoginRequest{
		Kind: models.KindStudent, DisplayName: "Ben Uy", Email: "ben@gmail.com", ExternalUID: "uid-2",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceFederatedArchivedAccount(t *testing.T) {
	instructors := &mockInstructorAuthRepo{instructorByEmail: &models.Instructor{
		ID: "ins-1", Name: "Dr. Reyes", Email: "reyes@example.edu", Archived: true,
	}}
	svc := newAuthService(&mockAdminRepo{}, &mockStudentAuthRepo{}, instructors, AuthConfig{})

	_, err := svc.FederatedLogin(context.Background(), models.FederatedLoginRequest{
		Kind: models.KindInstructor, DisplayName: "Dr. Reyes", Email: "reyes@example.edu", ExternalUID: "uid-3",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}
