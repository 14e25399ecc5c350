package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/repository"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
)

type mockManagedStudentRepo struct {
	assignResult *models.Student
	assignErr    error
	clearErr     error
	listed       repository.StudentFilter
}

func (m *mockManagedStudentRepo) List(ctx context.Context, filter repository.StudentFilter) ([]models.Student, int, error) {
	m.listed = filter
	return []models.Student{}, 0, nil
}

func (m *mockManagedStudentRepo) AssignManager(ctx context.Context, studentNumber, section, instructorID string) (*models.Student, error) {
	if m.assignErr != nil {
		return nil, m.assignErr
	}
	return m.assignResult, nil
}

func (m *mockManagedStudentRepo) ClearManager(ctx context.Context, studentNumber, instructorID string) error {
	return m.clearErr
}

type mockManagedResearchReader struct{}

func (mockManagedResearchReader) ListByManagingInstructor(ctx context.Context, instructorID string) ([]models.ResearchDetail, error) {
	return nil, nil
}

func newStudentService(students *mockManagedStudentRepo, dispatcher *capturingDispatcher) *StudentService {
	return NewStudentService(students, mockManagedResearchReader{}, dispatcher, validator.New(), zap.NewNop())
}

func TestStudentServiceAddManagedStudent(t *testing.T) {
	students := &mockManagedStudentRepo{assignResult: managedStudent()}
	dispatcher := &capturingDispatcher{}
	svc := newStudentService(students, dispatcher)

	student, err := svc.AddManagedStudent(context.Background(), instructorClaims("ins-1"), models.AddManagedStudentRequest{
		StudentNumber: "2021-00123", Section: "A",
	})
	require.NoError(t, err)
	assert.Equal(t, "2021-00123", student.StudentNumber)

	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, student.ID, dispatcher.sent[0].RecipientID)
	assert.Equal(t, models.KindStudent, dispatcher.sent[0].RecipientKind)
}

func TestStudentServiceAddManagedStudentAlreadyManaged(t *testing.T) {
	students := &mockManagedStudentRepo{assignErr: repository.ErrAlreadyManaged}
	svc := newStudentService(students, &capturingDispatcher{})

	_, err := svc.AddManagedStudent(context.Background(), instructorClaims("ins-2"), models.AddManagedStudentRequest{
		StudentNumber: "2021-00123", Section: "B",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceAddManagedStudentUnknown(t *testing.T) {
	students := &mockManagedStudentRepo{assignErr: sql.ErrNoRows}
	svc := newStudentService(students, &capturingDispatcher{})

	_, err := svc.AddManagedStudent(context.Background(), instructorClaims("ins-1"), models.AddManagedStudentRequest{
		StudentNumber: "9999-99999", Section: "A",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceRemoveNotManaged(t *testing.T) {
	students := &mockManagedStudentRepo{clearErr: repository.ErrNotManaged}
	svc := newStudentService(students, &capturingDispatcher{})

	err := svc.RemoveManagedStudent(context.Background(), instructorClaims("ins-9"), "2021-00123")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceListScopesToCaller(t *testing.T) {
	students := &mockManagedStudentRepo{}
	svc := newStudentService(students, &capturingDispatcher{})

	_, err := svc.ListManagedStudents(context.Background(), instructorClaims("ins-1"), "")
	require.NoError(t, err)
	assert.Equal(t, "ins-1", students.listed.ManagedBy)
	require.NotNil(t, students.listed.Archived)
	assert.False(t, *students.listed.Archived)
}
