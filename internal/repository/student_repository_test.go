package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_number", "name", "email", "course", "section", "managed_by", "google_uid", "archived", "created_at", "updated_at"}).
		AddRow("stu-1", "2021-00123", "Ana Cruz", "ana@example.edu", "BSIT", nil, nil, nil, false, time.Now(), time.Now())
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT id, student_number, name, email, course, section, managed_by, google_uid, archived, created_at, updated_at FROM students WHERE 1=1 AND managed_by = ").
		WithArgs("ins-1").
		WillReturnRows(studentRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students WHERE 1=1 AND managed_by`).
		WithArgs("ins-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), StudentFilter{ManagedBy: "ins-1"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryAssignManager(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET managed_by").
		WithArgs("ins-1", "A", sqlmock.AnyArg(), "2021-00123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, student_number").
		WithArgs("2021-00123").
		WillReturnRows(studentRows())

	student, err := repo.AssignManager(context.Background(), "2021-00123", "A", "ins-1")
	require.NoError(t, err)
	assert.Equal(t, "2021-00123", student.StudentNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryAssignManagerAlreadyManaged(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET managed_by").
		WithArgs("ins-2", "B", sqlmock.AnyArg(), "2021-00123").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, student_number").
		WithArgs("2021-00123").
		WillReturnRows(studentRows())

	_, err := repo.AssignManager(context.Background(), "2021-00123", "B", "ins-2")
	require.ErrorIs(t, err, ErrAlreadyManaged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryClearManagerNotOwned(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET managed_by = NULL").
		WithArgs(sqlmock.AnyArg(), "2021-00123", "ins-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ClearManager(context.Background(), "2021-00123", "ins-9")
	require.ErrorIs(t, err, ErrNotManaged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDistinctCourses(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT DISTINCT course FROM students").
		WillReturnRows(sqlmock.NewRows([]string{"course"}).AddRow("BSCS").AddRow("BSIT"))

	courses, err := repo.DistinctCourses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BSCS", "BSIT"}, courses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryMonthlyRegistrations(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT EXTRACT\(YEAR FROM created_at\)(?s:.*)FROM students`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"year", "month", "count"}).AddRow(2026, 3, 7))

	counts, err := repo.MonthlyRegistrations(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 7, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
