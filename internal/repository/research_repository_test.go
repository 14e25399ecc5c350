package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ris/ris-api/internal/models"
)

func newResearchMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func researchDetailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_number", "student_id", "title", "abstract", "authors", "keywords",
		"file_ref", "external_file_id", "status", "comments", "adviser_id", "archived",
		"uploaded_at", "created_at", "updated_at",
		"student_name", "student_email", "student_course", "student_section", "adviser_name",
	}).AddRow(
		"res-1", "2021-00123", "stu-1", "Hydroponics Yield Study", "Abstract", "Ana Cruz", "hydroponics",
		"res-1/thesis.pdf", nil, models.StatusPending, nil, nil, false,
		time.Now(), time.Now(), time.Now(),
		"Ana Cruz", "ana@example.edu", "BSIT", nil, nil,
	)
}

func TestResearchRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newResearchMock(t)
	defer cleanup()
	repo := NewResearchRepository(db)

	status := models.StatusPending
	mock.ExpectQuery(`SELECT r.id, r.student_number(?s:.*)WHERE 1=1 AND r.status = \$1 ORDER BY r.uploaded_at DESC`).
		WithArgs(status).
		WillReturnRows(researchDetailRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\)(?s:.*)WHERE 1=1 AND r.status = \$1`).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.ResearchFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.Nil(t, items[0].ExternalFileID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResearchRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newResearchMock(t)
	defer cleanup()
	repo := NewResearchRepository(db)

	mock.ExpectExec("INSERT INTO research").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	research := &models.Research{
		StudentNumber: "2021-00123",
		StudentID:     "stu-1",
		Title:         "Hydroponics Yield Study",
		Authors:       "Ana Cruz",
		Status:        models.StatusPending,
	}
	err := repo.Create(context.Background(), research)
	require.NoError(t, err)
	assert.NotEmpty(t, research.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResearchRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newResearchMock(t)
	defer cleanup()
	repo := NewResearchRepository(db)

	comments := "Tighten the methodology section"
	mock.ExpectExec("UPDATE research SET status").
		WithArgs(models.StatusRevision, &comments, sqlmock.AnyArg(), "res-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "res-1", models.StatusRevision, &comments)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResearchRepositoryUpdateStatusMissing(t *testing.T) {
	db, mock, cleanup := newResearchMock(t)
	defer cleanup()
	repo := NewResearchRepository(db)

	mock.ExpectExec("UPDATE research SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.StatusAccepted, nil)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
