package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ris/ris-api/internal/models"
)

func newReportMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReportRepositoryCountByStatus(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT r.status, COUNT\(\*\) AS count(?s:.*)GROUP BY r.status`).
		WithArgs(start, "BSIT").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("Accepted", 4).
			AddRow("Pending", 2))

	counts, err := repo.CountByStatus(context.Background(), models.ReportFilter{StartDate: start, Course: "BSIT"})
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "Accepted", counts[0].Status)
	assert.Equal(t, 4, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryCountByCourse(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery(`SELECT COALESCE\(s.course, 'Unknown'\) AS course, COUNT\(\*\) AS count(?s:.*)GROUP BY s.course`).
		WillReturnRows(sqlmock.NewRows([]string{"course", "count"}).
			AddRow("BSIT", 7).
			AddRow("BSCS", 3))

	counts, err := repo.CountByCourse(context.Background(), models.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "BSIT", counts[0].Course)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryMonthlyStatusCounts(t *testing.T) {
	db, mock, cleanup := newReportMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT EXTRACT\(YEAR FROM uploaded_at\)::int AS year`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"year", "month", "status", "count"}).
			AddRow(2026, 3, "Accepted", 2).
			AddRow(2026, 4, "Pending", 1))

	counts, err := repo.MonthlyStatusCounts(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 3, counts[0].Month)
	assert.Equal(t, "Accepted", counts[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
