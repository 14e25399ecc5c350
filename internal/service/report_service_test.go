package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-ris/ris-api/internal/models"
)

type mockReportRepo struct {
	rows    []models.SubmissionRow
	status  []models.StatusCount
	courses []models.CourseCount
	monthly []models.MonthlyCount
	since   time.Time
}

func (m *mockReportRepo) SubmissionRows(ctx context.Context, filter models.ReportFilter) ([]models.SubmissionRow, error) {
	return m.rows, nil
}

func (m *mockReportRepo) CountByStatus(ctx context.Context, filter models.ReportFilter) ([]models.StatusCount, error) {
	return m.status, nil
}

func (m *mockReportRepo) CountByCourse(ctx context.Context, filter models.ReportFilter) ([]models.CourseCount, error) {
	return m.courses, nil
}

func (m *mockReportRepo) MonthlyStatusCounts(ctx context.Context, since time.Time) ([]models.MonthlyCount, error) {
	m.since = since
	return m.monthly, nil
}

type mockRegistrationReader struct {
	courses []string
	monthly []models.RegistrationCount
}

func (m *mockRegistrationReader) DistinctCourses(ctx context.Context) ([]string, error) {
	return m.courses, nil
}

func (m *mockRegistrationReader) MonthlyRegistrations(ctx context.Context, since time.Time) ([]models.RegistrationCount, error) {
	return m.monthly, nil
}

func newReportService(repo *mockReportRepo, students, instructors *mockRegistrationReader) *ReportService {
	if students == nil {
		students = &mockRegistrationReader{}
	}
	if instructors == nil {
		instructors = &mockRegistrationReader{}
	}
	return NewReportService(repo, students, instructors, zap.NewNop())
}

func TestReportServiceStatusTrendsZeroFilled(t *testing.T) {
	now := time.Now().UTC()
	repo := &mockReportRepo{monthly: []models.MonthlyCount{
		{Year: now.Year(), Month: int(now.Month()), Status: "Accepted", Count: 3},
	}}
	svc := newReportService(repo, nil, nil)

	report, err := svc.StatusTrends(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Labels, trendWindowMonths)
	require.Len(t, report.Series, 4)

	for _, series := range report.Series {
		assert.Len(t, series.Data, trendWindowMonths)
		if series.Label == "Accepted" {
			assert.Equal(t, 3, series.Data[trendWindowMonths-1])
			for i := 0; i < trendWindowMonths-1; i++ {
				assert.Zero(t, series.Data[i])
			}
		}
	}

	// The window starts at the first day of the oldest bucket.
	assert.Equal(t, 1, repo.since.Day())
}

func TestReportServiceSubmissionTrendsSumsStatuses(t *testing.T) {
	now := time.Now().UTC()
	repo := &mockReportRepo{monthly: []models.MonthlyCount{
		{Year: now.Year(), Month: int(now.Month()), Status: "Accepted", Count: 2},
		{Year: now.Year(), Month: int(now.Month()), Status: "Pending", Count: 5},
	}}
	svc := newReportService(repo, nil, nil)

	report, err := svc.SubmissionTrends(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Series, 1)
	assert.Equal(t, 7, report.Series[0].Data[trendWindowMonths-1])
}

func TestReportServiceExportFormats(t *testing.T) {
	adviser := "Dr. Reyes"
	repo := &mockReportRepo{rows: []models.SubmissionRow{
		{Title: "Hydroponics Yield Study", Authors: "Ana Cruz", Course: "BSIT", Status: "Accepted", Adviser: &adviser, UploadedAt: time.Now()},
	}}
	svc := newReportService(repo, nil, nil)

	csvOut, err := svc.Export(context.Background(), models.ReportSubmissions, models.FormatCSV, models.ReportFilter{})
	require.NoError(t, err)
	assert.Contains(t, string(csvOut.Data), "Hydroponics Yield Study")
	assert.Contains(t, csvOut.Filename, ".csv")

	pdfOut, err := svc.Export(context.Background(), models.ReportSubmissions, models.FormatPDF, models.ReportFilter{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfOut.Data, []byte("%PDF")))

	xlsxOut, err := svc.Export(context.Background(), models.ReportSubmissions, models.FormatXLSX, models.ReportFilter{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsxOut.Data, []byte("PK")))

	_, err = svc.Export(context.Background(), models.ReportSubmissions, "docx", models.ReportFilter{})
	require.Error(t, err)
}

func TestReportServiceGenerateByCourse(t *testing.T) {
	repo := &mockReportRepo{courses: []models.CourseCount{{Course: "BSIT", Count: 4}}}
	svc := newReportService(repo, nil, nil)

	result, err := svc.Generate(context.Background(), models.ReportByCourse, models.ReportFilter{})
	require.NoError(t, err)
	counts, ok := result.([]models.CourseCount)
	require.True(t, ok)
	assert.Equal(t, 4, counts[0].Count)

	_, err = svc.Generate(context.Background(), "unknown", models.ReportFilter{})
	require.Error(t, err)
}

func TestReportServiceCourses(t *testing.T) {
	students := &mockRegistrationReader{courses: []string{"BSCS", "BSIT"}}
	svc := newReportService(&mockReportRepo{}, students, nil)

	courses, err := svc.Courses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BSCS", "BSIT"}, courses)
}

func TestReportServiceCoursesEmpty(t *testing.T) {
	svc := newReportService(&mockReportRepo{}, nil, nil)

	courses, err := svc.Courses(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}

func TestReportServiceUserTrendsZeroFilled(t *testing.T) {
	now := time.Now().UTC()
	students := &mockRegistrationReader{monthly: []models.RegistrationCount{
		{Year: now.Year(), Month: int(now.Month()), Count: 4},
	}}
	instructors := &mockRegistrationReader{monthly: []models.RegistrationCount{
		{Year: now.Year(), Month: int(now.Month()), Count: 1},
	}}
	svc := newReportService(&mockReportRepo{}, students, instructors)

	report, err := svc.UserTrends(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Labels, trendWindowMonths)
	require.Len(t, report.Series, 2)

	assert.Equal(t, "Student Registrations", report.Series[0].Label)
	assert.Equal(t, 4, report.Series[0].Data[trendWindowMonths-1])
	assert.Equal(t, "Instructor Registrations", report.Series[1].Label)
	assert.Equal(t, 1, report.Series[1].Data[trendWindowMonths-1])
	for i := 0; i < trendWindowMonths-1; i++ {
		assert.Zero(t, report.Series[0].Data[i])
		assert.Zero(t, report.Series[1].Data[i])
	}
}
