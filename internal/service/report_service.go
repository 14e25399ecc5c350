package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ris/ris-api/internal/models"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/export"
)

const trendWindowMonths = 6

type reportRepository interface {
	SubmissionRows(ctx context.Context, filter models.ReportFilter) ([]models.SubmissionRow, error)
	CountByStatus(ctx context.Context, filter models.ReportFilter) ([]models.StatusCount, error)
	CountByCourse(ctx context.Context, filter models.ReportFilter) ([]models.CourseCount, error)
	MonthlyStatusCounts(ctx context.Context, since time.Time) ([]models.MonthlyCount, error)
}

type reportStudentReader interface {
	DistinctCourses(ctx context.Context) ([]string, error)
	MonthlyRegistrations(ctx context.Context, since time.Time) ([]models.RegistrationCount, error)
}

type reportInstructorReader interface {
	MonthlyRegistrations(ctx context.Context, since time.Time) ([]models.RegistrationCount, error)
}

// ExportResult is a rendered report ready to stream as a download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService produces read-only aggregations and file exports over the
// research store.
type ReportService struct {
	repo        reportRepository
	students    reportStudentReader
	instructors reportInstructorReader
	csv         *export.CSVExporter
	xlsx        *export.XLSXExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(repo reportRepository, students reportStudentReader, instructors reportInstructorReader, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:        repo,
		students:    students,
		instructors: instructors,
		csv:         export.NewCSVExporter(),
		xlsx:        export.NewXLSXExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// Courses lists the known course names for the report course filter.
func (s *ReportService) Courses(ctx context.Context) ([]string, error) {
	courses, err := s.students.DistinctCourses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []string{}
	}
	return courses, nil
}

// Generate runs the selected report projection.
func (s *ReportService) Generate(ctx context.Context, reportType models.ReportType, filter models.ReportFilter) (interface{}, error) {
	switch reportType {
	case models.ReportSubmissions:
		rows, err := s.repo.SubmissionRows(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build report")
		}
		if rows == nil {
			rows = []models.SubmissionRow{}
		}
		return rows, nil
	case models.ReportByStatus:
		counts, err := s.repo.CountByStatus(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build report")
		}
		if counts == nil {
			counts = []models.StatusCount{}
		}
		return counts, nil
	case models.ReportByCourse:
		counts, err := s.repo.CountByCourse(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build report")
		}
		if counts == nil {
			counts = []models.CourseCount{}
		}
		return counts, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report type")
	}
}

// Export renders the selected report in the requested format.
func (s *ReportService) Export(ctx context.Context, reportType models.ReportType, format models.ReportFormat, filter models.ReportFilter) (*ExportResult, error) {
	dataset, title, err := s.buildDataset(ctx, reportType, filter)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().UTC().Format("20060102")
	var (
		raw         []byte
		contentType string
		ext         string
	)
	switch format {
	case models.FormatCSV:
		raw, err = s.csv.Render(*dataset)
		contentType = "text/csv"
		ext = "csv"
	case models.FormatXLSX:
		raw, err = s.xlsx.Render(*dataset, title)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		ext = "xlsx"
	case models.FormatPDF:
		raw, err = s.pdf.Render(*dataset, title)
		contentType = "application/pdf"
		ext = "pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown export format")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("report exported",
		zap.String("type", string(reportType)),
		zap.String("format", string(format)))

	return &ExportResult{
		Filename:    fmt.Sprintf("%s-report-%s.%s", reportType, stamp, ext),
		ContentType: contentType,
		Data:        raw,
	}, nil
}

func (s *ReportService) buildDataset(ctx context.Context, reportType models.ReportType, filter models.ReportFilter) (*export.Dataset, string, error) {
	switch reportType {
	case models.ReportSubmissions:
		rows, err := s.repo.SubmissionRows(ctx, filter)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build report")
		}
		dataset := &export.Dataset{Headers: []string{"Title", "Authors", "Course", "Status", "Adviser", "Uploaded"}}
		for _, row := range rows {
			adviser := ""
			if row.Adviser != nil {
				adviser = *row.Adviser
			}
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Title":    row.Title,
				"Authors":  row.Authors,
				"Course":   row.Course,
				"Status":   row.Status,
				"Adviser":  adviser,
				"Uploaded": row.UploadedAt.Format("2006-01-02"),
			})
		}
		return dataset, "Submissions", nil
	case models.ReportByStatus:
		counts, err := s.repo.CountByStatus(ctx, filter)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build report")
		}
		dataset := &export.Dataset{Headers: []string{"Status", "Count"}}
		for _, c := range counts {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Status": c.Status,
				"Count":  strconv.Itoa(c.Count),
			})
		}
		return dataset, "Submissions by Status", nil
	case models.ReportByCourse:
		counts, err := s.repo.CountByCourse(ctx, filter)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build report")
		}
		dataset := &export.Dataset{Headers: []string{"Course", "Count"}}
		for _, c := range counts {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Course": c.Course,
				"Count":  strconv.Itoa(c.Count),
			})
		}
		return dataset, "Submissions by Course", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unknown report type")
	}
}

// StatusTrends returns per-status monthly series over a rolling six-month
// window. Months with no submissions appear as zero buckets.
func (s *ReportService) StatusTrends(ctx context.Context) (*models.TrendReport, error) {
	months := trendMonths(time.Now().UTC())
	counts, err := s.repo.MonthlyStatusCounts(ctx, months[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build trends")
	}

	index := map[int]int{}
	labels := make([]string, len(months))
	for i, m := range months {
		index[m.Year()*100+int(m.Month())] = i
		labels[i] = m.Format("Jan 2006")
	}

	statuses := []models.ResearchStatus{models.StatusPending, models.StatusAccepted, models.StatusRejected, models.StatusRevision}
	series := make([]models.TrendSeries, len(statuses))
	for i, status := range statuses {
		series[i] = models.TrendSeries{Label: string(status), Data: make([]int, len(months))}
	}
	for _, c := range counts {
		bucket, ok := index[c.Year*100+c.Month]
		if !ok {
			continue
		}
		for i, status := range statuses {
			if c.Status == string(status) {
				series[i].Data[bucket] += c.Count
			}
		}
	}

	return &models.TrendReport{Labels: labels, Series: series}, nil
}

// SubmissionTrends returns a single monthly submission-count series over the
// same rolling window.
func (s *ReportService) SubmissionTrends(ctx context.Context) (*models.TrendReport, error) {
	months := trendMonths(time.Now().UTC())
	counts, err := s.repo.MonthlyStatusCounts(ctx, months[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build trends")
	}

	index := map[int]int{}
	labels := make([]string, len(months))
	for i, m := range months {
		index[m.Year()*100+int(m.Month())] = i
		labels[i] = m.Format("Jan 2006")
	}

	data := make([]int, len(months))
	for _, c := range counts {
		if bucket, ok := index[c.Year*100+c.Month]; ok {
			data[bucket] += c.Count
		}
	}

	return &models.TrendReport{
		Labels: labels,
		Series: []models.TrendSeries{{Label: "Submissions", Data: data}},
	}, nil
}

// UserTrends returns monthly student and instructor registration series over
// the rolling window.
func (s *ReportService) UserTrends(ctx context.Context) (*models.TrendReport, error) {
	months := trendMonths(time.Now().UTC())

	studentCounts, err := s.students.MonthlyRegistrations(ctx, months[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build trends")
	}
	instructorCounts, err := s.instructors.MonthlyRegistrations(ctx, months[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build trends")
	}

	index := map[int]int{}
	labels := make([]string, len(months))
	for i, m := range months {
		index[m.Year()*100+int(m.Month())] = i
		labels[i] = m.Format("Jan 2006")
	}

	fill := func(counts []models.RegistrationCount) []int {
		data := make([]int, len(months))
		for _, c := range counts {
			if bucket, ok := index[c.Year*100+c.Month]; ok {
				data[bucket] += c.Count
			}
		}
		return data
	}

	return &models.TrendReport{
		Labels: labels,
		Series: []models.TrendSeries{
			{Label: "Student Registrations", Data: fill(studentCounts)},
			{Label: "Instructor Registrations", Data: fill(instructorCounts)},
		},
	}, nil
}

// trendMonths returns the first day of each month in the window, oldest
// first, ending with the current month.
func trendMonths(now time.Time) []time.Time {
	months := make([]time.Time, trendWindowMonths)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < trendWindowMonths; i++ {
		months[trendWindowMonths-1-i] = first.AddDate(0, -i, 0)
	}
	return months
}
