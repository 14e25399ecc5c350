package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campus-ris/ris-api/internal/models"
)

// ReportRepository runs the aggregate queries behind reports and the
// admin dashboard.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func reportConditions(filter models.ReportFilter) (string, []interface{}) {
	conditions := []string{"r.archived = FALSE"}
	args := []interface{}{}
	argPos := 1

	if !filter.StartDate.IsZero() {
		conditions = append(conditions, fmt.Sprintf("r.uploaded_at >= $%d", argPos))
		args = append(args, filter.StartDate)
		argPos++
	}
	if !filter.EndDate.IsZero() {
		conditions = append(conditions, fmt.Sprintf("r.uploaded_at <= $%d", argPos))
		args = append(args, filter.EndDate)
		argPos++
	}
	if filter.Course != "" {
		conditions = append(conditions, fmt.Sprintf("s.course = $%d", argPos))
		args = append(args, filter.Course)
	}

	return strings.Join(conditions, " AND "), args
}

// SubmissionRows returns the submissions report within the filter bounds.
func (r *ReportRepository) SubmissionRows(ctx context.Context, filter models.ReportFilter) ([]models.SubmissionRow, error) {
	where, args := reportConditions(filter)
	query := fmt.Sprintf(`
        SELECT r.title, r.authors, COALESCE(s.course, '') AS course, r.status, i.name AS adviser, r.uploaded_at
        FROM research r
        LEFT JOIN students s ON s.student_number = r.student_number
        LEFT JOIN instructors i ON i.id = r.adviser_id
        WHERE %s
        ORDER BY r.uploaded_at DESC`, where)

	var rows []models.SubmissionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("submissions report: %w", err)
	}
	return rows, nil
}

// CountByStatus groups submissions by review status within the filter bounds.
func (r *ReportRepository) CountByStatus(ctx context.Context, filter models.ReportFilter) ([]models.StatusCount, error) {
	where, args := reportConditions(filter)
	query := fmt.Sprintf(`
        SELECT r.status, COUNT(*) AS count
        FROM research r
        LEFT JOIN students s ON s.student_number = r.student_number
        WHERE %s
        GROUP BY r.status
        ORDER BY count DESC`, where)

	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("status report: %w", err)
	}
	return counts, nil
}

// CountByCourse groups submissions by student course within the filter bounds.
func (r *ReportRepository) CountByCourse(ctx context.Context, filter models.ReportFilter) ([]models.CourseCount, error) {
	where, args := reportConditions(filter)
	query := fmt.Sprintf(`
        SELECT COALESCE(s.course, 'Unknown') AS course, COUNT(*) AS count
        FROM research r
        LEFT JOIN students s ON s.student_number = r.student_number
        WHERE %s
        GROUP BY s.course
        ORDER BY count DESC`, where)

	var counts []models.CourseCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("course report: %w", err)
	}
	return counts, nil
}

// MonthlyStatusCounts buckets submissions by month and status since the
// given time. Months without submissions do not appear; callers zero-fill.
func (r *ReportRepository) MonthlyStatusCounts(ctx context.Context, since time.Time) ([]models.MonthlyCount, error) {
	query := `
        SELECT EXTRACT(YEAR FROM uploaded_at)::int AS year,
               EXTRACT(MONTH FROM uploaded_at)::int AS month,
               status,
               COUNT(*) AS count
        FROM research
        WHERE uploaded_at >= $1 AND archived = FALSE
        GROUP BY year, month, status
        ORDER BY year, month`

	var counts []models.MonthlyCount
	if err := r.db.SelectContext(ctx, &counts, query, since); err != nil {
		return nil, fmt.Errorf("monthly status counts: %w", err)
	}
	return counts, nil
}

// RecentSubmissions returns the latest research items for the activity feed.
func (r *ReportRepository) RecentSubmissions(ctx context.Context, limit int) ([]models.SubmissionRow, error) {
	query := `
        SELECT r.title, r.authors, COALESCE(s.course, '') AS course, r.status, i.name AS adviser, r.uploaded_at
        FROM research r
        LEFT JOIN students s ON s.student_number = r.student_number
        LEFT JOIN instructors i ON i.id = r.adviser_id
        WHERE r.archived = FALSE
        ORDER BY r.uploaded_at DESC
        LIMIT $1`

	var rows []models.SubmissionRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("recent submissions: %w", err)
	}
	return rows, nil
}
