package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ris/ris-api/internal/models"
)

// ResearchRepository manages persistence for research submissions.
type ResearchRepository struct {
	db *sqlx.DB
}

// NewResearchRepository constructs a ResearchRepository.
func NewResearchRepository(db *sqlx.DB) *ResearchRepository {
	return &ResearchRepository{db: db}
}

const researchDetailColumns = `r.id, r.student_number, r.student_id, r.title, r.abstract, r.authors, r.keywords,
        r.file_ref, r.external_file_id, r.status, r.comments, r.adviser_id, r.archived, r.uploaded_at, r.created_at, r.updated_at,
        s.name AS student_name, s.email AS student_email, s.course AS student_course, s.section AS student_section,
        i.name AS adviser_name`

const researchDetailJoins = `FROM research r
        LEFT JOIN students s ON s.id = r.student_id
        LEFT JOIN instructors i ON i.id = r.adviser_id`

// List returns research details matching the provided filters.
func (r *ResearchRepository) List(ctx context.Context, filter models.ResearchFilter) ([]models.ResearchDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.StudentNumber != "" {
		conditions = append(conditions, fmt.Sprintf("r.student_number = $%d", len(args)+1))
		args = append(args, filter.StudentNumber)
	}
	if filter.AdviserID != "" {
		conditions = append(conditions, fmt.Sprintf("r.adviser_id = $%d", len(args)+1))
		args = append(args, filter.AdviserID)
	}
	if filter.Unassigned {
		conditions = append(conditions, "r.adviser_id IS NULL")
	}
	if filter.Archived != nil {
		conditions = append(conditions, fmt.Sprintf("r.archived = $%d", len(args)+1))
		args = append(args, *filter.Archived)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(r.title) LIKE $%d OR LOWER(r.keywords) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"title":       "r.title",
		"status":      "r.status",
		"uploaded_at": "r.uploaded_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "r.uploaded_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		researchDetailColumns, researchDetailJoins, where, column, order, size, offset)

	var items []models.ResearchDetail
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list research: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", researchDetailJoins, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count research: %w", err)
	}
	return items, total, nil
}

// FindByID fetches one research detail.
func (r *ResearchRepository) FindByID(ctx context.Context, id string) (*models.ResearchDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE r.id = $1", researchDetailColumns, researchDetailJoins)
	var detail models.ResearchDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByStudentNumber returns a student's submissions, newest first.
func (r *ResearchRepository) ListByStudentNumber(ctx context.Context, studentNumber string) ([]models.ResearchDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE r.student_number = $1 ORDER BY r.uploaded_at DESC",
		researchDetailColumns, researchDetailJoins)
	var items []models.ResearchDetail
	if err := r.db.SelectContext(ctx, &items, query, studentNumber); err != nil {
		return nil, fmt.Errorf("list research by student: %w", err)
	}
	return items, nil
}

// ListByManagingInstructor returns submissions owned by the instructor's
// managed students, newest first.
func (r *ResearchRepository) ListByManagingInstructor(ctx context.Context, instructorID string) ([]models.ResearchDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE s.managed_by = $1 AND s.archived = FALSE ORDER BY r.uploaded_at DESC`,
		researchDetailColumns, researchDetailJoins)
	var items []models.ResearchDetail
	if err := r.db.SelectContext(ctx, &items, query, instructorID); err != nil {
		return nil, fmt.Errorf("list research by managing instructor: %w", err)
	}
	return items, nil
}

// ListUnassigned returns non-archived research without an adviser.
func (r *ResearchRepository) ListUnassigned(ctx context.Context) ([]models.ResearchDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE r.adviser_id IS NULL AND r.archived = FALSE ORDER BY r.uploaded_at DESC`,
		researchDetailColumns, researchDetailJoins)
	var items []models.ResearchDetail
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list unassigned research: %w", err)
	}
	return items, nil
}

// Create persists a new submission.
func (r *ResearchRepository) Create(ctx context.Context, research *models.Research) error {
	if research.ID == "" {
		research.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if research.UploadedAt.IsZero() {
		research.UploadedAt = now
	}
	research.CreatedAt = now
	research.UpdatedAt = now

	query := `INSERT INTO research (id, student_number, student_id, title, abstract, authors, keywords,
        file_ref, external_file_id, status, comments, adviser_id, archived, uploaded_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	if _, err := r.db.ExecContext(ctx, query,
		research.ID, research.StudentNumber, research.StudentID, research.Title, research.Abstract,
		research.Authors, research.Keywords, research.FileRef, research.ExternalFileID, research.Status,
		research.Comments, research.AdviserID, research.Archived, research.UploadedAt,
		research.CreatedAt, research.UpdatedAt); err != nil {
		return fmt.Errorf("create research: %w", err)
	}
	return nil
}

// UpdateStatus sets the review status and reviewer comments.
func (r *ResearchRepository) UpdateStatus(ctx context.Context, id string, status models.ResearchStatus, comments *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE research SET status = $1, comments = $2, updated_at = $3 WHERE id = $4`,
		status, comments, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update research status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateArtifact replaces the editable fields during a resubmission and
// resets the review status.
func (r *ResearchRepository) UpdateArtifact(ctx context.Context, research *models.Research) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE research SET title = $1, abstract = $2, authors = $3, keywords = $4,
         file_ref = $5, external_file_id = $6, status = $7, uploaded_at = $8, updated_at = $9
         WHERE id = $10`,
		research.Title, research.Abstract, research.Authors, research.Keywords,
		research.FileRef, research.ExternalFileID, research.Status, research.UploadedAt,
		time.Now().UTC(), research.ID)
	if err != nil {
		return fmt.Errorf("update research artifact: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetArchived flips the archive flag.
func (r *ResearchRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE research SET archived = $1, updated_at = $2 WHERE id = $3`,
		archived, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set research archived: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus returns the number of submissions with the given status.
func (r *ResearchRepository) CountByStatus(ctx context.Context, status models.ResearchStatus) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM research WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("count research by status: %w", err)
	}
	return count, nil
}

// CountAll returns the total number of submissions.
func (r *ResearchRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM research`); err != nil {
		return 0, fmt.Errorf("count research: %w", err)
	}
	return count, nil
}
