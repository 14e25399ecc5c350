package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campus-ris/ris-api/internal/models"
)

// InstructorRepository manages persistence for instructor accounts.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

const instructorColumns = `id, name, email, roles, google_uid, archived, created_at, updated_at`

// List returns instructors, optionally filtered by archive state and search.
func (r *InstructorRepository) List(ctx context.Context, search string, archived *bool) ([]models.Instructor, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if archived != nil {
		conditions = append(conditions, fmt.Sprintf("archived = $%d", len(args)+1))
		args = append(args, *archived)
	}
	if search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	query := fmt.Sprintf("SELECT %s FROM instructors WHERE %s ORDER BY created_at DESC",
		instructorColumns, strings.Join(conditions, " AND "))

	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, args...); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return instructors, nil
}

// FindByID fetches an instructor by internal id.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	query := fmt.Sprintf("SELECT %s FROM instructors WHERE id = $1", instructorColumns)
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// FindByEmail fetches an instructor by email.
func (r *InstructorRepository) FindByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	query := fmt.Sprintf("SELECT %s FROM instructors WHERE email = $1", instructorColumns)
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, email); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// Create registers a new instructor account.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	if instructor.ID == "" {
		instructor.ID = uuid.NewString()
	}
	if len(instructor.Roles) == 0 {
		instructor.Roles = pq.StringArray{models.RoleInstructor}
	}
	now := time.Now().UTC()
	instructor.CreatedAt = now
	instructor.UpdatedAt = now

	query := `INSERT INTO instructors (id, name, email, roles, google_uid, archived, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		instructor.ID, instructor.Name, instructor.Email, instructor.Roles,
		instructor.GoogleUID, instructor.Archived, instructor.CreatedAt, instructor.UpdatedAt); err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}
	return nil
}

// UpdateProfile updates the mutable profile fields.
func (r *InstructorRepository) UpdateProfile(ctx context.Context, id, name, email string) error {
	query := `UPDATE instructors SET name = $1, email = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, name, email, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update instructor profile: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetArchived flips the archive flag.
func (r *InstructorRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE instructors SET archived = $1, updated_at = $2 WHERE id = $3`,
		archived, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set instructor archived: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountAll returns the total number of instructors.
func (r *InstructorRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM instructors`); err != nil {
		return 0, fmt.Errorf("count instructors: %w", err)
	}
	return count, nil
}

// CountWithRole returns the number of instructors holding the capability.
func (r *InstructorRepository) CountWithRole(ctx context.Context, role string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM instructors WHERE $1 = ANY(roles)`, role); err != nil {
		return 0, fmt.Errorf("count instructors by role: %w", err)
	}
	return count, nil
}

// MonthlyRegistrations buckets instructor sign-ups by month since the given
// time. Months without sign-ups do not appear; callers zero-fill.
func (r *InstructorRepository) MonthlyRegistrations(ctx context.Context, since time.Time) ([]models.RegistrationCount, error) {
	query := `
        SELECT EXTRACT(YEAR FROM created_at)::int AS year,
               EXTRACT(MONTH FROM created_at)::int AS month,
               COUNT(*) AS count
        FROM instructors
        WHERE created_at >= $1
        GROUP BY year, month
        ORDER BY year, month`

	var counts []models.RegistrationCount
	if err := r.db.SelectContext(ctx, &counts, query, since); err != nil {
		return nil, fmt.Errorf("monthly instructor registrations: %w", err)
	}
	return counts, nil
}
