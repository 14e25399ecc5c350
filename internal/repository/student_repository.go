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

// StudentRepository manages persistence for student accounts.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// StudentFilter captures list criteria for student queries.
type StudentFilter struct {
	Search    string
	Archived  *bool
	ManagedBy string
	Page      int
	PageSize  int
}

const studentColumns = `id, student_number, name, email, course, section, managed_by, google_uid, archived, created_at, updated_at`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Archived != nil {
		conditions = append(conditions, fmt.Sprintf("archived = $%d", len(args)+1))
		args = append(args, *filter.Archived)
	}
	if filter.ManagedBy != "" {
		conditions = append(conditions, fmt.Sprintf("managed_by = $%d", len(args)+1))
		args = append(args, filter.ManagedBy)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(student_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		studentColumns, where, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by internal id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByStudentNumber fetches a student by the school-assigned identifier.
func (r *StudentRepository) FindByStudentNumber(ctx context.Context, studentNumber string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE student_number = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, studentNumber); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByEmail fetches a student by email.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE email = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create registers a new student account.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	query := `INSERT INTO students (id, student_number, name, email, course, section, managed_by, google_uid, archived, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.db.ExecContext(ctx, query,
		student.ID, student.StudentNumber, student.Name, student.Email, student.Course,
		student.Section, student.ManagedBy, student.GoogleUID, student.Archived,
		student.CreatedAt, student.UpdatedAt); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// UpdateProfile updates the mutable profile fields.
func (r *StudentRepository) UpdateProfile(ctx context.Context, id, name, email, course string) error {
	query := `UPDATE students SET name = $1, email = $2, course = $3, updated_at = $4 WHERE id = $5`
	if _, err := r.db.ExecContext(ctx, query, name, email, course, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}
	return nil
}

// SetArchived flips the archive flag.
func (r *StudentRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET archived = $1, updated_at = $2 WHERE id = $3`,
		archived, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set student archived: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AssignManager sets managedBy and section in one guarded update. The
// predicate enforces the exclusive-management invariant: the update only
// lands when no instructor currently manages the student.
func (r *StudentRepository) AssignManager(ctx context.Context, studentNumber, section, instructorID string) (*models.Student, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE students SET managed_by = $1, section = $2, updated_at = $3
         WHERE student_number = $4 AND managed_by IS NULL AND archived = FALSE`,
		instructorID, section, time.Now().UTC(), studentNumber)
	if err != nil {
		return nil, fmt.Errorf("assign manager: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		// Distinguish a missing student from a lost race.
		if _, err := r.FindByStudentNumber(ctx, studentNumber); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyManaged
	}
	return r.FindByStudentNumber(ctx, studentNumber)
}

// ClearManager releases the management link, guarded by current ownership.
func (r *StudentRepository) ClearManager(ctx context.Context, studentNumber, instructorID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE students SET managed_by = NULL, section = NULL, updated_at = $1
         WHERE student_number = $2 AND managed_by = $3`,
		time.Now().UTC(), studentNumber, instructorID)
	if err != nil {
		return fmt.Errorf("clear manager: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotManaged
	}
	return nil
}

// DistinctCourses returns the known course names.
func (r *StudentRepository) DistinctCourses(ctx context.Context) ([]string, error) {
	var courses []string
	if err := r.db.SelectContext(ctx, &courses,
		`SELECT DISTINCT course FROM students WHERE course <> '' ORDER BY course`); err != nil {
		return nil, fmt.Errorf("distinct courses: %w", err)
	}
	return courses, nil
}

// CountAll returns the total number of students.
func (r *StudentRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// MonthlyRegistrations buckets student sign-ups by month since the given
// time. Months without sign-ups do not appear; callers zero-fill.
func (r *StudentRepository) MonthlyRegistrations(ctx context.Context, since time.Time) ([]models.RegistrationCount, error) {
	query := `
        SELECT EXTRACT(YEAR FROM created_at)::int AS year,
               EXTRACT(MONTH FROM created_at)::int AS month,
               COUNT(*) AS count
        FROM students
        WHERE created_at >= $1
        GROUP BY year, month
        ORDER BY year, month`

	var counts []models.RegistrationCount
	if err := r.db.SelectContext(ctx, &counts, query, since); err != nil {
		return nil, fmt.Errorf("monthly student registrations: %w", err)
	}
	return counts, nil
}
