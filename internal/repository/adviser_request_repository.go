package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ris/ris-api/internal/models"
)

// AdviserRequestRepository manages persistence for adviser requests.
type AdviserRequestRepository struct {
	db *sqlx.DB
}

// NewAdviserRequestRepository constructs an AdviserRequestRepository.
func NewAdviserRequestRepository(db *sqlx.DB) *AdviserRequestRepository {
	return &AdviserRequestRepository{db: db}
}

const adviserRequestColumns = `id, research_id, research_title, instructor_id, instructor_name, instructor_email, message, status, created_at`

// Create persists a new pending request.
func (r *AdviserRequestRepository) Create(ctx context.Context, request *models.AdviserRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.RequestPending
	}
	request.CreatedAt = time.Now().UTC()

	query := `INSERT INTO adviser_requests (id, research_id, research_title, instructor_id, instructor_name, instructor_email, message, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		request.ID, request.ResearchID, request.ResearchTitle, request.InstructorID,
		request.InstructorName, request.InstructorEmail, request.Message, request.Status,
		request.CreatedAt); err != nil {
		return fmt.Errorf("create adviser request: %w", err)
	}
	return nil
}

// FindByID fetches one request.
func (r *AdviserRequestRepository) FindByID(ctx context.Context, id string) (*models.AdviserRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM adviser_requests WHERE id = $1", adviserRequestColumns)
	var request models.AdviserRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// ExistsPending reports whether the instructor already has a pending request
// for the research item.
func (r *AdviserRequestRepository) ExistsPending(ctx context.Context, researchID, instructorID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM adviser_requests WHERE research_id = $1 AND instructor_id = $2 AND status = $3)`,
		researchID, instructorID, models.RequestPending); err != nil {
		return false, fmt.Errorf("check pending adviser request: %w", err)
	}
	return exists, nil
}

// ListByInstructor returns an instructor's requests, newest first.
func (r *AdviserRequestRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.AdviserRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM adviser_requests WHERE instructor_id = $1 ORDER BY created_at DESC", adviserRequestColumns)
	var requests []models.AdviserRequest
	if err := r.db.SelectContext(ctx, &requests, query, instructorID); err != nil {
		return nil, fmt.Errorf("list adviser requests by instructor: %w", err)
	}
	return requests, nil
}

// ListAll returns every request, newest first.
func (r *AdviserRequestRepository) ListAll(ctx context.Context) ([]models.AdviserRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM adviser_requests ORDER BY created_at DESC", adviserRequestColumns)
	var requests []models.AdviserRequest
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list adviser requests: %w", err)
	}
	return requests, nil
}

// CountPending returns the number of pending requests.
func (r *AdviserRequestRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM adviser_requests WHERE status = $1`, models.RequestPending); err != nil {
		return 0, fmt.Errorf("count pending adviser requests: %w", err)
	}
	return count, nil
}

// Approve applies the approval as a single transaction:
// assign the adviser, grant the capability, force-reject competitors, and
// mark this request approved. The adviser assignment is a conditional update
// guarded by "adviser is currently unset", so of two concurrent approvals on
// the same research exactly one commits; the loser observes
// ErrAdviserAssigned and the request stays pending.
func (r *AdviserRequestRepository) Approve(ctx context.Context, request *models.AdviserRequest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approve tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx,
		`UPDATE research SET adviser_id = $1, updated_at = $2 WHERE id = $3 AND adviser_id IS NULL`,
		request.InstructorID, now, request.ResearchID)
	if err != nil {
		return fmt.Errorf("assign adviser: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrAdviserAssigned
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE instructors SET roles = array_append(roles, $1), updated_at = $2
         WHERE id = $3 AND NOT ($1 = ANY(roles))`,
		models.RoleAdviser, now, request.InstructorID); err != nil {
		return fmt.Errorf("grant adviser role: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE adviser_requests SET status = $1 WHERE research_id = $2 AND id <> $3 AND status = $4`,
		models.RequestRejected, request.ResearchID, request.ID, models.RequestPending); err != nil {
		return fmt.Errorf("reject competing requests: %w", err)
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE adviser_requests SET status = $1 WHERE id = $2 AND status = $3`,
		models.RequestApproved, request.ID, models.RequestPending)
	if err != nil {
		return fmt.Errorf("approve request: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrRequestDecided
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approve tx: %w", err)
	}
	return nil
}

// Reject marks a pending request rejected. Decided requests stay immutable.
func (r *AdviserRequestRepository) Reject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE adviser_requests SET status = $1 WHERE id = $2 AND status = $3`,
		models.RequestRejected, id, models.RequestPending)
	if err != nil {
		return fmt.Errorf("reject request: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrRequestDecided
	}
	return nil
}
