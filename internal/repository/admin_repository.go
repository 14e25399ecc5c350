package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ris/ris-api/internal/models"
)

// AdminRepository manages persistence for administrative accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

const adminColumns = `id, name, email, password_hash, role, active, permissions, created_at, updated_at`

// FindByEmail fetches an admin by email.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins WHERE email = $1", adminColumns)
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, email); err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByID fetches an admin by id.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins WHERE id = $1", adminColumns)
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		return nil, err
	}
	return &admin, nil
}

// ExistsByEmail reports whether an admin with the email exists.
func (r *AdminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM admins WHERE email = $1)`, email); err != nil {
		return false, fmt.Errorf("check admin email: %w", err)
	}
	return exists, nil
}

// Create registers a new admin account.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	query := `INSERT INTO admins (id, name, email, password_hash, role, active, permissions, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		admin.ID, admin.Name, admin.Email, admin.PasswordHash, admin.Role,
		admin.Active, admin.Permissions, admin.CreatedAt, admin.UpdatedAt); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// List returns all admin accounts, newest first.
func (r *AdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	query := fmt.Sprintf("SELECT %s FROM admins ORDER BY created_at DESC", adminColumns)
	var admins []models.Admin
	if err := r.db.SelectContext(ctx, &admins, query); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// SetActive flips the active flag.
func (r *AdminRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE admins SET active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set admin active: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetPermissions replaces the admin permission set.
func (r *AdminRepository) SetPermissions(ctx context.Context, id string, permissions []string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE admins SET permissions = $1, updated_at = $2 WHERE id = $3`,
		pqStringArray(permissions), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set admin permissions: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
