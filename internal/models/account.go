package models

import (
	"time"

	"github.com/lib/pq"
)

// AccountKind distinguishes the three account stores.
type AccountKind string

const (
	KindStudent    AccountKind = "Student"
	KindInstructor AccountKind = "Instructor"
	KindAdmin      AccountKind = "Admin"
)

// Capability names carried in an instructor's role set. An instructor may
// hold both at once; they are not mutually exclusive.
const (
	RoleInstructor = "instructor"
	RoleAdviser    = "adviser"
)

// AdminRole separates regular admins from the distinguished super admin.
type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "admin"
	AdminRoleSuperAdmin AdminRole = "superadmin"
)

// Admin permission names. Fine-grained gates on the admin surface.
const (
	PermManageAccounts = "manage_accounts"
	PermManageResearch = "manage_research"
	PermDecideRequests = "decide_adviser_requests"
	PermGenerateReport = "generate_reports"
)

// RoleSet is a capability set. Authorization checks are membership tests,
// never string equality against a single role value.
type RoleSet []string

// Has reports whether the set contains the given capability.
func (s RoleSet) Has(role string) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// Add returns the set with the capability present exactly once.
func (s RoleSet) Add(role string) RoleSet {
	if s.Has(role) {
		return s
	}
	return append(s, role)
}

// Student represents a learner who owns research submissions.
type Student struct {
	ID            string    `db:"id" json:"id"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	Course        string    `db:"course" json:"course"`
	Section       *string   `db:"section" json:"section,omitempty"`
	ManagedBy     *string   `db:"managed_by" json:"managed_by,omitempty"`
	GoogleUID     *string   `db:"google_uid" json:"-"`
	Archived      bool      `db:"archived" json:"archived"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Instructor represents a faculty member who may additionally hold the
// adviser capability.
type Instructor struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Email     string         `db:"email" json:"email"`
	Roles     pq.StringArray `db:"roles" json:"roles"`
	GoogleUID *string        `db:"google_uid" json:"-"`
	Archived  bool           `db:"archived" json:"archived"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// RoleSet exposes the instructor capabilities as a set.
func (i *Instructor) RoleSet() RoleSet {
	return RoleSet(i.Roles)
}

// Admin represents an administrative account validated by password.
type Admin struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Role         AdminRole      `db:"role" json:"role"`
	Active       bool           `db:"active" json:"active"`
	Permissions  pq.StringArray `db:"permissions" json:"permissions"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// AddManagedStudentRequest is the payload for an instructor claiming a
// student into their section.
type AddManagedStudentRequest struct {
	StudentNumber string `json:"student_number" validate:"required"`
	Section       string `json:"section" validate:"required,max=50"`
}

// UpdateProfileRequest is the payload for a self-service profile edit.
type UpdateProfileRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Email  string `json:"email" validate:"required,email"`
	Course string `json:"course" validate:"max=200"`
}

// CreateAdminRequest is the payload for provisioning an admin account.
type CreateAdminRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	Permissions []string `json:"permissions" validate:"dive,oneof=manage_accounts manage_research decide_adviser_requests generate_reports"`
}

// UpdateAdminPermissionsRequest replaces an admin's permission set.
type UpdateAdminPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required,dive,oneof=manage_accounts manage_research decide_adviser_requests generate_reports"`
}

// SetActiveRequest toggles an admin account.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
