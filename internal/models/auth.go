package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminLoginRequest holds credentials for authenticating an admin.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FederatedLoginRequest carries the identity already verified by the
// federated identity collaborator.
type FederatedLoginRequest struct {
	Kind        AccountKind `json:"kind" validate:"required,oneof=Student Instructor"`
	DisplayName string      `json:"display_name" validate:"required"`
	Email       string      `json:"email" validate:"required,email"`
	ExternalUID string      `json:"external_uid" validate:"required"`
}

// LoginResponse returns the issued token and account info.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	IssuedAt    time.Time   `json:"issued_at"`
	Account     AccountInfo `json:"account"`
}

// AccountInfo describes the authenticated account in responses.
type AccountInfo struct {
	ID          string      `json:"id"`
	Kind        AccountKind `json:"kind"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Roles       RoleSet     `json:"roles,omitempty"`
	Role        AdminRole   `json:"role,omitempty"`
	Permissions []string    `json:"permissions,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID      string      `json:"user_id"`
	Kind        AccountKind `json:"kind"`
	Role        AdminRole   `json:"role,omitempty"`
	Roles       RoleSet     `json:"roles,omitempty"`
	Permissions []string    `json:"permissions,omitempty"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry admin or superadmin authority.
func (c *JWTClaims) IsAdmin() bool {
	return c.Kind == KindAdmin
}

// IsSuperAdmin reports whether the claims belong to the super admin.
func (c *JWTClaims) IsSuperAdmin() bool {
	return c.Role == AdminRoleSuperAdmin
}

// HasPermission is a membership test on the admin permission set.
// The super admin implicitly holds every permission.
func (c *JWTClaims) HasPermission(perm string) bool {
	if c.IsSuperAdmin() {
		return true
	}
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
