package models

import "time"

// EditLock describes the current edit-mode lease. At most one admin holds
// the lease at a time; it expires on its own when not released.
type EditLock struct {
	Enabled   bool      `json:"enabled"`
	HolderID  string    `json:"holder_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// EditModeRequest toggles edit mode.
type EditModeRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}
