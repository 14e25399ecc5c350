package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// NotificationType categorizes workflow events.
type NotificationType string

const (
	NotifyTeamRequest         NotificationType = "TEAM_REQUEST"
	NotifyTeamRequestResponse NotificationType = "TEAM_REQUEST_RESPONSE"
	NotifyGeneral             NotificationType = "GENERAL"
	NotifyResearchSubmission  NotificationType = "RESEARCH_SUBMISSION"
	NotifyResearchAccepted    NotificationType = "RESEARCH_ACCEPTED"
	NotifyResearchRejected    NotificationType = "RESEARCH_REJECTED"
)

// NotificationStatus tracks read/acted state. Notifications are append-only;
// the status flip is the only permitted mutation.
type NotificationStatus string

const (
	NotificationUnread   NotificationStatus = "UNREAD"
	NotificationApproved NotificationStatus = "APPROVED"
	NotificationRejected NotificationStatus = "REJECTED"
	NotificationRead     NotificationStatus = "READ"
)

// Notification is an event record directed at a student or instructor.
// RelatedData is a free-form payload keyed by type (research id, title,
// revision note, rejection reason, and similar).
type Notification struct {
	ID            string             `db:"id" json:"id"`
	RecipientID   string             `db:"recipient_id" json:"recipient_id"`
	RecipientKind AccountKind        `db:"recipient_kind" json:"recipient_kind"`
	Message       string             `db:"message" json:"message"`
	Type          NotificationType   `db:"type" json:"type"`
	Status        NotificationStatus `db:"status" json:"status"`
	RelatedData   types.JSONText     `db:"related_data" json:"related_data,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
}

// NotificationStatusRequest flips a notification's read/acted state.
type NotificationStatusRequest struct {
	Status NotificationStatus `json:"status" validate:"required,oneof=READ APPROVED REJECTED"`
}
