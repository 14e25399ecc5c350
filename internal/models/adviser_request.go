package models

import "time"

// AdviserRequestStatus enumerates the lifecycle of an adviser request.
// A request is immutable once approved or rejected.
type AdviserRequestStatus string

const (
	RequestPending  AdviserRequestStatus = "pending"
	RequestApproved AdviserRequestStatus = "approved"
	RequestRejected AdviserRequestStatus = "rejected"
)

// AdviserRequest records an instructor asking to supervise an unclaimed
// research item. Title and instructor identity are snapshotted at submission
// time and never refreshed: they document what the deciding admin saw.
type AdviserRequest struct {
	ID              string               `db:"id" json:"id"`
	ResearchID      string               `db:"research_id" json:"research_id"`
	ResearchTitle   string               `db:"research_title" json:"research_title"`
	InstructorID    string               `db:"instructor_id" json:"instructor_id"`
	InstructorName  string               `db:"instructor_name" json:"instructor_name"`
	InstructorEmail string               `db:"instructor_email" json:"instructor_email"`
	Message         string               `db:"message" json:"message"`
	Status          AdviserRequestStatus `db:"status" json:"status"`
	CreatedAt       time.Time            `db:"created_at" json:"created_at"`
}

// CreateAdviserRequestRequest is the payload for an instructor volunteering
// to supervise a research item.
type CreateAdviserRequestRequest struct {
	ResearchID string `json:"research_id" validate:"required"`
	Message    string `json:"message" validate:"max=1000"`
}

// DecideAdviserRequestRequest carries an admin's decision on a request.
type DecideAdviserRequestRequest struct {
	Status AdviserRequestStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// AdviserRequestStats summarizes the request queue for the admin dashboard.
type AdviserRequestStats struct {
	TotalInstructors int `db:"total_instructors" json:"total_instructors"`
	TotalAdvisers    int `db:"total_advisers" json:"total_advisers"`
	PendingRequests  int `db:"pending_requests" json:"pending_requests"`
}
