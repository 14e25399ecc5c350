package models

import "time"

// ResearchStatus enumerates the review states of a submission.
type ResearchStatus string

const (
	StatusPending  ResearchStatus = "Pending"
	StatusAccepted ResearchStatus = "Accepted"
	StatusRejected ResearchStatus = "Rejected"
	StatusRevision ResearchStatus = "Revision"
)

// ValidResearchStatus reports whether the value is a known review state.
func ValidResearchStatus(s ResearchStatus) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusRevision:
		return true
	}
	return false
}

// Research represents a submitted research artifact. The owning student is
// referenced twice: by internal id and by the school-assigned student number
// (denormalized for query convenience; kept as historical record).
type Research struct {
	ID             string         `db:"id" json:"id"`
	StudentNumber  string         `db:"student_number" json:"student_number"`
	StudentID      string         `db:"student_id" json:"student_id"`
	Title          string         `db:"title" json:"title"`
	Abstract       string         `db:"abstract" json:"abstract"`
	Authors        string         `db:"authors" json:"authors"`
	Keywords       string         `db:"keywords" json:"keywords"`
	FileRef        string         `db:"file_ref" json:"file_ref"`
	ExternalFileID *string        `db:"external_file_id" json:"external_file_id,omitempty"`
	Status         ResearchStatus `db:"status" json:"status"`
	Comments       *string        `db:"comments" json:"comments,omitempty"`
	AdviserID      *string        `db:"adviser_id" json:"adviser_id,omitempty"`
	Archived       bool           `db:"archived" json:"archived"`
	UploadedAt     time.Time      `db:"uploaded_at" json:"uploaded_at"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// CanEdit reports whether the owning student may still modify the artifact.
func (r *Research) CanEdit() bool {
	return r.Status == StatusPending || r.Status == StatusRevision
}

// ResearchDetail joins submission data with the owning student.
type ResearchDetail struct {
	Research
	StudentName    *string `db:"student_name" json:"student_name,omitempty"`
	StudentEmail   *string `db:"student_email" json:"student_email,omitempty"`
	StudentCourse  *string `db:"student_course" json:"student_course,omitempty"`
	StudentSection *string `db:"student_section" json:"student_section,omitempty"`
	AdviserName    *string `db:"adviser_name" json:"adviser_name,omitempty"`
}

// SubmitResearchRequest is the payload for a new submission. File fields are
// filled by the transport layer after the artifact store accepts the upload.
type SubmitResearchRequest struct {
	Title          string `form:"title" json:"title" validate:"required,max=300"`
	Abstract       string `form:"abstract" json:"abstract"`
	Authors        string `form:"authors" json:"authors" validate:"required"`
	Keywords       string `form:"keywords" json:"keywords"`
	FileRef        string `form:"-" json:"-"`
	ExternalFileID string `form:"-" json:"-"`
}

// UpdateResearchRequest is the payload for an owner edit or resubmission.
type UpdateResearchRequest struct {
	Title          string `form:"title" json:"title" validate:"required,max=300"`
	Abstract       string `form:"abstract" json:"abstract"`
	Authors        string `form:"authors" json:"authors" validate:"required"`
	Keywords       string `form:"keywords" json:"keywords"`
	FileRef        string `form:"-" json:"-"`
	ExternalFileID string `form:"-" json:"-"`
}

// ResearchStatusRequest carries a review decision.
type ResearchStatusRequest struct {
	Status   ResearchStatus `json:"status" validate:"required"`
	Comments *string        `json:"comments"`
}

// ResearchFilter captures list criteria for research queries.
type ResearchFilter struct {
	Status        *ResearchStatus
	StudentNumber string
	AdviserID     string
	Unassigned    bool
	Archived      *bool
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
