package models

import "time"

// ReportType selects the reporting projection.
type ReportType string

const (
	ReportSubmissions ReportType = "submissions"
	ReportByStatus    ReportType = "status"
	ReportByCourse    ReportType = "course"
)

// ReportFormat selects the export rendering.
type ReportFormat string

const (
	FormatCSV  ReportFormat = "csv"
	FormatXLSX ReportFormat = "xlsx"
	FormatPDF  ReportFormat = "pdf"
)

// ReportFilter bounds report queries. Zero time values mean unbounded.
type ReportFilter struct {
	StartDate time.Time
	EndDate   time.Time
	Course    string
}

// SubmissionRow is one research item in the submissions report.
type SubmissionRow struct {
	Title      string    `db:"title" json:"title"`
	Authors    string    `db:"authors" json:"authors"`
	Course     string    `db:"course" json:"course"`
	Status     string    `db:"status" json:"status"`
	Adviser    *string   `db:"adviser" json:"adviser,omitempty"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// StatusCount groups accepted-research reporting by review status.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

// CourseCount groups accepted-research reporting by student course.
type CourseCount struct {
	Course string `db:"course" json:"course"`
	Count  int    `db:"count" json:"count"`
}

// MonthlyCount is a raw per-month bucket from the store, before zero-filling.
type MonthlyCount struct {
	Year   int    `db:"year"`
	Month  int    `db:"month"`
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// RegistrationCount is a raw per-month account-creation bucket, before
// zero-filling.
type RegistrationCount struct {
	Year  int `db:"year"`
	Month int `db:"month"`
	Count int `db:"count"`
}

// TrendSeries is a zero-filled six-month series for one status.
type TrendSeries struct {
	Label string `json:"label"`
	Data  []int  `json:"data"`
}

// TrendReport pairs month labels with per-status series.
type TrendReport struct {
	Labels []string      `json:"labels"`
	Series []TrendSeries `json:"series"`
}

// UserCounts summarizes the account stores for the admin dashboard.
type UserCounts struct {
	Students    int `json:"students"`
	Instructors int `json:"instructors"`
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
}

// UserDistribution splits the account population by kind, shaped for a
// chart widget.
type UserDistribution struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
	Total  int      `json:"total"`
}

// ResearchStats is the headline view of the research store.
type ResearchStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// ActivityStats summarizes the research store for the admin dashboard.
type ActivityStats struct {
	TotalSubmissions    int `json:"total_submissions"`
	PendingSubmissions  int `json:"pending_submissions"`
	AcceptedSubmissions int `json:"accepted_submissions"`
	RejectedSubmissions int `json:"rejected_submissions"`
}

// RecentActivity is one entry in the dashboard activity feed.
type RecentActivity struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}
