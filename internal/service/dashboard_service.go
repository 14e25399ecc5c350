package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ris/ris-api/internal/models"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
)

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type dashboardStudentReader interface {
	CountAll(ctx context.Context) (int, error)
}

type dashboardInstructorReader interface {
	CountAll(ctx context.Context) (int, error)
}

type dashboardResearchReader interface {
	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.ResearchStatus) (int, error)
}

type dashboardActivityReader interface {
	RecentSubmissions(ctx context.Context, limit int) ([]models.SubmissionRow, error)
}

// DashboardService serves admin dashboard stats, cached in Redis with a
// short TTL since the counts tolerate slight staleness.
type DashboardService struct {
	students    dashboardStudentReader
	instructors dashboardInstructorReader
	research    dashboardResearchReader
	activity    dashboardActivityReader
	cache       dashboardCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(students dashboardStudentReader, instructors dashboardInstructorReader, research dashboardResearchReader, activity dashboardActivityReader, cache dashboardCache, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &DashboardService{
		students:    students,
		instructors: instructors,
		research:    research,
		activity:    activity,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// UserCounts summarizes the account stores.
func (s *DashboardService) UserCounts(ctx context.Context) (*models.UserCounts, error) {
	const key = "dashboard:user-counts"
	var cached models.UserCounts
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	students, err := s.students.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	instructors, err := s.instructors.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count instructors")
	}

	counts := &models.UserCounts{
		Students:    students,
		Instructors: instructors,
		TotalUsers:  students + instructors,
		ActiveUsers: students + instructors,
	}
	if err := s.cache.Set(ctx, key, counts, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache user counts", zap.Error(err))
	}
	return counts, nil
}

// ActivityStats summarizes the research store.
func (s *DashboardService) ActivityStats(ctx context.Context) (*models.ActivityStats, error) {
	const key = "dashboard:activity-stats"
	var cached models.ActivityStats
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	total, err := s.research.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count submissions")
	}
	pending, err := s.research.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count submissions")
	}
	accepted, err := s.research.CountByStatus(ctx, models.StatusAccepted)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count submissions")
	}
	rejected, err := s.research.CountByStatus(ctx, models.StatusRejected)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count submissions")
	}

	stats := &models.ActivityStats{
		TotalSubmissions:    total,
		PendingSubmissions:  pending,
		AcceptedSubmissions: accepted,
		RejectedSubmissions: rejected,
	}
	if err := s.cache.Set(ctx, key, stats, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache activity stats", zap.Error(err))
	}
	return stats, nil
}

// ResearchStats returns the headline submission counters.
func (s *DashboardService) ResearchStats(ctx context.Context) (*models.ResearchStats, error) {
	stats, err := s.ActivityStats(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ResearchStats{
		Total:    stats.TotalSubmissions,
		Pending:  stats.PendingSubmissions,
		Accepted: stats.AcceptedSubmissions,
		Rejected: stats.RejectedSubmissions,
	}, nil
}

// UserDistribution splits the account population by kind for a chart widget.
func (s *DashboardService) UserDistribution(ctx context.Context) (*models.UserDistribution, error) {
	const key = "dashboard:user-distribution"
	var cached models.UserDistribution
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	students, err := s.students.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	instructors, err := s.instructors.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count instructors")
	}

	distribution := &models.UserDistribution{
		Labels: []string{"Students", "Instructors"},
		Data:   []int{students, instructors},
		Total:  students + instructors,
	}
	if err := s.cache.Set(ctx, key, distribution, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache user distribution", zap.Error(err))
	}
	return distribution, nil
}

// RecentActivities returns the latest submissions as an activity feed.
func (s *DashboardService) RecentActivities(ctx context.Context, limit int) ([]models.RecentActivity, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	key := fmt.Sprintf("dashboard:recent-activities:%d", limit)
	var cached []models.RecentActivity
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	rows, err := s.activity.RecentSubmissions(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recent submissions")
	}

	activities := make([]models.RecentActivity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, models.RecentActivity{
			Type:        "research_submission",
			Description: fmt.Sprintf("%s submitted \"%s\"", row.Authors, row.Title),
			Status:      row.Status,
			Timestamp:   row.UploadedAt,
		})
	}
	if err := s.cache.Set(ctx, key, activities, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache recent activities", zap.Error(err))
	}
	return activities, nil
}
