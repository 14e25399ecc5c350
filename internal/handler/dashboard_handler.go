package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campus-ris/ris-api/internal/service"
	"github.com/campus-ris/ris-api/pkg/response"
)

// DashboardHandler serves aggregated statistics for the admin dashboard.
type DashboardHandler struct {
	dashboard *service.DashboardService
	reports   *service.ReportService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard *service.DashboardService, reports *service.ReportService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, reports: reports}
}

// UserCounts godoc
// @Summary Account counts per kind
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard/user-counts [get]
func (h *DashboardHandler) UserCounts(c *gin.Context) {
	counts, err := h.dashboard.UserCounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}

// ActivityStats godoc
// @Summary Research submission totals by status
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard/activity-stats [get]
func (h *DashboardHandler) ActivityStats(c *gin.Context) {
	stats, err := h.dashboard.ActivityStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// RecentActivities godoc
// @Summary Recent submission activity feed
// @Tags Dashboard
// @Produce json
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard/recent-activities [get]
func (h *DashboardHandler) RecentActivities(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	items, err := h.dashboard.RecentActivities(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// StatusTrends godoc
// @Summary Six month research status trends
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard/research-status-trends [get]
func (h *DashboardHandler) StatusTrends(c *gin.Context) {
	trends, err := h.reports.StatusTrends(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trends, nil)
}

// ResearchStats godoc
// @Summary Headline submission counters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard/research-stats [get]
func (h *DashboardHandler) ResearchStats(c *gin.Context) {
	stats, err := h.dashboard.ResearchStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// UserTrends godoc
// @Summary Six month account registration trends
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard/user-trends [get]
func (h *DashboardHandler) UserTrends(c *gin.Context) {
	trends, err := h.reports.UserTrends(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trends, nil)
}

// UserDistribution godoc
// @Summary Account population split by kind
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard/user-distribution [get]
func (h *DashboardHandler) UserDistribution(c *gin.Context) {
	distribution, err := h.dashboard.UserDistribution(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, distribution, nil)
}

// SubmissionTrends godoc
// @Summary Six month submission volume trends
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard/submission-trends [get]
func (h *DashboardHandler) SubmissionTrends(c *gin.Context) {
	trends, err := h.reports.SubmissionTrends(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trends, nil)
}
