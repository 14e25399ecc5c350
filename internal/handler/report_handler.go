package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/service"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/response"
)

// ReportHandler exposes reporting endpoints.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

func reportFilterFromQuery(c *gin.Context) (models.ReportFilter, error) {
	filter := models.ReportFilter{Course: strings.TrimSpace(c.Query("course"))}
	if raw := c.Query("startDate"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
		}
		filter.StartDate = start
	}
	if raw := c.Query("endDate"); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
		}
		filter.EndDate = end
	}
	return filter, nil
}

// Generate godoc
// @Summary Generate a report over accepted research
// @Tags Reports
// @Produce json
// @Param type query string true "Report type" Enums(submissions, status, course)
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param course query string false "Course filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/reports [get]
func (h *ReportHandler) Generate(c *gin.Context) {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.service.Generate(c.Request.Context(), models.ReportType(c.DefaultQuery("type", string(models.ReportSubmissions))), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Courses godoc
// @Summary Course names available as a report filter
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/courses [get]
func (h *ReportHandler) Courses(c *gin.Context) {
	courses, err := h.service.Courses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Download godoc
// @Summary Export a report as a file download
// @Tags Reports
// @Produce octet-stream
// @Param type query string true "Report type" Enums(submissions, status, course)
// @Param format query string true "Export format" Enums(csv, xlsx, pdf)
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param course query string false "Course filter"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /admin/reports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Export(
		c.Request.Context(),
		models.ReportType(c.DefaultQuery("type", string(models.ReportSubmissions))),
		models.ReportFormat(c.DefaultQuery("format", string(models.FormatCSV))),
		filter,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
