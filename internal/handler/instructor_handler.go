package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/service"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/response"
)

// InstructorHandler exposes the instructor workspace endpoints.
type InstructorHandler struct {
	students *service.StudentService
	advisers *service.AdviserService
}

// NewInstructorHandler constructs the handler.
func NewInstructorHandler(students *service.StudentService, advisers *service.AdviserService) *InstructorHandler {
	return &InstructorHandler{students: students, advisers: advisers}
}

// ListSubmissions godoc
// @Summary List submissions by the caller's managed students
// @Tags Instructor
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructor/submissions [get]
func (h *InstructorHandler) ListSubmissions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.students.ListManagedSubmissions(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ListStudents godoc
// @Summary List the caller's managed students
// @Tags Instructor
// @Produce json
// @Param search query string false "Search by name or student number"
// @Success 200 {object} response.Envelope
// @Router /instructor/students [get]
func (h *InstructorHandler) ListStudents(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.students.ListManagedStudents(c.Request.Context(), claims, strings.TrimSpace(c.Query("search")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// AddStudent godoc
// @Summary Claim a student into the caller's section
// @Tags Instructor
// @Accept json
// @Produce json
// @Param payload body models.AddManagedStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /instructor/students [post]
func (h *InstructorHandler) AddStudent(c *gin.Context) {
	var req models.AddManagedStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid student payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	student, err := h.students.AddManagedStudent(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// RemoveStudent godoc
// @Summary Release a managed student
// @Tags Instructor
// @Produce json
// @Param studentNumber path string true "Student number"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /instructor/students/{studentNumber} [delete]
func (h *InstructorHandler) RemoveStudent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.students.RemoveManagedStudent(c.Request.Context(), claims, c.Param("studentNumber")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AvailableResearch godoc
// @Summary List pending research without an assigned adviser
// @Tags Instructor
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructor/available-research [get]
func (h *InstructorHandler) AvailableResearch(c *gin.Context) {
	items, err := h.advisers.ListAvailableResearch(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// SubmitAdviserRequest godoc
// @Summary Request to advise a research submission
// @Tags Instructor
// @Accept json
// @Produce json
// @Param payload body models.CreateAdviserRequestRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /instructor/adviser-requests [post]
func (h *InstructorHandler) SubmitAdviserRequest(c *gin.Context) {
	var req models.CreateAdviserRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.advisers.SubmitRequest(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// ListAdviserRequests godoc
// @Summary List the caller's adviser requests
// @Tags Instructor
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructor/adviser-requests [get]
func (h *InstructorHandler) ListAdviserRequests(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.advisers.ListOwn(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
