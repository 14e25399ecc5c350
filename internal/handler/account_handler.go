package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/repository"
	"github.com/campus-ris/ris-api/internal/service"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/response"
)

// AccountHandler covers the admin account surface and self-service profile.
type AccountHandler struct {
	service *service.AccountService
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{service: svc}
}

// Profile godoc
// @Summary Get the caller's profile
// @Tags Accounts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *AccountHandler) Profile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	info, err := h.service.Profile(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Tags Accounts
// @Accept json
// @Produce json
// @Param payload body models.UpdateProfileRequest true "Profile payload"
// @Success 204
// @Router /profile [put]
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid profile payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.UpdateProfile(c.Request.Context(), claims, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListStudents godoc
// @Summary List student accounts
// @Tags Accounts
// @Produce json
// @Param search query string false "Search by name or student number"
// @Param archived query bool false "Archived filter"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/accounts/students [get]
func (h *AccountHandler) ListStudents(c *gin.Context) {
	filter := repository.StudentFilter{
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err == nil {
			filter.Archived = &archived
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	items, total, err := h.service.ListStudents(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// GetStudent godoc
// @Summary Get a student account
// @Tags Accounts
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/accounts/students/{id} [get]
func (h *AccountHandler) GetStudent(c *gin.Context) {
	student, err := h.service.GetStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// ArchiveStudent godoc
// @Summary Archive a student account
// @Tags Accounts
// @Produce json
// @Param id path string true "Student ID"
// @Success 204
// @Router /admin/accounts/students/{id}/archive [put]
func (h *AccountHandler) ArchiveStudent(c *gin.Context) {
	if err := h.service.SetStudentArchived(c.Request.Context(), c.Param("id"), true); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RestoreStudent godoc
// @Summary Restore an archived student account
// @Tags Accounts
// @Produce json
// @Param id path string true "Student ID"
// @Success 204
// @Router /admin/accounts/students/{id}/restore [put]
func (h *AccountHandler) RestoreStudent(c *gin.Context) {
	if err := h.service.SetStudentArchived(c.Request.Context(), c.Param("id"), false); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListInstructors godoc
// @Summary List instructor accounts
// @Tags Accounts
// @Produce json
// @Param search query string false "Search by name or email"
// @Param archived query bool false "Archived filter"
// @Success 200 {object} response.Envelope
// @Router /admin/accounts/instructors [get]
func (h *AccountHandler) ListInstructors(c *gin.Context) {
	var archived *bool
	if raw := c.Query("archived"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err == nil {
			archived = &value
		}
	}
	items, err := h.service.ListInstructors(c.Request.Context(), strings.TrimSpace(c.Query("search")), archived)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// GetInstructor godoc
// @Summary Get an instructor account
// @Tags Accounts
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/accounts/instructors/{id} [get]
func (h *AccountHandler) GetInstructor(c *gin.Context) {
	instructor, err := h.service.GetInstructor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor, nil)
}

// ArchiveInstructor godoc
// @Summary Archive an instructor account
// @Tags Accounts
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 204
// @Router /admin/accounts/instructors/{id}/archive [put]
func (h *AccountHandler) ArchiveInstructor(c *gin.Context) {
	if err := h.service.SetInstructorArchived(c.Request.Context(), c.Param("id"), true); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RestoreInstructor godoc
// @Summary Restore an archived instructor account
// @Tags Accounts
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 204
// @Router /admin/accounts/instructors/{id}/restore [put]
func (h *AccountHandler) RestoreInstructor(c *gin.Context) {
	if err := h.service.SetInstructorArchived(c.Request.Context(), c.Param("id"), false); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateAdmin godoc
// @Summary Provision an admin account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param payload body models.CreateAdminRequest true "Admin payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/admins [post]
func (h *AccountHandler) CreateAdmin(c *gin.Context) {
	var req models.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid admin payload"))
		return
	}
	admin, err := h.service.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}

// ListAdmins godoc
// @Summary List admin accounts
// @Tags Accounts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/admins [get]
func (h *AccountHandler) ListAdmins(c *gin.Context) {
	items, err := h.service.ListAdmins(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// SetAdminActive godoc
// @Summary Activate or deactivate an admin account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param payload body models.SetActiveRequest true "Activation payload"
// @Success 204
// @Router /admin/admins/{id}/status [put]
func (h *AccountHandler) SetAdminActive(c *gin.Context) {
	var req models.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid activation payload"))
		return
	}
	if err := h.service.SetAdminActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetAdminPermissions godoc
// @Summary Replace an admin's permission set
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param payload body models.UpdateAdminPermissionsRequest true "Permissions payload"
// @Success 204
// @Router /admin/admins/{id}/permissions [put]
func (h *AccountHandler) SetAdminPermissions(c *gin.Context) {
	var req models.UpdateAdminPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid permissions payload"))
		return
	}
	if err := h.service.SetAdminPermissions(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
