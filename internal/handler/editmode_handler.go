package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/service"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/response"
)

// EditModeHandler toggles and reports the admin edit-mode lease.
type EditModeHandler struct {
	service *service.EditLockService
}

// NewEditModeHandler constructs the handler.
func NewEditModeHandler(svc *service.EditLockService) *EditModeHandler {
	return &EditModeHandler{service: svc}
}

// Toggle godoc
// @Summary Enable or disable edit mode
// @Description Enabling acquires the shared lease; only the holder or the
// @Description super admin can disable it while held.
// @Tags EditMode
// @Accept json
// @Produce json
// @Param payload body models.EditModeRequest true "Toggle payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/edit-mode [post]
func (h *EditModeHandler) Toggle(c *gin.Context) {
	var req models.EditModeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid edit mode payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	lock, err := h.service.Toggle(c.Request.Context(), claims, *req.Enabled)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lock, nil)
}

// Status godoc
// @Summary Current edit-mode lease state
// @Tags EditMode
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/edit-mode [get]
func (h *EditModeHandler) Status(c *gin.Context) {
	lock, err := h.service.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lock, nil)
}
