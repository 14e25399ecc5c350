package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/service"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/response"
)

// AdviserRequestHandler exposes the admin view of the adviser request queue.
type AdviserRequestHandler struct {
	service *service.AdviserService
}

// NewAdviserRequestHandler constructs the handler.
func NewAdviserRequestHandler(svc *service.AdviserService) *AdviserRequestHandler {
	return &AdviserRequestHandler{service: svc}
}

// List godoc
// @Summary List all adviser requests
// @Tags AdviserRequests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/adviser-requests [get]
func (h *AdviserRequestHandler) List(c *gin.Context) {
	items, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Stats godoc
// @Summary Adviser request queue statistics
// @Tags AdviserRequests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/adviser-requests/stats [get]
func (h *AdviserRequestHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Decide godoc
// @Summary Approve or reject an adviser request
// @Tags AdviserRequests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body models.DecideAdviserRequestRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/adviser-requests/{id}/status [put]
func (h *AdviserRequestHandler) Decide(c *gin.Context) {
	var req models.DecideAdviserRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid decision payload"))
		return
	}
	request, err := h.service.Decide(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
