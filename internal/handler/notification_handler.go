package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/service"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/response"
)

// NotificationHandler serves the caller's notification feed.
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List the caller's notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.service.List(c.Request.Context(), claims.UserID, claims.Kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	unread, err := h.service.CountUnread(c.Request.Context(), claims.UserID, claims.Kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"unread_count": unread})
}

// UpdateStatus godoc
// @Summary Mark a notification as read or acted on
// @Tags Notifications
// @Accept json
// @Produce json
// @Param id path string true "Notification ID"
// @Param payload body models.NotificationStatusRequest true "Status payload"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/status [put]
func (h *NotificationHandler) UpdateStatus(c *gin.Context) {
	var req models.NotificationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.MarkStatus(c.Request.Context(), c.Param("id"), claims.UserID, req.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
