package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/service"
	appErrors "github.com/campus-ris/ris-api/pkg/errors"
	"github.com/campus-ris/ris-api/pkg/response"
	"github.com/campus-ris/ris-api/pkg/storage"
)

type artifactStore interface {
	SaveStream(filename string, r io.Reader) (*storage.StoredFile, error)
	Open(fileRef string) (*os.File, error)
	Delete(fileRef string) error
}

// ResearchHandler manages research submission endpoints.
type ResearchHandler struct {
	service *service.ResearchService
	store   artifactStore
}

// NewResearchHandler constructs the handler.
func NewResearchHandler(svc *service.ResearchService, store artifactStore) *ResearchHandler {
	return &ResearchHandler{service: svc, store: store}
}

// Submit godoc
// @Summary Submit a research artifact
// @Tags Research
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param abstract formData string false "Abstract"
// @Param authors formData string true "Authors"
// @Param keywords formData string false "Keywords"
// @Param file formData file true "Research document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /research [post]
func (h *ResearchHandler) Submit(c *gin.Context) {
	var req models.SubmitResearchRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submission payload"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stored, err := h.saveUpload(fileHeader.Filename, fileHeader)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.FileRef = stored.FileRef
	req.ExternalFileID = stored.ExternalFileID

	research, err := h.service.Submit(c.Request.Context(), claims, req)
	if err != nil {
		h.store.Delete(stored.FileRef) //nolint:errcheck
		response.Error(c, err)
		return
	}
	response.Created(c, research)
}

// ListOwn godoc
// @Summary List the caller's research submissions
// @Tags Research
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /research [get]
func (h *ResearchHandler) ListOwn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.service.ListOwn(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// List godoc
// @Summary List research submissions
// @Tags Research
// @Produce json
// @Param status query string false "Status filter"
// @Param search query string false "Search in title and authors"
// @Param unassigned query bool false "Only submissions without an adviser"
// @Param archived query bool false "Include archived"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/research [get]
func (h *ResearchHandler) List(c *gin.Context) {
	filter := models.ResearchFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ResearchStatus(raw)
		if !models.ValidResearchStatus(status) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status filter"))
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("unassigned"); raw != "" {
		filter.Unassigned, _ = strconv.ParseBool(raw)
	}
	if raw := c.Query("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err == nil {
			filter.Archived = &archived
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	items, total, err := h.service.List(c.Request.Context(), filter)
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

// Get godoc
// @Summary Get a research submission
// @Tags Research
// @Produce json
// @Param id path string true "Research ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /research/{id} [get]
func (h *ResearchHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.service.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Edit or resubmit an owned research submission
// @Description Permitted only while the submission is Pending or Revision.
// @Description A replacement file is optional; resubmission resets the status to Pending.
// @Tags Research
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Research ID"
// @Param title formData string true "Title"
// @Param abstract formData string false "Abstract"
// @Param authors formData string true "Authors"
// @Param keywords formData string false "Keywords"
// @Param file formData file false "Replacement document"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /research/{id} [put]
func (h *ResearchHandler) Update(c *gin.Context) {
	var req models.UpdateResearchRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submission payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var stored *storage.StoredFile
	if fileHeader, err := c.FormFile("file"); err == nil {
		stored, err = h.saveUpload(fileHeader.Filename, fileHeader)
		if err != nil {
			response.Error(c, err)
			return
		}
		req.FileRef = stored.FileRef
		req.ExternalFileID = stored.ExternalFileID
	}

	research, err := h.service.Update(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		if stored != nil {
			h.store.Delete(stored.FileRef) //nolint:errcheck
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, research, nil)
}

// UpdateStatus godoc
// @Summary Record a review decision
// @Tags Research
// @Accept json
// @Produce json
// @Param id path string true "Research ID"
// @Param payload body models.ResearchStatusRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /research/{id}/status [put]
func (h *ResearchHandler) UpdateStatus(c *gin.Context) {
	var req models.ResearchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.service.UpdateStatus(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Archive godoc
// @Summary Archive a research submission
// @Tags Research
// @Produce json
// @Param id path string true "Research ID"
// @Success 204
// @Router /research/{id}/archive [put]
func (h *ResearchHandler) Archive(c *gin.Context) {
	if err := h.service.SetArchived(c.Request.Context(), c.Param("id"), true); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Restore godoc
// @Summary Restore an archived research submission
// @Tags Research
// @Produce json
// @Param id path string true "Research ID"
// @Success 204
// @Router /research/{id}/restore [put]
func (h *ResearchHandler) Restore(c *gin.Context) {
	if err := h.service.SetArchived(c.Request.Context(), c.Param("id"), false); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadToken godoc
// @Summary Issue a signed download token for the artifact
// @Tags Research
// @Produce json
// @Param id path string true "Research ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /research/{id}/download-token [get]
func (h *ResearchHandler) DownloadToken(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	token, expiresAt, err := h.service.GenerateDownloadToken(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	}, nil)
}

// Download godoc
// @Summary Download the research artifact via signed token
// @Tags Research
// @Produce octet-stream
// @Param id path string true "Research ID"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /research/{id}/file [get]
func (h *ResearchHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	fileRef, err := h.service.ResolveDownload(c.Request.Context(), c.Param("id"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.store.Open(fileRef)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "artifact not found"))
		return
	}
	defer file.Close() //nolint:errcheck
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat artifact"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filepath.Base(fileRef)))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", file, nil)
}

func (h *ResearchHandler) saveUpload(filename string, fileHeader *multipart.FileHeader) (*storage.StoredFile, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	defer src.Close() //nolint:errcheck
	stored, err := h.store.SaveStream(filename, src)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store artifact")
	}
	return stored, nil
}
