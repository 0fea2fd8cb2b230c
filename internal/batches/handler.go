package batches

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"recruit-analysis/internal/documents"
	"recruit-analysis/internal/shared/server/respond"
)

const maxUploadFiles = 50

// Handler wires HTTP handlers to the batch service.
type Handler struct {
	Svc     *Service
	Docs    *documents.Service
	limiter *pollLimiter
}

// NewHandler constructs a Handler. A positive pollInterval throttles
// progress polls per client and job.
func NewHandler(svc *Service, docs *documents.Service, pollInterval time.Duration) *Handler {
	h := &Handler{Svc: svc, Docs: docs}
	if pollInterval > 0 {
		h.limiter = newPollLimiter(pollInterval, nil)
	}
	return h
}

// RegisterRoutes attaches batch routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/batches", h.submit)
	rg.POST("/batches/upload", h.uploadAndSubmit)
	rg.GET("/batches/:id/progress", h.progress)
}

type submitRequest struct {
	DocumentIDs []string `json:"documentIds"`
	TargetID    string   `json:"targetId"`
}

func (h *Handler) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.DocumentIDs == nil {
		req.DocumentIDs = []string{}
	}
	h.submitAndRespond(c, req.DocumentIDs, req.TargetID, nil)
}

func (h *Handler) uploadAndSubmit(c *gin.Context) {
	if h.Docs == nil {
		respond.Error(c, http.StatusNotImplemented, "not_configured", "uploads are not configured", nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, documents.MaxUploadSize*maxUploadFiles)

	targetID := strings.TrimSpace(c.PostForm("targetId"))
	if targetID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "targetId is required", nil)
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form is required", nil)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one file is required", nil)
		return
	}
	if len(files) > maxUploadFiles {
		respond.Error(c, http.StatusBadRequest, "validation_error", "too many files", []map[string]string{
			{"field": "files", "issue": "max " + strconv.Itoa(maxUploadFiles)},
		})
		return
	}

	documentIDs := make([]string, 0, len(files))
	for _, fh := range files {
		doc, err := h.uploadOne(c, targetID, fh)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "upload_failed", "failed to store "+fh.Filename, nil)
			return
		}
		documentIDs = append(documentIDs, doc.ID)
	}

	h.submitAndRespond(c, documentIDs, targetID, documentIDs)
}

func (h *Handler) uploadOne(c *gin.Context, targetID string, fh *multipart.FileHeader) (documents.Document, error) {
	if fh.Size > documents.MaxUploadSize {
		return documents.Document{}, errors.New("file too large")
	}
	file, err := fh.Open()
	if err != nil {
		return documents.Document{}, err
	}
	defer file.Close()
	return h.Docs.Upload(c.Request.Context(), targetID, fh.Filename, file)
}

func (h *Handler) submitAndRespond(c *gin.Context, documentIDs []string, targetID string, uploaded []string) {
	jobID, err := h.Svc.SubmitBatch(c.Request.Context(), documentIDs, targetID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to submit batch", nil)
		}
		return
	}

	c.Set("jobId", jobID)
	c.Set("targetId", strings.TrimSpace(targetID))
	resp := gin.H{"jobId": jobID}
	if uploaded != nil {
		resp["documentIds"] = uploaded
	}
	respond.JSON(c, http.StatusAccepted, resp)
}

func (h *Handler) progress(c *gin.Context) {
	jobID := c.Param("id")
	c.Set("jobId", jobID)
	if !h.limiter.Allow(c.ClientIP(), jobID) {
		c.Header("Retry-After", strconv.Itoa(h.limiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "polling too frequently", nil)
		return
	}

	progress, err := h.Svc.GetProgress(c.Request.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "batch job not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch progress", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, progress)
}
