package analyses

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recruit-analysis/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses/single", h.analyzeSingle)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.GET("/targets/:targetId/analyses", h.listByTarget)
}

type analyzeSingleRequest struct {
	DocumentID string `json:"documentId"`
	TargetID   string `json:"targetId"`
}

func (h *Handler) analyzeSingle(c *gin.Context) {
	var req analyzeSingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	req.TargetID = strings.TrimSpace(req.TargetID)
	if req.DocumentID == "" || req.TargetID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "documentId and targetId are required", []map[string]string{
			{"field": "documentId", "issue": "required"},
			{"field": "targetId", "issue": "required"},
		})
		return
	}
	c.Set("documentId", req.DocumentID)
	c.Set("targetId", req.TargetID)

	rec, err := h.Svc.AnalyzeSingle(c.Request.Context(), req.DocumentID, req.TargetID)
	if err != nil {
		status, message := pipelineErrorStatus(err)
		respond.Error(c, status, ErrorCode(err), message, nil)
		return
	}

	respond.JSON(c, http.StatusOK, rec)
}

func pipelineErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, "documentId and targetId are required"
	case errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound, "document not found"
	case errors.Is(err, ErrExtractionFailed):
		return http.StatusUnprocessableEntity, "could not extract text from document"
	case errors.Is(err, ErrOracleUnavailable):
		return http.StatusServiceUnavailable, "analysis service unavailable"
	case errors.Is(err, ErrOracleError):
		return http.StatusBadGateway, "analysis service returned an invalid result"
	case errors.Is(err, ErrStoreWriteFailed):
		return http.StatusInternalServerError, "failed to store analysis"
	default:
		return http.StatusInternalServerError, "failed to analyze document"
	}
}

func (h *Handler) getAnalysis(c *gin.Context) {
	rec, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, rec)
}

func (h *Handler) listByTarget(c *gin.Context) {
	targetID := c.Param("targetId")
	recs, err := h.Svc.ListByTarget(c.Request.Context(), targetID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "target id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"targetId": targetID,
		"items":    recs,
	})
}
