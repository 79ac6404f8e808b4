package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/graphwalk"
	"github.com/soundprediction/graphwalk/pkg/server/dto"
	"github.com/soundprediction/graphwalk/pkg/traversal"
	"github.com/soundprediction/graphwalk/pkg/types"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// TraverseHandler handles traversal requests
type TraverseHandler struct {
	client *graphwalk.Client
	logger *slog.Logger
}

// NewTraverseHandler creates a new traverse handler
func NewTraverseHandler(client *graphwalk.Client, logger *slog.Logger) *TraverseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TraverseHandler{
		client: client,
		logger: logger,
	}
}

// Traverse handles POST /api/v1/traverse
func (h *TraverseHandler) Traverse(c *gin.Context) {
	var req dto.TraverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	desc, err := h.client.NewDescription(req.Options())
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_traversal", err.Error())
		return
	}

	res, err := h.client.Collect(c.Request.Context(), desc, dto.MaxResponsePaths, req.Start...)
	if err != nil {
		status, code := classifyError(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(c.Request.Context(), "Traversal request failed",
				"request_id", c.GetString(RequestIDKey),
				"error", err)
		}
		writeError(c, status, code, err.Error())
		return
	}

	paths := make([]dto.PathResult, len(res.Paths))
	for i, p := range res.Paths {
		paths[i] = dto.NewPathResult(p)
	}
	c.JSON(http.StatusOK, dto.TraverseResponse{
		ExecutionID: res.ExecutionID,
		Paths:       paths,
		Stats:       res.Stats,
		Truncated:   res.Truncated,
	})
}

// GetVertex handles GET /api/v1/vertices/:id
func (h *TraverseHandler) GetVertex(c *gin.Context) {
	v, err := h.client.GetVertex(c.Request.Context(), c.Param("id"))
	if err != nil {
		if types.IsStale(err) {
			writeError(c, http.StatusNotFound, "not_found", err.Error())
			return
		}
		writeError(c, http.StatusInternalServerError, "lookup_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, v)
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, graphwalk.ErrStartNotFound):
		return http.StatusNotFound, "not_found"
	case types.IsStale(err):
		// the graph changed under a running traversal
		return http.StatusConflict, "stale_graph"
	case errors.Is(err, traversal.ErrInvalidConfiguration),
		errors.Is(err, traversal.ErrNoStartVertex):
		return http.StatusBadRequest, "invalid_traversal"
	default:
		return http.StatusInternalServerError, "traversal_failed"
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:     code,
		Message:   message,
		Code:      status,
		RequestID: c.GetString(RequestIDKey),
	})
}
