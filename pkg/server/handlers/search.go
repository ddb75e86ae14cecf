package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/recall"
	"github.com/soundprediction/recall/pkg/errs"
	"github.com/soundprediction/recall/pkg/search"
	"github.com/soundprediction/recall/pkg/server/dto"
	"github.com/soundprediction/recall/pkg/types"
)

// SearchHandler handles retrieval requests
type SearchHandler struct {
	recall recall.Recall
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(r recall.Recall) *SearchHandler {
	return &SearchHandler{recall: r}
}

// statusForError maps an error code to an HTTP status
func statusForError(err error) int {
	switch errs.CodeOf(err) {
	case errs.CodeValidation:
		return http.StatusBadRequest
	case errs.CodeNotFound:
		return http.StatusNotFound
	case errs.CodeService:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), dto.ErrorResponse{
		Error:   string(errs.CodeOf(err)),
		Message: err.Error(),
	})
}

func abortWithValidation(c *gin.Context, details map[string][]string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   string(errs.CodeValidation),
		Message: "invalid request",
		Details: details,
	})
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	if val := req.Validate(); !val.Valid() {
		abortWithValidation(c, dto.ValidationDetails(val))
		return
	}

	opts := &search.Options{
		Limit:               req.Limit,
		MemoryTypes:         req.MemoryTypes,
		Threshold:           req.Threshold,
		IncludeGraphContext: req.IncludeGraphContext,
		DateFilters: search.DateFilterOptions{
			CreatedAfter:  req.CreatedAfter,
			CreatedBefore: req.CreatedBefore,
			ModifiedSince: req.ModifiedSince,
			AccessedSince: req.AccessedSince,
		},
	}

	results, err := h.recall.Search(c.Request.Context(), req.Query, opts)
	if err != nil {
		abortWithError(c, err)
		return
	}

	projected, err := search.ApplyContextLevel(results, types.ContextLevel(req.ContextLevel))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SearchResponse{Results: projected, Total: len(projected)})
}

// Traverse handles POST /api/v1/traverse
func (h *SearchHandler) Traverse(c *gin.Context) {
	var req dto.TraverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	if val := req.Validate(); !val.Valid() {
		abortWithValidation(c, dto.ValidationDetails(val))
		return
	}

	nodes, err := h.recall.Traverse(c.Request.Context(), search.TraversalOptions{
		TraverseFrom: req.TraverseFrom,
		MaxDepth:     req.MaxDepth,
		Direction:    types.TraversalDirection(req.TraverseDirection),
		Relations:    req.TraverseRelations,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nodes": nodes, "total": len(nodes)})
}
