package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/recall"
	"github.com/soundprediction/recall/pkg/server/dto"
	"github.com/soundprediction/recall/pkg/types"
)

// MemoryHandler handles memory and relation CRUD requests
type MemoryHandler struct {
	recall recall.Recall
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(r recall.Recall) *MemoryHandler {
	return &MemoryHandler{recall: r}
}

func observationsFromInput(inputs []dto.ObservationInput) []types.Observation {
	if len(inputs) == 0 {
		return nil
	}
	observations := make([]types.Observation, 0, len(inputs))
	for _, in := range inputs {
		observations = append(observations, types.Observation{Content: in.Content})
	}
	return observations
}

// CreateMemory handles POST /api/v1/memories
func (h *MemoryHandler) CreateMemory(c *gin.Context) {
	var req dto.CreateMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	if val := req.Validate(); !val.Valid() {
		abortWithValidation(c, dto.ValidationDetails(val))
		return
	}

	memory, err := h.recall.CreateMemory(c.Request.Context(), &types.Memory{
		ID:           req.ID,
		Name:         req.Name,
		MemoryType:   req.MemoryType,
		Metadata:     req.Metadata,
		Observations: observationsFromInput(req.Observations),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, memory)
}

// GetMemory handles GET /api/v1/memories/:id
func (h *MemoryHandler) GetMemory(c *gin.Context) {
	memory, err := h.recall.GetMemory(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, memory)
}

// UpdateMemory handles PUT /api/v1/memories/:id
func (h *MemoryHandler) UpdateMemory(c *gin.Context) {
	var req dto.UpdateMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	if val := req.Validate(); !val.Valid() {
		abortWithValidation(c, dto.ValidationDetails(val))
		return
	}

	memory, err := h.recall.UpdateMemory(c.Request.Context(), &types.Memory{
		ID:           c.Param("id"),
		Name:         req.Name,
		MemoryType:   req.MemoryType,
		Metadata:     req.Metadata,
		Observations: observationsFromInput(req.Observations),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, memory)
}

// DeleteMemory handles DELETE /api/v1/memories/:id
func (h *MemoryHandler) DeleteMemory(c *gin.Context) {
	if err := h.recall.DeleteMemory(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true})
}

// CreateRelation handles POST /api/v1/relations
func (h *MemoryHandler) CreateRelation(c *gin.Context) {
	var req dto.RelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	if val := req.Validate(); !val.Valid() {
		abortWithValidation(c, dto.ValidationDetails(val))
		return
	}

	err := h.recall.CreateRelation(c.Request.Context(), &types.Relation{
		FromID:       req.FromID,
		ToID:         req.ToID,
		RelationType: req.RelationType,
		Strength:     req.Strength,
		Source:       types.RelationSource(req.Source),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Result{Success: true})
}

// DeleteRelation handles DELETE /api/v1/relations
func (h *MemoryHandler) DeleteRelation(c *gin.Context) {
	var req dto.RelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	err := h.recall.DeleteRelation(c.Request.Context(), req.FromID, req.ToID, req.RelationType)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Result{Success: true})
}
