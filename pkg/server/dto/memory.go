package dto

import (
	v "github.com/cohesivestack/valgo"
)

// ObservationInput is one observation supplied on create or update.
type ObservationInput struct {
	Content string `json:"content"`
}

// CreateMemoryRequest is the body of POST /api/v1/memories.
type CreateMemoryRequest struct {
	ID           string             `json:"id,omitempty"`
	Name         string             `json:"name"`
	MemoryType   string             `json:"memoryType,omitempty"`
	Metadata     map[string]any     `json:"metadata,omitempty"`
	Observations []ObservationInput `json:"observations,omitempty"`
}

// Validate checks the request shape.
func (r *CreateMemoryRequest) Validate() *v.Validation {
	return v.Is(v.String(r.Name, "name").Not().Blank())
}

// UpdateMemoryRequest is the body of PUT /api/v1/memories/:id.
type UpdateMemoryRequest struct {
	Name         string             `json:"name"`
	MemoryType   string             `json:"memoryType,omitempty"`
	Metadata     map[string]any     `json:"metadata,omitempty"`
	Observations []ObservationInput `json:"observations,omitempty"`
}

// Validate checks the request shape.
func (r *UpdateMemoryRequest) Validate() *v.Validation {
	return v.Is(v.String(r.Name, "name").Not().Blank())
}

// RelationRequest is the body of POST /api/v1/relations.
type RelationRequest struct {
	FromID       string  `json:"fromId"`
	ToID         string  `json:"toId"`
	RelationType string  `json:"relationType"`
	Strength     float64 `json:"strength,omitempty"`
	Source       string  `json:"source,omitempty"`
}

// Validate checks the request shape.
func (r *RelationRequest) Validate() *v.Validation {
	val := v.Is(
		v.String(r.FromID, "fromId").Not().Blank(),
		v.String(r.ToID, "toId").Not().Blank(),
		v.String(r.RelationType, "relationType").Not().Blank(),
	)
	if r.Strength != 0 {
		val.Is(v.Number(r.Strength, "strength").GreaterOrEqualTo(0.0).LessOrEqualTo(1.0))
	}
	if r.Source != "" {
		val.Is(v.String(r.Source, "source").InSlice([]string{"agent", "user", "system"}))
	}
	return val
}
