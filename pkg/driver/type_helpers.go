package driver

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/soundprediction/recall/pkg/types"
)

// AsInt normalizes any store-native integer representation to a plain int.
// Neo4j returns integers as int64; other boundaries may hand us float64 or
// json.Number. Missing or non-numeric values default to 0.
func AsInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		return 0
	default:
		return 0
	}
}

// AsFloat64 normalizes a numeric field to float64, defaulting to 0.
func AsFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
		return 0
	default:
		return 0
	}
}

// AsString extracts a string field, defaulting to "".
func AsString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// AsTime extracts a timestamp from the representations the store uses:
// native time values, Neo4j temporal types, or RFC 3339 text. The zero
// time is returned for anything else.
func AsTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case dbtype.LocalDateTime:
		return t.Time()
	case dbtype.Date:
		return t.Time()
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}

// ToFloat32Slice coerces a store-native list into an embedding vector.
// Non-numeric components are skipped rather than aborting the conversion.
func ToFloat32Slice(v any) []float32 {
	switch vec := v.(type) {
	case []float32:
		return vec
	case []float64:
		out := make([]float32, len(vec))
		for i, f := range vec {
			out[i] = float32(f)
		}
		return out
	case []any:
		out := make([]float32, 0, len(vec))
		for _, item := range vec {
			switch f := item.(type) {
			case float64:
				out = append(out, float32(f))
			case float32:
				out = append(out, f)
			case int64:
				out = append(out, float32(f))
			}
		}
		return out
	default:
		return nil
	}
}

// ParseMetadata parses the store-serialized metadata field into a map.
// Mildly corrupt JSON is repaired before parsing; anything unrecoverable
// degrades to an empty map, never an error.
func ParseMetadata(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case string:
		if strings.TrimSpace(m) == "" {
			return map[string]any{}
		}
		var parsed map[string]any
		if err := json.Unmarshal([]byte(m), &parsed); err == nil {
			return parsed
		}
		if repaired, err := jsonrepair.JSONRepair(m); err == nil {
			if err := json.Unmarshal([]byte(repaired), &parsed); err == nil {
				return parsed
			}
		}
		return map[string]any{}
	default:
		return map[string]any{}
	}
}

// DecodeObservations parses the store-serialized observation list.
// Entries without content are dropped; valid entries missing a timestamp
// get the current time backfilled.
func DecodeObservations(v any, now time.Time) []types.Observation {
	raw, ok := decodeObservationList(v)
	if !ok {
		return nil
	}

	observations := make([]types.Observation, 0, len(raw))
	for _, item := range raw {
		switch o := item.(type) {
		case string:
			if strings.TrimSpace(o) == "" {
				continue
			}
			observations = append(observations, types.Observation{Content: o, CreatedAt: now})
		case map[string]any:
			content := AsString(o["content"])
			if strings.TrimSpace(content) == "" {
				continue
			}
			obs := types.Observation{
				ID:        AsString(o["id"]),
				Content:   content,
				CreatedAt: AsTime(o["createdAt"]),
			}
			if obs.CreatedAt.IsZero() {
				obs.CreatedAt = now
			}
			observations = append(observations, obs)
		}
	}
	if len(observations) == 0 {
		return nil
	}
	return observations
}

func decodeObservationList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case string:
		if strings.TrimSpace(list) == "" {
			return nil, false
		}
		var parsed []any
		if err := json.Unmarshal([]byte(list), &parsed); err == nil {
			return parsed, true
		}
		if repaired, err := jsonrepair.JSONRepair(list); err == nil {
			if err := json.Unmarshal([]byte(repaired), &parsed); err == nil {
				return parsed, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// SanitizeRelationType restricts a free-form relation type to characters
// that are safe to interpolate into a Cypher relationship pattern. Neo4j
// relationship types cannot be bound as parameters.
func SanitizeRelationType(relationType string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(relationType)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ', r == '-':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "RELATES_TO"
	}
	return b.String()
}
