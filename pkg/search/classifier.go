package search

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/soundprediction/recall/pkg/types"
)

// Fixed confidence per category. The values establish a total order over
// the decision table; they are never computed.
const (
	ConfidenceWildcard = 1.0
	ConfidenceUUID     = 0.95
	ConfidenceSemver   = 0.9
	ConfidenceBase64   = 0.85
	ConfidenceExact    = 0.9
	ConfidenceSemantic = 0.8
	base64MinLength    = 9 // strictly longer than 8 characters
)

// Identifier shapes are matched case-insensitively on the original string;
// case carries no semantic weight for hex or base64.
var (
	uuidPattern   = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	semverPattern = regexp.MustCompile(`(?i)^v?\d+(\.\d+){2,}(-[0-9a-z.-]+)?$`)
	base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+=*$`)
)

// Classify decides which retrieval strategy a free-text query should use.
// The decision table is ordered; the first match wins:
//
//  1. wildcard: empty, "all", or "*"
//  2. technical identifier: UUID, semantic version, or base64-like token
//  3. exact: no alphabetic letters at all (digits, symbols, operators)
//  4. semantic: everything else
//
// Classify is pure; input-presence validation happens at the request
// boundary.
func Classify(query string) types.QueryIntent {
	normalized := types.NormalizeQuery(query)
	trimmed := strings.TrimSpace(query)

	intent := types.QueryIntent{}
	intent.Preprocessing.Normalized = normalized

	if normalized == "" || normalized == "all" || normalized == "*" {
		intent.Type = types.Wildcard
		intent.Confidence = ConfidenceWildcard
		return intent
	}

	if confidence, ok := matchIdentifier(trimmed); ok {
		intent.Type = types.TechnicalIdentifier
		intent.Confidence = confidence
		intent.Preprocessing.IsSpecialPattern = true
		intent.Preprocessing.RequiresExactMatch = true
		return intent
	}

	if !containsLetter(normalized) {
		intent.Type = types.ExactSearch
		intent.Confidence = ConfidenceExact
		intent.Preprocessing.IsSpecialPattern = true
		intent.Preprocessing.RequiresExactMatch = true
		return intent
	}

	intent.Type = types.SemanticSearch
	intent.Confidence = ConfidenceSemantic
	return intent
}

// matchIdentifier checks the three identifier shapes in confidence order.
func matchIdentifier(query string) (float64, bool) {
	switch {
	case uuidPattern.MatchString(query):
		return ConfidenceUUID, true
	case semverPattern.MatchString(query):
		return ConfidenceSemver, true
	case len(query) >= base64MinLength && base64Pattern.MatchString(query):
		return ConfidenceBase64, true
	default:
		return 0, false
	}
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
