package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/recall/pkg/driver"
	"github.com/soundprediction/recall/pkg/embedder"
	"github.com/soundprediction/recall/pkg/errs"
	"github.com/soundprediction/recall/pkg/types"
)

const (
	// DefaultLimit is applied when the caller does not bound the result set.
	DefaultLimit = 10

	// DefaultThreshold is the minimum similarity for semantic results.
	DefaultThreshold = 0.1

	// candidateMultiplier controls how many embedding candidates are pulled
	// from the store per requested result. Similarity is computed client
	// side, so the candidate pool has to be wider than the final page.
	candidateMultiplier = 20
)

// Options are the caller-facing search parameters. Zero values select the
// documented defaults.
type Options struct {
	// Limit bounds the result set. Zero means DefaultLimit; negative is a
	// validation error.
	Limit int `json:"limit,omitempty"`

	// MemoryTypes restricts results to the given type tags. Empty means no
	// filter.
	MemoryTypes []string `json:"memoryTypes,omitempty"`

	// Threshold is the minimum cosine similarity for semantic results.
	// Zero means DefaultThreshold; values outside [0,1] are rejected.
	Threshold float64 `json:"threshold,omitempty"`

	// IncludeGraphContext controls depth-2 neighborhood enrichment. Nil
	// means enabled.
	IncludeGraphContext *bool `json:"includeGraphContext,omitempty"`

	// DateFilters restrict results by creation, modification, or access
	// time.
	DateFilters DateFilterOptions `json:"dateFilters,omitempty"`
}

func (o Options) graphContextRequested() bool {
	return o.IncludeGraphContext == nil || *o.IncludeGraphContext
}

// Searcher orchestrates a search request: classify the query, dispatch to
// the matching strategy, and optionally enrich results with graph context.
// It is stateless beyond its collaborators and safe for concurrent use.
type Searcher struct {
	store  driver.GraphDriver
	embed  embedder.Client
	logger *slog.Logger
}

// NewSearcher creates a searcher over the given store and embedding client.
func NewSearcher(store driver.GraphDriver, embed embedder.Client, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{store: store, embed: embed, logger: logger}
}

// Search runs one orchestration: validate, classify, execute the chosen
// strategy, enrich. The classifier's chosen strategy is authoritative;
// there is no cross-strategy fallback within a single call. Zero matches
// yield an empty slice, not an error.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) ([]types.SearchResult, error) {
	if opts.Limit < 0 {
		return nil, errs.Validation("limit must be positive, got %d", opts.Limit)
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, errs.Validation("threshold must be within [0,1], got %g", opts.Threshold)
	}
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if !opts.DateFilters.Empty() {
		if err := ValidateDateFilters(opts.DateFilters, time.Now().UTC()); err != nil {
			return nil, err
		}
	}

	intent := Classify(query)
	s.logger.Debug("classified query",
		"type", intent.Type,
		"confidence", intent.Confidence,
		"exact", intent.Preprocessing.RequiresExactMatch)

	var (
		results []types.SearchResult
		err     error
	)
	switch intent.Type {
	case types.Wildcard:
		results, err = s.searchWildcard(ctx, opts)
	case types.TechnicalIdentifier:
		results, err = s.searchIdentifier(ctx, query, opts)
	case types.ExactSearch:
		results, err = s.searchExact(ctx, intent.Preprocessing.Normalized, opts)
	default:
		results, err = s.searchSemantic(ctx, query, opts)
	}
	if err != nil {
		return nil, errs.Wrap(errs.CodeOperation, fmt.Sprintf("search for %q failed", query), err)
	}

	if opts.graphContextRequested() && len(results) > 0 {
		if err := s.attachGraphContext(ctx, results); err != nil {
			return nil, errs.Wrap(errs.CodeOperation, fmt.Sprintf("graph context enrichment for %q failed", query), err)
		}
	}
	return results, nil
}
