package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/soundprediction/recall/pkg/driver"
	"github.com/soundprediction/recall/pkg/errs"
	"github.com/soundprediction/recall/pkg/types"
)

// buildFilterClauses combines the memory-type allow-list and any date
// filters into WHERE fragments shared by every strategy.
func buildFilterClauses(opts Options, now time.Time) ([]string, map[string]any, error) {
	var clauses []string
	params := make(map[string]any)

	if len(opts.MemoryTypes) > 0 {
		clauses = append(clauses, "m.memory_type IN $memory_types")
		params["memory_types"] = opts.MemoryTypes
	}
	if !opts.DateFilters.Empty() {
		filter, err := ProcessDateFilters(opts.DateFilters, now)
		if err != nil {
			return nil, nil, err
		}
		clauses = append(clauses, filter.Predicate)
		for k, v := range filter.Params {
			params[k] = v
		}
	}
	return clauses, params, nil
}

func whereClause(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(clauses, " AND ")
}

// searchWildcard matches every memory subject to the caller's filters.
// With no ranking signal available every row scores 1.0; recently accessed
// memories come first so the truncation is not arbitrary.
func (s *Searcher) searchWildcard(ctx context.Context, opts Options) ([]types.SearchResult, error) {
	clauses, params, err := buildFilterClauses(opts, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	params["limit"] = int64(opts.Limit)

	rows, err := s.store.ExecuteQuery(ctx, `
		MATCH (m:Memory)
		`+whereClause(clauses)+`
		RETURN`+driver.MemoryReturnClause()+`
		ORDER BY m.last_accessed DESC
		LIMIT $limit`, params)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, types.SearchResult{
			Memory:    driver.MemoryFromRow(row),
			Score:     1.0,
			MatchType: types.MatchWildcard,
		})
	}
	return results, nil
}

// searchExact matches literal name equality, name substring, or metadata
// substring, scored by match completeness. The query arrives normalized.
func (s *Searcher) searchExact(ctx context.Context, normalized string, opts Options) ([]types.SearchResult, error) {
	clauses, params, err := buildFilterClauses(opts, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	clauses = append([]string{`(toLower(m.name) = $query
			OR toLower(m.name) CONTAINS $query
			OR toLower(m.metadata) CONTAINS $query)`}, clauses...)
	params["query"] = normalized
	params["limit"] = int64(opts.Limit)

	rows, err := s.store.ExecuteQuery(ctx, `
		MATCH (m:Memory)
		`+whereClause(clauses)+`
		RETURN`+driver.MemoryReturnClause()+`,
			CASE
				WHEN toLower(m.name) = $query THEN 1.0
				WHEN toLower(m.name) CONTAINS $query THEN 0.85
				ELSE 0.7
			END AS score
		ORDER BY score DESC, m.name
		LIMIT $limit`, params)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, types.SearchResult{
			Memory:    driver.MemoryFromRow(row),
			Score:     driver.AsFloat64(row["score"]),
			MatchType: types.MatchMetadata,
		})
	}
	return results, nil
}

// searchIdentifier matches a technical identifier (UUID, version, token)
// exactly against id or name. No fuzzy scoring: a hit is a hit.
func (s *Searcher) searchIdentifier(ctx context.Context, query string, opts Options) ([]types.SearchResult, error) {
	identifier := strings.TrimSpace(query)

	clauses, params, err := buildFilterClauses(opts, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	clauses = append([]string{`(m.id = $identifier
			OR toLower(m.id) = $lower
			OR toLower(m.name) = $lower)`}, clauses...)
	params["identifier"] = identifier
	params["lower"] = strings.ToLower(identifier)
	params["limit"] = int64(opts.Limit)

	rows, err := s.store.ExecuteQuery(ctx, `
		MATCH (m:Memory)
		`+whereClause(clauses)+`
		RETURN`+driver.MemoryReturnClause()+`
		LIMIT $limit`, params)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, types.SearchResult{
			Memory:    driver.MemoryFromRow(row),
			Score:     1.0,
			MatchType: types.MatchMetadata,
		})
	}
	return results, nil
}

// searchSemantic embeds the query once, pulls a wider candidate pool of
// memories that carry embeddings, and ranks them by cosine similarity
// computed client side. Results below the threshold are dropped.
func (s *Searcher) searchSemantic(ctx context.Context, query string, opts Options) ([]types.SearchResult, error) {
	if s.embed == nil {
		return nil, errs.New(errs.CodeService, "no embedding client configured")
	}

	vector, err := s.embed.EmbedSingle(ctx, query)
	if err != nil {
		return nil, errs.Wrap(errs.CodeService, "query embedding failed", err)
	}

	clauses, params, err := buildFilterClauses(opts, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	clauses = append([]string{"m.embedding IS NOT NULL"}, clauses...)
	params["limit"] = int64(opts.Limit * candidateMultiplier)

	rows, err := s.store.ExecuteQuery(ctx, `
		MATCH (m:Memory)
		`+whereClause(clauses)+`
		RETURN`+driver.MemoryReturnClause()+`
		LIMIT $limit`, params)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(rows))
	for _, row := range rows {
		memory := driver.MemoryFromRow(row)
		score := CalculateCosineSimilarity(vector, memory.Embedding)
		if score < opts.Threshold {
			continue
		}
		results = append(results, types.SearchResult{
			Memory:    memory,
			Score:     score,
			MatchType: types.MatchVector,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// attachGraphContext fetches the depth-2 neighborhood of every result in a
// single traversal and attaches it. Results whose neighborhood is empty on
// both sides keep a nil Related field.
func (s *Searcher) attachGraphContext(ctx context.Context, results []types.SearchResult) error {
	ids := make([]string, 0, len(results))
	for i := range results {
		if results[i].Memory.ID != "" {
			ids = append(ids, results[i].Memory.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := s.store.ExecuteQuery(ctx, `
		UNWIND $ids AS anchor_id
		MATCH p = (m:Memory {id: anchor_id})-[*1..2]->(n:Memory)
		WHERE n.id <> anchor_id
		RETURN DISTINCT
			anchor_id AS anchor_id,
			'descendant' AS side,
			n.id AS id,
			n.name AS name,
			n.memory_type AS memory_type,
			type(relationships(p)[0]) AS relation,
			length(p) AS distance,
			relationships(p)[0].strength AS strength,
			relationships(p)[0].source AS source,
			relationships(p)[0].created_at AS created_at
		UNION ALL
		UNWIND $ids AS anchor_id
		MATCH p = (m:Memory {id: anchor_id})<-[*1..2]-(n:Memory)
		WHERE n.id <> anchor_id
		RETURN DISTINCT
			anchor_id AS anchor_id,
			'ancestor' AS side,
			n.id AS id,
			n.name AS name,
			n.memory_type AS memory_type,
			type(relationships(p)[0]) AS relation,
			length(p) AS distance,
			relationships(p)[0].strength AS strength,
			relationships(p)[0].source AS source,
			relationships(p)[0].created_at AS created_at`,
		map[string]any{"ids": ids})
	if err != nil {
		return err
	}

	type sideKey struct {
		anchor string
		side   string
		node   string
	}
	best := make(map[sideKey]types.RelatedNode, len(rows))
	for _, row := range rows {
		node := relatedNodeFromRow(row)
		if node.ID == "" {
			continue
		}
		key := sideKey{
			anchor: driver.AsString(row["anchor_id"]),
			side:   driver.AsString(row["side"]),
			node:   node.ID,
		}
		if existing, ok := best[key]; !ok || node.Distance < existing.Distance {
			best[key] = node
		}
	}

	contexts := make(map[string]*types.GraphContext)
	for key, node := range best {
		gc := contexts[key.anchor]
		if gc == nil {
			gc = &types.GraphContext{}
			contexts[key.anchor] = gc
		}
		if key.side == "ancestor" {
			gc.Ancestors = append(gc.Ancestors, node)
		} else {
			gc.Descendants = append(gc.Descendants, node)
		}
	}
	for _, gc := range contexts {
		sortRelatedNodes(gc.Ancestors)
		sortRelatedNodes(gc.Descendants)
	}

	for i := range results {
		if gc, ok := contexts[results[i].Memory.ID]; ok && !gc.Empty() {
			results[i].Memory.Related = gc
		}
	}
	return nil
}

func sortRelatedNodes(nodes []types.RelatedNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Distance != nodes[j].Distance {
			return nodes[i].Distance < nodes[j].Distance
		}
		return nodes[i].ID < nodes[j].ID
	})
}
