// Package search implements retrieval orchestration over the graph memory
// store.
//
// A free-text query is first classified into an intent (wildcard,
// technical identifier, exact, or semantic), then dispatched to the
// matching strategy. Each strategy turns the query plus caller filters
// into a declarative Cypher request, decodes the returned rows into
// memories, and scores them. Results can be enriched with the bounded
// graph neighborhood of each hit in a single extra traversal.
//
// The package also houses the explicit traversal processor for
// "expand from this node" requests, the date filter processor translating
// ISO and relative time expressions into range predicates, and the context
// level processor shaping results for the response.
package search
