// Package types defines the shared data model for the recall memory store.
//
// The central types are:
//   - Memory: a node in the graph store holding one unit of agent knowledge,
//     with free-form metadata and an ordered list of observations.
//   - Relation: a typed directed edge between two memories, optionally
//     carrying strength and provenance metadata.
//   - SearchResult: a scored memory returned from a retrieval strategy.
//   - QueryIntent: the classifier's request-scoped decision about which
//     retrieval strategy a free-text query should use.
//
// All types in this package are plain data; behavior lives in the packages
// that produce and consume them.
package types
