// Package driver provides graph database access for the recall memory store.
//
// The GraphDriver interface accepts declarative Cypher requests with bound
// parameters and returns rows of named fields, plus a small set of typed
// node and relation operations used by the CRUD surface. One production
// implementation is provided, backed by the official Neo4j Go driver.
//
// Everything read from the store is treated as untrusted input: numeric
// fields may arrive as any integer width, metadata is stored as serialized
// text, and observation lists may contain malformed entries. The helpers in
// type_helpers.go normalize all of that at the boundary so loosely-typed
// data never propagates inward.
package driver
