// Package recall provides search and retrieval over a graph-structured
// memory store for AI agents.
//
// Memories are nodes in a graph database, connected by typed directed
// relations. Free-text queries are classified into a retrieval strategy
// (wildcard, exact, technical identifier, or semantic) and dispatched
// against the store; results can be enriched with their bounded graph
// neighborhood and projected down to the context level the caller needs.
//
// # Basic Usage
//
// Create a new Recall client with the required components:
//
//	// Create Neo4j driver
//	graphDriver, err := driver.NewNeo4jDriver("bolt://localhost:7687", "neo4j", "password", "neo4j")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Create embedder for semantic search
//	embConfig := embedder.Config{Model: "text-embedding-3-small"}
//	embedderClient := embedder.NewOpenAIEmbedder("your-api-key", embConfig)
//
//	// Create Recall client
//	client, err := recall.NewClient(graphDriver, embedderClient, nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
// # Storing Memories
//
//	memory, err := client.CreateMemory(ctx, &types.Memory{
//		Name:       "deploy checklist",
//		MemoryType: "procedure",
//		Observations: []types.Observation{
//			{Content: "always run the smoke tests first"},
//		},
//	})
//
// # Searching
//
// The query decides the strategy: "*" or "all" match everything, a UUID or
// version string is looked up exactly, and plain text goes through
// embedding similarity:
//
//	results, err := client.Search(ctx, "deployment procedures", nil)
//	for _, r := range results {
//		fmt.Println(r.Memory.Name, r.Score)
//	}
//
// # Graph Traversal
//
// Expand explicitly from a known memory:
//
//	nodes, err := client.Traverse(ctx, search.TraversalOptions{
//		TraverseFrom: memory.ID,
//		MaxDepth:     2,
//	})
package recall
