// Package recipedex embeds the recipe search engine in a Go program.
//
// A Client loads a corpus once and answers hybrid queries that fuse BM25
// relevance over recipe text with ingredient overlap:
//
//	client, _ := recipedex.Open("data/recipes.jsonl")
//	defer client.Close()
//
//	hits, _ := client.Search(ctx, "fried rice", &recipedex.SearchOptions{
//	    Include: []string{"egg"},
//	    Exclude: []string{"peanut"},
//	    TopK:    5,
//	})
//
// The same query with the fluent builder:
//
//	hits, _ := client.Find().Text("fried rice").With("egg").Without("peanut").Limit(5).Do(ctx)
//
// Results can be cached in Valkey or Redis with WithCache.
package recipedex
