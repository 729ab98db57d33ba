// Package mathdex embeds the math-question index into a Go program
// without running the HTTP server.
//
// The client talks to the same vector stores as the server (Redis, Valkey,
// Qdrant or Postgres with pgvector) and vectorizes text through an
// OpenAI-compatible endpoint or a caller-supplied Embedder.
//
//	client, _ := mathdex.New(ctx,
//	    mathdex.WithRedis("localhost:6379", ""),
//	    mathdex.WithOpenAI("http://localhost:11434/v1", "", "nomic-embed-text"),
//	)
//	defer client.Close()
//
//	_ = client.CreateIndex(ctx)
//	id, _ := client.IndexQuestion(ctx, mathdex.Question{
//	    Text: "What is 5 + 3?", Answer: 8, Operation: "addition", Difficulty: "grade_3",
//	})
//	hits, _ := client.Similar("What is 6 + 2?").Grade(3).Exclude(id).Limit(5).Do(ctx)
//	dup, _ := client.Duplicate("What is 5 + 3?").Grade(3).Threshold(0.9).Do(ctx)
package mathdex
