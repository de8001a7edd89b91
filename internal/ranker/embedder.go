package ranker

// Embedder converts free text into a numeric vector representation. The
// dimensionality must be stable across calls.
type Embedder interface {
	Name() string
	Embed(text string) ([]float64, error)
}

// BatchEmbedder is implemented by embedders that can vectorize several texts
// in one round trip. The index uses it when available.
type BatchEmbedder interface {
	EmbedBatch(texts []string) ([][]float64, error)
}
