// Package ranker orders resolved profiles by relevance to a free-text query.
// Profiles are embedded once at index time; each query embeds only the query
// string and scores every profile by cosine similarity. When no embedding
// backend is available, or it fails, ranking degrades to lexical token
// matching instead of failing the query.
package ranker

import (
	"math"
	"sort"
	"strings"

	"github.com/spigell/lawyer-matcher/internal/roster"

	"go.uber.org/zap"
)

// Candidate is a resolved profile annotated with a relevance score for one
// query.
type Candidate struct {
	Profile *roster.Profile
	Score   float64
}

// Index holds the embedded profile corpus for a roster. It is built once and
// queried many times.
type Index struct {
	profiles []*roster.Profile
	blobs    []string
	vectors  [][]float64
	embedder Embedder
	degraded bool
	logger   *zap.Logger
}

// NewIndex embeds every profile's descriptive text. A missing or failing
// embedder is a degraded mode, not an error: the index falls back to lexical
// scoring and logs the downgrade.
func NewIndex(profiles []*roster.Profile, embedder Embedder, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}

	ix := &Index{
		profiles: profiles,
		blobs:    make([]string, len(profiles)),
		embedder: embedder,
		logger:   logger,
	}

	for i, p := range profiles {
		ix.blobs[i] = profileBlob(p)
	}

	if embedder == nil {
		ix.degraded = true
		logger.Info("no embedding backend configured, ranking lexically")
		return ix
	}

	vectors, err := embedAll(embedder, ix.blobs)
	if err != nil {
		ix.degraded = true
		logger.Warn("embedding backend unavailable, ranking degraded to lexical scoring",
			zap.String("embedder", embedder.Name()),
			zap.Error(err),
		)
		return ix
	}

	ix.vectors = vectors
	logger.Debug("indexed profiles",
		zap.String("embedder", embedder.Name()),
		zap.Int("profiles", len(profiles)),
	)

	return ix
}

// Degraded reports whether the index runs on the lexical fallback.
func (ix *Index) Degraded() bool { return ix.degraded }

// Len returns the number of indexed profiles.
func (ix *Index) Len() int { return len(ix.profiles) }

// Rank scores every indexed profile against the query and returns candidates
// ordered by score descending, ties broken by canonical key. It never fails:
// a query that cannot be embedded is scored lexically.
func (ix *Index) Rank(query string) []Candidate {
	scores := ix.scores(query)

	candidates := make([]Candidate, len(ix.profiles))
	for i, p := range ix.profiles {
		candidates[i] = Candidate{Profile: p, Score: scores[i]}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Profile.Key < candidates[j].Profile.Key
	})

	return candidates
}

func (ix *Index) scores(query string) []float64 {
	if !ix.degraded {
		queryVec, err := ix.embedder.Embed(query)
		if err == nil {
			scores := make([]float64, len(ix.vectors))
			for i, vec := range ix.vectors {
				scores[i] = cosine(queryVec, vec)
			}
			return scores
		}

		ix.logger.Warn("query embedding failed, scoring lexically", zap.Error(err))
	}

	scores := make([]float64, len(ix.blobs))
	tokens := strings.Fields(strings.ToLower(query))
	for i, blob := range ix.blobs {
		scores[i] = lexicalScore(tokens, strings.ToLower(blob))
	}

	return scores
}

// lexicalScore counts how many query tokens occur in the profile text.
func lexicalScore(queryTokens []string, blob string) float64 {
	score := 0.0
	for _, token := range queryTokens {
		if strings.Contains(blob, token) {
			score++
		}
	}
	return score
}

// profileBlob concatenates the profile's fields into one embeddable text.
// Fields are visited in sorted name order so the blob, and therefore the
// vector, is stable across runs.
func profileBlob(p *roster.Profile) string {
	names := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(p.Name)
	for _, name := range names {
		value := strings.TrimSpace(p.Fields[name])
		if value == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
	}

	return b.String()
}

func embedAll(embedder Embedder, blobs []string) ([][]float64, error) {
	if batcher, ok := embedder.(BatchEmbedder); ok {
		return batcher.EmbedBatch(blobs)
	}

	vectors := make([][]float64, len(blobs))
	for i, blob := range blobs {
		vec, err := embedder.Embed(blob)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}

	return vectors, nil
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
