package matches

import (
	"sort"

	"github.com/spigell/lawyer-matcher/internal/roster"
)

// Recommendation is a validated match: its canonical key is guaranteed to
// exist in the candidate set that produced the batch it was parsed from.
type Recommendation struct {
	Key          string
	Name         string
	Rank         int
	Expertise    string
	Reason       string
	Availability string
	Education    string

	// score is the semantic ranker's relevance for the underlying profile,
	// kept as a merge tie-break.
	score float64
}

// Diagnostics summarizes everything that was dropped or skipped on the way to
// the final list. It is reported to the caller instead of being raised.
type Diagnostics struct {
	DroppedMalformed    int
	DroppedHallucinated int
	FailedBatches       int
	UnmatchedA          int
	UnmatchedB          int
}

// Validate checks each parsed result against the candidates visible to its
// batch. Names that do not canonicalize to a known candidate are dropped and
// counted; this is the hallucination guard.
func Validate(results []MatchResult, allowed map[string]float64) (valid []Recommendation, hallucinated int) {
	for _, result := range results {
		key := roster.Canonical(result.Name)
		score, ok := allowed[key]
		if !ok {
			hallucinated++
			continue
		}

		valid = append(valid, Recommendation{
			Key:          key,
			Name:         result.Name,
			Rank:         result.Rank,
			Expertise:    result.Expertise,
			Reason:       result.Reason,
			Availability: result.Availability,
			Education:    result.Education,
			score:        score,
		})
	}

	return valid, hallucinated
}

// Merge combines recommendations from all batches: deduplicates by canonical
// key keeping the lowest originally-reported rank, orders by that rank with
// the ranker score breaking ties, and re-ranks the survivors 1..N.
func Merge(recs []Recommendation) []Recommendation {
	best := make(map[string]Recommendation, len(recs))
	for _, rec := range recs {
		prev, ok := best[rec.Key]
		if !ok || rec.Rank < prev.Rank {
			best[rec.Key] = rec
		}
	}

	merged := make([]Recommendation, 0, len(best))
	for _, rec := range best {
		merged = append(merged, rec)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Rank != merged[j].Rank {
			return merged[i].Rank < merged[j].Rank
		}
		if merged[i].score != merged[j].score {
			return merged[i].score > merged[j].score
		}
		return merged[i].Key < merged[j].Key
	})

	for i := range merged {
		merged[i].Rank = i + 1
	}

	return merged
}
