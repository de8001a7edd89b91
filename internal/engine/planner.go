package engine

import (
	"github.com/spigell/lawyer-matcher/internal/ranker"
)

// Batch is a contiguous slice of the ranked candidate list whose combined
// size fits the prompt budget. Start and End are [Start, End) positions in
// the ranked list.
type Batch struct {
	Candidates []ranker.Candidate
	Start      int
	End        int
}

// Plan walks the ranked candidates in order and groups them into batches. A
// batch is closed as soon as the next candidate would push the running size
// over the budget. A single candidate bigger than the whole budget gets a
// batch of its own rather than being dropped or split, so the concatenation
// of all batches is always exactly the input.
func Plan(candidates []ranker.Candidate, budget int, sizeOf func(ranker.Candidate) int) []Batch {
	var batches []Batch

	start := 0
	running := 0

	for i, candidate := range candidates {
		size := sizeOf(candidate)
		if i > start && running+size > budget {
			batches = append(batches, Batch{
				Candidates: candidates[start:i],
				Start:      start,
				End:        i,
			})
			start = i
			running = 0
		}
		running += size
	}

	if start < len(candidates) {
		batches = append(batches, Batch{
			Candidates: candidates[start:],
			Start:      start,
			End:        len(candidates),
		})
	}

	return batches
}
