// Package engine runs the full matching pipeline for one query: rank the
// resolved profiles, split them into budget-bounded batches, ask the
// generative backend about each batch and fold the validated answers into one
// recommendation list. A failed batch is skipped and counted, never fatal.
package engine

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/lawyer-matcher/internal/ai"
	"github.com/spigell/lawyer-matcher/internal/logger"
	"github.com/spigell/lawyer-matcher/internal/matches"
	"github.com/spigell/lawyer-matcher/internal/ranker"
	"github.com/spigell/lawyer-matcher/internal/retry"
	"github.com/spigell/lawyer-matcher/internal/roster"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

const (
	defaultBatchBudget  = 6000
	defaultMaxLogLength = 200
)

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	// BatchBudget caps the combined candidate text size of one batch, in
	// bytes of the rendered candidate blocks.
	BatchBudget int
	// Retry is applied around each backend call for rate-limited failures.
	Retry retry.Policy
	// MaxLogLength caps prompt and response previews in debug logs.
	MaxLogLength int
}

type Engine struct {
	generator ai.Generator
	budget    int
	retry     retry.Policy
	maxLogLen int
	logger    *zap.Logger
}

// Result is the outcome of one query: the final ordered recommendations plus
// the diagnostics explaining everything that was dropped along the way.
type Result struct {
	Recommendations []matches.Recommendation
	Diagnostics     matches.Diagnostics
}

func New(generator ai.Generator, cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}

	budget := cfg.BatchBudget
	if budget <= 0 {
		budget = defaultBatchBudget
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	// retry.Policy applies its own defaults for unset attempts and delay
	return &Engine{
		generator: generator,
		budget:    budget,
		retry:     cfg.Retry,
		maxLogLen: maxLogLen,
		logger:    log,
	}
}

// Run executes the pipeline for one query. Batches are processed sequentially
// and merged in planning order, which preserves the ranker's relevance order.
// The only error returned is an empty query or generator; backend failures
// surface through Result.Diagnostics instead.
func (e *Engine) Run(ctx context.Context, index *ranker.Index, query string) (*Result, error) {
	if e.generator == nil {
		return nil, errors.New("generator is required")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}

	result := &Result{}

	candidates := index.Rank(query)
	if len(candidates) == 0 {
		return result, nil
	}

	batches := Plan(candidates, e.budget, func(c ranker.Candidate) int {
		return len(candidateBlock(c.Profile))
	})

	e.logger.Debug("planned batches",
		zap.Int("candidates", len(candidates)),
		zap.Int("batches", len(batches)),
		zap.Int("budget", e.budget),
	)

	var collected []matches.Recommendation

	for _, batch := range batches {
		text, err := e.requestBatch(ctx, query, batch)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			result.Diagnostics.FailedBatches++
			e.logger.Warn("batch failed, continuing with remaining batches",
				zap.Int("batch_start", batch.Start),
				zap.Int("batch_end", batch.End),
				zap.Error(err),
			)
			continue
		}

		parsed, malformed := matches.Parse(text)
		result.Diagnostics.DroppedMalformed += malformed

		valid, hallucinated := matches.Validate(parsed, allowedKeys(batch))
		result.Diagnostics.DroppedHallucinated += hallucinated

		collected = append(collected, valid...)
	}

	result.Recommendations = matches.Merge(collected)

	e.logger.Info("query finished",
		zap.Int("recommendations", len(result.Recommendations)),
		zap.Int("failed_batches", result.Diagnostics.FailedBatches),
		zap.Int("dropped_malformed", result.Diagnostics.DroppedMalformed),
		zap.Int("dropped_hallucinated", result.Diagnostics.DroppedHallucinated),
	)

	return result, nil
}

// requestBatch sends one batch to the backend, retrying only rate-limited
// failures. The prompt contains nothing but the query and this batch's
// candidates.
func (e *Engine) requestBatch(ctx context.Context, query string, batch Batch) (string, error) {
	prompt := buildPrompt(query, batch)

	e.logger.Debug("backend request",
		zap.Int("batch_start", batch.Start),
		zap.Int("batch_size", len(batch.Candidates)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	var text string
	err := e.retry.Do(ctx, ai.IsRateLimited, func() error {
		var genErr error
		text, genErr = e.generator.GenerateContent(ctx, prompt)
		return genErr
	})
	if err != nil {
		return "", err
	}

	e.logger.Debug("backend response",
		zap.Int("batch_start", batch.Start),
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", logger.TruncateForLog(text, e.maxLogLen)),
	)

	return text, nil
}

// allowedKeys maps this batch's canonical keys to their ranker scores, for
// the hallucination guard and the merge tie-break.
func allowedKeys(batch Batch) map[string]float64 {
	allowed := make(map[string]float64, len(batch.Candidates))
	for _, c := range batch.Candidates {
		allowed[c.Profile.Key] = c.Score
	}
	return allowed
}

func buildPrompt(query string, batch Batch) string {
	var b strings.Builder
	for i, c := range batch.Candidates {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(candidateBlock(c.Profile))
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{QUERY}}", query)
	return strings.ReplaceAll(prompt, "{{CANDIDATES}}", b.String())
}

// candidateBlock renders one profile for the prompt. Fields go in sorted name
// order so the rendering, and with it the batch sizing, is deterministic.
func candidateBlock(p *roster.Profile) string {
	names := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Name: ")
	b.WriteString(p.Name)

	for _, name := range names {
		value := strings.TrimSpace(p.Fields[name])
		if value == "" || strings.EqualFold(value, p.Name) {
			continue
		}
		b.WriteString("\n")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
	}

	return b.String()
}
