package ai

import (
	"context"
	"errors"
)

// ErrRateLimited marks a backend failure caused by request throttling. Callers
// treat it as transient and retry; every other backend error is permanent.
var ErrRateLimited = errors.New("backend rate limited")

// IsRateLimited reports whether err stems from request throttling.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// Generator produces free text from a prompt via a generative backend.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
