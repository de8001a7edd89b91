package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldBackend is the structured log field key for the generative backend name.
	FieldBackend = "backend"
	// FieldModel is the structured log field key for the model identifier.
	FieldModel = "model"
)

// WithBackendFields attaches the backend and model fields to the logger so
// every entry from a generative client says who it talked to. Blank values
// are skipped and a nil logger becomes a no-op one.
func WithBackendFields(logger *zap.Logger, backend, model string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	fields := make([]zap.Field, 0, 2)
	if backend = strings.TrimSpace(backend); backend != "" {
		fields = append(fields, zap.String(FieldBackend, backend))
	}
	if model = strings.TrimSpace(model); model != "" {
		fields = append(fields, zap.String(FieldModel, model))
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}
