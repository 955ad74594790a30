package ai

import (
	"context"

	"github.com/burakseven/returns-ai/internal/domain/analysis"
)

// Classifier is the outbound port to the vision classification backend.
// Implementations make exactly one call per request; any backend-side
// failure is reported as ErrUnavailable and the caller falls back.
type Classifier interface {
	Classify(ctx context.Context, image []byte, contentType, customerNotes string) (*analysis.Result, error)
}
