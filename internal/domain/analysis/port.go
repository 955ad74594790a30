package analysis

import (
	"context"
	"time"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Create(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, id AnalysisID) (*Analysis, error)
	Recent(ctx context.Context, limit int) ([]*Analysis, error)
	// ListBetween returns records created in [from, to).
	ListBetween(ctx context.Context, from, to time.Time) ([]*Analysis, error)
	// Approve marks the record approved; override may be empty (stored as NULL).
	Approve(ctx context.Context, id AnalysisID, override Category, at time.Time) error
	// ManualEdit is approve with a mandatory override plus reviewer notes.
	ManualEdit(ctx context.Context, id AnalysisID, override Category, notes string, at time.Time) error
}

// ImageStore port (interface for keeping the uploaded photo)
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
