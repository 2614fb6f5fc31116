package store

import (
	"context"

	"github.com/kasuboski/openai-gateway/internal/store/model"
)

// Repository is the contract for the analytics data layer.
type Repository interface {
	Requests() RequestRepository
	Close() error
}

type RequestRepository interface {
	// Log stores a completed request.
	Log(ctx context.Context, log *model.RequestLog) error
	// GetRecent returns the last N logs.
	GetRecent(ctx context.Context, limit int) ([]model.RequestLog, error)
}
