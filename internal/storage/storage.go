package storage

import (
	"context"

	"dexRelay/internal/model"
)

// Journal records submitted swaps.
type Journal interface {
	PutSwap(ctx context.Context, record model.SwapRecord) error
}
