package port

import (
	"context"

	"github.com/shalev396/Call-Filter/internal/domain"
)

// ConfigCache keeps recently loaded configs. Implementations must treat errors as misses.
type ConfigCache interface {
	// Get returns the cached config and true on a hit
	Get(ctx context.Context, accountID string) (*domain.Config, bool)

	Set(ctx context.Context, accountID string, cfg domain.Config)

	// Invalidate drops the entry; called after every config write
	Invalidate(ctx context.Context, accountID string)
}
