package port

import (
	"context"

	"github.com/shalev396/Call-Filter/internal/domain"
)

// ConfigFetcher fetches account config from a remote call filter server
type ConfigFetcher interface {
	FetchConfig(ctx context.Context, accountID string) (*domain.Config, error)
}
