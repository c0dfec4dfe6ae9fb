package port

import (
	"context"
	"errors"

	"github.com/shalev396/Call-Filter/internal/domain"
)

// ErrAccountNotFound is returned by UpdateConfig for an unknown account.
var ErrAccountNotFound = errors.New("account not found")

// ConfigRepository persists and retrieves account configuration
type ConfigRepository interface {
	// GetAccount returns account by ID, nil if not found
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts returns all accounts
	ListAccounts(ctx context.Context) ([]*domain.Account, error)

	// SaveAccount creates or replaces an account
	SaveAccount(ctx context.Context, account *domain.Account) error

	// UpdateConfig replaces the config of an account and assigns a new version
	UpdateConfig(ctx context.Context, accountID string, cfg domain.Config) (*domain.Account, error)

	// DeleteAccount removes account, no error if missing
	DeleteAccount(ctx context.Context, accountID string) error
}
