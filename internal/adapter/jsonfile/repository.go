package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shalev396/Call-Filter/internal/domain"
	"github.com/shalev396/Call-Filter/internal/port"
)

type persistedAccount struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Config    domain.Config `json:"config"`
	Version   string        `json:"version,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type persistedData struct {
	Accounts map[string]persistedAccount `json:"accounts"`
}

// Repository keeps all accounts in memory and rewrites one JSON file on every change.
type Repository struct {
	mu       sync.RWMutex
	filePath string
	accounts map[string]*domain.Account
	now      func() time.Time
}

func New(filePath string) (*Repository, error) {
	r := &Repository{
		filePath: filePath,
		accounts: make(map[string]*domain.Account),
		now:      time.Now,
	}
	if err := r.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return r, nil
}

func (r *Repository) load() error {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return err
	}
	var pd persistedData
	if err := json.Unmarshal(data, &pd); err != nil {
		return fmt.Errorf("parse %s: %w", r.filePath, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, pa := range pd.Accounts {
		version := pa.Version
		if version == "" {
			version = uuid.New().String()
		}
		r.accounts[id] = &domain.Account{
			ID:        id,
			Name:      pa.Name,
			Config:    pa.Config,
			Version:   version,
			UpdatedAt: pa.UpdatedAt,
		}
	}
	return nil
}

// commitLocked writes the account set with id replaced by a (removed when a is nil) and
// swaps it in only after the file is on disk.
func (r *Repository) commitLocked(id string, a *domain.Account) error {
	next := make(map[string]*domain.Account, len(r.accounts)+1)
	for k, v := range r.accounts {
		next[k] = v
	}
	if a == nil {
		delete(next, id)
	} else {
		next[id] = a
	}
	if err := r.write(next); err != nil {
		return err
	}
	r.accounts = next
	return nil
}

func (r *Repository) write(accounts map[string]*domain.Account) error {
	pd := persistedData{
		Accounts: make(map[string]persistedAccount, len(accounts)),
	}
	for id, a := range accounts {
		pd.Accounts[id] = persistedAccount{
			ID:        id,
			Name:      a.Name,
			Config:    a.Config,
			Version:   a.Version,
			UpdatedAt: a.UpdatedAt,
		}
	}

	data, err := json.MarshalIndent(pd, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(r.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	// Write then rename so a crash never leaves a truncated file behind.
	tmp := r.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, r.filePath)
}

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	c.Config = a.Config.Clone()
	return &c
}

func (r *Repository) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return nil, nil
	}
	return copyAccount(a), nil
}

func (r *Repository) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		result = append(result, copyAccount(a))
	}
	return result, nil
}

func (r *Repository) SaveAccount(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := copyAccount(account)
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Version == "" {
		a.Version = uuid.New().String()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = r.now().UTC()
	}
	if err := r.commitLocked(a.ID, a); err != nil {
		return err
	}
	account.ID = a.ID
	account.Version = a.Version
	account.UpdatedAt = a.UpdatedAt
	return nil
}

func (r *Repository) UpdateConfig(ctx context.Context, accountID string, cfg domain.Config) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", port.ErrAccountNotFound, accountID)
	}
	a := copyAccount(cur)
	a.Config = cfg.Clone()
	a.Version = uuid.New().String()
	a.UpdatedAt = r.now().UTC()
	if err := r.commitLocked(accountID, a); err != nil {
		return nil, err
	}
	return copyAccount(a), nil
}

func (r *Repository) DeleteAccount(ctx context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[accountID]; !ok {
		return nil
	}
	return r.commitLocked(accountID, nil)
}
