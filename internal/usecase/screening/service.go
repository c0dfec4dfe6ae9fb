package screening

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shalev396/Call-Filter/internal/domain"
	"github.com/shalev396/Call-Filter/internal/metrics"
	"github.com/shalev396/Call-Filter/internal/port"
)

// previewCaller stands in for an unknown caller when previewing the schedule.
const previewCaller = "preview"

// Service screens inbound calls for accounts stored in a ConfigRepository.
type Service struct {
	repo          port.ConfigRepository
	cache         port.ConfigCache
	defaultPolicy domain.TimezonePolicy
	now           func() time.Time
	logger        zerolog.Logger

	// gens counts config writes per account; a cache fill started before a write is dropped.
	gensMu sync.Mutex
	gens   map[string]uint64
}

type Option func(*Service)

// WithCache puts cache in front of the repository.
func WithCache(cache port.ConfigCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a screening service. defaultPolicy applies to accounts without a timezone.
func NewService(repo port.ConfigRepository, defaultPolicy domain.TimezonePolicy, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		defaultPolicy: defaultPolicy,
		now:           time.Now,
		gens:          make(map[string]uint64),
		logger:        logger.With().Str("component", "screening").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Screen returns the decision for a call from caller to accountID.
// It always returns a Decision; load failures deny with ReasonError.
func (s *Service) Screen(ctx context.Context, accountID, caller string) domain.Decision {
	start := time.Now()
	defer metrics.ObserveScreen(start)

	// Read once; every comparison below uses the same instant.
	now := s.now().UTC()
	log := s.logger.With().Str("account_id", accountID).Str("caller", caller).Logger()

	cfg, err := s.loadConfig(ctx, accountID)
	if err != nil {
		metrics.IncConfigLoadError()
		log.Error().Err(err).Msg("config load failed")
		d := domain.Decision{Allow: false, Reason: domain.ReasonError, Caller: caller}
		s.record(log, d)
		return d
	}

	policy, err := s.policyFor(cfg.Schedule.Timezone)
	if err != nil {
		// The engine still honours the whitelist and fails closed on the schedule.
		log.Warn().Err(err).Msg("timezone not resolvable")
	}

	d := domain.NewEngine(policy).Evaluate(*cfg, caller, now)
	s.record(log, d)
	return d
}

func (s *Service) record(log zerolog.Logger, d domain.Decision) {
	metrics.IncDecision(string(d.Reason), d.Allow)
	ev := log.Info()
	if d.Reason == domain.ReasonError {
		ev = log.Warn()
	}
	ev.Bool("allow", d.Allow).Str("reason", string(d.Reason)).Msg("call screened")
}

func (s *Service) loadConfig(ctx context.Context, accountID string) (*domain.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, fmt.Errorf("%w: empty account id", port.ErrAccountNotFound)
	}
	if s.cache != nil {
		cfg, ok := s.cache.Get(ctx, accountID)
		metrics.IncCacheLookup(ok)
		if ok {
			return cfg, nil
		}
	}
	gen := s.generation(accountID)
	acc, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fmt.Errorf("%w: %s", port.ErrAccountNotFound, accountID)
	}
	if s.cache != nil {
		s.fillCache(ctx, accountID, gen, acc.Config)
	}
	return &acc.Config, nil
}

func (s *Service) generation(accountID string) uint64 {
	s.gensMu.Lock()
	defer s.gensMu.Unlock()
	return s.gens[accountID]
}

// fillCache stores cfg unless the account was written since gen was read.
func (s *Service) fillCache(ctx context.Context, accountID string, gen uint64, cfg domain.Config) {
	s.gensMu.Lock()
	defer s.gensMu.Unlock()
	if s.gens[accountID] != gen {
		return
	}
	s.cache.Set(ctx, accountID, cfg)
}

// invalidate bumps the generation of accountID and drops its cache entry.
func (s *Service) invalidate(ctx context.Context, accountID string) {
	s.gensMu.Lock()
	s.gens[accountID]++
	s.gensMu.Unlock()
	if s.cache != nil {
		s.cache.Invalidate(ctx, accountID)
	}
}

func (s *Service) policyFor(timezone string) (domain.TimezonePolicy, error) {
	if timezone == "" && s.defaultPolicy != nil {
		return s.defaultPolicy, nil
	}
	return domain.PolicyFor(timezone)
}

// CreateAccount stores a new account with an empty config (schedule disabled).
func (s *Service) CreateAccount(ctx context.Context, name string) (*domain.Account, error) {
	acc := &domain.Account{
		ID:        uuid.New().String(),
		Name:      name,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repo.SaveAccount(ctx, acc); err != nil {
		return nil, err
	}
	s.logger.Info().Str("account_id", acc.ID).Str("name", name).Msg("account created")
	return acc, nil
}

// GetAccount returns the account, nil if it does not exist.
func (s *Service) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.GetAccount(ctx, accountID)
}

func (s *Service) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.repo.ListAccounts(ctx)
}

func (s *Service) DeleteAccount(ctx context.Context, accountID string) error {
	if err := s.repo.DeleteAccount(ctx, accountID); err != nil {
		return err
	}
	s.invalidate(ctx, accountID)
	s.logger.Info().Str("account_id", accountID).Msg("account deleted")
	return nil
}

// UpdateConfig validates cfg and replaces the account config. Validation errors wrap
// domain.ErrInvalidFormat, domain.ErrMalformedConfig or domain.ErrUnknownTimezone.
func (s *Service) UpdateConfig(ctx context.Context, accountID string, cfg domain.Config) (*domain.Account, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	acc, err := s.repo.UpdateConfig(ctx, accountID, cfg)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, accountID)
	s.logger.Info().
		Str("account_id", accountID).
		Str("version", acc.Version).
		Int("whitelist", len(cfg.Whitelist)).
		Bool("schedule_enabled", cfg.Schedule.Enabled).
		Msg("config updated")
	return acc, nil
}

// Preview shows how the schedule of an account applies right now.
type Preview struct {
	AccountID string            `json:"account_id"`
	Version   string            `json:"version"`
	Timezone  string            `json:"timezone"`
	Day       domain.DayPreview `json:"day"`
	Decision  domain.Decision   `json:"decision"`
}

// Preview converts today's windows to UTC and evaluates the schedule for a caller
// that is not on the whitelist.
func (s *Service) Preview(ctx context.Context, accountID string) (*Preview, error) {
	acc, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fmt.Errorf("%w: %s", port.ErrAccountNotFound, accountID)
	}
	policy, err := s.policyFor(acc.Config.Schedule.Timezone)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	day, err := domain.DayWindows(acc.Config.Schedule, policy, now)
	if err != nil {
		return nil, err
	}
	cfg := acc.Config.Clone()
	cfg.Whitelist = nil
	return &Preview{
		AccountID: acc.ID,
		Version:   acc.Version,
		Timezone:  acc.Config.Schedule.Timezone,
		Day:       day,
		Decision:  domain.NewEngine(policy).Evaluate(cfg, previewCaller, now),
	}, nil
}
