package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shalev396/Call-Filter/internal/domain"
	"github.com/shalev396/Call-Filter/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "callfilter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleConfig() domain.Config {
	return domain.Config{
		Whitelist: []domain.WhitelistEntry{
			{Number: "+972501111111", Name: "Home"},
			{Number: "+15551234567"},
		},
		Schedule: domain.ScheduleConfig{
			Enabled:  true,
			Timezone: "Asia/Jerusalem",
			Days: []domain.DaySchedule{
				{Day: 5, Name: "Friday", Windows: []domain.TimeWindow{
					{StartLocal: "08:00", EndLocal: "12:00"},
					{StartLocal: "20:00", EndLocal: "23:00"},
				}},
				{Day: 0, Windows: []domain.TimeWindow{{StartLocal: "09:00", EndLocal: "17:00"}}},
				{Day: 6},
			},
		},
	}
}

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	acc := &domain.Account{Name: "Office", Config: sampleConfig()}
	require.NoError(t, repo.SaveAccount(ctx, acc))
	require.NotEmpty(t, acc.ID)
	require.NotEmpty(t, acc.Version)

	got, err := repo.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Office", got.Name)
	assert.Equal(t, acc.Version, got.Version)
	assert.Equal(t, sampleConfig(), got.Config)
}

func TestRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)
	got, err := repo.GetAccount(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_UpdateConfigReplacesRows(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	fixed := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	acc := &domain.Account{ID: "acc-1", Config: sampleConfig()}
	require.NoError(t, repo.SaveAccount(ctx, acc))

	smaller := domain.Config{
		Whitelist: []domain.WhitelistEntry{{Number: "+100"}},
		Schedule:  domain.ScheduleConfig{Enabled: false},
	}
	updated, err := repo.UpdateConfig(ctx, "acc-1", smaller)
	require.NoError(t, err)
	assert.NotEqual(t, acc.Version, updated.Version)
	assert.Equal(t, smaller, updated.Config)
	assert.True(t, fixed.Equal(updated.UpdatedAt))

	_, err = repo.UpdateConfig(ctx, "nope", smaller)
	assert.True(t, errors.Is(err, port.ErrAccountNotFound))
}

func TestRepository_ListAndDeleteCascades(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.SaveAccount(ctx, &domain.Account{ID: "a", Config: sampleConfig()}))
	require.NoError(t, repo.SaveAccount(ctx, &domain.Account{ID: "b"}))

	all, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Len(t, all[0].Config.Whitelist, 2)

	require.NoError(t, repo.DeleteAccount(ctx, "a"))
	all, err = repo.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	var n int
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedule_windows WHERE account_id = 'a'`).Scan(&n))
	assert.Zero(t, n)
}

func TestRepository_Ping(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.PingContext(context.Background()))
}
