// Package sqlite stores account configuration in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shalev396/Call-Filter/internal/domain"
	"github.com/shalev396/Call-Filter/internal/port"
)

// Repository implements port.ConfigRepository on top of database/sql.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the database at path and runs migrations.
func New(path string) (*Repository, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Single writer.
	db.SetMaxOpenConns(1)
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Repository{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// PingContext checks the database connection.
func (r *Repository) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			version TEXT NOT NULL,
			schedule_enabled BOOLEAN NOT NULL DEFAULT 0,
			timezone TEXT NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS whitelist_entries (
			account_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			number TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (account_id, position),
			FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS schedule_days (
			account_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			day INTEGER NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (account_id, position),
			FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS schedule_windows (
			account_id TEXT NOT NULL,
			day_position INTEGER NOT NULL,
			position INTEGER NOT NULL,
			start_local TEXT NOT NULL,
			end_local TEXT NOT NULL,
			PRIMARY KEY (account_id, day_position, position),
			FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_whitelist_number ON whitelist_entries(number)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

func (r *Repository) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	var a domain.Account
	var updated time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, version, schedule_enabled, timezone, updated_at FROM accounts WHERE id = ?`,
		accountID,
	).Scan(&a.ID, &a.Name, &a.Version, &a.Config.Schedule.Enabled, &a.Config.Schedule.Timezone, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", accountID, err)
	}
	a.UpdatedAt = updated.UTC()
	if err := r.loadConfig(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) loadConfig(ctx context.Context, a *domain.Account) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT number, name FROM whitelist_entries WHERE account_id = ? ORDER BY position`, a.ID)
	if err != nil {
		return fmt.Errorf("load whitelist: %w", err)
	}
	for rows.Next() {
		var w domain.WhitelistEntry
		if err := rows.Scan(&w.Number, &w.Name); err != nil {
			rows.Close()
			return fmt.Errorf("scan whitelist: %w", err)
		}
		a.Config.Whitelist = append(a.Config.Whitelist, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT day, name FROM schedule_days WHERE account_id = ? ORDER BY position`, a.ID)
	if err != nil {
		return fmt.Errorf("load schedule days: %w", err)
	}
	for rows.Next() {
		var d domain.DaySchedule
		if err := rows.Scan(&d.Day, &d.Name); err != nil {
			rows.Close()
			return fmt.Errorf("scan schedule day: %w", err)
		}
		a.Config.Schedule.Days = append(a.Config.Schedule.Days, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT day_position, start_local, end_local FROM schedule_windows
		 WHERE account_id = ? ORDER BY day_position, position`, a.ID)
	if err != nil {
		return fmt.Errorf("load schedule windows: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pos int
		var w domain.TimeWindow
		if err := rows.Scan(&pos, &w.StartLocal, &w.EndLocal); err != nil {
			return fmt.Errorf("scan schedule window: %w", err)
		}
		if pos < 0 || pos >= len(a.Config.Schedule.Days) {
			return fmt.Errorf("window references missing day position %d", pos)
		}
		a.Config.Schedule.Days[pos].Windows = append(a.Config.Schedule.Days[pos].Windows, w)
	}
	return rows.Err()
}

func (r *Repository) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		a, err := r.GetAccount(ctx, id)
		if err != nil {
			return nil, err
		}
		if a != nil {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *Repository) SaveAccount(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.Version == "" {
		account.Version = uuid.New().String()
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = r.now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (id, name, version, schedule_enabled, timezone, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			schedule_enabled = excluded.schedule_enabled,
			timezone = excluded.timezone,
			updated_at = excluded.updated_at`,
		account.ID, account.Name, account.Version, account.Config.Schedule.Enabled,
		account.Config.Schedule.Timezone, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	if err := writeConfig(ctx, tx, account.ID, account.Config); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repository) UpdateConfig(ctx context.Context, accountID string, cfg domain.Config) (*domain.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	version := uuid.New().String()
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET version = ?, schedule_enabled = ?, timezone = ?, updated_at = ? WHERE id = ?`,
		version, cfg.Schedule.Enabled, cfg.Schedule.Timezone, r.now().UTC(), accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: %s", port.ErrAccountNotFound, accountID)
	}
	if err := writeConfig(ctx, tx, accountID, cfg); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetAccount(ctx, accountID)
}

// writeConfig replaces whitelist and schedule rows of an account inside tx.
func writeConfig(ctx context.Context, tx *sql.Tx, accountID string, cfg domain.Config) error {
	for _, table := range []string{"whitelist_entries", "schedule_days", "schedule_windows"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE account_id = ?", table), accountID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for i, w := range cfg.Whitelist {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO whitelist_entries (account_id, position, number, name) VALUES (?, ?, ?, ?)`,
			accountID, i, w.Number, w.Name,
		); err != nil {
			return fmt.Errorf("insert whitelist entry: %w", err)
		}
	}
	for i, d := range cfg.Schedule.Days {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_days (account_id, position, day, name) VALUES (?, ?, ?, ?)`,
			accountID, i, d.Day, d.Name,
		); err != nil {
			return fmt.Errorf("insert schedule day: %w", err)
		}
		for j, w := range d.Windows {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schedule_windows (account_id, day_position, position, start_local, end_local) VALUES (?, ?, ?, ?, ?)`,
				accountID, i, j, w.StartLocal, w.EndLocal,
			); err != nil {
				return fmt.Errorf("insert schedule window: %w", err)
			}
		}
	}
	return nil
}

func (r *Repository) DeleteAccount(ctx context.Context, accountID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
