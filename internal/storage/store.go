// Package storage is the on-disk cache of client state: the last signed-in
// user and a handful of UI settings.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/migration"
	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/migrations"
)

var (
	ErrNoCurrentUser   = errors.New("no cached user")
	ErrSettingNotFound = errors.New("setting not found")
	ErrNotOpen         = errors.New("cache is not open")
)

// Setting keys
const (
	SettingLastPath = "last_path"
	SettingLocale   = "locale"
)

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Init opens the cache, creating the file and applying migrations as needed
func (s *Store) Init(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	// one writer is all the client ever needs
	db.SetMaxOpenConns(1)

	runner, err := newRunner(db)
	if err != nil {
		_ = db.Close()
		return err
	}
	if _, err := runner.Apply(ctx, func(msg string) { logger.Debug(msg) }); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to migrate cache: %w", err)
	}

	s.db = db
	return nil
}

// SchemaVersion reports the applied and the latest known schema versions
func (s *Store) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	if s.db == nil {
		return 0, 0, ErrNotOpen
	}
	runner, err := newRunner(s.db)
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.CurrentVersion(ctx); err != nil {
		return 0, 0, err
	}
	if latest, err = runner.LatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

func newRunner(db *sql.DB) (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(db, sub), nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) Path() string {
	return s.path
}

// CurrentUser returns the cached user or ErrNoCurrentUser
func (s *Store) CurrentUser(ctx context.Context) (*models.User, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM current_user WHERE slot = 1").Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCurrentUser
	}
	if err != nil {
		return nil, fmt.Errorf("read cached user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(payload), &user); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &user, nil
}

// SaveCurrentUser replaces the cached user
func (s *Store) SaveCurrentUser(ctx context.Context, user models.User) error {
	if s.db == nil {
		return ErrNotOpen
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO current_user (slot, user_id, payload, saved_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET user_id = excluded.user_id, payload = excluded.payload, saved_at = excluded.saved_at
	`, user.ID, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save cached user: %w", err)
	}
	return nil
}

func (s *Store) ClearCurrentUser(ctx context.Context) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM current_user"); err != nil {
		return fmt.Errorf("clear cached user: %w", err)
	}
	return nil
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	if s.db == nil {
		return "", ErrNotOpen
	}

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	if s.db == nil {
		return ErrNotOpen
	}
	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}
