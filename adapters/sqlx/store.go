// Package sqlx persists user reward records in a relational database
// using jmoiron/sqlx. Each record is stored as a single JSON document
// row keyed by user id, which keeps the schema stable as reward modules
// evolve.
package sqlx

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"rewardkit/core"
	"rewardkit/user"
)

// Driver selects the SQL dialect used for upserts and placeholders.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Config holds connection settings for the SQL backend.
type Config struct {
	Driver          Driver        `json:"driver" env:"REWARDKIT_SQL_DRIVER"`
	DSN             string        `json:"dsn" env:"REWARDKIT_SQL_DSN"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DefaultConfig returns sensible pool defaults for the given driver.
func DefaultConfig(driver Driver) Config {
	return Config{
		Driver:          driver,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store is a store.Backend backed by a SQL database.
type Store struct {
	db     *sqlx.DB
	driver Driver
}

// New connects to the database described by cfg and verifies the
// connection with a ping.
func New(cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("sqlx: dsn is required")
	}
	db, err := sqlx.Connect(string(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlx: connect: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return NewWithDB(db, cfg.Driver), nil
}

// NewWithDB wraps an existing sqlx.DB. Useful for tests and callers
// that manage their own connection pool.
func NewWithDB(db *sqlx.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver}
}

// EnsureSchema creates the reward_users table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	var ddl string
	switch s.driver {
	case DriverMySQL:
		ddl = `CREATE TABLE IF NOT EXISTS reward_users (
			user_id VARCHAR(64) PRIMARY KEY,
			doc TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`
	default:
		ddl = `CREATE TABLE IF NOT EXISTS reward_users (
			user_id TEXT PRIMARY KEY,
			doc TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlx: ensure schema: %w", err)
	}
	return nil
}

// Load fetches and decodes the stored document for id. An unknown user
// yields an empty document so the caller starts them fresh.
func (s *Store) Load(ctx context.Context, id core.UserID) (user.Document, error) {
	var raw string
	query := s.db.Rebind(`SELECT doc FROM reward_users WHERE user_id = ?`)
	err := s.db.QueryRowxContext(ctx, query, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return user.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlx: load %s: %w", id, err)
	}
	var doc user.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("sqlx: decode %s: %w", id, err)
	}
	return doc, nil
}

// Save upserts the document for id.
func (s *Store) Save(ctx context.Context, id core.UserID, doc user.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("sqlx: encode %s: %w", id, err)
	}
	var query string
	switch s.driver {
	case DriverMySQL:
		query = `INSERT INTO reward_users (user_id, doc, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE doc = VALUES(doc), updated_at = VALUES(updated_at)`
	default:
		query = `INSERT INTO reward_users (user_id, doc, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`
	}
	query = s.db.Rebind(query)
	if _, err := s.db.ExecContext(ctx, query, id, string(raw), time.Now().UTC()); err != nil {
		return fmt.Errorf("sqlx: save %s: %w", id, err)
	}
	return nil
}

// Delete removes the stored document for id, if any.
func (s *Store) Delete(ctx context.Context, id core.UserID) error {
	query := s.db.Rebind(`DELETE FROM reward_users WHERE user_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("sqlx: delete %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }
