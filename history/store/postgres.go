package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/sweetpotato0/colloquy/config"
	colloquyerrors "github.com/sweetpotato0/colloquy/errors"
	"github.com/sweetpotato0/colloquy/history"
	"github.com/sweetpotato0/colloquy/transcript"
)

// PostgresStore implements history storage using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultPostgresConfig returns default PostgreSQL configuration.
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "colloquy",
		SSLMode:  "disable",
	}
}

// Validate checks the configuration for connectable values.
func (c *PostgresConfig) Validate() error {
	return config.ValidatePostgresConfig(c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// NewPostgresStore creates a new PostgreSQL-based history store.
func NewPostgresStore(config *PostgresConfig) (*PostgresStore, error) {
	if config == nil {
		config = DefaultPostgresConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.createTable(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) createTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS histories (
		id VARCHAR(255) PRIMARY KEY,
		entries JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_histories_updated_at ON histories(updated_at);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Save upserts a history record.
func (s *PostgresStore) Save(ctx context.Context, record *history.Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("history record must have an ID: %w", colloquyerrors.ErrInvalidInput)
	}

	now := time.Now()
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	entriesJSON, err := json.Marshal(record.Entries)
	if err != nil {
		return fmt.Errorf("failed to marshal history entries: %w", err)
	}

	query := `
	INSERT INTO histories (id, entries, created_at, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE SET
		entries = EXCLUDED.entries,
		updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, record.ID, string(entriesJSON), createdAt, now); err != nil {
		return fmt.Errorf("failed to save history to PostgreSQL: %w", err)
	}
	return nil
}

// Load retrieves a history record by ID.
func (s *PostgresStore) Load(ctx context.Context, id string) (*history.Record, error) {
	record := &history.Record{}
	var entriesJSON string

	query := `SELECT id, entries, created_at, updated_at FROM histories WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &entriesJSON, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("history %s: %w", id, colloquyerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	record.Entries = []transcript.Entry{}
	if err := json.Unmarshal([]byte(entriesJSON), &record.Entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history entries: %w", err)
	}
	return record, nil
}

// Delete removes a history record by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM histories WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}

// List returns all stored history IDs ordered by most recent update.
func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM histories ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list histories: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan history id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating histories: %w", err)
	}
	return ids, nil
}

// Close closes the PostgreSQL connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping checks if the PostgreSQL connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
