// Package localstore provides the on-device SQLite mirror of the vault.
// It backs the creator flow when the remote store is unreachable and
// caches the fetched record for the recipient flow. The schema is
// migrated with goose on open.
package localstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/keepsakelabs/giftvault/internal/models"
	"github.com/keepsakelabs/giftvault/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

// LocalStore is a SQLite-backed vault mirror. It implements
// store.VaultStore so the CLI can treat local and remote storage
// uniformly.
type LocalStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the local database at path and applies
// pending migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening local database: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating local database: %w", err)
	}

	return &LocalStore{db: db, logger: logger}, nil
}

// Upsert writes the full record for keyHash, replacing any previous one.
func (s *LocalStore) Upsert(ctx context.Context, keyHash string, cfg *models.VaultConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling vault: %w", err)
	}

	query := `
		INSERT INTO local_vaults (secret_key_hash, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(secret_key_hash) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query, keyHash, payload, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting local vault: %w", err)
	}
	return nil
}

// Get loads the record for keyHash, migrating older schema versions in
// place before returning.
func (s *LocalStore) Get(ctx context.Context, keyHash string) (*models.VaultConfig, error) {
	query := `SELECT payload FROM local_vaults WHERE secret_key_hash = ?`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, keyHash).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("querying local vault: %w", err)
	}

	var cfg models.VaultConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling local vault: %w", err)
	}

	cfg.SecretKeyHash = keyHash
	cfg.Migrate()
	return &cfg, nil
}

// Delete removes the record for keyHash.
func (s *LocalStore) Delete(ctx context.Context, keyHash string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM local_vaults WHERE secret_key_hash = ?`, keyHash)
	if err != nil {
		return fmt.Errorf("deleting local vault: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if ra == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Save writes cfg under its own key hash. This is the creator-facing
// surface; the device normally holds a single record.
func (s *LocalStore) Save(ctx context.Context, cfg *models.VaultConfig) error {
	if cfg.SecretKeyHash == "" {
		return models.ErrMissingKeyHash
	}
	return s.Upsert(ctx, cfg.SecretKeyHash, cfg)
}

// Load returns the most recently saved record, or store.ErrNotFound
// when the device holds none.
func (s *LocalStore) Load(ctx context.Context) (*models.VaultConfig, error) {
	query := `SELECT payload FROM local_vaults ORDER BY updated_at DESC LIMIT 1`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("querying local vault: %w", err)
	}

	var cfg models.VaultConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling local vault: %w", err)
	}
	cfg.Migrate()
	return &cfg, nil
}

// Remove deletes every saved record.
func (s *LocalStore) Remove(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_vaults`); err != nil {
		return fmt.Errorf("removing local vaults: %w", err)
	}
	return nil
}

// ApproximateSizeBytes reports the stored payload size across all
// records. The creator flow surfaces this so inline media growth is
// visible before a save fails.
func (s *LocalStore) ApproximateSizeBytes(ctx context.Context) (int64, error) {
	var size sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT SUM(LENGTH(payload)) FROM local_vaults`).Scan(&size)
	if err != nil {
		return 0, fmt.Errorf("measuring local vaults: %w", err)
	}
	return size.Int64, nil
}

// Ping verifies the database file is still reachable.
func (s *LocalStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}
