package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/keepsakelabs/giftvault/internal/models"
	"github.com/keepsakelabs/giftvault/internal/store"
)

// VaultStore implements store.VaultStore using PostgreSQL.
type VaultStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Upsert creates or replaces the vault row for a key hash.
func (s *VaultStore) Upsert(ctx context.Context, keyHash string, cfg *models.VaultConfig) error {
	memories, err := json.Marshal(cfg.Memories)
	if err != nil {
		return fmt.Errorf("marshaling memories: %w", err)
	}

	query := `
		INSERT INTO vault_records (
			secret_key_hash, schema_version, birthday_date, memories,
			background_music, heartbeat_sound, final_letter, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (secret_key_hash) DO UPDATE SET
			schema_version = EXCLUDED.schema_version,
			birthday_date = EXCLUDED.birthday_date,
			memories = EXCLUDED.memories,
			background_music = EXCLUDED.background_music,
			heartbeat_sound = EXCLUDED.heartbeat_sound,
			final_letter = EXCLUDED.final_letter,
			updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx, query,
		keyHash,
		cfg.SchemaVersion,
		cfg.BirthdayDate,
		memories,
		nullString(cfg.Audio.BackgroundMusic),
		nullString(cfg.Audio.Heartbeat),
		nullString(cfg.FinalLetter),
		now,
	)
	if err != nil {
		return fmt.Errorf("upserting vault: %w", err)
	}

	return nil
}

// Get retrieves the vault row for a key hash.
func (s *VaultStore) Get(ctx context.Context, keyHash string) (*models.VaultConfig, error) {
	query := `
		SELECT schema_version, birthday_date, memories,
		       background_music, heartbeat_sound, final_letter, created_at
		FROM vault_records
		WHERE secret_key_hash = $1`

	var (
		cfg             models.VaultConfig
		memories        []byte
		backgroundMusic sql.NullString
		heartbeat       sql.NullString
		finalLetter     sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, keyHash).Scan(
		&cfg.SchemaVersion,
		&cfg.BirthdayDate,
		&memories,
		&backgroundMusic,
		&heartbeat,
		&finalLetter,
		&cfg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("querying vault: %w", err)
	}

	if err := json.Unmarshal(memories, &cfg.Memories); err != nil {
		return nil, fmt.Errorf("unmarshaling memories: %w", err)
	}

	cfg.SecretKeyHash = keyHash
	cfg.Audio.BackgroundMusic = backgroundMusic.String
	cfg.Audio.Heartbeat = heartbeat.String
	cfg.FinalLetter = finalLetter.String

	return &cfg, nil
}

// Delete removes the vault row for a key hash.
func (s *VaultStore) Delete(ctx context.Context, keyHash string) error {
	query := `DELETE FROM vault_records WHERE secret_key_hash = $1`

	result, err := s.db.ExecContext(ctx, query, keyHash)
	if err != nil {
		return fmt.Errorf("deleting vault: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return store.ErrNotFound
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
