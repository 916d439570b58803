// Package store provides database access interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/keepsakelabs/giftvault/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// VaultStore defines operations on vault records. Records are keyed
// exclusively by the secret-key hash.
type VaultStore interface {
	// Upsert creates or replaces the record for keyHash. Last write wins;
	// there is no versioning.
	Upsert(ctx context.Context, keyHash string, cfg *models.VaultConfig) error
	// Get retrieves the record for keyHash, or ErrNotFound.
	Get(ctx context.Context, keyHash string) (*models.VaultConfig, error)
	// Delete removes the record for keyHash, or ErrNotFound.
	Delete(ctx context.Context, keyHash string) error
}

// Store is the main interface for database operations.
type Store interface {
	// Vaults returns the VaultStore for vault record operations.
	Vaults() VaultStore

	// Ping verifies the backing connection is alive.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
