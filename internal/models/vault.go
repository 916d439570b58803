// Package models provides data models for the GiftVault platform.
package models

import (
	"errors"
	"fmt"
	"time"
)

// SchemaVersion is the current vault record schema version. Records loaded
// from storage with an older version are migrated at the store boundary;
// newer versions are rejected.
const SchemaVersion = 1

// DateLayout is the wire format for BirthdayDate.
const DateLayout = "2006-01-02"

// Common errors returned by record validation.
var (
	ErrEmptyMessage     = errors.New("memory message must not be empty")
	ErrMissingDate      = errors.New("birthday date is required")
	ErrMissingKeyHash   = errors.New("secret key hash is required")
	ErrSchemaTooNew     = errors.New("record schema version is newer than this build understands")
	ErrDuplicateMemory  = errors.New("duplicate memory id")
	ErrMemoryNotFound   = errors.New("memory not found")
)

// AudioBundle holds the optional audio payloads, each either empty or a
// self-contained data URL.
type AudioBundle struct {
	BackgroundMusic string `json:"background_music,omitempty"`
	Heartbeat       string `json:"heartbeat,omitempty"`
}

// Memory is a single entry in the reveal sequence. Memories are immutable
// once added; the only lifecycle operations are append and delete by ID.
type Memory struct {
	ID string `json:"id"`
	// Number is a creator-assigned display label. It is not required to be
	// unique or gapless and does not control ordering; slice position does.
	Number          int    `json:"number"`
	Message         string `json:"message"`
	ExpandedMessage string `json:"expanded_message,omitempty"`
	PhotoURL        string `json:"photo_url,omitempty"`
	VideoURL        string `json:"video_url,omitempty"`
}

// HasMedia reports whether the memory carries a photo or video payload.
func (m *Memory) HasMedia() bool {
	return m.PhotoURL != "" || m.VideoURL != ""
}

// VaultConfig is the single persisted configuration record. The creator flow
// exclusively owns writes; the recipient flow reads only.
type VaultConfig struct {
	SchemaVersion int         `json:"schema_version"`
	BirthdayDate  string      `json:"birthday_date"`
	SecretKeyHash string      `json:"secret_key_hash"`
	Memories      []Memory    `json:"memories"`
	FinalLetter   string      `json:"final_letter,omitempty"`
	Audio         AudioBundle `json:"audio"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Validate checks structural invariants of the record. It does not validate
// the date's calendar semantics beyond parseability: a record with an
// unparseable date is still accepted here because the recipient gate
// fails open on it (see the gate package).
func (c *VaultConfig) Validate() error {
	if c.SchemaVersion > SchemaVersion {
		return fmt.Errorf("%w: got %d, support up to %d", ErrSchemaTooNew, c.SchemaVersion, SchemaVersion)
	}
	if c.BirthdayDate == "" {
		return ErrMissingDate
	}
	if c.SecretKeyHash == "" {
		return ErrMissingKeyHash
	}

	seen := make(map[string]struct{}, len(c.Memories))
	for i := range c.Memories {
		m := &c.Memories[i]
		if m.Message == "" {
			return fmt.Errorf("memory %d: %w", i, ErrEmptyMessage)
		}
		if m.ID != "" {
			if _, dup := seen[m.ID]; dup {
				return fmt.Errorf("%w: %s", ErrDuplicateMemory, m.ID)
			}
			seen[m.ID] = struct{}{}
		}
	}
	return nil
}

// Migrate brings an older record to the current schema version. Version 0
// records (pre-versioning) carry the same field shape, so migration only
// stamps the version.
func (c *VaultConfig) Migrate() {
	if c.SchemaVersion == 0 {
		c.SchemaVersion = SchemaVersion
	}
}

// AddMemory appends a memory, preserving insertion order.
func (c *VaultConfig) AddMemory(m Memory) {
	c.Memories = append(c.Memories, m)
}

// DeleteMemory removes the memory with the given ID.
func (c *VaultConfig) DeleteMemory(id string) error {
	for i := range c.Memories {
		if c.Memories[i].ID == id {
			c.Memories = append(c.Memories[:i], c.Memories[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrMemoryNotFound, id)
}

// Letter returns the final letter text, falling back to the built-in
// default when the creator left it empty.
func (c *VaultConfig) Letter() string {
	if c.FinalLetter != "" {
		return c.FinalLetter
	}
	return DefaultLetter
}
