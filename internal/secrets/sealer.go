// Package secrets provides optional at-rest sealing of media payloads
// using age encryption. Vault creators encrypt with a public key; only
// holders of the matching private key can open the payloads again.
package secrets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"filippo.io/age"
)

var (
	// ErrNoPublicKey is returned when no public key is configured for sealing.
	ErrNoPublicKey = errors.New("no public key configured for sealing")
	// ErrNoPrivateKey is returned when no private key is configured for opening.
	ErrNoPrivateKey = errors.New("no private key configured for opening")
	// ErrSealFailed is returned when sealing fails.
	ErrSealFailed = errors.New("sealing failed")
	// ErrOpenFailed is returned when opening fails.
	ErrOpenFailed = errors.New("opening failed")
	// ErrInvalidKey is returned when a key is invalid.
	ErrInvalidKey = errors.New("invalid key format")
)

// Sealer encrypts and decrypts media payloads with age X25519 keys.
// A Sealer may hold only a public key (seal-only), only a private key
// (open-only), or both.
type Sealer struct {
	recipient *age.X25519Recipient
	identity  *age.X25519Identity
	logger    *slog.Logger
}

// Config holds the key material for a Sealer.
type Config struct {
	// PublicKey is the age public key for sealing. Format: age1...
	PublicKey string
	// PrivateKey is the age private key for opening. Format: AGE-SECRET-KEY-1...
	PrivateKey string
}

// NewSealer creates a Sealer from the given keys. Either key may be
// empty; the corresponding operation is then unavailable.
func NewSealer(cfg *Config, logger *slog.Logger) (*Sealer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Sealer{logger: logger}

	if cfg.PublicKey != "" {
		recipient, err := age.ParseX25519Recipient(cfg.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid public key: %v", ErrInvalidKey, err)
		}
		s.recipient = recipient
	}

	if cfg.PrivateKey != "" {
		identity, err := age.ParseX25519Identity(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid private key: %v", ErrInvalidKey, err)
		}
		s.identity = identity
	}

	return s, nil
}

// Seal encrypts a payload with the configured public key.
func (s *Sealer) Seal(payload []byte) ([]byte, error) {
	if s.recipient == nil {
		return nil, ErrNoPublicKey
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, s.recipient)
	if err != nil {
		s.logger.Error("failed to create age encryptor", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSealFailed, err)
	}

	if _, err := w.Write(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealFailed, err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealFailed, err)
	}

	return buf.Bytes(), nil
}

// Open decrypts a sealed payload with the configured private key.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if s.identity == nil {
		return nil, ErrNoPrivateKey
	}

	r, err := age.Decrypt(bytes.NewReader(sealed), s.identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	return payload, nil
}

// CanSeal reports whether a public key is configured.
func (s *Sealer) CanSeal() bool {
	return s.recipient != nil
}

// CanOpen reports whether a private key is configured.
func (s *Sealer) CanOpen() bool {
	return s.identity != nil
}

// GenerateKeyPair generates a new age key pair.
func GenerateKeyPair() (publicKey, privateKey string, err error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", "", fmt.Errorf("generating age key pair: %w", err)
	}

	return identity.Recipient().String(), identity.String(), nil
}
