package secrets

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/keepsakelabs/giftvault/internal/models"
)

// sealedPrefix marks a media payload that has been sealed. The rest of
// the string is standard base64 of the age ciphertext.
const sealedPrefix = "sealed:"

// IsSealed reports whether a payload carries the sealed envelope.
func IsSealed(payload string) bool {
	return strings.HasPrefix(payload, sealedPrefix)
}

// SealPayload seals a single media payload. Empty and already-sealed
// payloads pass through unchanged.
func (s *Sealer) SealPayload(payload string) (string, error) {
	if payload == "" || IsSealed(payload) {
		return payload, nil
	}
	ct, err := s.Seal([]byte(payload))
	if err != nil {
		return "", err
	}
	return sealedPrefix + base64.StdEncoding.EncodeToString(ct), nil
}

// OpenPayload opens a sealed media payload. Unsealed payloads pass
// through unchanged.
func (s *Sealer) OpenPayload(payload string) (string, error) {
	if !IsSealed(payload) {
		return payload, nil
	}
	ct, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(payload, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}
	pt, err := s.Open(ct)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// SealRecord seals every media payload in the record in place. Message
// text is left in the clear; only the bulky media fields are sealed.
func (s *Sealer) SealRecord(cfg *models.VaultConfig) error {
	return s.mapRecord(cfg, s.SealPayload)
}

// OpenRecord opens every sealed media payload in the record in place.
func (s *Sealer) OpenRecord(cfg *models.VaultConfig) error {
	return s.mapRecord(cfg, s.OpenPayload)
}

func (s *Sealer) mapRecord(cfg *models.VaultConfig, fn func(string) (string, error)) error {
	var err error
	if cfg.Audio.BackgroundMusic, err = fn(cfg.Audio.BackgroundMusic); err != nil {
		return fmt.Errorf("background music: %w", err)
	}
	if cfg.Audio.Heartbeat, err = fn(cfg.Audio.Heartbeat); err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	for i := range cfg.Memories {
		m := &cfg.Memories[i]
		if m.PhotoURL, err = fn(m.PhotoURL); err != nil {
			return fmt.Errorf("memory %s photo: %w", m.ID, err)
		}
		if m.VideoURL, err = fn(m.VideoURL); err != nil {
			return fmt.Errorf("memory %s video: %w", m.ID, err)
		}
	}
	return nil
}
