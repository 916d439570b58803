// Package client provides the HTTP client for the vault API. The CLI
// uses it as its remote vault store; it implements store.VaultStore.
// Failed calls surface immediately so the caller can fall back to the
// local mirror; there is no automatic retry.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/keepsakelabs/giftvault/internal/models"
	"github.com/keepsakelabs/giftvault/internal/store"
)

// ErrUnauthorized is returned when the server rejects the admin token
// or password.
var ErrUnauthorized = errors.New("unauthorized")

// Client is a vault API client.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

// New creates a client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc: &http.Client{
			// Vault payloads carry inline media, so uploads can be slow.
			Timeout: 5 * time.Minute,
		},
	}
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges the admin password for a token used on subsequent
// writes.
func (c *Client) Login(ctx context.Context, password string) error {
	body, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: unexpected status code %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decoding login response: %w", err)
	}

	c.token = out.Token
	return nil
}

// Upsert saves the full record for keyHash. Requires a prior Login.
func (c *Client) Upsert(ctx context.Context, keyHash string, cfg *models.VaultConfig) error {
	body, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling vault: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.vaultURL(keyHash), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("saving vault: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("saving vault: unexpected status code %d", resp.StatusCode)
	}
	return nil
}

// Get fetches the record for keyHash. A found=false response maps to
// store.ErrNotFound so the client satisfies store.VaultStore.
func (c *Client) Get(ctx context.Context, keyHash string) (*models.VaultConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.vaultURL(keyHash), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching vault: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching vault: unexpected status code %d", resp.StatusCode)
	}

	var out struct {
		Found bool                `json:"found"`
		Vault *models.VaultConfig `json:"vault"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding vault response: %w", err)
	}

	if !out.Found || out.Vault == nil {
		return nil, store.ErrNotFound
	}

	out.Vault.Migrate()
	return out.Vault, nil
}

// Delete removes the record for keyHash. Requires a prior Login.
func (c *Client) Delete(ctx context.Context, keyHash string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.vaultURL(keyHash), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("deleting vault: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return store.ErrNotFound
	default:
		return fmt.Errorf("deleting vault: unexpected status code %d", resp.StatusCode)
	}
}

func (c *Client) vaultURL(keyHash string) string {
	return c.baseURL + "/v1/vault/" + url.PathEscape(keyHash)
}
