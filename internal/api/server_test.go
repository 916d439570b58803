package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsakelabs/giftvault/internal/api/handlers"
	"github.com/keepsakelabs/giftvault/internal/auth"
	"github.com/keepsakelabs/giftvault/internal/models"
	"github.com/keepsakelabs/giftvault/internal/store"
	"github.com/keepsakelabs/giftvault/pkg/config"
)

// mockVaultStore implements store.VaultStore backed by a map.
type mockVaultStore struct {
	vaults map[string]*models.VaultConfig
}

func newMockVaultStore() *mockVaultStore {
	return &mockVaultStore{vaults: make(map[string]*models.VaultConfig)}
}

func (m *mockVaultStore) Upsert(ctx context.Context, keyHash string, cfg *models.VaultConfig) error {
	cp := *cfg
	m.vaults[keyHash] = &cp
	return nil
}

func (m *mockVaultStore) Get(ctx context.Context, keyHash string) (*models.VaultConfig, error) {
	cfg, ok := m.vaults[keyHash]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

func (m *mockVaultStore) Delete(ctx context.Context, keyHash string) error {
	if _, ok := m.vaults[keyHash]; !ok {
		return store.ErrNotFound
	}
	delete(m.vaults, keyHash)
	return nil
}

// mockStore implements store.Store for testing.
type mockStore struct {
	vaultStore *mockVaultStore
}

func newMockStore() *mockStore {
	return &mockStore{vaultStore: newMockVaultStore()}
}

func (m *mockStore) Vaults() store.VaultStore       { return m.vaultStore }
func (m *mockStore) Ping(ctx context.Context) error { return nil }
func (m *mockStore) Close() error                   { return nil }

const testAdminPassword = "admin123"

func newTestServer(t *testing.T) (*Server, *mockStore) {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:       "test-secret-that-is-long-enough-ok",
		JWTExpiry:       time.Hour,
		AdminPassword:   testAdminPassword,
		ShutdownTimeout: time.Second,
	}
	st := newMockStore()
	authSvc := auth.NewService(&auth.Config{
		JWTSecret:   []byte(cfg.JWTSecret),
		TokenExpiry: cfg.JWTExpiry,
		Password:    cfg.AdminPassword,
	}, slog.Default())

	return NewServer(cfg, st, authSvc, slog.Default()), st
}

func loginToken(t *testing.T, srv *Server) string {
	t.Helper()

	body := strings.NewReader(`{"password":"` + testAdminPassword + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func sampleVaultBody(t *testing.T) []byte {
	t.Helper()

	cfg := &models.VaultConfig{
		BirthdayDate: "2025-02-20",
		Memories: []models.Memory{
			{ID: "m1", Number: 1, Message: "the first time we met"},
			{ID: "m2", Number: 2, Message: "that rainy evening"},
		},
		FinalLetter: "happy birthday",
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	return data
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("valid password returns token", func(t *testing.T) {
		token := loginToken(t, srv)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"nope"}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty password is a validation error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVaultGet(t *testing.T) {
	srv, st := newTestServer(t)

	t.Run("absent record reports found false with status 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/vault/deadbeef", nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp handlers.FetchResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.False(t, resp.Found)
		assert.Nil(t, resp.Vault)
	})

	t.Run("present record comes back migrated", func(t *testing.T) {
		st.vaultStore.vaults["cafe01"] = &models.VaultConfig{
			SchemaVersion: 0,
			BirthdayDate:  "2025-02-20",
			SecretKeyHash: "cafe01",
			Memories:      []models.Memory{{ID: "m1", Message: "hello"}},
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/vault/cafe01", nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp handlers.FetchResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Found)
		require.NotNil(t, resp.Vault)
		assert.Equal(t, models.SchemaVersion, resp.Vault.SchemaVersion)
		assert.Equal(t, "2025-02-20", resp.Vault.BirthdayDate)
		require.Len(t, resp.Vault.Memories, 1)
	})
}

func TestVaultPut(t *testing.T) {
	srv, st := newTestServer(t)
	token := loginToken(t, srv)

	t.Run("requires a bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/v1/vault/cafe02", bytes.NewReader(sampleVaultBody(t)))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/v1/vault/cafe02", bytes.NewReader(sampleVaultBody(t)))
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("stores the record under the key hash from the path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/v1/vault/cafe02", bytes.NewReader(sampleVaultBody(t)))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		stored, ok := st.vaultStore.vaults["cafe02"]
		require.True(t, ok)
		assert.Equal(t, "cafe02", stored.SecretKeyHash)
		assert.Equal(t, models.SchemaVersion, stored.SchemaVersion)
		require.Len(t, stored.Memories, 2)
		assert.Equal(t, "the first time we met", stored.Memories[0].Message)
	})

	t.Run("rejects an invalid record", func(t *testing.T) {
		// Missing birthday date.
		body := []byte(`{"memories":[{"id":"m1","message":"hi"}]}`)
		req := httptest.NewRequest(http.MethodPut, "/v1/vault/cafe03", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/v1/vault/cafe03", strings.NewReader("{not json"))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVaultDelete(t *testing.T) {
	srv, st := newTestServer(t)
	token := loginToken(t, srv)

	st.vaultStore.vaults["cafe04"] = &models.VaultConfig{
		BirthdayDate:  "2025-02-20",
		SecretKeyHash: "cafe04",
	}

	t.Run("requires a bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/v1/vault/cafe04", nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("removes an existing record", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/v1/vault/cafe04", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		_, ok := st.vaultStore.vaults["cafe04"]
		assert.False(t, ok)
	})

	t.Run("missing record is a 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/v1/vault/cafe04", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCountdownStream(t *testing.T) {
	srv, st := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()
	wsBase := "ws" + strings.TrimPrefix(ts.URL, "http")

	t.Run("unknown vault is a 404 before the upgrade", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/v1/vault/nothere/countdown")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("past date yields an eligible tick then a normal close", func(t *testing.T) {
		st.vaultStore.vaults["cafe05"] = &models.VaultConfig{
			BirthdayDate:  "2001-01-01",
			SecretKeyHash: "cafe05",
		}

		conn, _, err := websocket.DefaultDialer.Dial(wsBase+"/v1/vault/cafe05/countdown", nil)
		require.NoError(t, err)
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var tick handlers.CountdownTick
		require.NoError(t, conn.ReadJSON(&tick))
		assert.True(t, tick.Eligible)

		err = conn.ReadJSON(&tick)
		require.Error(t, err)
		assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
	})
}
