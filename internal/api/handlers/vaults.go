package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/keepsakelabs/giftvault/internal/api/errors"
	"github.com/keepsakelabs/giftvault/internal/models"
	"github.com/keepsakelabs/giftvault/internal/secrets"
	"github.com/keepsakelabs/giftvault/internal/store"
)

// MaxVaultBytes caps the request body for vault writes. Media payloads
// travel inline as data URLs, so the cap covers the largest legal
// combination of photo, video and audio payloads with slack for the
// base64 overhead.
const MaxVaultBytes = 96 << 20

// VaultHandler handles vault record reads and writes. When a sealer is
// configured, media payloads are sealed at rest and opened on fetch.
type VaultHandler struct {
	store  store.Store
	sealer *secrets.Sealer
	logger *slog.Logger
}

// NewVaultHandler creates a new vault handler. sealer may be nil.
func NewVaultHandler(st store.Store, sealer *secrets.Sealer, logger *slog.Logger) *VaultHandler {
	return &VaultHandler{
		store:  st,
		sealer: sealer,
		logger: logger,
	}
}

// FetchResponse is the body of a vault lookup.
type FetchResponse struct {
	Found bool                `json:"found"`
	Vault *models.VaultConfig `json:"vault,omitempty"`
}

// Get handles GET /v1/vault/{keyHash}. A missing record is not an
// error: the recipient flow probes with candidate key hashes, so
// absence is reported as found=false with status 200.
func (h *VaultHandler) Get(w http.ResponseWriter, r *http.Request) {
	keyHash := chi.URLParam(r, "keyHash")

	cfg, err := h.store.Vaults().Get(r.Context(), keyHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteJSON(w, http.StatusOK, &FetchResponse{Found: false})
			return
		}
		h.logger.Error("failed to fetch vault", "error", err)
		apierrors.WriteError(w, apierrors.NewInternalError("failed to fetch vault"))
		return
	}

	cfg.Migrate()

	if h.sealer != nil && h.sealer.CanOpen() {
		if err := h.sealer.OpenRecord(cfg); err != nil {
			h.logger.Error("failed to open sealed media", "error", err, "key_hash", keyHash)
			apierrors.WriteError(w, apierrors.NewInternalError("failed to open sealed media"))
			return
		}
	}

	WriteJSON(w, http.StatusOK, &FetchResponse{Found: true, Vault: cfg})
}

// Put handles PUT /v1/vault/{keyHash}. The write replaces the whole
// record; partial updates are resolved client-side before saving.
func (h *VaultHandler) Put(w http.ResponseWriter, r *http.Request) {
	keyHash := chi.URLParam(r, "keyHash")

	r.Body = http.MaxBytesReader(w, r.Body, MaxVaultBytes)

	var cfg models.VaultConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.WriteError(w, apierrors.NewPayloadTooLargeError("vault payload too large"))
			return
		}
		apierrors.WriteError(w, apierrors.NewValidationError("invalid request body"))
		return
	}

	cfg.SecretKeyHash = keyHash
	cfg.Migrate()
	if err := cfg.Validate(); err != nil {
		apierrors.WriteError(w, validationAPIError(err))
		return
	}

	if h.sealer != nil && h.sealer.CanSeal() {
		if err := h.sealer.SealRecord(&cfg); err != nil {
			h.logger.Error("failed to seal media", "error", err, "key_hash", keyHash)
			apierrors.WriteError(w, apierrors.NewInternalError("failed to seal media"))
			return
		}
	}

	if err := h.store.Vaults().Upsert(r.Context(), keyHash, &cfg); err != nil {
		h.logger.Error("failed to save vault", "error", err, "key_hash", keyHash)
		apierrors.WriteError(w, apierrors.NewInternalError("failed to save vault"))
		return
	}

	h.logger.Info("vault saved", "key_hash", keyHash, "memories", len(cfg.Memories))
	WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// validationAPIError maps record validation failures onto field-level
// error details.
func validationAPIError(err error) *apierrors.APIError {
	var v apierrors.ValidationErrors
	switch {
	case errors.Is(err, models.ErrMissingDate):
		v.Add("birthday_date", err.Error())
	case errors.Is(err, models.ErrMissingKeyHash):
		v.Add("secret_key_hash", err.Error())
	case errors.Is(err, models.ErrEmptyMessage),
		errors.Is(err, models.ErrDuplicateMemory):
		v.Add("memories", err.Error())
	case errors.Is(err, models.ErrSchemaTooNew):
		v.Add("schema_version", err.Error())
	}
	if !v.HasErrors() {
		return apierrors.NewValidationError(err.Error())
	}
	return v.ToAPIError()
}

// Delete handles DELETE /v1/vault/{keyHash}.
func (h *VaultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	keyHash := chi.URLParam(r, "keyHash")

	if err := h.store.Vaults().Delete(r.Context(), keyHash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apierrors.WriteError(w, apierrors.NewNotFoundError("vault not found"))
			return
		}
		h.logger.Error("failed to delete vault", "error", err, "key_hash", keyHash)
		apierrors.WriteError(w, apierrors.NewInternalError("failed to delete vault"))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
