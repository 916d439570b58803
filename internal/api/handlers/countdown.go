package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/keepsakelabs/giftvault/internal/gate"
	"github.com/keepsakelabs/giftvault/internal/store"
)

// CountdownHandler streams countdown ticks over a websocket until the
// reveal date arrives or the client disconnects.
type CountdownHandler struct {
	store  store.Store
	logger *slog.Logger
}

// NewCountdownHandler creates a new countdown handler.
func NewCountdownHandler(st store.Store, logger *slog.Logger) *CountdownHandler {
	return &CountdownHandler{
		store:  st,
		logger: logger,
	}
}

// CountdownTick is a single countdown frame. When Eligible flips to
// true the server sends one final frame and closes the connection.
type CountdownTick struct {
	Eligible  bool   `json:"eligible"`
	Remaining string `json:"remaining,omitempty"`
}

// Stream handles GET /v1/vault/{keyHash}/countdown.
func (h *CountdownHandler) Stream(w http.ResponseWriter, r *http.Request) {
	keyHash := chi.URLParam(r, "keyHash")

	cfg, err := h.store.Vaults().Get(r.Context(), keyHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "vault not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch vault for countdown", "error", err)
		http.Error(w, "failed to fetch vault", http.StatusInternalServerError)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket", "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("countdown stream opened", "key_hash", keyHash)

	// The stream outlives the request timeout, so it is not tied to the
	// request context. A reader goroutine detects client disconnect;
	// inbound frames are otherwise ignored.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	gate.Watch(ctx, cfg.BirthdayDate, h.logger, func(e gate.Eligibility) {
		tick := CountdownTick{Eligible: e.Eligible, Remaining: e.Remaining}
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(tick); err != nil {
			cancel()
		}
	})

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
