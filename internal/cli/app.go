// Package cli implements the interactive creator and recipient flows
// over the vault API and the local mirror.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/keepsakelabs/giftvault/internal/client"
	"github.com/keepsakelabs/giftvault/internal/localstore"
	"github.com/keepsakelabs/giftvault/internal/session"
	"github.com/keepsakelabs/giftvault/pkg/config"
)

// App holds the shared dependencies of both flows.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	remote   *client.Client
	local    *localstore.LocalStore
	sessions session.Store
	reader   *bufio.Reader

	// plainKey is the secret key generated or verified in this run. It
	// lives only in process memory; storage sees the digest.
	plainKey string
}

// NewApp wires the remote client, the local mirror and the session
// store. A local database failure degrades to in-memory sessions and
// no offline mirror rather than refusing to start.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		remote: client.New(cfg.ServerURL),
		reader: bufio.NewReader(os.Stdin),
	}

	local, err := localstore.Open(ctx, cfg.LocalDBPath, logger)
	if err != nil {
		logger.Warn("local database unavailable, continuing without offline mirror", "error", err)
		a.sessions = session.NewMemStore()
	} else {
		a.local = local
		a.sessions = local.Sessions()
	}

	return a, nil
}

// Close releases the local database.
func (a *App) Close() error {
	if a.local != nil {
		return a.local.Close()
	}
	return nil
}
