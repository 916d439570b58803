package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/keepsakelabs/giftvault/internal/client"
	"github.com/keepsakelabs/giftvault/internal/gate"
	"github.com/keepsakelabs/giftvault/internal/models"
	"github.com/keepsakelabs/giftvault/internal/reveal"
	"github.com/keepsakelabs/giftvault/internal/session"
	"github.com/keepsakelabs/giftvault/internal/store"
)

// RunRecipient drives the recipient flow: key entry, the date gate,
// the locked countdown and finally the reveal sequence.
//
// keyArg may be a bare key, a pasted share link, or empty. When empty,
// an existing session marker skips the prompt.
func (a *App) RunRecipient(ctx context.Context, keyArg string) error {
	key, fromSession, err := a.resolveKey(ctx, keyArg)
	if err != nil || key == "" {
		return err
	}
	key = gate.NormalizeKey(key)
	keyHash := gate.Digest(key)

	cfg, remoteOK := a.fetchVault(ctx, keyHash)
	if cfg == nil {
		fmt.Println("That key doesn't open anything here.")
		if fromSession {
			a.sessions.Clear(ctx)
		}
		return nil
	}

	e := gate.CheckDate(time.Now(), cfg.BirthdayDate, a.logger)
	if !e.Eligible {
		if !a.waitForDate(ctx, keyHash, cfg, remoteOK, e) {
			return ctx.Err()
		}
	}

	a.plainKey = key
	if err := a.sessions.Set(ctx, session.Session{Key: key, IssuedAt: time.Now()}); err != nil {
		a.logger.Warn("could not persist session marker", "error", err)
	}

	// Cache the fetched record so a later offline launch still works.
	if remoteOK && a.local != nil {
		if err := a.local.Upsert(ctx, keyHash, cfg); err != nil {
			a.logger.Warn("could not mirror vault locally", "error", err)
		}
	}

	return a.runReveal(ctx, cfg)
}

// resolveKey picks the key from the argument, the stored session
// marker, or an interactive prompt, in that order.
func (a *App) resolveKey(ctx context.Context, keyArg string) (key string, fromSession bool, err error) {
	if keyArg != "" {
		return ParseShareLink(keyArg), false, nil
	}

	if sess, err := a.sessions.Read(ctx); err == nil {
		return sess.Key, true, nil
	}

	line, err := promptLine(a.reader, "Enter your secret key (or paste the share link)", os.Stdout)
	if err != nil {
		return "", false, err
	}
	return ParseShareLink(line), false, nil
}

// fetchVault tries the remote store first and falls back to the local
// mirror. remoteOK reports which one answered.
func (a *App) fetchVault(ctx context.Context, keyHash string) (*models.VaultConfig, bool) {
	cfg, err := a.remote.Get(ctx, keyHash)
	if err == nil {
		return cfg, true
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, true
	}

	a.logger.Warn("remote store unreachable, trying local mirror", "error", err)
	if a.local == nil {
		return nil, false
	}
	cfg, err = a.local.Get(ctx, keyHash)
	if err != nil {
		return nil, false
	}
	fmt.Println("(offline: showing the locally mirrored vault)")
	return cfg, false
}

// waitForDate renders the locked countdown until the reveal date
// arrives. It prefers the server's live stream and degrades to local
// polling. Returns false only on context cancellation.
func (a *App) waitForDate(ctx context.Context, keyHash string, cfg *models.VaultConfig, remoteOK bool, first gate.Eligibility) bool {
	fmt.Println("Not yet. The vault opens on", cfg.BirthdayDate+".")
	printCountdown(first.Remaining)

	if remoteOK {
		err := a.remote.SubscribeCountdown(ctx, keyHash, func(t client.CountdownTick) {
			if !t.Eligible {
				printCountdown(t.Remaining)
			}
		})
		if err == nil {
			fmt.Println()
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		a.logger.Warn("countdown stream failed, polling locally", "error", err)
	}

	eligible := false
	gate.Watch(ctx, cfg.BirthdayDate, a.logger, func(e gate.Eligibility) {
		if e.Eligible {
			eligible = true
			return
		}
		printCountdown(e.Remaining)
	})
	if eligible {
		fmt.Println()
	}
	return eligible
}

func printCountdown(remaining string) {
	fmt.Printf("\r\033[K%s until the reveal...", remaining)
}

// runReveal walks the phase machine with the terminal view, reading
// one action per line.
func (a *App) runReveal(ctx context.Context, cfg *models.VaultConfig) error {
	view := newTerminalView(ctx, os.Stdout, cfg.Letter())
	player := newTerminalPlayer(os.Stdout)
	seq := reveal.NewSequencer(cfg, view, a.logger, reveal.WithPlayer(player))
	defer seq.Stop()

	seq.Start()

	// Let the timed blackfade -> greeting -> memories entry play out
	// before prompting for the first action.
	wait := reveal.BlackfadeDuration + reveal.GreetingDuration + 250*time.Millisecond
	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return ctx.Err()
	}

	for {
		switch seq.Phase() {
		case reveal.PhaseMemories:
			fmt.Print("\n[Enter] next  [m]ore  [v]ideo  [q]uit > ")
		case reveal.PhaseSurprise:
			fmt.Print("\n[Enter] open the letter  [q]uit > ")
		case reveal.PhaseLetter:
			fmt.Print("\n[Enter] explore  [q]uit > ")
		case reveal.PhaseDashboard:
			fmt.Print("\n[h]ome (forget this session)  [q]uit > ")
		}

		line, err := a.reader.ReadString('\n')
		if err != nil {
			return nil
		}
		action := strings.TrimSpace(strings.ToLower(line))

		switch seq.Phase() {
		case reveal.PhaseMemories:
			switch action {
			case "":
				seq.Next()
			case "m", "more":
				if text := seq.ShowExpanded(); text != "" {
					view.typeOut(text)
				} else {
					fmt.Println("Nothing more on this one.")
				}
			case "v", "video":
				if payload := seq.ActivateVideo(); payload != "" {
					view.showVideo(payload)
				} else {
					fmt.Println("No video here.")
				}
			case "q", "quit":
				return nil
			}

		case reveal.PhaseSurprise:
			if action == "q" || action == "quit" {
				return nil
			}
			seq.OpenLetter()

		case reveal.PhaseLetter:
			if action == "q" || action == "quit" {
				return nil
			}
			seq.Explore()

		case reveal.PhaseDashboard:
			switch action {
			case "h", "home":
				if err := a.sessions.Clear(ctx); err != nil {
					a.logger.Warn("could not clear session marker", "error", err)
				}
				fmt.Println("Session cleared. See you next year.")
				return nil
			case "q", "quit":
				return nil
			}
		}
	}
}
