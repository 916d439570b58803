package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keepsakelabs/giftvault/internal/client"
	"github.com/keepsakelabs/giftvault/internal/gate"
	"github.com/keepsakelabs/giftvault/internal/media"
	"github.com/keepsakelabs/giftvault/internal/models"
	"github.com/keepsakelabs/giftvault/internal/store"
)

// RunCreator drives the creator flow: admin login, then an interactive
// loop for composing and saving the vault.
func (a *App) RunCreator(ctx context.Context) error {
	password, err := promptPassword("Admin password", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.remote.Login(ctx, password); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Println("Wrong password.")
			return nil
		}
		fmt.Println("Could not reach the server:", err)
		return nil
	}
	fmt.Println("Logged in. Type 'help' for commands.")

	cfg := a.loadDraft(ctx)

	for {
		fmt.Print("vault> ")
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Commands: status, date <YYYY-MM-DD>, genkey, add, list, del <id>,")
			fmt.Println("          letter, music <file>, heartbeat <file>, save, share, exit")

		case "status":
			a.printStatus(ctx, cfg)

		case "date":
			if len(args) != 1 {
				fmt.Println("Usage: date <YYYY-MM-DD>")
				continue
			}
			if _, err := time.Parse(models.DateLayout, args[0]); err != nil {
				fmt.Println("Not a valid date:", args[0])
				continue
			}
			cfg.BirthdayDate = args[0]
			fmt.Println("Reveal date set to", args[0])

		case "genkey":
			key, err := gate.GenerateKey()
			if err != nil {
				fmt.Println("Could not generate a key:", err)
				continue
			}
			a.plainKey = key
			cfg.SecretKeyHash = gate.Digest(key)
			fmt.Println("Secret key:", key)
			fmt.Println("Write it down. Only its digest is stored; the key itself cannot be recovered.")

		case "add":
			a.addMemory(cfg)

		case "list":
			if len(cfg.Memories) == 0 {
				fmt.Println("No memories yet.")
				continue
			}
			for i, m := range cfg.Memories {
				marker := ""
				if m.HasMedia() {
					marker = " [media]"
				}
				fmt.Printf("%d. (%s) %s%s\n", i+1, m.ID, m.Message, marker)
			}

		case "del":
			if len(args) != 1 {
				fmt.Println("Usage: del <id>")
				continue
			}
			if err := cfg.DeleteMemory(args[0]); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("Removed.")

		case "letter":
			text, err := promptMultiline(a.reader, "Final letter (empty keeps the built-in default)", os.Stdout)
			if err != nil {
				continue
			}
			cfg.FinalLetter = text
			if text == "" {
				fmt.Println("Using the default letter.")
			}

		case "music":
			if len(args) != 1 {
				fmt.Println("Usage: music <file>")
				continue
			}
			if payload, ok := a.encodeAudio(args[0]); ok {
				cfg.Audio.BackgroundMusic = payload
				fmt.Println("Background music attached.")
			}

		case "heartbeat":
			if len(args) != 1 {
				fmt.Println("Usage: heartbeat <file>")
				continue
			}
			if payload, ok := a.encodeAudio(args[0]); ok {
				cfg.Audio.Heartbeat = payload
				fmt.Println("Heartbeat sound attached.")
			}

		case "save":
			a.save(ctx, cfg)

		case "share":
			a.printShare(cfg)

		case "exit", "quit":
			return nil

		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

// loadDraft resumes the locally mirrored record, or starts fresh.
func (a *App) loadDraft(ctx context.Context) *models.VaultConfig {
	if a.local != nil {
		if cfg, err := a.local.Load(ctx); err == nil {
			fmt.Printf("Resuming saved vault (%d memories, date %s).\n", len(cfg.Memories), cfg.BirthdayDate)
			return cfg
		}
	}
	return &models.VaultConfig{
		SchemaVersion: models.SchemaVersion,
		CreatedAt:     time.Now().UTC(),
	}
}

func (a *App) addMemory(cfg *models.VaultConfig) {
	message, err := promptLine(a.reader, "Memory message", os.Stdout)
	if err != nil || message == "" {
		fmt.Println("A memory needs a message.")
		return
	}
	expanded, _ := promptMultiline(a.reader, "Expanded message (optional)", os.Stdout)

	m := models.Memory{
		ID:              uuid.NewString(),
		Number:          len(cfg.Memories) + 1,
		Message:         message,
		ExpandedMessage: expanded,
	}

	if path, _ := promptLine(a.reader, "Photo file (optional)", os.Stdout); path != "" {
		payload, err := media.EncodeFile(media.KindPhoto, path)
		if err != nil {
			fmt.Println(err)
			return
		}
		m.PhotoURL = payload
	}
	if path, _ := promptLine(a.reader, "Video file (optional)", os.Stdout); path != "" {
		payload, err := media.EncodeFile(media.KindVideo, path)
		if err != nil {
			fmt.Println(err)
			return
		}
		m.VideoURL = payload
	}

	cfg.AddMemory(m)
	fmt.Printf("Added memory %d.\n", len(cfg.Memories))
}

func (a *App) encodeAudio(path string) (string, bool) {
	payload, err := media.EncodeFile(media.KindAudio, path)
	if err != nil {
		fmt.Println(err)
		return "", false
	}
	return payload, true
}

// save pushes the record to the server first; the local mirror is only
// written after the remote accepted it, so the mirror never gets ahead
// of the source of truth.
func (a *App) save(ctx context.Context, cfg *models.VaultConfig) {
	if err := cfg.Validate(); err != nil {
		fmt.Println("Not saved:", err)
		return
	}

	if err := a.remote.Upsert(ctx, cfg.SecretKeyHash, cfg); err != nil {
		fmt.Println("Not saved:", err)
		return
	}

	if a.local != nil {
		if err := a.local.Save(ctx, cfg); err != nil {
			a.logger.Warn("local backup failed", "error", err)
		}
	}
	fmt.Println("Saved.")
}

func (a *App) printShare(cfg *models.VaultConfig) {
	if a.plainKey == "" {
		fmt.Println("No key from this session. Run 'genkey' first; stored digests cannot be turned back into keys.")
		return
	}
	link := ShareLink(a.cfg.BaseURL, a.plainKey)
	fmt.Println("Share link:", link)
	fmt.Println("QR code:  ", QRCodeURL(link))
}

func (a *App) printStatus(ctx context.Context, cfg *models.VaultConfig) {
	date := cfg.BirthdayDate
	if date == "" {
		date = "(unset)"
	}
	keyState := "(unset)"
	if cfg.SecretKeyHash != "" {
		keyState = "set"
	}
	fmt.Printf("Date: %s  Key: %s  Memories: %d\n", date, keyState, len(cfg.Memories))
	if cfg.FinalLetter == "" {
		fmt.Println("Letter: built-in default")
	} else {
		fmt.Printf("Letter: %d characters\n", len(cfg.FinalLetter))
	}
	if a.local == nil {
		return
	}
	if size, err := a.local.ApproximateSizeBytes(ctx); err == nil {
		fmt.Printf("Local mirror: ~%.2f MB\n", float64(size)/1024/1024)
	}
	if _, err := a.local.Load(ctx); errors.Is(err, store.ErrNotFound) {
		fmt.Println("Nothing saved locally yet.")
	}
}
