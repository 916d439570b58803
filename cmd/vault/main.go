// Package main provides the giftvault CLI: the creator flow for
// composing a vault and the recipient flow for unlocking one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/keepsakelabs/giftvault/internal/cli"
	"github.com/keepsakelabs/giftvault/pkg/config"
	"github.com/keepsakelabs/giftvault/pkg/logger"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: vault <command> [args]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  create           compose and save a vault (admin)")
	fmt.Fprintln(os.Stderr, "  open [key|link]  unlock a vault as the recipient")
}

func main() {
	quiet := flag.Bool("quiet", false, "suppress log output")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *quiet {
		level = slog.LevelError
	}
	log := logger.New(level, false)

	cfg := config.LoadWithDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	app, err := cli.NewApp(ctx, cfg, log.Logger)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	switch args[0] {
	case "create":
		err = app.RunCreator(ctx)
	case "open":
		key := ""
		if len(args) > 1 {
			key = args[1]
		}
		err = app.RunRecipient(ctx, key)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil && err != context.Canceled {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}
