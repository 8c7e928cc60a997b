package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/idilsaglam/shopping/internal/cli"
	"github.com/idilsaglam/shopping/internal/config"
	"github.com/idilsaglam/shopping/internal/logger"
	"github.com/idilsaglam/shopping/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root flags and env (apply to every subcommand)
	cfg, help, err := config.Load()
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 2
	}
	if help != "" {
		fmt.Println(help)
		cli.PrintHelp(os.Stdout)
		return 0
	}
	ui.SetTheme(cfg.Theme)

	log, closeLog, err := logger.New(cfg)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	defer closeLog()
	log.Debug("config", "settings", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hand the positional args to the CLI runner.
	code := cli.Run(ctx, cfg.Args, cli.Options{
		Group:     cfg.Group,
		JSON:      cfg.JSON,
		Seed:      cfg.Seed,
		CharLimit: cfg.CharLimit,
		Log:       log,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	return code
}
