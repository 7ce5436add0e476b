// FILE: cmd/meridian-play/main.go
// Package main implements the interactive terminal game.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"meridian/internal/cli"
	"meridian/internal/config"
	"meridian/internal/core"
	"meridian/internal/service"
	"meridian/internal/storage"
	clihandler "meridian/internal/transport/cli"

	"github.com/chzyer/readline"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file (optional)")
		dealsDir   = flag.String("deals", "", "Directory of deal files to offer by id (overrides config)")
		name       = flag.String("name", "", "Player name recorded with each game")
		noColor    = flag.Bool("no-color", false, "Disable ANSI colors")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *configPath == "" {
		// keep session logs out of the board display
		cfg.Log.Level = "warn"
	}
	logger := cfg.Logger()

	var store *storage.Store
	if cfg.Storage.Path != "" {
		store, err = storage.NewStore(cfg.Storage.Path, cfg.DevMode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "storage: %v\n", err)
			os.Exit(1)
		}
		if err := store.InitDB(); err != nil {
			fmt.Fprintf(os.Stderr, "storage: %v\n", err)
			os.Exit(1)
		}
	}

	svc := service.New(store, service.Options{Game: cfg.GameOptions(), MaxGames: cfg.Game.MaxGames}, logger)
	defer svc.Close()

	view := cli.New(os.Stdout)
	if *noColor {
		view.SetTheme("off")
	}

	dir := cfg.Deals.Dir
	if *dealsDir != "" {
		dir = *dealsDir
	}
	if dir != "" {
		loaded, rejected, err := svc.Deals().Load(dir)
		if err != nil {
			view.ShowError(err)
		}
		for _, r := range rejected {
			view.ShowMessage(fmt.Sprintf("skipped %s: %v", filepath.Base(r.Source), r.Err))
		}
		if loaded > 0 {
			view.ShowMessage(fmt.Sprintf("%d deal(s) available to load by id", loaded))
		}
	}

	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".meridian_history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     history,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	view.ShowWelcome()
	clihandler.New(svc, view, core.PlayerConfig{Name: *name}).Run(rl)
}
