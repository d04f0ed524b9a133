package main

import (
	"fmt"
	"os"

	"github.com/evrenbey/grove/internal/background"
	"github.com/evrenbey/grove/internal/cli"
	"github.com/evrenbey/grove/internal/config"
	"github.com/evrenbey/grove/internal/playlist"
	"github.com/evrenbey/grove/internal/storage"
	"github.com/evrenbey/grove/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := os.Getenv("GROVE_CONFIG")
	if cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("finding config directory: %w", err)
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	dbPath := os.Getenv("GROVE_DB")
	if dbPath == "" {
		p, err := storage.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("finding data directory: %w", err)
		}
		dbPath = p
	}
	db, err := storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	app := store.New(cfg, db, nil)
	defer app.Close()

	if err := app.LoadState(); err != nil {
		return fmt.Errorf("loading saved state: %w", err)
	}

	var client *playlist.Client
	if cfg.PlaylistSourceURL != "" {
		client = playlist.NewClient(cfg.PlaylistSourceURL, cfg.PlaylistSASToken)
	}

	var images *background.Client
	if cfg.ImageSourceURL != "" {
		images = background.NewClient(cfg.ImageSourceURL, cfg.ImageAccessKey)
	}

	rootCmd := cli.NewRootCmd(&cli.App{
		Store:    app,
		Playlist: client,
		Images:   images,
	})
	return rootCmd.Execute()
}
