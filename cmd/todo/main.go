package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"tasklist/internal/config"
	"tasklist/internal/logging"
	"tasklist/internal/storage"
	"tasklist/internal/todo"
	"tasklist/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	firstLaunch := false
	if _, err := os.Stat(configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Printf("failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	store, closer, err := openStore(cfg.Backend, logger)
	if err != nil {
		fmt.Printf("failed to open task store: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	logger.Info("session started", "backend", cfg.Backend, "config", configPath)

	if err := ui.Run(store, cfg, logger, firstLaunch); err != nil {
		logger.Error("ui exited", "err", err)
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
	logger.Info("session ended")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore builds the session's task store. Nothing outlives the process.
func openStore(backend string, logger *log.Logger) (todo.Repository, io.Closer, error) {
	opts := todo.Options{Logger: logger}
	switch backend {
	case config.BackendSQLite:
		s, err := storage.Open(opts)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return todo.NewStore(opts), nopCloser{}, nil
	}
}
