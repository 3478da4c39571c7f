// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/embedstore-dev/embedstore/internal/config"
	"github.com/embedstore-dev/embedstore/internal/embedder"
	"github.com/embedstore-dev/embedstore/internal/embedder/gemini"
	"github.com/embedstore-dev/embedstore/internal/embedder/ollama"
	"github.com/embedstore-dev/embedstore/internal/embedder/openai"
	"github.com/embedstore-dev/embedstore/internal/engine"
	"github.com/embedstore-dev/embedstore/internal/secrets"
	"github.com/embedstore-dev/embedstore/internal/server"
	"github.com/embedstore-dev/embedstore/internal/store/sqlite"
	esterr "github.com/embedstore-dev/embedstore/pkg/errors"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the embedstore server",
		Long:  "Load configuration, open the vector database, register embedding providers, and serve the HTTP API.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgPath := configPath(cmd)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	config.WarnInsecurePermissions(cfgPath)

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}

	dbPath, err := databasePath(cfg)
	if err != nil {
		return err
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	registry, err := buildRegistry(cmd.Context(), cfg, secrets.NewKeyringStore())
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		ListenAddr:   cfg.Server.Listen,
		CORSOrigins:  cfg.Server.CORSOrigins,
		WriteTimeout: time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second,
	}, engine.New(db, db, registry))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("embedstore listening",
		"addr", cfg.Server.Listen,
		"db", dbPath,
		"providers", registry.Providers(),
	)
	return srv.Start(ctx)
}

// databasePath resolves the database file location and ensures its directory
// exists.
func databasePath(cfg *config.Config) (string, error) {
	path := cfg.Storage.Path
	if path == "" {
		var err error
		path, err = config.DefaultDatabasePath()
		if err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", esterr.Wrapf(err, esterr.CodeCLISetupFailure, "creating data directory for %s", path)
	}
	return path, nil
}

// buildRegistry constructs one embedder per configured provider. API keys may
// be keyring:// URIs; they are resolved here so they never sit in memory
// outside the provider clients.
func buildRegistry(ctx context.Context, cfg *config.Config, secretStore secrets.Store) (*embedder.Registry, error) {
	registry := embedder.NewRegistry()

	for name, p := range cfg.Providers {
		apiKey, err := secrets.Resolve(secretStore, p.APIKey)
		if err != nil {
			return nil, esterr.Wrapf(err, esterr.CodeCLISetupFailure, "resolving api key for provider %s", name)
		}

		switch name {
		case "ollama":
			registry.Register(ollama.New(ollama.Config{BaseURL: p.Endpoint}))
		case "openai":
			e, err := openai.New(openai.Config{APIKey: apiKey, BaseURL: p.Endpoint})
			if err != nil {
				return nil, err
			}
			registry.Register(e)
		case "gemini":
			e, err := gemini.New(ctx, gemini.Config{APIKey: apiKey})
			if err != nil {
				return nil, err
			}
			registry.Register(e)
		}
	}

	// With no providers configured, a local Ollama is still useful out of
	// the box.
	if len(registry.Providers()) == 0 {
		registry.Register(ollama.New(ollama.Config{}))
	}

	return registry, nil
}
