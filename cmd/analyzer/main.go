// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command analyzer boots the HTTP service: load configuration, construct
// the LLM provider and checkpoint store it names, wire pkg/workflow.Engine
// behind internal/httpapi, and serve.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	apierrors "github.com/DEFRA/ai-sdlc-code-analysis-api/internal/errors"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/internal/httpapi"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/internal/ui"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/checkpoint"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/config"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/llm"
	"github.com/DEFRA/ai-sdlc-code-analysis-api/pkg/workflow"
)

func main() {
	fs := flag.NewFlagSet("analyzer", flag.ExitOnError)
	addrFlag := fs.String("addr", "", "HTTP listen address (overrides ANALYZER_ADDR)")
	noColor := fs.Bool("no-color", false, "disable colored terminal output")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: analyzer [options]

Boots the code analysis HTTP service: loads configuration, constructs the
LLM provider and checkpoint store it names, and serves the pipeline API.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	ui.InitColors(*noColor)

	cfg, err := config.Load()
	if err != nil {
		apierrors.FatalError(apierrors.NewConfigError(
			"failed to load configuration",
			err.Error(),
			"check the LLM_PROVIDER_* and STORE_* environment variables",
			err,
		), false)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	provider, err := llm.NewProvider(llm.ProviderConfig{
		Type:         cfg.LLMProviderType,
		APIKey:       cfg.LLMAPIKey,
		DefaultModel: cfg.LLMProviderModel,
	})
	if err != nil {
		apierrors.FatalError(apierrors.NewNetworkError(
			"failed to construct LLM provider",
			err.Error(),
			"check LLM_PROVIDER_TYPE and its required credentials",
			err,
		), false)
	}

	store, closeStore, err := newCheckpointStore(cfg, logger)
	if err != nil {
		apierrors.FatalError(apierrors.NewDatabaseError(
			"failed to construct checkpoint store",
			err.Error(),
			"check STORE_KIND, STORE_URI, and STORE_DATABASE",
			err,
		), false)
	}
	defer closeStore()

	engine := workflow.New(store, provider, cfg.LLMProviderModel, cfg.WorkflowTimeout, logger)
	api := httpapi.New(engine, store, logger)

	srv := &http.Server{
		Addr:              addr(*addrFlag),
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("analyzer.server.start", "addr", srv.Addr)
		ui.Successf("analyzer listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("analyzer.server.failed", "err", err)
			ui.Errorf("server failed: %v", err)
			os.Exit(apierrors.ExitNetwork)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.Info("analyzer.server.shutdown")
	ui.Info("shutting down, draining in-flight requests...")
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("analyzer.server.shutdown_failed", "err", err)
		ui.Errorf("shutdown error: %v", err)
		return
	}
	ui.Success("analyzer stopped cleanly")
}

// addr resolves the listen address: an explicit --addr flag wins, then
// ANALYZER_ADDR, then the default.
func addr(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("ANALYZER_ADDR"); v != "" {
		return v
	}
	return ":8080"
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var w = os.Stdout
	if cfg.EnableFileLogging && cfg.LogFilePath != "" {
		f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			w = f
		}
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// newCheckpointStore builds the checkpoint.Store cfg.StoreKind names. The
// returned close func is a no-op for the file store and disconnects the
// Mongo client for the mongo store.
func newCheckpointStore(cfg *config.Config, logger *slog.Logger) (checkpoint.Store, func(), error) {
	switch cfg.StoreKind {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(options.Client().ApplyURI(cfg.StoreURI))
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, nil, err
		}

		collection := client.Database(cfg.StoreDatabase).Collection("checkpoints")
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Warn("analyzer.mongo.disconnect_failed", "err", err)
			}
		}
		return checkpoint.NewMongoStore(collection), closeFn, nil

	default:
		dir := cfg.StoreURI
		if dir == "" {
			dir = "./checkpoints"
		}
		store, err := checkpoint.NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
