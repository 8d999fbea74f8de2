package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/graph-cli/internal/adapters/driven/browser"
	"github.com/custodia-labs/graph-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/graph-cli/internal/adapters/driven/graph"
	"github.com/custodia-labs/graph-cli/internal/adapters/driven/msal"
	"github.com/custodia-labs/graph-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/graph-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/graph-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/graph-cli/internal/core/domain"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driven"
	"github.com/custodia-labs/graph-cli/internal/core/services"
	"github.com/custodia-labs/graph-cli/internal/logger"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath, err := file.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate config: %v\n", err)
		return 1
	}
	settings := services.NewSettingsService(file.NewConfigStore(configPath))

	cfg, err := settings.Get()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		// Config commands still work so the user can fix the settings.
		cli.SetServices(&cli.Services{Settings: settings, SetupErr: err})
		return execute(ctx)
	}

	store, cleanup, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open data store: %v\n", err)
		return 1
	}
	defer cleanup()

	var redirects driven.RedirectStateStore = memory.NewRedirectStore()
	opts := msal.Options{
		ClientID:    cfg.ClientID,
		Authority:   cfg.Authority,
		RedirectURI: cfg.RedirectURI,
		Navigator:   browser.NewNavigator(os.Stderr),
	}
	if store != nil {
		if cfg.CacheLocation == domain.CacheLocal {
			opts.Cache = store.TokenCache()
		}
		if cfg.PersistAcrossSessions {
			redirects = store.RedirectStore()
		}
	}
	opts.Redirects = redirects

	client, err := msal.New(opts)
	if err != nil {
		cli.SetServices(&cli.Services{Settings: settings, SetupErr: err})
		return execute(ctx)
	}

	session := services.NewSessionManager(client, opts.Navigator, cfg.RedirectURI)
	fetcher := graph.NewFetcher()
	graphSvc := services.NewGraphService(session, fetcher, cfg.Endpoints(), cfg.Flow())
	// MCP tools run without a user at the browser.
	tools := services.NewGraphService(session, fetcher, cfg.Endpoints(), domain.FlowNone)

	cli.SetServices(&cli.Services{
		Graph:    graphSvc,
		Session:  session,
		Settings: settings,
		Tools:    tools,
	})
	return execute(ctx)
}

// openStore opens the SQLite store when tokens or redirect state outlive
// the process. It returns a nil store for a session-only configuration.
func openStore(cfg *domain.Config) (*sqlite.Store, func(), error) {
	if cfg.CacheLocation != domain.CacheLocal && !cfg.PersistAcrossSessions {
		return nil, func() {}, nil
	}
	path, err := sqlite.DefaultPath()
	if err != nil {
		return nil, nil, err
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close data store: %v", err)
		}
	}, nil
}

func execute(ctx context.Context) int {
	if err := cli.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		return 1
	}
	return 0
}
