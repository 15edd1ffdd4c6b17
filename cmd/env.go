package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/truemed/scan-cli/internal/cost"
	"github.com/truemed/scan-cli/internal/extract"
	"github.com/truemed/scan-cli/internal/plan"
	"github.com/truemed/scan-cli/internal/provider"
	"github.com/truemed/scan-cli/internal/route"
	"github.com/truemed/scan-cli/internal/scan"
	"github.com/truemed/scan-cli/internal/store"
)

// env bundles the wired scan pipeline for the commands.
type env struct {
	Store        store.Store
	Orchestrator *scan.Orchestrator
	Router       *route.Router
}

// Close releases the store.
func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

// initEnv wires the store, providers, router and orchestrator from config.
func initEnv(ctx context.Context) (*env, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	table := route.DefaultTable()
	if cfg.Routing.TableFile != "" {
		table, err = route.LoadTable(cfg.Routing.TableFile)
		if err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
	}
	router, err := route.NewRouter(table)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	registry := provider.Build(cfg.Providers)
	engine := extract.NewEngine(cost.NewCalculator(cfg.Pricing), cfg.Scan.PerImageTokenOverhead)
	resolver := plan.NewResolver(st)
	orchestrator := scan.NewOrchestrator(resolver, router, engine, registry, st)

	return &env{
		Store:        st,
		Orchestrator: orchestrator,
		Router:       router,
	}, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
