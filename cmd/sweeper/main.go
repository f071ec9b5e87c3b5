// The sweeper periodically runs bulk recovery so assets left in the
// processing state resolve without an operator asking for them. The
// reconciliation engine itself is pull-based; this binary is the only
// scheduler in the system.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"adforge/internal/adapter/repo"
	"adforge/internal/domain"
	"adforge/internal/infra"
	"adforge/internal/infra/credentials"
	"adforge/internal/providers/heygen"
	"adforge/internal/reconcile"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("sweeper: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	assets := repo.NewAssetRepository(runner)

	apiKey := strings.TrimSpace(cfg.HeyGenAPIKey)
	if apiKey == "" {
		credStore := credentials.NewStore(runner)
		key, err := credStore.Token(ctx, credentials.ProviderHeyGen)
		if err != nil {
			logger.Warn().Err(err).Msg("sweeper: failed to load heygen key from store")
		} else {
			apiKey = key
		}
	}
	client, err := heygen.NewClient(heygen.Options{
		APIKey:     apiKey,
		BaseURL:    cfg.HeyGenBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.ProviderTimeout},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("sweeper: failed to configure heygen client")
	}

	engine := reconcile.NewEngine(assets, client, logger)

	logger.Info().Dur("interval", cfg.SweepInterval).Msg("sweeper: started")
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		sweep(ctx, engine, assets, logger)
		select {
		case <-ctx.Done():
			logger.Info().Msg("sweeper: stopped")
			return
		case <-ticker.C:
		}
	}
}

func sweep(ctx context.Context, engine *reconcile.Engine, assets *repo.AssetRepositoryPG, logger infra.Logger) {
	pending, err := assets.ListByStatus(ctx, domain.AssetStatusProcessing, 500)
	if err != nil {
		logger.Error().Err(err).Msg("sweeper: failed to list pending assets")
		return
	}
	if len(pending) == 0 {
		logger.Debug().Msg("sweeper: nothing pending")
		return
	}

	outcomes, err := engine.RecoverAll(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("sweeper: bulk recovery failed")
		}
		return
	}
	updated := 0
	for _, outcome := range outcomes {
		if outcome.Updated {
			updated++
		}
	}
	logger.Info().
		Int("pending", len(pending)).
		Int("checked", len(outcomes)).
		Int("updated", updated).
		Msg("sweeper: pass finished")
}
