package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"adforge/internal/adapter/repo"
	"adforge/internal/dispatch"
	adhttp "adforge/internal/http"
	"adforge/internal/http/handlers"
	"adforge/internal/infra"
	"adforge/internal/infra/credentials"
	"adforge/internal/infra/geoip"
	"adforge/internal/middleware"
	"adforge/internal/providers/gemini"
	"adforge/internal/providers/heygen"
	"adforge/internal/providers/wanx"
	"adforge/internal/reconcile"
	"adforge/internal/storage"
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
		logger.Fatal().Err(err).Msg("api: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	assets := repo.NewAssetRepository(runner)
	catalog := repo.NewCatalogRepository(runner)
	credStore := credentials.NewStore(runner)

	store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure storage")
	}

	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}

	geminiClient, err := gemini.NewClient(gemini.Options{
		APIKey:     providerKey(ctx, credStore, credentials.ProviderGemini, cfg.GeminiAPIKey, logger),
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure gemini client")
	}
	wanxClient, err := wanx.NewClient(wanx.Options{
		APIKey:     providerKey(ctx, credStore, credentials.ProviderWanx, cfg.WanxAPIKey, logger),
		BaseURL:    cfg.WanxBaseURL,
		Model:      cfg.WanxModel,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure wanx client")
	}
	heygenClient, err := heygen.NewClient(heygen.Options{
		APIKey:     providerKey(ctx, credStore, credentials.ProviderHeyGen, cfg.HeyGenAPIKey, logger),
		BaseURL:    cfg.HeyGenBaseURL,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure heygen client")
	}

	dispatcher := dispatch.NewDispatcher(dispatch.Options{
		Catalog: catalog,
		Assets:  assets,
		Adapters: dispatch.Adapters{
			Gemini: geminiClient,
			Wanx:   wanxClient,
			HeyGen: heygenClient,
		},
		Store:  store,
		Delay:  cfg.DispatchDelay,
		Logger: logger,
	})
	engine := reconcile.NewEngine(assets, heygenClient, logger)

	var lookup middleware.CountryLookup
	if resolver, err := geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("api: geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	app := handlers.NewApp(dispatcher, engine, assets, store, logger)
	router := adhttp.NewRouter(adhttp.RouterOptions{
		App:            app,
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  lookup,
		RateLimit:      cfg.RateLimitPerMin,
		StaticDir:      store.BasePath(),
	})

	server := infra.NewHTTPServer(cfg, router)
	logger.Info().Str("addr", server.Addr()).Msg("api: listening")
	if err := server.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("api: http server failed")
	}
	logger.Info().Msg("api: stopped")
}

// providerKey prefers the environment key and falls back to the integration
// token store.
func providerKey(ctx context.Context, store *credentials.Store, provider, envKey string, logger infra.Logger) string {
	if key := strings.TrimSpace(envKey); key != "" {
		return key
	}
	key, err := store.Token(ctx, provider)
	if err != nil {
		logger.Warn().Err(err).Str("provider", provider).Msg("api: failed to load key from store")
		return ""
	}
	if key == "" {
		logger.Warn().Str("provider", provider).Msg("api: no api key configured, provider calls will fail")
	}
	return key
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
