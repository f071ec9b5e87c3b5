// providerkey seeds a provider API key into the integration token store so
// the api and sweeper binaries can run without the key in their environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"adforge/internal/infra"
	"adforge/internal/infra/credentials"
)

func main() {
	var (
		keyFlag      string
		providerFlag string
	)
	flag.StringVar(&keyFlag, "key", "", "API key for the selected provider (falls back to environment)")
	flag.StringVar(&providerFlag, "provider", credentials.ProviderGemini, "Provider to configure (gemini, wanx or heygen)")
	flag.Parse()

	_ = godotenv.Load()

	provider := strings.TrimSpace(strings.ToLower(providerFlag))
	key := strings.TrimSpace(keyFlag)
	if key == "" {
		switch provider {
		case credentials.ProviderGemini:
			key = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		case credentials.ProviderWanx:
			key = strings.TrimSpace(os.Getenv("WANX_API_KEY"))
		case credentials.ProviderHeyGen:
			key = strings.TrimSpace(os.Getenv("HEYGEN_API_KEY"))
		}
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "no api key provided")
		os.Exit(1)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("providerkey: db connection failed")
	}
	defer pool.Close()

	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))
	if err := store.SetToken(ctx, provider, key); err != nil {
		logger.Fatal().Err(err).Str("provider", provider).Msg("providerkey: failed to store key")
	}
	logger.Info().Str("provider", provider).Msg("providerkey: key stored")
}
