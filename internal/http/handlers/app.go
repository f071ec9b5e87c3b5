package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"adforge/internal/domain"
	"adforge/internal/storage"
)

// BatchDispatcher is the dispatch entry point the API exposes.
type BatchDispatcher interface {
	Dispatch(ctx context.Context, itemIDs []string, cfg domain.GenerationConfig) (*domain.BatchResult, error)
}

// Reconciler covers the two reconciliation entry points.
type Reconciler interface {
	Reconcile(ctx context.Context, assetID string) (*domain.AssetRecord, bool, error)
	RecoverAll(ctx context.Context) ([]domain.RecoveryOutcome, error)
}

// App aggregates the handler dependencies.
type App struct {
	Dispatcher BatchDispatcher
	Engine     Reconciler
	Assets     domain.AssetRepository
	Store      *storage.FileStore
	Logger     zerolog.Logger
}

func NewApp(dispatcher BatchDispatcher, engine Reconciler, assets domain.AssetRepository, store *storage.FileStore, logger zerolog.Logger) *App {
	return &App{
		Dispatcher: dispatcher,
		Engine:     engine,
		Assets:     assets,
		Store:      store,
		Logger:     logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}
