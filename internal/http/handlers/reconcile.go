package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"adforge/internal/domain"
)

type reconcileResponse struct {
	Asset   assetResponse `json:"asset"`
	Updated bool          `json:"updated"`
}

type recoveryEntryResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Updated bool   `json:"updated"`
}

// ReconcileAsset resolves one processing asset against its provider. Assets
// already in a terminal state are returned unchanged.
func (a *App) ReconcileAsset(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "id")
	if assetID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "asset id required")
		return
	}
	record, updated, err := a.Engine.Reconcile(r.Context(), assetID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, http.StatusNotFound, "not_found", "asset not found")
		case errors.Is(err, domain.ErrProviderFailure):
			a.Logger.Error().Err(err).Str("asset_id", assetID).Msg("reconcile: provider status check failed")
			a.error(w, http.StatusBadGateway, "provider_error", "failed to check provider status")
		default:
			a.Logger.Error().Err(err).Str("asset_id", assetID).Msg("reconcile: failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to reconcile asset")
		}
		return
	}
	a.json(w, http.StatusOK, reconcileResponse{Asset: toAssetResponse(*record), Updated: updated})
}

// RecoverAssets runs bulk recovery over the provider's outstanding jobs and
// reports which ones changed state.
func (a *App) RecoverAssets(w http.ResponseWriter, r *http.Request) {
	outcomes, err := a.Engine.RecoverAll(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("recover: bulk recovery failed")
		a.error(w, http.StatusBadGateway, "provider_error", "failed to list outstanding jobs")
		return
	}
	entries := make([]recoveryEntryResponse, 0, len(outcomes))
	updated := 0
	for _, outcome := range outcomes {
		if outcome.Updated {
			updated++
		}
		entries = append(entries, recoveryEntryResponse{
			JobID:   outcome.JobID,
			Status:  string(outcome.Status),
			Updated: outcome.Updated,
		})
	}
	a.json(w, http.StatusOK, map[string]any{
		"jobs":    entries,
		"checked": len(entries),
		"updated": updated,
	})
}
