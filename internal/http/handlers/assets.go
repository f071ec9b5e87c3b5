package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"adforge/internal/domain"
	"adforge/pkg/zip"
)

// ListAssets returns a page of the asset library, newest first.
func (a *App) ListAssets(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	records, err := a.Assets.List(r.Context(), limit, offset)
	if err != nil {
		a.Logger.Error().Err(err).Msg("assets: list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load assets")
		return
	}
	items := make([]assetResponse, 0, len(records))
	for _, record := range records {
		items = append(items, toAssetResponse(record))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// GetAsset returns one asset record.
func (a *App) GetAsset(w http.ResponseWriter, r *http.Request) {
	record, ok := a.loadAsset(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, toAssetResponse(*record))
}

// DeleteAsset removes an asset from the library.
func (a *App) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	record, ok := a.loadAsset(w, r)
	if !ok {
		return
	}
	if err := a.Assets.Delete(r.Context(), record.ID); err != nil {
		a.Logger.Error().Err(err).Str("asset_id", record.ID).Msg("assets: delete failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete asset")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// FavoriteAsset toggles the favorite flag.
func (a *App) FavoriteAsset(w http.ResponseWriter, r *http.Request) {
	record, ok := a.loadAsset(w, r)
	if !ok {
		return
	}
	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Assets.SetFavorite(r.Context(), record.ID, req.Favorite); err != nil {
		a.Logger.Error().Err(err).Str("asset_id", record.ID).Msg("assets: favorite failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update asset")
		return
	}
	record.Favorite = req.Favorite
	a.json(w, http.StatusOK, toAssetResponse(*record))
}

// DownloadAssets bundles the requested completed assets into a ZIP archive.
// Text copy is included as .txt; mirrored binaries are read from local
// storage. Assets hosted only at the provider are skipped.
func (a *App) DownloadAssets(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("ids"), ",")
	var bundle []zip.Asset
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		record, err := a.Assets.GetByID(r.Context(), id)
		if err != nil || record.Status != domain.AssetStatusCompleted {
			continue
		}
		if record.Content != "" {
			bundle = append(bundle, zip.Asset{
				Filename: fmt.Sprintf("%s.txt", record.ID),
				Data:     []byte(record.Content),
			})
			continue
		}
		if a.Store == nil {
			continue
		}
		key, ok := strings.CutPrefix(record.AssetURL, a.Store.PublicURL(""))
		if !ok {
			continue
		}
		data, err := a.Store.Read(r.Context(), key)
		if err != nil {
			continue
		}
		bundle = append(bundle, zip.Asset{Filename: strings.TrimLeft(key, "/"), Data: data})
	}
	if len(bundle) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no downloadable assets for the given ids")
		return
	}
	archive, err := zip.ArchiveAssets(bundle)
	if err != nil {
		a.Logger.Error().Err(err).Msg("assets: archive failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="assets.zip"`)
	_, _ = w.Write(archive)
}

func (a *App) loadAsset(w http.ResponseWriter, r *http.Request) (*domain.AssetRecord, bool) {
	assetID := chi.URLParam(r, "id")
	if assetID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "asset id required")
		return nil, false
	}
	record, err := a.Assets.GetByID(r.Context(), assetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "asset not found")
			return nil, false
		}
		a.Logger.Error().Err(err).Str("asset_id", assetID).Msg("assets: load failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load asset")
		return nil, false
	}
	return record, true
}
