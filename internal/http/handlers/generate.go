package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"adforge/internal/domain"
	"adforge/internal/middleware"
)

type generateRequest struct {
	ItemIDs     []string `json:"item_ids"`
	Channel     string   `json:"channel"`
	ContentType string   `json:"content_type"`
	Format      string   `json:"format"`
	Instruction string   `json:"instruction"`
}

type batchEntryResponse struct {
	Asset assetResponse `json:"asset"`
	Error string        `json:"error,omitempty"`
}

type batchResponse struct {
	RequestID  string               `json:"request_id"`
	Succeeded  int                  `json:"succeeded"`
	Processing int                  `json:"processing"`
	Failed     int                  `json:"failed"`
	Entries    []batchEntryResponse `json:"entries"`
}

type assetResponse struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"item_id"`
	ContentType string    `json:"content_type"`
	Provider    string    `json:"provider"`
	Status      string    `json:"status"`
	AssetURL    string    `json:"asset_url,omitempty"`
	Content     string    `json:"content,omitempty"`
	Instruction string    `json:"instruction,omitempty"`
	ErrorMsg    string    `json:"error_message,omitempty"`
	Favorite    bool      `json:"favorite"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAssetResponse(record domain.AssetRecord) assetResponse {
	return assetResponse{
		ID:          record.ID,
		ItemID:      record.ItemID,
		ContentType: string(record.ContentType),
		Provider:    record.Provider,
		Status:      string(record.Status),
		AssetURL:    record.AssetURL,
		Content:     record.Content,
		Instruction: record.Instruction,
		ErrorMsg:    record.ErrorMsg,
		Favorite:    record.Favorite,
		CreatedAt:   record.CreatedAt,
	}
}

// Generate runs one synchronous batch dispatch. The response is delayed by
// itemCount x (provider latency + dispatch delay); callers size batches
// accordingly.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	contentType := domain.ContentType(req.ContentType)
	switch contentType {
	case domain.ContentTypeImage, domain.ContentTypeVideo, domain.ContentTypeText:
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "content_type must be image, video or text")
		return
	}

	cfg := domain.GenerationConfig{
		Channel:     domain.Channel(req.Channel),
		ContentType: contentType,
		Format:      req.Format,
		Instruction: req.Instruction,
		Locale:      middleware.LocaleFromContext(r.Context()),
		RequestID:   middleware.RequestIDFromContext(r.Context()),
	}

	result, err := a.Dispatcher.Dispatch(r.Context(), req.ItemIDs, cfg)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyBatch) {
			a.error(w, http.StatusBadRequest, "bad_request", "item_ids must not be empty")
			return
		}
		a.Logger.Error().Err(err).Msg("generate: dispatch failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to dispatch batch")
		return
	}

	resp := batchResponse{
		RequestID:  cfg.RequestID,
		Succeeded:  result.Succeeded,
		Processing: result.Processing,
		Failed:     result.Failed,
		Entries:    make([]batchEntryResponse, 0, len(result.Entries)),
	}
	for _, entry := range result.Entries {
		item := batchEntryResponse{Asset: toAssetResponse(entry.Record)}
		if entry.Err != nil {
			item.Error = entry.Err.Error()
		}
		resp.Entries = append(resp.Entries, item)
	}
	a.json(w, http.StatusOK, resp)
}
