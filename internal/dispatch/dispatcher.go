// Package dispatch fans one generation configuration out across selected
// catalog items. Provider calls are issued sequentially with a fixed
// inter-request delay; concurrent fan-out is rejected deliberately to keep
// rate-limited third-party APIs safe. A failed item never aborts the batch.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"adforge/internal/domain"
	"adforge/internal/format"
	"adforge/internal/normalize"
	"adforge/internal/providers"
	"adforge/internal/storage"
)

// Adapters bundles the three provider backends the selection rule chooses from.
type Adapters struct {
	Gemini providers.Adapter
	Wanx   providers.Adapter
	HeyGen providers.Adapter
}

// Options configures a Dispatcher.
type Options struct {
	Catalog  domain.CatalogRepository
	Assets   domain.AssetRepository
	Adapters Adapters
	Store    *storage.FileStore
	Delay    time.Duration
	Logger   zerolog.Logger

	// Sleep is injectable for tests; defaults to a context-aware timer wait.
	Sleep func(ctx context.Context, d time.Duration)
}

// Dispatcher is the generation-batch orchestrator.
type Dispatcher struct {
	catalog  domain.CatalogRepository
	assets   domain.AssetRepository
	adapters Adapters
	store    *storage.FileStore
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration)
	logger   zerolog.Logger
}

// NewDispatcher wires a dispatcher from its collaborators.
func NewDispatcher(opts Options) *Dispatcher {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = func(ctx context.Context, d time.Duration) {
			if d <= 0 {
				return
			}
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
			}
		}
	}
	return &Dispatcher{
		catalog:  opts.Catalog,
		assets:   opts.Assets,
		adapters: opts.Adapters,
		store:    opts.Store,
		delay:    opts.Delay,
		sleep:    sleep,
		logger:   opts.Logger,
	}
}

// Dispatch runs one batch: one request per item, in input order, against the
// adapter the selection rule picks. It returns exactly one entry per input
// item. The only batch-level failure is an empty item list.
func (d *Dispatcher) Dispatch(ctx context.Context, itemIDs []string, cfg domain.GenerationConfig) (*domain.BatchResult, error) {
	if len(itemIDs) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if cfg.RequestID == "" {
		cfg.RequestID = uuid.NewString()
	}

	items, err := d.loadItems(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("load catalog items: %w", err)
	}

	d.logger.Info().
		Str("request_id", cfg.RequestID).
		Str("channel", string(cfg.Channel)).
		Str("content_type", string(cfg.ContentType)).
		Int("items", len(itemIDs)).
		Msg("dispatch: batch started")

	result := &domain.BatchResult{Entries: make([]domain.BatchEntry, 0, len(itemIDs))}
	for i, itemID := range itemIDs {
		if i > 0 {
			d.sleep(ctx, d.delay)
		}
		entry := d.dispatchOne(ctx, itemID, items[itemID], cfg)
		switch entry.Record.Status {
		case domain.AssetStatusCompleted:
			result.Succeeded++
		case domain.AssetStatusProcessing:
			result.Processing++
		default:
			result.Failed++
		}
		result.Entries = append(result.Entries, entry)
	}

	d.logger.Info().
		Str("request_id", cfg.RequestID).
		Int("succeeded", result.Succeeded).
		Int("processing", result.Processing).
		Int("failed", result.Failed).
		Msg("dispatch: batch finished")
	return result, nil
}

func (d *Dispatcher) loadItems(ctx context.Context, itemIDs []string) (map[string]*domain.CatalogItem, error) {
	items, err := d.catalog.GetByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.CatalogItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	return byID, nil
}

// dispatchOne performs the submit+normalize+persist sequence for a single
// item. Every failure path converts into a failed record; errors never
// escape to abort the surrounding batch.
func (d *Dispatcher) dispatchOne(ctx context.Context, itemID string, item *domain.CatalogItem, cfg domain.GenerationConfig) domain.BatchEntry {
	record := domain.AssetRecord{
		ID:          uuid.NewString(),
		ItemID:      itemID,
		ContentType: cfg.ContentType,
	}

	if item == nil {
		return d.failEntry(ctx, record, fmt.Errorf("catalog item %s: %w", itemID, domain.ErrNotFound))
	}

	spec, defaultInstruction := format.Resolve(cfg.Channel, cfg.ContentType, cfg.Format, item.Name, cfg.Locale)
	instruction := cfg.Instruction
	if instruction == "" {
		instruction = defaultInstruction
	}
	record.Instruction = instruction

	adapter := d.selectAdapter(cfg, item)
	if adapter == nil {
		return d.failEntry(ctx, record, fmt.Errorf("no adapter for %s/%s", cfg.ContentType, cfg.Channel))
	}
	record.Provider = adapter.Name()

	req := domain.GenerationRequest{
		ItemID:            itemID,
		ItemName:          item.Name,
		ItemDescription:   item.Description,
		Channel:           cfg.Channel,
		ContentType:       cfg.ContentType,
		Format:            spec,
		Instruction:       instruction,
		ReferenceImageURL: item.PrimaryImage(),
		RequestID:         cfg.RequestID,
	}

	raw, err := adapter.Submit(ctx, req)
	if err != nil {
		return d.failEntry(ctx, record, err)
	}

	res := normalize.Normalize(raw)
	record.Status = res.Status
	record.AssetURL = res.AssetURL
	record.Content = res.Content
	record.ErrorMsg = res.ErrorMessage

	if record.Status == domain.AssetStatusCompleted && d.store != nil {
		if mirrored, mirrorErr := d.store.MirrorDataURL(ctx, record.ID, record.AssetURL); mirrorErr == nil {
			record.AssetURL = mirrored
		} else {
			d.logger.Warn().Err(mirrorErr).Str("asset_id", record.ID).Msg("dispatch: mirror failed, keeping provider url")
		}
	}

	if err := d.assets.Create(ctx, &record); err != nil {
		return d.failEntry(ctx, record, fmt.Errorf("persist asset: %w", err))
	}

	entry := domain.BatchEntry{Record: record}
	if record.Status == domain.AssetStatusFailed {
		entry.Err = fmt.Errorf("%s: %s", record.Provider, record.ErrorMsg)
	}
	return entry
}

// selectAdapter applies the fixed decision rule: avatar video for the
// short-form channels, reference-based generation whenever a product image
// exists, text always through the copy provider.
func (d *Dispatcher) selectAdapter(cfg domain.GenerationConfig, item *domain.CatalogItem) providers.Adapter {
	switch cfg.ContentType {
	case domain.ContentTypeVideo:
		if cfg.Channel == domain.ChannelYouTube || cfg.Channel == domain.ChannelTikTok {
			return d.adapters.HeyGen
		}
		return d.adapters.Wanx
	case domain.ContentTypeImage:
		if item != nil && item.PrimaryImage() != "" {
			return d.adapters.Wanx
		}
		return d.adapters.Gemini
	case domain.ContentTypeText:
		return d.adapters.Gemini
	default:
		return nil
	}
}

func (d *Dispatcher) failEntry(ctx context.Context, record domain.AssetRecord, cause error) domain.BatchEntry {
	record.Status = domain.AssetStatusFailed
	record.ErrorMsg = cause.Error()
	d.logger.Error().Err(cause).Str("item_id", record.ItemID).Msg("dispatch: item failed")
	// Records for unknown items have no catalog row to reference; they are
	// reported in the batch result but not persisted.
	if record.Provider != "" || record.Instruction != "" {
		if err := d.assets.Create(ctx, &record); err != nil {
			d.logger.Error().Err(err).Str("asset_id", record.ID).Msg("dispatch: persist failed record")
		}
	}
	return domain.BatchEntry{Record: record, Err: cause}
}
