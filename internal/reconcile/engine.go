// Package reconcile resolves assets stuck in the processing state. A record
// only ever moves processing -> completed or processing -> failed; terminal
// records are never touched, which makes every operation here idempotent and
// safe to run concurrently with an in-flight dispatch.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"adforge/internal/domain"
	"adforge/internal/normalize"
	"adforge/internal/providers/heygen"
)

// StatusClient is the slice of the async provider the engine depends on.
// *heygen.Client satisfies it.
type StatusClient interface {
	Status(ctx context.Context, jobID string) (*heygen.JobStatus, error)
	ListPending(ctx context.Context) ([]heygen.JobStatus, error)
}

// Engine transitions processing records to their terminal state by querying
// the owning provider.
type Engine struct {
	assets domain.AssetRepository
	client StatusClient
	logger zerolog.Logger
}

// NewEngine wires a reconciliation engine.
func NewEngine(assets domain.AssetRepository, client StatusClient, logger zerolog.Logger) *Engine {
	return &Engine{assets: assets, client: client, logger: logger}
}

// Legacy records carried the job handle inside free text instead of the
// asset URL. Deprecated fallback; the URL-embedded token is authoritative.
var legacyTokenPattern = regexp.MustCompile(`pending_([A-Za-z0-9_-]+)`)

// Reconcile checks one asset against its provider and applies the state
// transition when the remote job reached a terminal state. The returned flag
// reports whether the record changed. Terminal records are a safe no-op.
// When no job id can be extracted, the engine degrades to bulk recovery
// instead of erroring.
func (e *Engine) Reconcile(ctx context.Context, assetID string) (*domain.AssetRecord, bool, error) {
	record, err := e.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, false, err
	}
	if record.Status.Terminal() {
		return record, false, nil
	}

	jobID := jobIDFromRecord(record)
	if jobID == "" {
		e.logger.Info().Str("asset_id", assetID).Msg("reconcile: no job id on record, falling back to bulk recovery")
		if _, err := e.RecoverAll(ctx); err != nil {
			return record, false, nil
		}
		fresh, err := e.assets.GetByID(ctx, assetID)
		if err != nil {
			return record, false, nil
		}
		return fresh, fresh.Status != record.Status, nil
	}

	status, err := e.client.Status(ctx, jobID)
	if err != nil {
		return nil, false, fmt.Errorf("check job %s: %w", jobID, err)
	}
	return e.applyStatus(ctx, record, *status)
}

// RecoverAll resolves records whose job id cannot be matched individually by
// walking the provider's outstanding job list. It returns one outcome per
// remote job so callers can tell "nothing pending" apart from "checked but
// not ready".
func (e *Engine) RecoverAll(ctx context.Context) ([]domain.RecoveryOutcome, error) {
	jobs, err := e.client.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list outstanding jobs: %w", err)
	}

	pending, err := e.assets.ListByStatus(ctx, domain.AssetStatusProcessing, 500)
	if err != nil {
		return nil, fmt.Errorf("list processing records: %w", err)
	}
	byJobID := make(map[string]*domain.AssetRecord, len(pending))
	for i := range pending {
		if id := jobIDFromRecord(&pending[i]); id != "" {
			byJobID[id] = &pending[i]
		}
	}

	outcomes := make([]domain.RecoveryOutcome, 0, len(jobs))
	for _, job := range jobs {
		outcome := domain.RecoveryOutcome{
			JobID:  job.JobID,
			Status: normalize.MapJobStatus(job.Status),
		}
		if record, ok := byJobID[job.JobID]; ok {
			if _, changed, err := e.applyStatus(ctx, record, job); err == nil {
				outcome.Updated = changed
			}
		}
		outcomes = append(outcomes, outcome)
	}
	e.logger.Info().Int("jobs", len(jobs)).Int("pending_records", len(pending)).Msg("reconcile: bulk recovery finished")
	return outcomes, nil
}

// applyStatus performs the single permitted transition. Inconclusive remote
// states leave the record untouched; the persistence layer's compare-and-set
// guarantees a terminal record is never rewritten even under races.
func (e *Engine) applyStatus(ctx context.Context, record *domain.AssetRecord, job heygen.JobStatus) (*domain.AssetRecord, bool, error) {
	switch normalize.MapJobStatus(job.Status) {
	case domain.AssetStatusCompleted:
		if job.VideoURL == "" {
			// Completed without a URL is inconclusive; wait for the next pass.
			return record, false, nil
		}
		status := domain.AssetStatusCompleted
		updated, err := e.assets.UpdateResult(ctx, record.ID, domain.AssetUpdate{
			Status:   &status,
			AssetURL: &job.VideoURL,
		})
		if err != nil {
			if errors.Is(err, domain.ErrStaleRecord) {
				return record, false, nil
			}
			return nil, false, err
		}
		e.logger.Info().Str("asset_id", record.ID).Str("job_id", job.JobID).Msg("reconcile: asset completed")
		return updated, true, nil
	case domain.AssetStatusFailed:
		status := domain.AssetStatusFailed
		message := job.ErrorMessage
		if message == "" {
			message = fmt.Sprintf("provider reported job %s as %s", job.JobID, job.Status)
		}
		updated, err := e.assets.UpdateResult(ctx, record.ID, domain.AssetUpdate{
			Status:   &status,
			ErrorMsg: &message,
		})
		if err != nil {
			if errors.Is(err, domain.ErrStaleRecord) {
				return record, false, nil
			}
			return nil, false, err
		}
		e.logger.Info().Str("asset_id", record.ID).Str("job_id", job.JobID).Msg("reconcile: asset failed")
		return updated, true, nil
	default:
		return record, false, nil
	}
}

// jobIDFromRecord extracts the provider job id. The pending token in the
// asset URL is authoritative; the legacy free-text scan over content and
// instruction exists only for records written before tokens were embedded.
func jobIDFromRecord(record *domain.AssetRecord) string {
	if id := domain.JobIDFromToken(record.AssetURL); id != "" {
		return id
	}
	for _, text := range []string{record.Content, record.Instruction} {
		if m := legacyTokenPattern.FindStringSubmatch(text); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}
