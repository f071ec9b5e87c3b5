package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrEmptyBatch rejects a dispatch with no items before any provider call.
	ErrEmptyBatch = errors.New("batch has no items")

	// ErrProviderFailure marks errors originating at a generation provider;
	// adapters wrap their failures so callers can match with errors.Is.
	ErrProviderFailure = errors.New("provider failure")

	// ErrStaleRecord reports a reconciliation writeback that lost the
	// compare-and-set race: the record already left the processing state.
	ErrStaleRecord = errors.New("record already in terminal state")
)
