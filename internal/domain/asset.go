package domain

import (
	"strings"
	"time"
)

// ContentType enumerates the kinds of marketing assets the system generates.
type ContentType string

const (
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
	ContentTypeText  ContentType = "text"
)

// AssetStatus enumerates asset lifecycle states.
type AssetStatus string

const (
	AssetStatusProcessing AssetStatus = "processing"
	AssetStatusCompleted  AssetStatus = "completed"
	AssetStatusFailed     AssetStatus = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s AssetStatus) Terminal() bool {
	return s == AssetStatusCompleted || s == AssetStatusFailed
}

// AssetRecord is the persisted entity produced by a generation dispatch.
// Records are created by the dispatcher and only ever transition
// processing -> completed or processing -> failed, via the reconciliation
// engine. Terminal records are never rewritten.
type AssetRecord struct {
	ID          string
	ItemID      string
	ContentType ContentType
	Provider    string
	Status      AssetStatus
	AssetURL    string
	Content     string
	Instruction string
	ErrorMsg    string
	Favorite    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssetResult is the normalized outcome of a single provider call, prior to
// persistence. AssetURL holds a pending token instead of a dereferenceable
// URL when the provider completes asynchronously.
type AssetResult struct {
	AssetURL     string
	Content      string
	Status       AssetStatus
	ErrorMessage string
}

// pendingTokenPrefix marks an asset URL that encodes an async job handle
// instead of a real location.
const pendingTokenPrefix = "pending_"

// PendingToken encodes a provider job identifier as a placeholder asset URL.
func PendingToken(jobID string) string {
	return pendingTokenPrefix + jobID
}

// JobIDFromToken recovers the job identifier from a pending token. It returns
// "" when the value is not a pending token.
func JobIDFromToken(url string) string {
	if !strings.HasPrefix(url, pendingTokenPrefix) {
		return ""
	}
	return strings.TrimPrefix(url, pendingTokenPrefix)
}

// IsPendingToken reports whether the URL is a placeholder rather than a
// dereferenceable location.
func IsPendingToken(url string) bool {
	return strings.HasPrefix(url, pendingTokenPrefix)
}
