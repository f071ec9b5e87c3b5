// Package providers defines the adapter contract every generation backend
// implements. An adapter performs exactly one outbound call per Submit and
// returns the provider's payload untouched; interpreting the payload is the
// normalizer's job.
package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"adforge/internal/domain"
)

// Provider identifiers as persisted on asset records.
const (
	NameGemini = "gemini"
	NameWanx   = "wanx"
	NameHeyGen = "heygen"
)

// RawResponse is the opaque, provider-specific payload an adapter returns.
// Only the normalizer for the owning provider may inspect Payload.
type RawResponse struct {
	Provider    string
	ContentType domain.ContentType
	Payload     json.RawMessage
}

// Adapter wraps one external generation API behind a single method. Submit
// issues exactly one network call; retries are the dispatcher's policy.
type Adapter interface {
	Name() string
	Submit(ctx context.Context, req domain.GenerationRequest) (RawResponse, error)
}

// ProviderError wraps a transport or HTTP failure from an adapter.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is lets callers match any adapter failure with
// errors.Is(err, domain.ErrProviderFailure) without losing the wrapped cause.
func (e *ProviderError) Is(target error) bool {
	return target == domain.ErrProviderFailure
}

// NewProviderError wraps err with the provider name. A nil err yields nil.
func NewProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
