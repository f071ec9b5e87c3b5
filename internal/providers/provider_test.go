package providers

import (
	"errors"
	"io"
	"testing"

	"adforge/internal/domain"
)

func TestProviderErrorMatching(t *testing.T) {
	err := NewProviderError(NameWanx, io.ErrUnexpectedEOF)
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatal("adapter failures must match ErrProviderFailure")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatal("wrapped cause must stay matchable")
	}
	var pErr *ProviderError
	if !errors.As(err, &pErr) || pErr.Provider != NameWanx {
		t.Fatalf("expected wanx provider error, got %v", err)
	}
}

func TestNewProviderErrorNil(t *testing.T) {
	if err := NewProviderError(NameGemini, nil); err != nil {
		t.Fatalf("nil cause must yield nil, got %v", err)
	}
}
