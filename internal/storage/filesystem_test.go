package storage

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/static")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key, err := store.Write(ctx, "assets/rec-1.png", []byte("pixels"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if key != "assets/rec-1.png" {
		t.Fatalf("unexpected key %q", key)
	}

	data, err := store.Read(ctx, key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "pixels" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestWriteRejectsTraversal(t *testing.T) {
	store := newTestStore(t)
	for _, key := range []string{"", "   ", "../escape.txt", "a/../../escape.txt"} {
		if _, err := store.Write(context.Background(), key, []byte("x")); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
	}
}

func TestPublicURLJoinsBase(t *testing.T) {
	store := newTestStore(t)
	if got := store.PublicURL("assets/rec-1.png"); got != "http://localhost:8080/static/assets/rec-1.png" {
		t.Fatalf("unexpected url %q", got)
	}

	bare, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if got := bare.PublicURL("assets/rec-1.png"); got != "assets/rec-1.png" {
		t.Fatalf("expected key passthrough, got %q", got)
	}
}

func TestMirrorDataURLDecodesInlinePayload(t *testing.T) {
	store := newTestStore(t)
	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	url, err := store.MirrorDataURL(context.Background(), "rec-9", "data:image/png;base64,"+payload)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if url != "http://localhost:8080/static/assets/rec-9.png" {
		t.Fatalf("unexpected url %q", url)
	}

	data, err := os.ReadFile(filepath.Join(store.BasePath(), "assets", "rec-9.png"))
	if err != nil {
		t.Fatalf("read mirrored file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestMirrorDataURLPassesHostedURLsThrough(t *testing.T) {
	store := newTestStore(t)
	hosted := "https://cdn.example.com/image.png"

	url, err := store.MirrorDataURL(context.Background(), "rec-1", hosted)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if url != hosted {
		t.Fatalf("hosted url must pass through, got %q", url)
	}
}

func TestMirrorDataURLRejectsMalformedPayload(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.MirrorDataURL(context.Background(), "rec-1", "data:image/png;base64"); err == nil {
		t.Fatal("malformed data url must error")
	}
	if _, err := store.MirrorDataURL(context.Background(), "rec-1", "data:image/png;base64,!!!"); err == nil {
		t.Fatal("invalid base64 must error")
	}
}

func TestMirrorDataURLPicksExtensionFromMIME(t *testing.T) {
	store := newTestStore(t)
	payload := base64.StdEncoding.EncodeToString([]byte("clip"))

	url, err := store.MirrorDataURL(context.Background(), "rec-2", "data:video/mp4;base64,"+payload)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if filepath.Ext(url) != ".mp4" {
		t.Fatalf("expected .mp4 extension, got %q", url)
	}
}
