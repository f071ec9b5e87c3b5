package domain

import "testing"

func TestPendingTokenRoundTrip(t *testing.T) {
	cases := []string{"abc123", "A1b2C3", "9f8e7d6c5b4a", "job-with_underscore"}
	for _, jobID := range cases {
		token := PendingToken(jobID)
		if !IsPendingToken(token) {
			t.Fatalf("token %q not recognized as pending", token)
		}
		if got := JobIDFromToken(token); got != jobID {
			t.Fatalf("round trip mismatch: got %q want %q", got, jobID)
		}
	}
}

func TestJobIDFromTokenRejectsRealURLs(t *testing.T) {
	for _, url := range []string{"https://cdn.example.com/video.mp4", "", "pending"} {
		if got := JobIDFromToken(url); got != "" {
			t.Fatalf("expected no job id for %q, got %q", url, got)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if AssetStatusProcessing.Terminal() {
		t.Fatal("processing must not be terminal")
	}
	if !AssetStatusCompleted.Terminal() || !AssetStatusFailed.Terminal() {
		t.Fatal("completed and failed must be terminal")
	}
}
