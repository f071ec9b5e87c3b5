package heygen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adforge/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Options{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func videoRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		ItemID:      "item-1",
		ItemName:    "Batik Tote",
		ContentType: domain.ContentTypeVideo,
		Format:      domain.FormatSpec{Width: 1080, Height: 1920},
		Instruction: "Present the batik tote bag in a cheerful tone.",
	}
}

func TestSubmitSendsAvatarPayload(t *testing.T) {
	var got generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/video/generate", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"data":{"video_id":"vid_42"}}`))
	})

	raw, err := client.Submit(context.Background(), videoRequest())
	require.NoError(t, err)
	assert.Equal(t, "heygen", raw.Provider)
	assert.JSONEq(t, `{"data":{"video_id":"vid_42"}}`, string(raw.Payload))

	assert.Equal(t, 1080, got.Dimension.Width)
	assert.Equal(t, 1920, got.Dimension.Height)
	require.Len(t, got.VideoInput, 1)
	assert.Equal(t, "Present the batik tote bag in a cheerful tone.", got.VideoInput[0].Voice.InputText)
}

func TestSubmitRejectsNonVideo(t *testing.T) {
	client, err := NewClient(Options{APIKey: "test-key"})
	require.NoError(t, err)

	req := videoRequest()
	req.ContentType = domain.ContentTypeImage
	_, err = client.Submit(context.Background(), req)
	assert.ErrorContains(t, err, "unsupported content type")
}

func TestSubmitRequiresCredentials(t *testing.T) {
	client, err := NewClient(Options{})
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), videoRequest())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestStatusParsesJob(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/video_status.get", r.URL.Path)
		assert.Equal(t, "vid_42", r.URL.Query().Get("video_id"))
		w.Write([]byte(`{"code":100,"data":{"video_id":"vid_42","status":"Completed","video_url":"https://res.example.com/final.mp4"}}`))
	})

	status, err := client.Status(context.Background(), "vid_42")
	require.NoError(t, err)
	assert.Equal(t, "vid_42", status.JobID)
	assert.Equal(t, "completed", status.Status)
	assert.Equal(t, "https://res.example.com/final.mp4", status.VideoURL)
}

func TestStatusCarriesProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":100,"data":{"video_id":"vid_42","status":"failed","error":{"message":"voice quota exceeded"}}}`))
	})

	status, err := client.Status(context.Background(), "vid_42")
	require.NoError(t, err)
	assert.Equal(t, "failed", status.Status)
	assert.Equal(t, "voice quota exceeded", status.ErrorMessage)
}

func TestStatusRequiresJobID(t *testing.T) {
	client, err := NewClient(Options{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = client.Status(context.Background(), "  ")
	assert.ErrorContains(t, err, "job id is required")
}

func TestListPendingParsesJobs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/video.list", r.URL.Path)
		w.Write([]byte(`{"code":100,"data":{"videos":[
			{"video_id":"vid_1","status":"completed","video_url":"https://res.example.com/1.mp4"},
			{"video_id":"vid_2","status":"Processing"}
		]}}`))
	})

	jobs, err := client.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "vid_1", jobs[0].JobID)
	assert.Equal(t, "https://res.example.com/1.mp4", jobs[0].VideoURL)
	assert.Equal(t, "processing", jobs[1].Status)
}

func TestAPIErrorSurfacesMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"401","message":"invalid api key"}}`))
	})

	_, err := client.ListPending(context.Background())
	assert.ErrorContains(t, err, "invalid api key")
}
