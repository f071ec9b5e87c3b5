// Package heygen implements the asynchronous avatar-video adapter. Submit
// only returns a job handle; the finished asset is discovered later through
// Status or ListPending, which back the reconciliation engine.
package heygen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adforge/internal/domain"
	"adforge/internal/providers"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("heygen: api key is required")

// Options configures the HeyGen client.
type Options struct {
	APIKey         string
	BaseURL        string
	AvatarID       string
	VoiceID        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the HeyGen video API.
type Client struct {
	apiKey     string
	baseURL    string
	avatarID   string
	voiceID    string
	httpClient *http.Client
}

// JobStatus is the parsed state of one remote video job.
type JobStatus struct {
	JobID        string
	Status       string
	VideoURL     string
	ErrorMessage string
}

type generateRequest struct {
	Title      string       `json:"title,omitempty"`
	Dimension  dimension    `json:"dimension"`
	VideoInput []videoInput `json:"video_inputs"`
}

type dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type videoInput struct {
	Character characterInput `json:"character"`
	Voice     voiceInput     `json:"voice"`
}

type characterInput struct {
	Type     string `json:"type"`
	AvatarID string `json:"avatar_id"`
}

type voiceInput struct {
	Type      string `json:"type"`
	VoiceID   string `json:"voice_id"`
	InputText string `json:"input_text"`
}

type statusResponse struct {
	Code int `json:"code"`
	Data struct {
		ID       string `json:"id"`
		VideoID  string `json:"video_id"`
		Status   string `json:"status"`
		VideoURL string `json:"video_url"`
		Error    *struct {
			Message string `json:"message"`
			Detail  string `json:"detail"`
		} `json:"error"`
	} `json:"data"`
	Message string `json:"message"`
}

type listResponse struct {
	Code int `json:"code"`
	Data struct {
		Videos []struct {
			VideoID  string `json:"video_id"`
			Status   string `json:"status"`
			VideoURL string `json:"video_url"`
		} `json:"videos"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.heygen.com"
	}
	avatarID := strings.TrimSpace(opts.AvatarID)
	if avatarID == "" {
		avatarID = "default_presenter"
	}
	voiceID := strings.TrimSpace(opts.VoiceID)
	if voiceID == "" {
		voiceID = "default_voice"
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		avatarID:   avatarID,
		voiceID:    voiceID,
		httpClient: httpClient,
	}, nil
}

// Name identifies the provider on persisted records.
func (c *Client) Name() string {
	return providers.NameHeyGen
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Submit issues exactly one video.generate call. The response carries a job
// handle only; no asset exists yet when Submit returns.
func (c *Client) Submit(ctx context.Context, req domain.GenerationRequest) (providers.RawResponse, error) {
	if req.ContentType != domain.ContentTypeVideo {
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), fmt.Errorf("unsupported content type %q", req.ContentType))
	}
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), errors.New("instruction is required"))
	}

	payload := generateRequest{
		Title:     strings.TrimSpace(req.ItemName),
		Dimension: dimension{Width: req.Format.Width, Height: req.Format.Height},
		VideoInput: []videoInput{{
			Character: characterInput{Type: "avatar", AvatarID: c.avatarID},
			Voice:     voiceInput{Type: "text", VoiceID: c.voiceID, InputText: instruction},
		}},
	}
	raw, err := c.post(ctx, "/v2/video/generate", payload)
	if err != nil {
		return providers.RawResponse{}, err
	}
	return providers.RawResponse{
		Provider:    c.Name(),
		ContentType: req.ContentType,
		Payload:     raw,
	}, nil
}

// Status fetches the current state of one job.
func (c *Client) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, providers.NewProviderError(c.Name(), errors.New("job id is required"))
	}
	raw, err := c.get(ctx, "/v1/video_status.get?video_id="+url.QueryEscape(jobID))
	if err != nil {
		return nil, err
	}
	var decoded statusResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, providers.NewProviderError(c.Name(), fmt.Errorf("decode status: %w", err))
	}
	status := &JobStatus{
		JobID:    firstNonEmpty(decoded.Data.VideoID, decoded.Data.ID, jobID),
		Status:   strings.ToLower(strings.TrimSpace(decoded.Data.Status)),
		VideoURL: strings.TrimSpace(decoded.Data.VideoURL),
	}
	if decoded.Data.Error != nil {
		status.ErrorMessage = firstNonEmpty(decoded.Data.Error.Message, decoded.Data.Error.Detail)
	}
	return status, nil
}

// ListPending enumerates the provider's outstanding jobs. Used by bulk
// recovery when no job id can be extracted from a record.
func (c *Client) ListPending(ctx context.Context) ([]JobStatus, error) {
	raw, err := c.get(ctx, "/v1/video.list")
	if err != nil {
		return nil, err
	}
	var decoded listResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, providers.NewProviderError(c.Name(), fmt.Errorf("decode list: %w", err))
	}
	jobs := make([]JobStatus, 0, len(decoded.Data.Videos))
	for _, v := range decoded.Data.Videos {
		jobs = append(jobs, JobStatus{
			JobID:    strings.TrimSpace(v.VideoID),
			Status:   strings.ToLower(strings.TrimSpace(v.Status)),
			VideoURL: strings.TrimSpace(v.VideoURL),
		})
	}
	return jobs, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, providers.NewProviderError(c.Name(), fmt.Errorf("encode request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(c.Name(), fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, providers.NewProviderError(c.Name(), fmt.Errorf("build request: %w", err))
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	if !c.HasCredentials() {
		return nil, providers.NewProviderError(c.Name(), ErrMissingAPIKey)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, providers.NewProviderError(c.Name(), fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providers.NewProviderError(c.Name(), fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if json.Unmarshal(raw, &detail) == nil {
			if msg := firstNonEmpty(detail.Error.Message, detail.Message); msg != "" {
				return nil, providers.NewProviderError(c.Name(), fmt.Errorf("%s (%s)", msg, detail.Error.Code))
			}
		}
		return nil, providers.NewProviderError(c.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}
	return json.RawMessage(raw), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var _ providers.Adapter = (*Client)(nil)
