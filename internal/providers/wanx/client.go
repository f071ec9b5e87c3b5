// Package wanx implements the synchronous reference-image adapter backed by
// DashScope's Wanx models. A product photo is forwarded as conditioning input
// for image editing and image-to-video generation.
package wanx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"adforge/internal/domain"
	"adforge/internal/providers"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("wanx: api key is required")

// Options configures the DashScope Wanx client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the DashScope multimodal generation API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type generationRequest struct {
	Model      string           `json:"model"`
	Input      generationInput  `json:"input"`
	Parameters generationParams `json:"parameters"`
}

type generationInput struct {
	Messages []generationMessage `json:"messages"`
}

type generationMessage struct {
	Role    string              `json:"role"`
	Content []generationContent `json:"content"`
}

type generationContent struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

type generationParams struct {
	Size     string `json:"size,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Seed     *int   `json:"seed,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 90 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://dashscope-intl.aliyuncs.com/api/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "wanx2.1-imageedit"
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
	}, nil
}

// Name identifies the provider on persisted records.
func (c *Client) Name() string {
	return providers.NameWanx
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Submit issues exactly one generation call. The reference image, when
// present, is sent as the leading content part so Wanx treats it as the
// edit/animation source rather than a style hint.
func (c *Client) Submit(ctx context.Context, req domain.GenerationRequest) (providers.RawResponse, error) {
	if !c.HasCredentials() {
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), ErrMissingAPIKey)
	}
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), errors.New("instruction is required"))
	}

	var parts []generationContent
	if ref := strings.TrimSpace(req.ReferenceImageURL); ref != "" {
		parts = append(parts, generationContent{Image: ref})
	}
	parts = append(parts, generationContent{Text: instruction})

	params := generationParams{}
	if req.Format.Width > 0 && req.Format.Height > 0 {
		params.Size = fmt.Sprintf("%d*%d", req.Format.Width, req.Format.Height)
	}
	if req.ContentType == domain.ContentTypeVideo && req.Format.DurationSec > 0 {
		params.Duration = req.Format.DurationSec
	}

	payload := generationRequest{
		Model: c.model,
		Input: generationInput{
			Messages: []generationMessage{{Role: "user", Content: parts}},
		},
		Parameters: params,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), fmt.Errorf("encode request: %w", err))
	}

	endpoint := c.baseURL + "/services/aigc/multimodal-generation/generation"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if req.RequestID != "" {
		httpReq.Header.Set("X-DashScope-RequestId", req.RequestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if json.Unmarshal(raw, &detail) == nil && detail.Message != "" {
			return providers.RawResponse{}, providers.NewProviderError(c.Name(), fmt.Errorf("%s (%s)", detail.Message, detail.Code))
		}
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	return providers.RawResponse{
		Provider:    c.Name(),
		ContentType: req.ContentType,
		Payload:     json.RawMessage(raw),
	}, nil
}

var _ providers.Adapter = (*Client)(nil)
