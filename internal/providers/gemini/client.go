// Package gemini implements the synchronous text and image adapter backed by
// the Generative Language REST API.
package gemini

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
var ErrMissingAPIKey = errors.New("gemini: api key is required")

// Options configures the Gemini client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Generative Language API. It implements
// providers.Adapter for both text copy and text-to-image generation.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
	FileData   *fileData   `json:"fileData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type fileData struct {
	MIMEType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri"`
}

type generationConfig struct {
	Temperature        float64  `json:"temperature,omitempty"`
	MaxOutputTokens    int      `json:"maxOutputTokens,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.0-flash"
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
	return providers.NameGemini
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Submit issues exactly one generateContent call and returns the raw payload.
// For image requests a reference image URL, when present, is forwarded as a
// file part so the model treats it as style/content conditioning.
func (c *Client) Submit(ctx context.Context, req domain.GenerationRequest) (providers.RawResponse, error) {
	if !c.HasCredentials() {
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), ErrMissingAPIKey)
	}
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), errors.New("instruction is required"))
	}

	parts := []part{{Text: instruction}}
	cfg := &generationConfig{Temperature: 0.7}
	switch req.ContentType {
	case domain.ContentTypeImage:
		cfg.ResponseModalities = []string{"TEXT", "IMAGE"}
		if ref := strings.TrimSpace(req.ReferenceImageURL); ref != "" {
			parts = append(parts, part{FileData: &fileData{FileURI: ref}})
		}
	case domain.ContentTypeText:
		cfg.MaxOutputTokens = req.Format.MaxTokens
	default:
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), fmt.Errorf("unsupported content type %q", req.ContentType))
	}

	payload := generateRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: cfg,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), fmt.Errorf("encode request: %w", err))
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return providers.RawResponse{}, providers.NewProviderError(c.Name(), fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.RequestID != "" {
		httpReq.Header.Set("X-Request-ID", req.RequestID)
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
		if json.Unmarshal(raw, &detail) == nil && detail.Error.Message != "" {
			return providers.RawResponse{}, providers.NewProviderError(c.Name(), fmt.Errorf("%s (%s)", detail.Error.Message, detail.Error.Status))
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
