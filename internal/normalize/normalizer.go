// Package normalize maps each provider's raw response shape onto the common
// AssetResult model. Payload nesting differs per provider and per model
// revision, so extraction probes an ordered list of candidate field paths
// before declaring failure.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"adforge/internal/domain"
	"adforge/internal/providers"
)

// A path is a sequence of object keys; "*" fans out over array elements.
type path []string

var geminiTextPaths = []path{
	{"candidates", "*", "content", "parts", "*", "text"},
	{"candidates", "*", "output"},
}

var geminiImagePaths = []path{
	{"candidates", "*", "content", "parts", "*", "fileData", "fileUri"},
	{"candidates", "*", "content", "parts", "*", "inlineData"},
}

var wanxImagePaths = []path{
	{"output", "choices", "*", "message", "content", "*", "image"},
	{"output", "results", "*", "url"},
	{"output", "url"},
}

var wanxVideoPaths = []path{
	{"output", "video_url"},
	{"output", "results", "*", "video_url"},
	{"output", "choices", "*", "message", "content", "*", "video"},
}

var heygenJobIDPaths = []path{
	{"data", "video_id"},
	{"data", "id"},
}

// Normalize converts a raw provider payload into an AssetResult. A provider
// expected to respond synchronously yields a failed result when no usable
// output can be located; it never yields a completed result with an empty
// URL or empty text.
func Normalize(raw providers.RawResponse) domain.AssetResult {
	var decoded any
	if err := json.Unmarshal(raw.Payload, &decoded); err != nil {
		return failed(raw.Provider, fmt.Sprintf("unparseable %s response: %v", raw.Provider, err))
	}

	switch raw.Provider {
	case providers.NameGemini:
		if raw.ContentType == domain.ContentTypeText {
			return normalizeText(raw.Provider, decoded, geminiTextPaths)
		}
		return normalizeGeminiImage(decoded)
	case providers.NameWanx:
		if raw.ContentType == domain.ContentTypeVideo {
			return normalizeURL(raw.Provider, decoded, wanxVideoPaths)
		}
		return normalizeURL(raw.Provider, decoded, wanxImagePaths)
	case providers.NameHeyGen:
		return normalizeHeyGenSubmit(decoded)
	default:
		return failed(raw.Provider, fmt.Sprintf("unknown provider %q", raw.Provider))
	}
}

// MapJobStatus maps a provider job-status string onto the asset state machine.
// Anything not clearly terminal stays processing.
func MapJobStatus(status string) domain.AssetStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed", "complete", "succeeded", "success", "done":
		return domain.AssetStatusCompleted
	case "failed", "error", "rejected", "expired":
		return domain.AssetStatusFailed
	default:
		return domain.AssetStatusProcessing
	}
}

func normalizeText(provider string, decoded any, paths []path) domain.AssetResult {
	for _, p := range paths {
		for _, v := range probe(decoded, p) {
			if text, ok := v.(string); ok && strings.TrimSpace(text) != "" {
				return domain.AssetResult{
					Content: strings.TrimSpace(text),
					Status:  domain.AssetStatusCompleted,
				}
			}
		}
	}
	return failed(provider, fmt.Sprintf("%s response contained no text output", provider))
}

func normalizeURL(provider string, decoded any, paths []path) domain.AssetResult {
	for _, p := range paths {
		for _, v := range probe(decoded, p) {
			if url, ok := v.(string); ok && strings.TrimSpace(url) != "" {
				return domain.AssetResult{
					AssetURL: strings.TrimSpace(url),
					Status:   domain.AssetStatusCompleted,
				}
			}
		}
	}
	return failed(provider, fmt.Sprintf("%s response contained no asset url", provider))
}

func normalizeGeminiImage(decoded any) domain.AssetResult {
	for _, p := range geminiImagePaths {
		for _, v := range probe(decoded, p) {
			switch value := v.(type) {
			case string:
				if strings.TrimSpace(value) != "" {
					return domain.AssetResult{AssetURL: strings.TrimSpace(value), Status: domain.AssetStatusCompleted}
				}
			case map[string]any:
				// Inline payloads are carried as data URLs until the
				// dispatcher mirrors them into local storage.
				data, _ := value["data"].(string)
				if strings.TrimSpace(data) == "" {
					continue
				}
				mime, _ := value["mimeType"].(string)
				if mime == "" {
					mime = "image/png"
				}
				return domain.AssetResult{
					AssetURL: fmt.Sprintf("data:%s;base64,%s", mime, data),
					Status:   domain.AssetStatusCompleted,
				}
			}
		}
	}
	return failed(providers.NameGemini, "gemini response contained no image output")
}

func normalizeHeyGenSubmit(decoded any) domain.AssetResult {
	for _, p := range heygenJobIDPaths {
		for _, v := range probe(decoded, p) {
			if jobID, ok := v.(string); ok && strings.TrimSpace(jobID) != "" {
				return domain.AssetResult{
					AssetURL: domain.PendingToken(strings.TrimSpace(jobID)),
					Status:   domain.AssetStatusProcessing,
				}
			}
		}
	}
	if msg := heygenErrorMessage(decoded); msg != "" {
		return failed(providers.NameHeyGen, msg)
	}
	return failed(providers.NameHeyGen, "heygen response contained no job handle")
}

func heygenErrorMessage(decoded any) string {
	for _, p := range []path{{"error", "message"}, {"message"}} {
		for _, v := range probe(decoded, p) {
			if msg, ok := v.(string); ok && strings.TrimSpace(msg) != "" {
				return strings.TrimSpace(msg)
			}
		}
	}
	return ""
}

// probe walks decoded JSON along the path, fanning out over arrays at "*"
// segments, and returns every value found at the leaf position.
func probe(node any, p path) []any {
	if len(p) == 0 {
		if node == nil {
			return nil
		}
		return []any{node}
	}
	head, rest := p[0], p[1:]
	if head == "*" {
		arr, ok := node.([]any)
		if !ok {
			return nil
		}
		var found []any
		for _, elem := range arr {
			found = append(found, probe(elem, rest)...)
		}
		return found
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	child, ok := obj[head]
	if !ok {
		return nil
	}
	return probe(child, rest)
}

func failed(provider, message string) domain.AssetResult {
	return domain.AssetResult{
		Status:       domain.AssetStatusFailed,
		ErrorMessage: message,
	}
}
