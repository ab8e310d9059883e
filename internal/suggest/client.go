// Package suggest calls a generative text API for draft title and hashtag
// suggestions, with a static fallback so the compose flow never breaks on
// upstream trouble.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// maxContentChars bounds how much of the draft is sent upstream.
const maxContentChars = 2000

// maxSuggestions caps each returned list.
const maxSuggestions = 5

// Suggestions is one round of title and hashtag proposals for a draft.
type Suggestions struct {
	Titles   []string `json:"titles"`
	Hashtags []string `json:"hashtags"`
}

// fallback is served when the upstream is unconfigured or misbehaving.
var fallback = Suggestions{
	Titles: []string{
		"Notes From a Work in Progress",
		"What I Learned Writing This",
		"A Closer Look at the Details",
		"Thinking Out Loud",
		"Where This Idea Came From",
	},
	Hashtags: []string{"writing", "thoughts", "blog", "ideas", "community"},
}

// Fallback returns a copy of the static suggestion set.
func Fallback() Suggestions {
	return Suggestions{
		Titles:   append([]string(nil), fallback.Titles...),
		Hashtags: append([]string(nil), fallback.Hashtags...),
	}
}

// Client calls the suggestion API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether an upstream is wired in.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// Generate returns suggestions for the draft content. It never fails the
// caller: any upstream problem degrades to the static fallback set.
func (c *Client) Generate(ctx context.Context, content string) Suggestions {
	if !c.Configured() {
		observability.SuggestFallbacks.Inc()
		return Fallback()
	}

	result, err := c.generate(ctx, content)
	if err != nil {
		observability.SuggestFallbacks.Inc()
		middleware.Logger.WarnContext(ctx, "suggestion upstream failed, serving fallback",
			"error", err.Error())
		return Fallback()
	}
	return result
}

func (c *Client) generate(ctx context.Context, content string) (out Suggestions, err error) {
	span, ctx := observability.NewSpan(ctx, "suggest.generate")
	defer func() {
		span.SetError(err)
		span.End()
	}()

	if len(content) > maxContentChars {
		cut := maxContentChars
		// Back off to a rune boundary so the upstream never sees a split
		// multi-byte character.
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	span.AddAttributes(attribute.Int("suggest.content_chars", len(content)))

	body, _ := json.Marshal(map[string]interface{}{
		"content":       content,
		"title_count":   maxSuggestions,
		"hashtag_count": maxSuggestions,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/suggestions", bytes.NewReader(body))
	if err != nil {
		return Suggestions{}, fmt.Errorf("suggest-api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Suggestions{}, fmt.Errorf("suggest-api /v1/suggestions: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "suggest-api", "/v1/suggestions"); err != nil {
		return Suggestions{}, err
	}

	var result Suggestions
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Suggestions{}, fmt.Errorf("suggest-api /v1/suggestions: decode: %w", err)
	}
	if len(result.Titles) == 0 && len(result.Hashtags) == 0 {
		return Suggestions{}, fmt.Errorf("suggest-api /v1/suggestions: empty response")
	}

	result.Titles = clean(result.Titles)
	result.Hashtags = clean(result.Hashtags)
	return result, nil
}

// clean trims entries, drops blanks and a leading '#', and caps the list.
func clean(items []string) []string {
	out := make([]string, 0, maxSuggestions)
	for _, item := range items {
		item = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(item), "#"))
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// checkResp reads the response body and returns an error if the status is
// not 2xx. On error it includes the upstream body for debugging.
func checkResp(resp *http.Response, service, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s %s returned %d: %s", service, path, resp.StatusCode, string(body))
}
