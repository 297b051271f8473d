// Package libre provides a translator backend for a LibreTranslate-compatible
// HTTP service.
package libre

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"speech-translate-service/internal/translator"
)

var _ translator.Backend = (*Client)(nil)

// Client calls a LibreTranslate /translate endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// New creates a client for the given /translate endpoint.
func New(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// Translate posts the form request and parses the translatedText response.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	form := url.Values{}
	form.Set("q", text)
	form.Set("source", sourceLang)
	form.Set("target", targetLang)
	form.Set("format", "text")
	if c.apiKey != "" {
		form.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", &translator.StatusError{Status: resp.StatusCode}
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	return out.TranslatedText, nil
}
