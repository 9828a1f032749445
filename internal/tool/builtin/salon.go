// Package builtin contains the domain tools the reasoning engine may request:
// availability lookup, booking, salon and service discovery, beauty advice,
// and semantic search over the salon knowledge index.
package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	toolcore "github.com/ninhvo/salonmate/internal/tool"
)

const defaultSalonBaseURL = "http://localhost:9090"

// salonClient wraps the salon directory/booking HTTP backend.
type salonClient struct {
	Client  *http.Client
	BaseURL string
}

func newSalonClient(options toolcore.BuiltinOptions) *salonClient {
	timeout := options.SalonTimeout
	if timeout <= 0 {
		timeout = toolcore.DefaultBuiltinSalonTimeout
	}

	baseURL := strings.TrimSpace(options.SalonBaseURL)
	if baseURL == "" {
		baseURL = defaultSalonBaseURL
	}

	return &salonClient{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (c *salonClient) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

func (c *salonClient) post(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *salonClient) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("salon api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read salon api response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("salon api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("salon api returned invalid JSON")
	}
	return json.RawMessage(body), nil
}
