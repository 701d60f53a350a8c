// Package translate is a client for a local Zotero translation server,
// consumed as an opaque function: URL in, BibTeX record text out.
//
// Failures (network errors, non-record responses) are reported to the caller
// and never retried automatically.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 30 * time.Second

// Client talks to one translation server.
type Client struct {
	base string
	http *http.Client
}

// New creates a client for the given base URL (e.g. "http://localhost:1969").
func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: requestTimeout},
	}
}

// Fetch resolves a URL to BibTeX record text.
//
// The server's /web endpoint may answer 300 Multiple Choices with a set of
// candidate items; the first one is selected and the request repeated, which
// matches how a non-interactive import has to behave.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	body, status, err := c.post(ctx, "/web", "text/plain", []byte(url))
	if err != nil {
		return "", err
	}

	if status == http.StatusMultipleChoices {
		selected, err := selectFirstItem(body)
		if err != nil {
			return "", err
		}
		body, status, err = c.post(ctx, "/web", "application/json", selected)
		if err != nil {
			return "", err
		}
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("translation server: unexpected status %d for %s", status, url)
	}

	bib, status, err := c.post(ctx, "/export?format=bibtex", "application/json", body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("translation server: export failed with status %d", status)
	}
	if strings.TrimSpace(string(bib)) == "" {
		return "", fmt.Errorf("translation server: empty record for %s", url)
	}
	return string(bib), nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("translation server: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("translation server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("translation server: read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

// selectFirstItem narrows a 300 Multiple Choices payload down to its first
// candidate item so the follow-up request is unambiguous.
func selectFirstItem(body []byte) ([]byte, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("translation server: parse choices: %w", err)
	}
	var items map[string]json.RawMessage
	if err := json.Unmarshal(payload["items"], &items); err != nil {
		return nil, fmt.Errorf("translation server: parse choice items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("translation server: no candidate items")
	}

	// Map order is not deterministic in Go; pick the lexicographically
	// first key so repeated runs behave the same.
	first := ""
	for key := range items {
		if first == "" || key < first {
			first = key
		}
	}
	selected, err := json.Marshal(map[string]json.RawMessage{first: items[first]})
	if err != nil {
		return nil, err
	}
	payload["items"] = selected
	return json.Marshal(payload)
}
