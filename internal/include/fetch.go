// SPDX-License-Identifier: MPL-2.0

package include

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxRemoteBytes bounds the body read from a single remote include.
const maxRemoteBytes = 8 << 20

type (
	// Fetcher retrieves the body of a remote rule file.
	Fetcher interface {
		Fetch(ctx context.Context, rawURL string) ([]byte, error)
	}

	// HTTPFetcher fetches remote includes with a single GET request.
	HTTPFetcher struct {
		client    *http.Client
		userAgent string
	}
)

// NewHTTPFetcher creates a fetcher using client (http.DefaultClient when nil).
func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

// Fetch issues one GET and returns the full body. Any status outside 2xx is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(body) > maxRemoteBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", maxRemoteBytes)
	}
	return body, nil
}
