package steam

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxIconBytes caps icon downloads; anything larger is decoration not
// worth fetching.
const maxIconBytes = 1 << 20

// IconFetcher resolves confirmation icon URLs over HTTP. It implements
// service.IconResolver.
type IconFetcher struct {
	httpClient *http.Client
}

// NewIconFetcher creates an icon fetcher with a short timeout so a slow
// CDN cannot stall batch preparation.
func NewIconFetcher() *IconFetcher {
	return &IconFetcher{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Resolve downloads the icon at the given URL.
func (f *IconFetcher) Resolve(ctx context.Context, iconURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iconURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch icon: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("icon fetch returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read icon body: %w", err)
	}
	return data, nil
}
