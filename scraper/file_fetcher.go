// scraper/file_fetcher.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gewnthar/statbel-downloader/models"
)

// FileFetcher downloads statistic files over HTTP.
type FileFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewFileFetcher creates a fetcher whose requests are bounded by timeout.
func NewFileFetcher(timeout time.Duration, userAgent string) *FileFetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &FileFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Fetch performs a GET request and returns the full response body.
// Every failure, including a non-2xx status and an empty body, is returned as
// a *models.FetchError.
func (f *FileFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	log.Printf("Scraper: Attempting to download file from URL: %s\n", url)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &models.FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &models.FetchError{URL: url, Err: fmt.Errorf("failed to make GET request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if len(body) == 0 {
		return nil, &models.FetchError{URL: url, StatusCode: resp.StatusCode, Err: errors.New("empty response body")}
	}

	log.Printf("Scraper: Successfully downloaded %d bytes from %s\n", len(body), url)
	return body, nil
}
