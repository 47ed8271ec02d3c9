package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bnema/webkit-content-blocker/internal/models"
)

// UserAgent is sent with every rule list download
const UserAgent = "webkit-content-blocker/1.0"

// Fetcher downloads rule lists
type Fetcher struct {
	client  *http.Client
	retries int
	backoff time.Duration
	group   singleflight.Group
}

// NewFetcher creates a new fetcher from config
func NewFetcher(cfg models.HTTPConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		retries: retries,
		backoff: time.Second,
	}
}

// Fetch downloads content from a URL with retries.
// Concurrent fetches of the same URL share one download. The shared download
// runs under the context of the caller that started it; a caller whose own
// context is still live retries alone when that context ended it.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	v, err, shared := f.group.Do(url, func() (any, error) {
		return f.fetchWithRetries(ctx, url)
	})
	if err != nil && shared && ctx.Err() == nil && isContextError(err) {
		return f.fetchWithRetries(ctx, url)
	}
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (f *Fetcher) fetchWithRetries(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for i := 0; i < f.retries; i++ {
		if i > 0 {
			// Linear backoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i) * f.backoff):
			}
		}

		data, err := f.doFetch(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed after %d retries: %w", f.retries, lastErr)
}

func (f *Fetcher) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}
