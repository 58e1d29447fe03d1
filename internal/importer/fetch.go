package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	appLog "github.com/soccer-rsvp/app/internal/log"
)

const (
	fetchTimeout  = 30 * time.Second
	maxAttempts   = 5
	backoffFactor = time.Second
)

// retryableStatus reports whether an HTTP status is worth another attempt.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// cacheEntry is the on-disk backup of the last successful fetch.
type cacheEntry struct {
	FetchedAt time.Time `json:"fetched_at"`
	Body      string    `json:"body"`
}

// Fetcher retrieves the iCalendar feed with retries and keeps a
// disk-backed copy of the last good body so a flaky feed host does not
// blank the calendar.
type Fetcher struct {
	client    *http.Client
	url       string
	cacheFile string
	maxAge    time.Duration
}

// NewFetcher creates a Fetcher for the given feed URL. cacheFile may be
// empty to disable the disk cache; maxAge bounds how stale a cached
// body may be before it stops being used as a fallback.
func NewFetcher(url, cacheFile string, maxAge time.Duration) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: fetchTimeout},
		url:       url,
		cacheFile: cacheFile,
		maxAge:    maxAge,
	}
}

// Fetch returns the feed body, retrying transient failures with linear
// backoff. On hard failure it falls back to the cached body when one is
// fresh enough; fromCache reports which path produced the body.
func (f *Fetcher) Fetch(ctx context.Context) (body []byte, fromCache bool, err error) {
	if f.url == "" {
		return nil, false, errors.New("feed URL is empty")
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * backoffFactor):
			}
		}

		appLog.Debug("fetching calendar feed", "url", f.url, "attempt", attempt)
		body, lastErr = f.fetchOnce(ctx)
		if lastErr == nil {
			if cacheErr := f.saveCache(body); cacheErr != nil {
				appLog.Error("calendar cache save failed", cacheErr, "file", f.cacheFile)
			}
			return body, false, nil
		}

		var re *retryableError
		if !errors.As(lastErr, &re) {
			break
		}
		appLog.Info("calendar fetch retrying", "attempt", attempt, "err", lastErr)
	}

	if cached, cacheErr := f.loadCache(); cacheErr == nil {
		appLog.Error("calendar fetch failed, using cached feed", lastErr, "file", f.cacheFile)
		return cached, true, nil
	}

	return nil, false, fmt.Errorf("fetch calendar: %w", lastErr)
}

// retryableError marks transient fetch failures.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (f *Fetcher) fetchOnce(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar,*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &retryableError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("feed returned %s", resp.Status)
		if retryableStatus(resp.StatusCode) {
			return nil, &retryableError{err}
		}
		return nil, err
	}

	return io.ReadAll(resp.Body)
}

func (f *Fetcher) loadCache() ([]byte, error) {
	if f.cacheFile == "" {
		return nil, errors.New("cache disabled")
	}

	data, err := os.ReadFile(f.cacheFile)
	if err != nil {
		return nil, err
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	if f.maxAge > 0 && time.Since(entry.FetchedAt) > f.maxAge {
		return nil, errors.New("cached feed too old")
	}
	if entry.Body == "" {
		return nil, errors.New("cached feed is empty")
	}
	return []byte(entry.Body), nil
}

func (f *Fetcher) saveCache(body []byte) error {
	if f.cacheFile == "" {
		return nil
	}

	entry := cacheEntry{
		FetchedAt: time.Now().UTC(),
		Body:      string(body),
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return err
	}

	// Atomic write: temp file in the same directory, then rename.
	dir := filepath.Dir(f.cacheFile)
	tmp, err := os.CreateTemp(dir, ".calendar-cache-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, f.cacheFile)
}
