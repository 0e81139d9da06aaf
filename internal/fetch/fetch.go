package fetch

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

// Page is the raw profile page as received.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// ProfileFetcher downloads the profile page with a single GET.
type ProfileFetcher struct {
	client    *resty.Client
	url       string
	userAgent string
	debugPath string
}

// NewProfileFetcher creates a fetcher for url. A zero timeout waits
// indefinitely. When debugPath is set, every received body is saved there.
func NewProfileFetcher(url, userAgent string, timeout time.Duration, debugPath string) *ProfileFetcher {
	client := resty.New().SetRetryCount(0)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &ProfileFetcher{
		client:    client,
		url:       url,
		userAgent: userAgent,
		debugPath: debugPath,
	}
}

// URL returns the profile URL this fetcher requests.
func (f *ProfileFetcher) URL() string {
	return f.url
}

// Fetch performs one GET. Transport failures are returned as-is (wrapped);
// a non-2xx response returns the page together with a *StatusError.
func (f *ProfileFetcher) Fetch(ctx context.Context) (*Page, error) {
	log.Printf("Fetching profile page %s", f.url)

	start := time.Now()
	res, err := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", f.userAgent).
		Get(f.url)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	page := &Page{
		URL:        f.url,
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
		Duration:   time.Since(start),
	}

	if f.debugPath != "" {
		if err := writeSnapshot(f.debugPath, page.Body); err != nil {
			log.Printf("Failed to write debug snapshot %s: %v", f.debugPath, err)
		}
	}

	if !res.IsSuccess() {
		return page, &StatusError{Code: res.StatusCode()}
	}

	log.Printf("Fetched %d bytes in %v", len(page.Body), page.Duration.Round(time.Millisecond))
	return page, nil
}

func writeSnapshot(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating debug directory: %w", err)
	}
	return os.WriteFile(path, body, 0o644)
}

// StatusError reports a non-2xx response from the profile page.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d %s", e.Code, http.StatusText(e.Code))
}
