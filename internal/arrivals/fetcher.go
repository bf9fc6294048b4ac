package arrivals

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// FetchErrorKind distinguishes fetch failures for logging and metrics. The
// user-facing text is the same fixed apology for both.
type FetchErrorKind string

const (
	FetchTransport     FetchErrorKind = "transport"
	FetchMalformedFeed FetchErrorKind = "malformed_feed"
)

// FetchError wraps a fetch failure with its classification.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves the arrivals feed for a validated stop.
type Fetcher interface {
	Fetch(ctx context.Context, stop StopID) (Feed, error)
}

// HTTPFetcher issues one GET per call against the arrivals endpoint, with an
// explicit client timeout and no retry.
type HTTPFetcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPFetcher(baseURL, apiKey string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPFetcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, stop StopID) (Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.requestURL(stop), nil)
	if err != nil {
		return Feed{}, &FetchError{Kind: FetchTransport, Err: fmt.Errorf("create request: %w", err)}
	}

	res, err := f.client.Do(req)
	if err != nil {
		// Timeouts land here too; expiry is a transport-failure outcome.
		return Feed{}, &FetchError{Kind: FetchTransport, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return Feed{}, &FetchError{Kind: FetchTransport, Err: fmt.Errorf("feed status %d: %s", res.StatusCode, string(body))}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Feed{}, &FetchError{Kind: FetchTransport, Err: fmt.Errorf("read body: %w", err)}
	}

	feed, err := ParseFeed(body)
	if err != nil {
		return Feed{}, &FetchError{Kind: FetchMalformedFeed, Err: err}
	}
	return feed, nil
}

func (f *HTTPFetcher) requestURL(stop StopID) string {
	q := url.Values{}
	q.Set("key", f.apiKey)
	q.Set("stop", strconv.Itoa(int(stop)))
	return f.baseURL + "?" + q.Encode()
}
