package snapshot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// FetchError reports a route that could not be fetched or came back with an
// unexpected status.
type FetchError struct {
	Route  string
	Status int
	Want   int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("snapshot: fetch %s: %v", e.Route, e.Err)
	}
	return fmt.Sprintf("snapshot: fetch %s: status %d, want %d", e.Route, e.Status, e.Want)
}

func (e *FetchError) Unwrap() error { return e.Err }

type response struct {
	status int
	body   []byte
}

// fetcher issues single GETs against the base URL through colly.
type fetcher struct {
	base          string
	baseCollector *colly.Collector
}

func newFetcher(base, userAgent string, timeout time.Duration, transport http.RoundTripper) *fetcher {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.IgnoreRobotsTxt(),
		colly.MaxBodySize(0),
	)
	if userAgent != "" {
		c.UserAgent = userAgent
	}
	if transport != nil {
		c.WithTransport(transport)
	}
	c.SetRequestTimeout(timeout)
	return &fetcher{
		base:          strings.TrimSuffix(base, "/"),
		baseCollector: c,
	}
}

// get fetches route and returns its status and body. Non-2xx statuses are
// returned as responses, not errors.
func (f *fetcher) get(ctx context.Context, route string) (response, error) {
	var (
		result   response
		fetchErr error
	)
	collector := f.baseCollector.Clone()
	collector.OnResponse(func(r *colly.Response) {
		result = response{
			status: r.StatusCode,
			body:   append([]byte(nil), r.Body...),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			result = response{status: r.StatusCode, body: append([]byte(nil), r.Body...)}
			return
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(f.base + route)
	}()

	select {
	case <-ctx.Done():
		return response{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if fetchErr != nil {
			return response{}, fetchErr
		}
		if err != nil && result.status == 0 {
			return response{}, err
		}
		return result, nil
	}
}
