package engine

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// maxFetchBody bounds upstream API responses.
const maxFetchBody = 4 << 20

// FetchJSON performs a GET against a JSON API with exponential backoff.
// 429 and 5xx are retried; other non-200 statuses and transport errors are permanent.
func FetchJSON(ctx context.Context, endpoint string, query url.Values, headers map[string]string) ([]byte, error) {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	u := endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", "gzip")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			if isRetryable(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			metrics.RateLimited.Add(1)
			if ra := parseRetryAfter(resp.Header.Get("Retry-After")); ra > 0 {
				return nil, backoff.RetryAfter(int(ra.Seconds()))
			}
			return nil, &RateLimitError{}
		}
		if isRetryableStatus(resp.StatusCode) {
			return nil, &httpStatusError{StatusCode: resp.StatusCode}
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(&httpStatusError{StatusCode: resp.StatusCode})
		}
		return readResponseBody(resp)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	body, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	return body, nil
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, maxFetchBody))
}
