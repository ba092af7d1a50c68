// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay seeds the exponential backoff wait. Tests shrink it to
// keep runs fast.
var RetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 5

// retryable reports whether the status code warrants a retry. The OmniPath
// web service answers 429 when a client exceeds its rate allowance and 503
// while the backing database is being rebuilt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// retryAfter parses a Retry-After header carrying a delay in seconds.
// HTTP-date values and absent headers yield zero.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// DoWithRetry executes req and retries responses that signal transient
// load, HTTP 429 and HTTP 503. The wait starts at RetryBaseDelay and
// doubles per attempt, except that a longer Retry-After advertised by the
// server wins.
//
// A maxRetries of 0 selects the default of 5. Once the budget is spent
// the last response comes back so the caller can inspect it; a context
// cancelled mid-wait surfaces as ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := RetryBaseDelay << attempt
		if ra := retryAfter(resp); ra > wait {
			wait = ra
		}
		discardBody(resp)

		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// discardBody drains and closes so the connection can be reused.
func discardBody(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	return nil
}
