package github

import (
	"net/http"
	"time"
)

// TraceTransport logs every round trip at debug level. It never retries or
// delays a request.
func TraceTransport(next http.RoundTripper, log DebugLogger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()

		resp, err := next.RoundTrip(req)
		if err != nil {
			log.Debug("[github] %s %s failed after %s: %v", req.Method, req.URL.Path, time.Since(start), err)
			return nil, err
		}

		log.Debug("[github] %s %s %d %s (rate limit remaining: %s)",
			req.Method, req.URL.Path, resp.StatusCode, time.Since(start), rateRemaining(resp.Header))
		return resp, nil
	})
}

func rateRemaining(h http.Header) string {
	if v := h.Get("X-RateLimit-Remaining"); v != "" {
		return v
	}
	return "n/a"
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
