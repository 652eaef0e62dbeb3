package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// upstreamError marks a response the breaker counts as a failure while the
// caller still receives it unchanged.
type upstreamError struct {
	resp *http.Response
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("upstream status %d", e.resp.StatusCode)
}

// breakerTransport sends requests through a circuit breaker. 5xx, 429 and
// transport errors count as failures; an open breaker fails fast with
// gobreaker.ErrOpenState.
type breakerTransport struct {
	cb   *gobreaker.CircuitBreaker
	base http.RoundTripper
}

func newBreaker(name string, timeout time.Duration, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up says nothing about the provider.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	v, err := t.cb.Execute(func() (interface{}, error) {
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return resp, &upstreamError{resp: resp}
		}
		return resp, nil
	})
	var ue *upstreamError
	if errors.As(err, &ue) {
		return ue.resp, nil
	}
	if err != nil {
		return nil, err
	}
	return v.(*http.Response), nil
}
