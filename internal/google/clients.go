// Package google builds per-request Gmail and Calendar services from a
// caller's access token.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	calendarv3 "google.golang.org/api/calendar/v3"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Options configures the provider clients. Empty endpoints use Google's.
type Options struct {
	GmailEndpoint    string
	CalendarEndpoint string
	BreakerTimeout   time.Duration
	// Transport is the base transport under the breaker; nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// Clients hands out services bound to one access token. The circuit breakers
// are shared across all requests.
type Clients struct {
	opts     Options
	gmail    *gobreaker.CircuitBreaker
	calendar *gobreaker.CircuitBreaker
}

func NewClients(opts Options, logger *slog.Logger) *Clients {
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	logger = logger.With("component", "google")
	return &Clients{
		opts:     opts,
		gmail:    newBreaker("gmail", opts.BreakerTimeout, logger),
		calendar: newBreaker("calendar", opts.BreakerTimeout, logger),
	}
}

func (c *Clients) httpClient(cb *gobreaker.CircuitBreaker, accessToken string) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
			Base:   &breakerTransport{cb: cb, base: c.opts.Transport},
		},
	}
}

// Gmail returns a Gmail service authorized with accessToken.
func (c *Clients) Gmail(ctx context.Context, accessToken string) (*gmailv1.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(c.httpClient(c.gmail, accessToken))}
	if c.opts.GmailEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.opts.GmailEndpoint))
	}
	svc, err := gmailv1.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return svc, nil
}

// Calendar returns a Calendar service authorized with accessToken.
func (c *Clients) Calendar(ctx context.Context, accessToken string) (*calendarv3.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(c.httpClient(c.calendar, accessToken))}
	if c.opts.CalendarEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.opts.CalendarEndpoint))
	}
	svc, err := calendarv3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return svc, nil
}
