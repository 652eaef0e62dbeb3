package google

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	gmailv1 "google.golang.org/api/gmail/v1"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGmailServiceSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		if !strings.Contains(r.URL.Path, "/users/me/profile") {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&gmailv1.Profile{EmailAddress: "me@example.com"})
	}))
	defer srv.Close()

	c := NewClients(Options{GmailEndpoint: srv.URL + "/"}, testLogger())
	svc, err := c.Gmail(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("Gmail: %v", err)
	}
	p, err := svc.Users.GetProfile("me").Do()
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.EmailAddress != "me@example.com" {
		t.Fatalf("EmailAddress = %q", p.EmailAddress)
	}
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClients(Options{BreakerTimeout: time.Minute}, testLogger())
	client := c.httpClient(c.calendar, "tok")

	for i := 0; i < 5; i++ {
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("request %d: status %d passed through as %d", i, http.StatusServiceUnavailable, resp.StatusCode)
		}
		resp.Body.Close()
	}
	if c.calendar.State() != gobreaker.StateOpen {
		t.Fatalf("breaker state = %s; want open", c.calendar.State())
	}

	_, err := client.Get(srv.URL)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
	if hits.Load() != 5 {
		t.Fatalf("server hit %d times; want 5", hits.Load())
	}
	if c.gmail.State() != gobreaker.StateClosed {
		t.Fatalf("gmail breaker tripped by calendar failures")
	}
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClients(Options{}, testLogger())
	client := c.httpClient(c.gmail, "tok")
	for i := 0; i < 10; i++ {
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		resp.Body.Close()
	}
	if c.gmail.State() != gobreaker.StateClosed {
		t.Fatalf("breaker state = %s; want closed", c.gmail.State())
	}
}
