package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"dayboard/internal/model"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	calendarv3 "google.golang.org/api/calendar/v3"
	gmailv1 "google.golang.org/api/gmail/v1"
)

// Scopes requested by the initial grant. Everything the server does is read-only.
var Scopes = []string{
	gmailv1.GmailReadonlyScope,
	calendarv3.CalendarReadonlyScope,
	"openid",
	"email",
}

// Grant runs the authorization-code flow with offline access and forced
// consent so the provider issues a refresh token.
//
// The consent URL is sent on urls once a loopback listener is ready. The code
// arrives either through the loopback redirect or as a pasted value on
// pasted (the bare code or the full redirect URL).
func Grant(ctx context.Context, cfg *oauth2.Config, urls chan<- string, pasted <-chan string) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen on loopback: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	// Work on a copy so the shared config keeps its redirect.
	flow := *cfg
	flow.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d/", port)
	state := uuid.NewString()

	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	srv := &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           mux,
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "State mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "Missing 'code' parameter", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this window.")
		select {
		case codeCh <- code:
		default:
		}
	})
	go func() { _ = srv.Serve(ln) }()
	defer srv.Shutdown(context.Background())

	authURL := flow.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	select {
	case urls <- authURL:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var code string
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case code = <-codeCh:
	case input, ok := <-pasted:
		if !ok {
			return nil, errors.New("authorization cancelled")
		}
		code, err = ParseCode(input)
		if err != nil {
			return nil, err
		}
	}

	tok, err := flow.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	return tok, nil
}

// ParseCode accepts a bare authorization code or a full redirect URL.
func ParseCode(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("empty authorization code")
	}
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return input, nil
	}
	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("parse redirect URL: %w", err)
	}
	c := u.Query().Get("code")
	if c == "" {
		return "", errors.New("no 'code' parameter found in pasted URL")
	}
	return c, nil
}

// OpenBrowser opens an http(s) URL with the platform's default handler.
func OpenBrowser(rawURL string) error {
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return fmt.Errorf("refusing to open non-HTTP URL: %s", rawURL)
	}

	var cmd string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{rawURL}
	case "linux":
		cmd = "xdg-open"
		args = []string{rawURL}
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	return exec.Command(cmd, args...).Start()
}

// CredentialFromToken builds the stored credential for a fresh grant.
func CredentialFromToken(userID string, provider model.Provider, tok *oauth2.Token, now time.Time) *model.Credential {
	scope, _ := tok.Extra("scope").(string)
	return &model.Credential{
		UserID:       userID,
		Provider:     provider,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt(tok, now),
		Scope:        scope,
	}
}
