// Package auth resolves and refreshes delegated provider access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"dayboard/internal/model"
	"dayboard/internal/store"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// RefreshBuffer is how long before expiry a token is already treated as stale.
const RefreshBuffer = 300 * time.Second

const refreshTimeout = 30 * time.Second

// CredentialStore is the part of the credential store the refresher needs.
type CredentialStore interface {
	Find(ctx context.Context, userID string, provider model.Provider) (*model.Credential, error)
	UpdateToken(ctx context.Context, id string, u store.TokenUpdate) error
}

// Refresher keeps access tokens usable by exchanging refresh tokens at the
// provider's token endpoint.
type Refresher struct {
	oauth  *oauth2.Config
	store  CredentialStore
	logger *slog.Logger
	now    func() time.Time
	client *http.Client
	group  singleflight.Group
}

type Option func(*Refresher)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Refresher) { r.now = now }
}

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Refresher) { r.client = c }
}

func NewRefresher(cfg *oauth2.Config, st CredentialStore, logger *slog.Logger, opts ...Option) *Refresher {
	r := &Refresher{
		oauth:  cfg,
		store:  st,
		logger: logger.With("component", "refresher"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// EnsureValid returns an access token for c that is not within RefreshBuffer
// of expiry, refreshing and persisting it first when needed. A token that is
// stale but has no refresh token is returned as is. On a successful refresh
// c is updated in place.
func (r *Refresher) EnsureValid(ctx context.Context, c *model.Credential) (string, error) {
	if c == nil || c.AccessToken == "" {
		return "", ErrNoCredential
	}

	now := r.now()
	if c.ExpiresAt-int64(RefreshBuffer/time.Second) > now.Unix() || c.RefreshToken == "" {
		return c.AccessToken, nil
	}

	key := string(c.Provider) + ":" + c.UserID
	v, err, shared := r.group.Do(key, func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx), c, now)
	})
	if err != nil {
		return "", err
	}
	u := v.(store.TokenUpdate)
	if shared {
		r.logger.Debug("shared token refresh", "user_id", c.UserID, "provider", c.Provider)
	}

	c.AccessToken = u.AccessToken
	c.ExpiresAt = u.ExpiresAt
	if u.RefreshToken != "" {
		c.RefreshToken = u.RefreshToken
	}
	return c.AccessToken, nil
}

func (r *Refresher) refresh(ctx context.Context, c *model.Credential, now time.Time) (store.TokenUpdate, error) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	if r.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)
	}

	// No access token in the seed, so the source always hits the token endpoint.
	tok, err := r.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken}).Token()
	if err != nil {
		r.logger.Error("token refresh failed", "user_id", c.UserID, "provider", c.Provider, "error", err)
		return store.TokenUpdate{}, fmt.Errorf("refresh %s token: %w: %w", c.Provider, ErrNoCredential, err)
	}

	u := store.TokenUpdate{
		AccessToken: tok.AccessToken,
		ExpiresAt:   expiresAt(tok, now),
	}
	if tok.RefreshToken != "" && tok.RefreshToken != c.RefreshToken {
		u.RefreshToken = tok.RefreshToken
	}

	if err := r.store.UpdateToken(ctx, c.ID, u); err != nil {
		r.logger.Error("persist refreshed token", "credential_id", c.ID, "error", err)
		return store.TokenUpdate{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	r.logger.Info("token refreshed", "user_id", c.UserID, "provider", c.Provider, "expires_at", u.ExpiresAt)
	return u, nil
}

// expiresAt is now + expires_in from the response. Without expires_in it
// falls back to the library's computed expiry, then to now.
func expiresAt(tok *oauth2.Token, now time.Time) int64 {
	switch {
	case tok.ExpiresIn > 0:
		return now.Unix() + tok.ExpiresIn
	case !tok.Expiry.IsZero():
		return tok.Expiry.Unix()
	default:
		return now.Unix()
	}
}

// Resolver looks up a user's credential and hands out a valid access token.
type Resolver struct {
	store     CredentialStore
	refresher *Refresher
}

func NewResolver(st CredentialStore, r *Refresher) *Resolver {
	return &Resolver{store: st, refresher: r}
}

// AccessToken returns a valid access token for userID at provider.
func (r *Resolver) AccessToken(ctx context.Context, userID string, provider model.Provider) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	c, err := r.store.Find(ctx, userID, provider)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return r.refresher.EnsureValid(ctx, c)
}
