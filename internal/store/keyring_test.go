package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"dayboard/internal/model"

	"github.com/99designs/keyring"
)

func testKeyring(t *testing.T) *KeyringStore {
	t.Helper()
	s := NewKeyringStore(keyring.NewArrayKeyring(nil))
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return s
}

func TestKeyringRoundTrip(t *testing.T) {
	s := testKeyring(t)
	ctx := context.Background()

	if _, err := s.Find(ctx, "u1", model.ProviderGoogle); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	c := &model.Credential{UserID: "u1", Provider: model.ProviderGoogle, AccessToken: "at", RefreshToken: "rt", ExpiresAt: 42}
	if err := s.Upsert(ctx, c); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if c.ID != "google:u1" {
		t.Fatalf("ID = %q", c.ID)
	}

	if err := s.UpdateToken(ctx, c.ID, TokenUpdate{AccessToken: "at-2", ExpiresAt: 99}); err != nil {
		t.Fatalf("UpdateToken: %v", err)
	}
	got, err := s.Find(ctx, "u1", model.ProviderGoogle)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.AccessToken != "at-2" || got.ExpiresAt != 99 || got.RefreshToken != "rt" {
		t.Fatalf("unexpected credential: %+v", got)
	}
}

func TestKeyringUpdateMissing(t *testing.T) {
	s := testKeyring(t)
	err := s.UpdateToken(context.Background(), "google:ghost", TokenUpdate{AccessToken: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKeyringUpsertKeepsRefreshToken(t *testing.T) {
	s := testKeyring(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, &model.Credential{UserID: "u1", Provider: model.ProviderGoogle, AccessToken: "a", RefreshToken: "rt"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Upsert(ctx, &model.Credential{UserID: "u1", Provider: model.ProviderGoogle, AccessToken: "b"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, _ := s.Find(ctx, "u1", model.ProviderGoogle)
	if got.AccessToken != "b" || got.RefreshToken != "rt" {
		t.Fatalf("unexpected credential: %+v", got)
	}
}
