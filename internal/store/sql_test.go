package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"dayboard/internal/model"
)

func testStore(t *testing.T) *SQLStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	s, err := OpenSQL("sqlite", dbPath)
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLFindMissing(t *testing.T) {
	s := testStore(t)
	_, err := s.Find(context.Background(), "nobody", model.ProviderGoogle)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLUpsertAndFind(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	c := &model.Credential{
		UserID:       "u1",
		Provider:     model.ProviderGoogle,
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresAt:    1_700_003_600,
		Scope:        "openid",
	}
	if err := s.Upsert(ctx, c); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if c.ID == "" {
		t.Fatal("Upsert did not assign an id")
	}

	got, err := s.Find(ctx, "u1", model.ProviderGoogle)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.ID != c.ID || got.AccessToken != "at-1" || got.RefreshToken != "rt-1" || got.ExpiresAt != 1_700_003_600 {
		t.Fatalf("unexpected credential: %+v", got)
	}
	if got.CreatedAt != 1_700_000_000 {
		t.Errorf("CreatedAt = %d", got.CreatedAt)
	}

	// Re-linking keeps the id and the refresh token when none is supplied.
	again := &model.Credential{UserID: "u1", Provider: model.ProviderGoogle, AccessToken: "at-2", ExpiresAt: 1_700_007_200}
	if err := s.Upsert(ctx, again); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if again.ID != c.ID {
		t.Fatalf("id changed on upsert: %q -> %q", c.ID, again.ID)
	}
	got, _ = s.Find(ctx, "u1", model.ProviderGoogle)
	if got.AccessToken != "at-2" || got.RefreshToken != "rt-1" {
		t.Fatalf("unexpected credential after re-link: %+v", got)
	}
}

func TestSQLUpdateToken(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	c := &model.Credential{UserID: "u1", Provider: model.ProviderGoogle, AccessToken: "old", RefreshToken: "rt", ExpiresAt: 1}
	if err := s.Upsert(ctx, c); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := s.UpdateToken(ctx, c.ID, TokenUpdate{AccessToken: "new", ExpiresAt: 5000}); err != nil {
		t.Fatalf("UpdateToken: %v", err)
	}
	got, _ := s.Find(ctx, "u1", model.ProviderGoogle)
	if got.AccessToken != "new" || got.ExpiresAt != 5000 || got.RefreshToken != "rt" {
		t.Fatalf("unexpected credential: %+v", got)
	}

	if err := s.UpdateToken(ctx, c.ID, TokenUpdate{AccessToken: "newer", ExpiresAt: 6000, RefreshToken: "rt-2"}); err != nil {
		t.Fatalf("UpdateToken rotate: %v", err)
	}
	got, _ = s.Find(ctx, "u1", model.ProviderGoogle)
	if got.RefreshToken != "rt-2" {
		t.Fatalf("refresh token not rotated: %+v", got)
	}

	if err := s.UpdateToken(ctx, "missing", TokenUpdate{AccessToken: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLUsersAreIsolated(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, u := range []string{"a", "b"} {
		if err := s.Upsert(ctx, &model.Credential{UserID: u, Provider: model.ProviderGoogle, AccessToken: "at-" + u}); err != nil {
			t.Fatalf("Upsert %s: %v", u, err)
		}
	}
	got, err := s.Find(ctx, "b", model.ProviderGoogle)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.AccessToken != "at-b" {
		t.Fatalf("got %q", got.AccessToken)
	}
}
