// Package store persists delegated OAuth credentials.
package store

import (
	"context"
	"errors"
	"fmt"

	"dayboard/internal/config"
	"dayboard/internal/model"
)

// ErrNotFound is returned when no credential matches.
var ErrNotFound = errors.New("credential not found")

// TokenUpdate carries the result of a refresh. An empty RefreshToken keeps
// the stored one.
type TokenUpdate struct {
	AccessToken  string
	ExpiresAt    int64
	RefreshToken string
}

// Store is the full credential store used by the commands. The serving path
// only needs Find and UpdateToken.
type Store interface {
	Find(ctx context.Context, userID string, provider model.Provider) (*model.Credential, error)
	UpdateToken(ctx context.Context, id string, u TokenUpdate) error
	Upsert(ctx context.Context, c *model.Credential) error
	Close() error
}

// Open returns the backend selected by CREDENTIAL_BACKEND.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.CredentialBackend {
	case "sql":
		return OpenSQL(cfg.DatabaseDriver, cfg.DatabaseURL)
	case "keyring":
		return OpenKeyring(cfg.KeyringDir, cfg.KeyringPassword)
	default:
		return nil, fmt.Errorf("unknown credential backend %q", cfg.CredentialBackend)
	}
}
