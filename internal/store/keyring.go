package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dayboard/internal/model"

	"github.com/99designs/keyring"
	"github.com/goccy/go-json"
)

const serviceName = "dayboard"

// KeyringStore keeps each credential as a JSON item in the OS keyring.
// The item key "<provider>:<userID>" is also the credential id.
type KeyringStore struct {
	ring keyring.Keyring
	now  func() time.Time
	mu   sync.Mutex
}

// OpenKeyring opens the platform keyring, falling back to an encrypted file
// keyring under dir.
func OpenKeyring(dir, password string) (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt(password),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyringStore(ring), nil
}

// NewKeyringStore wraps an already opened keyring.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring, now: time.Now}
}

// KeyringKey is the item key and credential id for a user and provider.
func KeyringKey(userID string, provider model.Provider) string {
	return string(provider) + ":" + userID
}

func (s *KeyringStore) Close() error { return nil }

func (s *KeyringStore) Find(_ context.Context, userID string, provider model.Provider) (*model.Credential, error) {
	return s.get(KeyringKey(userID, provider))
}

func (s *KeyringStore) UpdateToken(_ context.Context, id string, u TokenUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(id)
	if err != nil {
		return err
	}
	c.AccessToken = u.AccessToken
	c.ExpiresAt = u.ExpiresAt
	if u.RefreshToken != "" {
		c.RefreshToken = u.RefreshToken
	}
	c.UpdatedAt = s.now().Unix()
	return s.put(c)
}

func (s *KeyringStore) Upsert(_ context.Context, c *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := KeyringKey(c.UserID, c.Provider)
	now := s.now().Unix()
	c.ID = key
	c.CreatedAt = now
	c.UpdatedAt = now

	existing, err := s.get(key)
	switch {
	case err == nil:
		c.CreatedAt = existing.CreatedAt
		if c.RefreshToken == "" {
			c.RefreshToken = existing.RefreshToken
		}
	case !errors.Is(err, ErrNotFound):
		return err
	}
	return s.put(c)
}

func (s *KeyringStore) get(key string) (*model.Credential, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting credential %q: %w", key, err)
	}
	var c model.Credential
	if err := json.Unmarshal(item.Data, &c); err != nil {
		return nil, fmt.Errorf("decoding credential %q: %w", key, err)
	}
	return &c, nil
}

func (s *KeyringStore) put(c *model.Credential) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding credential %q: %w", c.ID, err)
	}
	err = s.ring.Set(keyring.Item{
		Key:         c.ID,
		Data:        data,
		Label:       "dayboard " + c.ID,
		Description: "OAuth credential",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", c.ID, err)
	}
	return nil
}
