package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dayboard/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLStore keeps credentials in SQLite or Postgres.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// OpenSQL connects with driver "sqlite" (dsn is a file path) or "postgres"
// (dsn is a connection URL) and runs migrations.
func OpenSQL(driver, dsn string) (*SQLStore, error) {
	if driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

func migrate(db *sqlx.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	provider      TEXT NOT NULL,
	access_token  TEXT NOT NULL,
	refresh_token TEXT NOT NULL DEFAULT '',
	expires_at    BIGINT NOT NULL,
	scope         TEXT NOT NULL DEFAULT '',
	created_at    BIGINT NOT NULL,
	updated_at    BIGINT NOT NULL,
	UNIQUE (user_id, provider)
)`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Find(ctx context.Context, userID string, provider model.Provider) (*model.Credential, error) {
	var c model.Credential
	query := s.db.Rebind(`SELECT id, user_id, provider, access_token, refresh_token, expires_at, scope, created_at, updated_at
		FROM credentials WHERE user_id = ? AND provider = ?`)
	err := s.db.GetContext(ctx, &c, query, userID, provider)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return &c, nil
}

func (s *SQLStore) UpdateToken(ctx context.Context, id string, u TokenUpdate) error {
	now := s.now().Unix()
	var (
		res sql.Result
		err error
	)
	if u.RefreshToken == "" {
		res, err = s.db.ExecContext(ctx, s.db.Rebind(
			`UPDATE credentials SET access_token = ?, expires_at = ?, updated_at = ? WHERE id = ?`),
			u.AccessToken, u.ExpiresAt, now, id)
	} else {
		res, err = s.db.ExecContext(ctx, s.db.Rebind(
			`UPDATE credentials SET access_token = ?, expires_at = ?, refresh_token = ?, updated_at = ? WHERE id = ?`),
			u.AccessToken, u.ExpiresAt, u.RefreshToken, now, id)
	}
	if err != nil {
		return fmt.Errorf("update token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update token: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert inserts c or replaces the tokens of the existing (user, provider)
// row. c.ID, CreatedAt and UpdatedAt are set from the stored row.
func (s *SQLStore) Upsert(ctx context.Context, c *model.Credential) error {
	now := s.now().Unix()
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	query := s.db.Rebind(`
		INSERT INTO credentials (id, user_id, provider, access_token, refresh_token, expires_at, scope, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token  = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token = '' THEN credentials.refresh_token ELSE excluded.refresh_token END,
			expires_at    = excluded.expires_at,
			scope         = excluded.scope,
			updated_at    = excluded.updated_at
		RETURNING id, created_at, updated_at`)

	row := s.db.QueryRowxContext(ctx, query,
		id, c.UserID, c.Provider, c.AccessToken, c.RefreshToken, c.ExpiresAt, c.Scope, now, now)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}
