// Package store persists the session credential (bearer token plus cached
// user profile) in a per-origin SQLite database so it survives restarts.
//
// The token and the profile live under two keys of the metadata table and are
// always written and removed in one transaction. Unreadable persisted data is
// never surfaced by Get: it wipes it and reports "no credential". Peek reads
// without repairing and leaves that decision to the caller.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/scholarhub/internal/client/migrations"
	"github.com/dmitrijs2005/scholarhub/internal/client/models"
	"github.com/dmitrijs2005/scholarhub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/scholarhub/internal/dbx"
	"github.com/dmitrijs2005/scholarhub/internal/filex"
	"github.com/dmitrijs2005/scholarhub/internal/logging"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// ErrCorruptLocalState marks persisted credential data that could not be
// decoded. Peek returns it; Get logs it and wipes the data instead.
var ErrCorruptLocalState = errors.New("corrupt local session state")

// CredentialStore is the only place the credential is persisted.
//
// Get and Peek return (nil, nil) when no credential is stored.
type CredentialStore interface {
	Get(ctx context.Context) (*models.Credential, error)
	Peek(ctx context.Context) (*models.Credential, error)
	Put(ctx context.Context, c models.Credential) error
	Clear(ctx context.Context) error
}

type SQLiteStore struct {
	db  *sql.DB
	log logging.Logger
}

// New wraps an already migrated database.
func New(db *sql.DB, log logging.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, log: log}
}

// Open opens (creating if needed) the credential database for the origin of
// baseURL inside dataDir.
func Open(ctx context.Context, dataDir, baseURL string, log logging.Logger) (*SQLiteStore, error) {
	path, err := PathForOrigin(dataDir, baseURL)
	if err != nil {
		return nil, err
	}
	if _, err := filex.EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := dbx.OpenSQLite(ctx, path, migrations.FS)
	if err != nil {
		return nil, err
	}
	log.Debug(ctx, "credential store opened", "path", path)
	return New(db, log), nil
}

// PathForOrigin maps the origin (scheme, host and port) of baseURL to a
// database file name, so different servers never share a credential.
func PathForOrigin(dataDir, baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("api url %q has no origin", baseURL)
	}

	origin := strings.ToLower(u.Scheme + "_" + u.Host)
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, origin)

	return filepath.Join(dataDir, "session_"+name+".db"), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context) (*models.Credential, error) {
	cred, err := s.Peek(ctx)
	if errors.Is(err, ErrCorruptLocalState) {
		s.log.Warn(ctx, "discarding stored credential", "error", err)
		if cerr := s.Clear(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, nil
	}
	return cred, err
}

// Peek is Get without the repair: corrupt data is reported as
// ErrCorruptLocalState and left in place.
func (s *SQLiteStore) Peek(ctx context.Context) (*models.Credential, error) {
	var token, user []byte

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		var err error
		if token, err = repo.Get(ctx, keyToken); err != nil {
			return err
		}
		user, err = repo.Get(ctx, keyUser)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}

	if token == nil && user == nil {
		return nil, nil
	}
	return decode(token, user)
}

func decode(token, user []byte) (*models.Credential, error) {
	if len(token) == 0 || len(user) == 0 {
		return nil, fmt.Errorf("%w: token and profile out of step", ErrCorruptLocalState)
	}

	var profile models.UserSummary
	if err := json.Unmarshal(user, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLocalState, err)
	}

	cred := &models.Credential{Token: string(token), Profile: profile}
	if err := cred.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLocalState, err)
	}
	return cred, nil
}

func (s *SQLiteStore) Put(ctx context.Context, c models.Credential) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("put credential: %w", err)
	}

	profile, err := json.Marshal(c.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyToken, []byte(c.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, keyUser, profile)
	})
	if err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, keyToken, keyUser)
	})
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
