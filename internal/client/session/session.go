// Package session keeps the client's authenticated session: the token the
// server issued, the user it was issued for and, when known, its expiry.
// Every change is written to the local metadata store so the session
// survives restarts.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

var ErrInvalidSession = errors.New("session needs a token and a user")

// Session is a snapshot of the client session. An empty Token means no
// session. ExpiresAt is nil when the server did not say.
type Session struct {
	Token     string
	User      *models.User
	ExpiresAt *time.Time
}

// Empty reports whether no token is held.
func (s Session) Empty() bool {
	return s.Token == ""
}

func (s Session) clone() Session {
	out := Session{Token: s.Token}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		out.ExpiresAt = &t
	}
	return out
}

type Client struct {
	mu      sync.RWMutex
	db      *sql.DB
	logger  logging.Logger
	current Session
}

// New returns a Client restored from db. Unreadable or inconsistent stored
// state yields an empty session and is repaired where possible; New never
// fails.
func New(ctx context.Context, db *sql.DB, logger logging.Logger) *Client {
	c := &Client{db: db, logger: logger.With("module", "session")}
	c.restore(ctx)
	return c
}

// Current returns a copy of the session.
func (c *Client) Current() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.clone()
}

// Login replaces the session with token and user, which always travel
// together. A zero expiresAt means the expiry is unknown. The new session
// is in effect even when saving it fails; the error reports that it will
// not survive a restart.
func (c *Client) Login(ctx context.Context, token string, user *models.User, expiresAt time.Time) error {
	token = strings.TrimSpace(token)
	if token == "" || user == nil {
		return ErrInvalidSession
	}

	next := Session{Token: token}
	u := *user
	next.User = &u
	if !expiresAt.IsZero() {
		t := expiresAt.UTC()
		next.ExpiresAt = &t
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = next
	return c.persist(ctx)
}

// Logout clears the session in memory and in storage. Calling it without a
// session is a no-op apart from the storage cleanup.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = Session{}
	return c.persist(ctx)
}

// persist writes c.current. Callers hold c.mu.
func (c *Client) persist(ctx context.Context) error {
	s := c.current
	err := dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if s.Empty() {
			return repo.Delete(ctx, common.SessionTokenKey, common.SessionUserKey, common.SessionExpiresAtKey)
		}

		user, err := json.Marshal(s.User)
		if err != nil {
			return err
		}
		if err := repo.Set(ctx, common.SessionTokenKey, []byte(s.Token)); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.SessionUserKey, user); err != nil {
			return err
		}
		if s.ExpiresAt == nil {
			return repo.Delete(ctx, common.SessionExpiresAtKey)
		}
		return repo.Set(ctx, common.SessionExpiresAtKey, []byte(s.ExpiresAt.Format(time.RFC3339Nano)))
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// restore loads the stored session. Damage is repaired in storage so the
// next start sees a consistent state.
func (c *Client) restore(ctx context.Context) {
	repo := metadata.NewSQLiteRepository(c.db)

	token, hasToken, err := repo.Get(ctx, common.SessionTokenKey)
	if err != nil {
		c.logger.Warn(ctx, "session restore failed", "error", err)
		return
	}
	rawUser, hasUser, err := repo.Get(ctx, common.SessionUserKey)
	if err != nil {
		c.logger.Warn(ctx, "session restore failed", "error", err)
		return
	}
	rawExpiry, hasExpiry, err := repo.Get(ctx, common.SessionExpiresAtKey)
	if err != nil {
		c.logger.Warn(ctx, "session restore failed", "error", err)
		return
	}

	var user *models.User
	if hasUser {
		if err := json.Unmarshal(rawUser, &user); err != nil {
			c.logger.Warn(ctx, "stored user is corrupt, dropping session", "error", err)
			c.discard(ctx, repo)
			return
		}
	}

	tok := strings.TrimSpace(string(token))
	if !hasToken || tok == "" || user == nil {
		if hasToken || hasUser || hasExpiry {
			c.logger.Warn(ctx, "incomplete stored session, dropping it")
			c.discard(ctx, repo)
		}
		return
	}

	s := Session{Token: tok, User: user}
	if hasExpiry {
		t, err := time.Parse(time.RFC3339Nano, string(rawExpiry))
		if err != nil {
			c.logger.Warn(ctx, "stored expiry is corrupt, ignoring it", "error", err)
			if err := repo.Delete(ctx, common.SessionExpiresAtKey); err != nil {
				c.logger.Warn(ctx, "cleanup failed", "error", err)
			}
		} else {
			s.ExpiresAt = &t
		}
	}

	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
	c.logger.Debug(ctx, "session restored", "user", user.Label())
}

func (c *Client) discard(ctx context.Context, repo metadata.Repository) {
	if err := repo.Delete(ctx, common.SessionTokenKey, common.SessionUserKey, common.SessionExpiresAtKey); err != nil {
		c.logger.Warn(ctx, "cleanup failed", "error", err)
	}
}
