// Package services contains application services for the authkeeper CLI.
// They combine the API client with the session: logging in stores the
// session, protected calls send its token, and a server rejection of that
// token ends the session.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/api"
	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionEnded is returned when the server rejected the session
	// token; the local session has been cleared.
	ErrSessionEnded = errors.New("session ended, please log in again")
)

// API is satisfied by *api.Client.
type API interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	ListUsers(ctx context.Context, token string) ([]models.Profile, error)
	GetUser(ctx context.Context, token string, id int64) (*models.Profile, error)
	UpdateUser(ctx context.Context, token string, id int64, username, email string) error
	DeleteUser(ctx context.Context, token string, id int64) error
	Me(ctx context.Context, token string) (*models.User, error)
	Ping(ctx context.Context) error
}

// Sessions is satisfied by *session.Client.
type Sessions interface {
	Current() session.Session
	Login(ctx context.Context, token string, user *models.User, expiresAt time.Time) error
	Logout(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
type AuthService interface {
	Register(ctx context.Context, username, email string, password []byte) (int64, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) (*models.User, error)
	Ping(ctx context.Context) error
}

type authService struct {
	caller
}

func NewAuthService(c API, s Sessions, l logging.Logger) AuthService {
	return &authService{caller{api: c, sessions: s, logger: l.With("module", "auth_service")}}
}

func (a *authService) Register(ctx context.Context, username, email string, password []byte) (int64, error) {
	return a.api.Register(ctx, username, email, string(password))
}

// Login authenticates and replaces the session. On failure the previous
// session is left as it was.
func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	res, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var exp time.Time
	if res.ExpiresAt != nil {
		exp = *res.ExpiresAt
	}
	user := res.User
	if err := a.sessions.Login(ctx, res.Token, &user, exp); err != nil {
		// the session is usable for this run even if it was not saved
		a.logger.Warn(ctx, "session not saved", "error", err)
	}
	return &user, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.sessions.Logout(ctx)
}

// Whoami asks the server who the session token belongs to.
func (a *authService) Whoami(ctx context.Context) (*models.User, error) {
	var out *models.User
	err := a.call(ctx, func(token string) error {
		u, err := a.api.Me(ctx, token)
		out = u
		return err
	})
	return out, err
}

func (a *authService) Ping(ctx context.Context) error {
	return a.api.Ping(ctx)
}

// caller runs API calls that need the session token.
type caller struct {
	api      API
	sessions Sessions
	logger   logging.Logger
}

func (c *caller) call(ctx context.Context, fn func(token string) error) error {
	s := c.sessions.Current()
	if s.Empty() {
		return ErrNotLoggedIn
	}

	err := fn(s.Token)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if !errors.Is(err, api.ErrUnauthorized) {
		return err
	}

	// a newer login may have replaced the token while the call was running
	if c.sessions.Current().Token == s.Token {
		c.logger.Info(ctx, "server rejected the session token, logging out")
		if lerr := c.sessions.Logout(ctx); lerr != nil {
			c.logger.Warn(ctx, "session cleanup failed", "error", lerr)
		}
	}
	return fmt.Errorf("%w: %w", ErrSessionEnded, err)
}
