// Package services contains server-side business logic. UserService handles
// registration, login and the guarded account operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// PasswordHasher is satisfied by *cryptox.Hasher.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// TokenIssuer is satisfied by *auth.Issuer.
type TokenIssuer interface {
	Issue(id auth.Identity, ttl time.Duration) (string, time.Time, error)
}

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *models.Account
}

const (
	AdminUsername = "admin"
	AdminEmail    = "admin@example.com"
)

// UserService provides account operations on top of the users repository.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	issuer      TokenIssuer
	tokenTTL    time.Duration
	logger      logging.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

// NewUserService constructs a UserService. tokenTTL is the lifetime of
// tokens issued by Login.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, issuer TokenIssuer, tokenTTL time.Duration, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		issuer:      issuer,
		tokenTTL:    tokenTTL,
		logger:      logger.With("module", "users"),
	}
}

// Register creates an account. Username and email must be unique; the check
// is left to the store so concurrent registrations cannot both succeed.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.Account, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, common.NewValidationError("Username, email, and password are required")
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}

	repo := s.repomanager.Users(s.db)
	account, err := repo.Create(ctx, &models.Account{Username: username, Email: email, PasswordDigest: digest})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return nil, err
		}
		return nil, s.internal(ctx, "create account", err)
	}

	s.logger.Info(ctx, "account registered", "user_id", account.ID)
	return account, nil
}

// Login checks credentials and issues a token. An unknown email and a wrong
// password both yield common.ErrInvalidCredentials, and both pay for one
// hash verification.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, common.NewValidationError("Email and password are required")
	}

	repo := s.repomanager.Users(s.db)
	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.Verify(password, s.dummy())
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "find account", err)
	}

	if !s.hasher.Verify(password, account.PasswordDigest) {
		return nil, common.ErrInvalidCredentials
	}

	token, expiresAt, err := s.issuer.Issue(auth.Identity{
		UserID:   account.ID,
		Username: account.Username,
		Email:    account.Email,
	}, s.tokenTTL)
	if err != nil {
		return nil, s.internal(ctx, "issue token", err)
	}

	s.logger.Info(ctx, "login succeeded", "user_id", account.ID)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

func (s *UserService) List(ctx context.Context) ([]models.PublicProfile, error) {
	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list accounts", err)
	}
	return list, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.PublicProfile, error) {
	p, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, s.internal(ctx, "get account", err)
	}
	return p, nil
}

// Update changes username and email. The password is not updatable here.
func (s *UserService) Update(ctx context.Context, id int64, username, email string) error {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" {
		return common.NewValidationError("Username and email are required for update")
	}

	err := s.repomanager.Users(s.db).Update(ctx, id, username, email)
	switch {
	case err == nil:
		s.logger.Info(ctx, "account updated", "user_id", id)
		return nil
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrDuplicateIdentity):
		return err
	default:
		return s.internal(ctx, "update account", err)
	}
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.repomanager.Users(s.db).Delete(ctx, id)
	switch {
	case err == nil:
		s.logger.Info(ctx, "account deleted", "user_id", id)
		return nil
	case errors.Is(err, common.ErrNotFound):
		return err
	default:
		return s.internal(ctx, "delete account", err)
	}
}

// SeedAdmin creates the admin account when the store holds no accounts.
// It reports whether an account was created.
func (s *UserService) SeedAdmin(ctx context.Context, password string) (bool, error) {
	if password == "" {
		s.logger.Warn(ctx, "admin seed skipped: no admin password configured")
		return false, nil
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return false, s.internal(ctx, "hash admin password", err)
	}

	created := false
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		n, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		if _, err := repo.Create(ctx, &models.Account{Username: AdminUsername, Email: AdminEmail, PasswordDigest: digest}); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}

	if created {
		s.logger.Info(ctx, "admin account seeded", "email", AdminEmail)
	}
	return created, nil
}

// dummy is a digest of an unguessable secret, verified against when the
// email is unknown so both login failures cost the same.
func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		d, err := s.hasher.Hash(fmt.Sprintf("%x", common.GenerateRandByteArray(16)))
		if err == nil {
			s.dummyDigest = d
		}
	})
	return s.dummyDigest
}

func (s *UserService) internal(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, common.ErrInternal)
}
