// Package auth issues and verifies HS256 session tokens and carries verified
// claims through request contexts. Verification needs only the signing
// secret; no store is consulted.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is what a token asserts about its holder.
type Identity struct {
	UserID   int64
	Username string
	Email    string
}

// Claims is the signed payload. The subject holds the account id in decimal.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`

	// UserID is the parsed subject, filled in by Verify.
	UserID int64 `json:"-"`
}

// Identity returns the holder identity carried by c.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Username: c.Username, Email: c.Email}
}

var errEmptySecret = errors.New("signing secret is empty")

// Issuer signs tokens.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret []byte) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errEmptySecret
	}
	return &Issuer{secret: secret, now: time.Now}, nil
}

// Issue signs a token for id that expires ttl from now. The returned
// expiry is the exact value embedded in the token.
func (i *Issuer) Issue(id Identity, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("token ttl must be positive: %w", common.ErrInvalidInput)
	}

	now := i.now()
	exp := jwt.NewNumericDate(now.Add(ttl))
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: exp,
			ID:        uuid.NewString(),
		},
		Username: id.Username,
		Email:    id.Email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, exp.Time, nil
}

// Verifier checks tokens produced by an Issuer holding the same secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret []byte) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, errEmptySecret
	}
	return &Verifier{secret: secret, now: time.Now}, nil
}

// Verify returns the claims of a valid token. Expired tokens fail with
// common.ErrTokenExpired; every other rejection with common.ErrInvalidToken.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: bad subject", common.ErrInvalidToken)
	}
	claims.UserID = id

	return claims, nil
}
