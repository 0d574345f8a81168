// Package token issues and verifies the bearer tokens handed to clients
// after register and login.
//
// Tokens are HS256 JWTs carrying the account id in the "id" claim alongside
// the registered iss/sub/iat/exp claims. Verification is pure: it never
// touches the store, so a token for a deleted account keeps verifying until
// it expires.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSigningKey = errors.New("token signing key is not configured")

	ErrMalformed        = errors.New("token is malformed")
	ErrSignatureInvalid = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 24 * time.Hour

type Claims struct {
	AccountID int64 `json:"id"`
	jwt.RegisteredClaims
}

type Issuer struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

type Option func(*Issuer)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// New returns an issuer signing with signingKey. An empty key is a
// configuration error and is reported here rather than per request.
func New(signingKey, issuer string, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if strings.TrimSpace(signingKey) == "" {
		return nil, ErrMissingSigningKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	i := &Issuer{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue signs a token asserting accountID that expires after the issuer ttl.
func (i *Issuer) Issue(accountID int64) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   strconv.FormatInt(accountID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := unsigned.SignedString(i.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// account id it asserts. Errors are one of ErrMalformed,
// ErrSignatureInvalid or ErrExpired.
func (i *Issuer) Verify(tokenString string) (int64, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) {
			return i.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, fmt.Errorf("%w: %w", ErrExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
		default:
			return 0, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	if claims.AccountID <= 0 || claims.Subject != strconv.FormatInt(claims.AccountID, 10) {
		return 0, fmt.Errorf("%w: account id claim is missing or inconsistent", ErrMalformed)
	}
	return claims.AccountID, nil
}
