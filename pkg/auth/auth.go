// Package auth protects write operations of the API server with
// HS256-signed bearer tokens.
package auth

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	apierr "github.com/ANUcybernetics/trajectory-tracer/pkg/api/types/errors"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

const issuer = "trajectory-tracer"

// Signer issues and verifies tokens over one shared HMAC key.
type Signer struct {
	key []byte
	ttl time.Duration
}

// NewSigner wraps a shared key. ttl bounds issued token lifetime.
func NewSigner(key []byte, ttl time.Duration) *Signer {
	return &Signer{key: key, ttl: ttl}
}

// RandomKey draws klen bytes for a fresh HMAC key.
func RandomKey(klen uint) ([]byte, error) {
	k := make([]byte, klen)
	if _, err := rand.Read(k); err != nil {
		return nil, xe.Wrap(err)
	}
	return k, nil
}

// Issue signs a token naming its subject (typically a client id).
func (s *Signer) Issue(subject string) (string, error) {
	now := time.Now().Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", xe.Wrap(err)
	}
	return signed, nil
}

// Verify checks signature, expiry and issuer, and returns the subject.
func (s *Signer) Verify(signed string) (string, error) {
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		signed, &claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", xe.Wrap(err)
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid bearer token.
func Middleware(signer *Signer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return apierr.Unauthorized("set a bearer token", nil)
			}
			subject, err := signer.Verify(token)
			if err != nil {
				return apierr.Unauthorized("token is not acceptable", err)
			}
			c.Set("subject", subject)
			return next(c)
		}
	}
}
