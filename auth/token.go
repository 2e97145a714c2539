// Package auth contains the authentication and authorization pipeline:
// the token codec, the request middleware that derives a caller identity
// from a bearer token, and the gate middlewares that enforce role
// requirements on protected routes.
//
// Tokens are stateless: validity is purely a function of the HMAC
// signature and the embedded expiry. There is no server-side session or
// revocation list, which is what lets any instance holding the shared
// secret verify a token independently. The accepted trade-off is that a
// token cannot be revoked before it expires.
package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/stadium-tickets-go/config"
)

// TokenCodec issues and verifies compact signed tokens binding a username
// to an expiry. The signing secret is immutable after construction.
type TokenCodec struct {
	secret   []byte
	duration time.Duration
	issuer   string
}

// NewTokenCodec creates a TokenCodec from auth configuration. An empty
// secret is a configuration error; the caller is expected to treat it as
// fatal at startup.
func NewTokenCodec(cfg *config.AuthConfig) (*TokenCodec, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	return &TokenCodec{
		secret:   []byte(cfg.JWTSecret),
		duration: cfg.TokenDuration,
		issuer:   cfg.Issuer,
	}, nil
}

// Issue builds a signed token with subject=username, issued now and
// expiring after the configured TTL. It returns the token string and its
// expiry time.
func (c *TokenCodec) Issue(username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.duration)
	claims := &jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify reports whether the token is structurally well-formed, carries a
// valid HMAC signature, and has not expired. It never propagates parse or
// signature errors outward; every failure collapses to false, with the
// specific reason logged for diagnostics.
func (c *TokenCodec) Verify(tokenString string) bool {
	_, err := c.parse(tokenString)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			log.Printf("token verification failed: malformed token")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			log.Printf("token verification failed: invalid signature")
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Printf("token verification failed: token is expired")
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Printf("token verification failed: token not valid yet")
		default:
			log.Printf("token verification failed: %v", err)
		}
		return false
	}
	return true
}

// Subject extracts the subject (username) claim. Callers must Verify the
// token first; Subject re-checks the signature as a safety net and fails
// on any token Verify would have rejected.
func (c *TokenCodec) Subject(tokenString string) (string, error) {
	claims, err := c.parse(tokenString)
	if err != nil {
		return "", fmt.Errorf("cannot extract subject: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject claim")
	}
	return claims.Subject, nil
}

// parse validates the signing method, signature and registered claims.
func (c *TokenCodec) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	return claims, nil
}
