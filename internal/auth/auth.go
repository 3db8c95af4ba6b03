// Package auth resolves access tokens to the caller an operation runs for.
//
// Tokens are HS256 JWTs whose subject is the owner id (a UUID). They arrive
// either as an Authorization bearer token or in the session cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/gradabroad/internal/core"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNoToken      = errors.New("no access token")
	ErrInvalidToken = errors.New("invalid or expired access token")
)

// Claims are the access token claims the importer reads.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks access tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	cookie string
	parser *jwt.Parser
}

// NewVerifier creates a Verifier for tokens signed with secret. cookie names
// the session cookie consulted when no Authorization header is present.
func NewVerifier(secret, cookie string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		cookie: cookie,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(30*time.Second),
		),
	}
}

// Verify parses token and returns the caller it names.
func (v *Verifier) Verify(token string) (core.Caller, error) {
	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}); err != nil {
		return core.Caller{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	owner, err := uuid.Parse(claims.Subject)
	if err != nil {
		return core.Caller{}, fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}

	return core.Caller{OwnerID: owner.String(), Email: claims.Email}, nil
}

// TokenFromRequest returns the bearer token, or the session cookie value
// when there is no Authorization header.
func (v *Verifier) TokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", ErrInvalidToken
		}
		return strings.TrimSpace(token), nil
	}

	if v.cookie != "" {
		if c, err := r.Cookie(v.cookie); err == nil && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", ErrNoToken
}

// CallerFromRequest resolves the request's token. Missing or bad tokens
// yield the zero, unauthenticated Caller together with the reason.
func (v *Verifier) CallerFromRequest(r *http.Request) (core.Caller, error) {
	token, err := v.TokenFromRequest(r)
	if err != nil {
		return core.Caller{}, err
	}
	return v.Verify(token)
}

// Issue signs an access token for owner valid for ttl.
func Issue(secret, ownerID, email string, ttl time.Duration) (string, error) {
	if _, err := uuid.Parse(ownerID); err != nil {
		return "", fmt.Errorf("issue token: owner id: %w", err)
	}

	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

type contextKey struct{}

// WithCaller returns a copy of ctx carrying caller.
func WithCaller(ctx context.Context, caller core.Caller) context.Context {
	return context.WithValue(ctx, contextKey{}, caller)
}

// CallerFromContext returns the caller stored by WithCaller, or the zero
// Caller.
func CallerFromContext(ctx context.Context) core.Caller {
	caller, _ := ctx.Value(contextKey{}).(core.Caller)
	return caller
}
