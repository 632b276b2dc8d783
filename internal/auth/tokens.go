package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/openmeet/server/internal/config"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the token type alongside the registered JWT claims.
// Subject holds the user id; ID (jti) is set on refresh tokens only and
// keys the revocation blacklist.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is an access/refresh credential pair bound to one user.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenStore persists revoked refresh tokens.
type TokenStore interface {
	// Revoke blacklists a refresh token jti. Returns false when the jti
	// was already blacklisted. Must be atomic: concurrent calls for the
	// same jti yield exactly one true.
	Revoke(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) (bool, error)

	// DeleteExpired removes blacklist rows whose tokens have expired on
	// their own, returning the number of rows removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// TokenManager issues, refreshes, revokes, and verifies token pairs.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      TokenStore
}

func NewTokenManager(cfg config.AuthConfig, store TokenStore) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		store:      store,
	}
}

// Issue creates a fresh pair for the user. Existing pairs are unaffected.
func (m *TokenManager) Issue(userID uuid.UUID) (TokenPair, error) {
	access, err := m.sign(userID, tokenTypeAccess, m.accessTTL, "")
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.sign(userID, tokenTypeRefresh, m.refreshTTL, uuid.NewString())
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new pair. The consumed token is
// blacklisted first; a refresh token is usable exactly once, even under
// concurrent exchange attempts.
func (m *TokenManager) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := m.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}

	consumed, err := m.store.Revoke(ctx, claims.ID, userID, claims.ExpiresAt.Time)
	if err != nil {
		return TokenPair{}, err
	}
	if !consumed {
		return TokenPair{}, ErrInvalidToken
	}

	return m.Issue(userID)
}

// Revoke blacklists a refresh token. Revoking an already blacklisted
// token succeeds; malformed or expired input yields ErrInvalidToken so
// the caller can report it, though the session is dead either way.
func (m *TokenManager) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := m.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ErrInvalidToken
	}

	_, err = m.store.Revoke(ctx, claims.ID, userID, claims.ExpiresAt.Time)
	return err
}

// VerifyAccess validates an access token and returns the user it is
// bound to. Expired, malformed, and refresh-typed tokens are rejected.
func (m *TokenManager) VerifyAccess(accessToken string) (uuid.UUID, error) {
	claims, err := m.parse(accessToken, tokenTypeAccess)
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

func (m *TokenManager) sign(userID uuid.UUID, tokenType string, ttl time.Duration, jti string) (string, error) {
	now := time.Now()
	claims := &Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    m.issuer,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) parse(tokenString, expectedType string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, ErrInvalidToken
	}
	if expectedType == tokenTypeRefresh && claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenFromHeader extracts a bearer token from an Authorization header.
func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
