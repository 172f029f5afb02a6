package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed input, expiry, missing subject. Callers deliberately cannot
// tell the cases apart.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager mints and verifies the signed bearer tokens carrying a single
// subject claim. It is stateless: one process-wide HS256 secret plus the
// clock, nothing else.
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTManager builds a manager. An empty secret is a configuration error
// and is rejected here so the process cannot start with forgeable tokens.
func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt: signing secret is required")
	}
	return &JWTManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// GenerateAccessToken issues a short-lived token for the subject.
func (m *JWTManager) GenerateAccessToken(subject string) (string, time.Time, error) {
	return m.generate(subject, m.accessTTL)
}

// GenerateAccessTokenWithTTL issues an access token with an explicit
// lifetime instead of the configured one.
func (m *JWTManager) GenerateAccessTokenWithTTL(subject string, ttl time.Duration) (string, time.Time, error) {
	return m.generate(subject, ttl)
}

// GenerateRefreshToken issues a long-lived token for the subject.
func (m *JWTManager) GenerateRefreshToken(subject string) (string, time.Time, error) {
	return m.generate(subject, m.refreshTTL)
}

func (m *JWTManager) generate(subject string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
		// A unique id per token guarantees rotation always yields a new
		// string, even for two tokens minted in the same second.
		ID: uuid.NewString(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	return s, exp, err
}

// Verify checks signature and expiry and returns the embedded subject.
func (m *JWTManager) Verify(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
