package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

var fixedTime = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newTestJWTService(secret string, lifetime time.Duration, now func() time.Time) *hmacJWTService {
	return &hmacJWTService{
		signingKey:    []byte(secret),
		tokenLifetime: lifetime,
		timeFunc:      now,
		clockSkew:     2 * time.Minute,
	}
}

func at(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetime: time.Hour})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetime: time.Hour})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	svc := newTestJWTService(testSecret, time.Hour, at(fixedTime))

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenFailures(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	issuer := newTestJWTService(testSecret, time.Hour, at(fixedTime))
	token, err := issuer.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	sign := func(claims jwt.Claims, method jwt.SigningMethod) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name      string
		validator *hmacJWTService
		token     string
		wantErr   error
	}{
		{
			name:      "expired beyond clock skew",
			validator: newTestJWTService(testSecret, time.Hour, at(fixedTime.Add(2*time.Hour))),
			token:     token,
			wantErr:   ErrExpiredToken,
		},
		{
			name:      "wrong secret",
			validator: newTestJWTService(wrongSecret, time.Hour, at(fixedTime)),
			token:     token,
			wantErr:   ErrInvalidToken,
		},
		{
			name:      "malformed",
			validator: issuer,
			token:     "not-a-jwt",
			wantErr:   ErrInvalidToken,
		},
		{
			name:      "not yet valid",
			validator: issuer,
			token: sign(jwt.RegisteredClaims{
				Subject:   userID.String(),
				NotBefore: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
				ExpiresAt: jwt.NewNumericDate(fixedTime.Add(2 * time.Hour)),
			}, jwt.SigningMethodHS256),
			wantErr: ErrTokenNotYetValid,
		},
		{
			name:      "other hmac method",
			validator: issuer,
			token: sign(jwt.RegisteredClaims{
				Subject:   userID.String(),
				ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
			}, jwt.SigningMethodHS512),
			wantErr: ErrInvalidToken,
		},
		{
			name:      "no user id",
			validator: issuer,
			token: sign(jwt.RegisteredClaims{
				Subject:   "someone",
				ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
			}, jwt.SigningMethodHS256),
			wantErr: ErrMissingUserID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.validator.ValidateToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateTokenFallsBackToSubject(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	svc := newTestJWTService(testSecret, time.Hour, at(fixedTime))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}
