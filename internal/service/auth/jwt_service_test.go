package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/loyalty-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestService(t *testing.T, secret string, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(config.AuthConfig{JWTSecret: secret, TokenLifetimeMinutes: 60}, now)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 0})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, testSecret, func() time.Time { return fixedTime })

	t.Run("generates valid token", func(t *testing.T) {
		t.Parallel()

		token, err := svc.GenerateToken(context.Background(), " till-7 ")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "till-7", claims.Subject)
		assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
		assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		t.Parallel()

		_, err := svc.GenerateToken(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrEmptySubject)
	})
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestService(t, testSecret, func() time.Time { return fixedTime })
	token, err := issuer.GenerateToken(context.Background(), "back-office")
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "back-office",
		ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
	})
	foreignToken, err := foreign.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name        string
		token       string
		secret      string
		now         time.Time
		expectedErr error
	}{
		{
			name:   "valid token",
			token:  token,
			secret: testSecret,
			now:    fixedTime.Add(30 * time.Minute),
		},
		{
			name:        "expired token",
			token:       token,
			secret:      testSecret,
			now:         fixedTime.Add(2 * time.Hour),
			expectedErr: ErrExpiredToken,
		},
		{
			name:   "within clock skew",
			token:  token,
			secret: testSecret,
			now:    fixedTime.Add(61 * time.Minute),
		},
		{
			name:        "not yet valid",
			token:       token,
			secret:      testSecret,
			now:         fixedTime.Add(-10 * time.Minute),
			expectedErr: ErrTokenNotYetValid,
		},
		{
			name:        "wrong secret",
			token:       token,
			secret:      "wrong-secret-that-is-long-enough-for-testing",
			now:         fixedTime,
			expectedErr: ErrInvalidToken,
		},
		{
			name:        "malformed token",
			token:       "not.a.token",
			secret:      testSecret,
			now:         fixedTime,
			expectedErr: ErrInvalidToken,
		},
		{
			name:        "wrong issuer",
			token:       foreignToken,
			secret:      testSecret,
			now:         fixedTime,
			expectedErr: ErrInvalidToken,
		},
		{
			name:        "missing token",
			token:       "",
			secret:      testSecret,
			now:         fixedTime,
			expectedErr: ErrMissingToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			now := tt.now
			svc := newTestService(t, tt.secret, func() time.Time { return now })

			claims, err := svc.ValidateToken(context.Background(), tt.token)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "back-office", claims.Subject)
		})
	}
}
