package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge/internal/shared/authorization"
	"github.com/examforge/examforge/internal/shared/biztime"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTService_RoundTrip(t *testing.T) {
	clock := biztime.NewFixedClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := NewJWTService(testSecret, 60, clock)

	token, exp, err := svc.Generate(42, "asha@example.com", authorization.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(time.Hour), exp)

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, authorization.RoleAdmin, claims.Role)
}

func TestJWTService_Rejects(t *testing.T) {
	clock := biztime.NewFixedClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := NewJWTService(testSecret, 60, clock)

	valid, _, err := svc.Generate(7, "", authorization.RoleUser)
	require.NoError(t, err)

	other := NewJWTService("ffffffffffffffffffffffffffffffff", 60, clock)
	foreign, _, err := other.Generate(7, "", authorization.RoleUser)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", Subject: "7"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := biztime.NewFixedClock(clock.Now().Add(2 * time.Hour))
		_, err := NewJWTService(testSecret, 60, later).Verify(valid)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "other secret", token: foreign},
		{name: "missing subject", token: noSubject},
		{name: "wrong issuer", token: wrongIssuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
