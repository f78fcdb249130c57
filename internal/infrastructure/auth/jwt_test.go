package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: time.Hour,
		Issuer:     "hazchem-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	sub := Subject{ID: uuid.New(), Email: "admin@example.com", UserType: 1}

	token, err := svc.Generate(sub)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.NotEmpty(t, token.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)

	claims, err := svc.Validate(token.Value)
	require.NoError(t, err)
	assert.Equal(t, token.ID, claims.ID)
	assert.Equal(t, 1, claims.UserType)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "hazchem-test", claims.Issuer)

	id, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, sub.ID, id)
	assert.InDelta(t, time.Hour.Seconds(), claims.RemainingTTL().Seconds(), 5)
}

func TestJWTService_Generate_RequiresSubject(t *testing.T) {
	_, err := newTestJWTService().Generate(Subject{})
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestJWTService_Validate_Expired(t *testing.T) {
	svc := newTestJWTService()
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.Generate(Subject{ID: uuid.New()})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token.Value)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_Validate_Rejects(t *testing.T) {
	svc := newTestJWTService()
	token, err := svc.Generate(Subject{ID: uuid.New()})
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-characters", Expiration: time.Hour, Issuer: "hazchem-test"})
	foreignIssuer := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Expiration: time.Hour, Issuer: "someone-else"})
	foreign, err := foreignIssuer.Generate(Subject{ID: uuid.New()})
	require.NoError(t, err)

	tests := []struct {
		name  string
		svc   *JWTService
		token string
	}{
		{"garbage", svc, "not-a-token"},
		{"empty", svc, ""},
		{"wrong secret", other, token.Value},
		{"wrong issuer", svc, foreign.Value},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestClaims_RemainingTTL_Expired(t *testing.T) {
	var c Claims
	assert.Zero(t, c.RemainingTTL())
}
