package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenConfig() ClientTokenConfig {
	return ClientTokenConfig{
		SecretKey: "test-secret",
		TTL:       time.Hour,
		Issuer:    "channel-board-demo",
	}
}

func TestClientTokenManager_IssueAndValidate(t *testing.T) {
	m := NewClientTokenManager(testTokenConfig())

	token, err := m.Issue("client-123")
	require.NoError(t, err)

	clientID, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "client-123", clientID)
}

func TestClientTokenManager_Rejects(t *testing.T) {
	m := NewClientTokenManager(testTokenConfig())

	otherSecret := testTokenConfig()
	otherSecret.SecretKey = "other-secret"
	foreign, err := NewClientTokenManager(otherSecret).Issue("client-123")
	require.NoError(t, err)

	otherIssuer := testTokenConfig()
	otherIssuer.Issuer = "someone-else"
	wrongIssuer, err := NewClientTokenManager(otherIssuer).Issue("client-123")
	require.NoError(t, err)

	expiredCfg := testTokenConfig()
	expiredCfg.TTL = -time.Minute
	expired, err := NewClientTokenManager(expiredCfg).Issue("client-123")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:  "channel-board-demo",
		Subject: "client-123",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	emptySubject, err := m.Issue("")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", ErrInvalidToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"wrong secret", foreign, ErrInvalidToken},
		{"wrong issuer", wrongIssuer, ErrInvalidToken},
		{"expired", expired, ErrExpiredToken},
		{"unsigned", noneToken, ErrInvalidToken},
		{"no subject", emptySubject, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Validate(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDefaultClientTokenConfig(t *testing.T) {
	cfg := DefaultClientTokenConfig()
	assert.Equal(t, 30*24*time.Hour, cfg.TTL)
	assert.Equal(t, "channel-board-demo", cfg.Issuer)
	assert.NotEmpty(t, cfg.SecretKey)
}
