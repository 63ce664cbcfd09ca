package api

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the client token is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the client token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// ClientTokenConfig holds the signing configuration of client cookies.
type ClientTokenConfig struct {
	SecretKey string
	TTL       time.Duration
	Issuer    string
}

// DefaultClientTokenConfig returns a default configuration.
// In production, the secret key should be loaded from environment variables.
func DefaultClientTokenConfig() ClientTokenConfig {
	return ClientTokenConfig{
		SecretKey: "change-me-channel-board-secret",
		TTL:       30 * 24 * time.Hour,
		Issuer:    "channel-board-demo",
	}
}

// ClientTokenManager signs and verifies the tokens that identify a browser.
// The subject is the client ID under which that browser's slots are stored.
type ClientTokenManager struct {
	config ClientTokenConfig
}

// NewClientTokenManager creates a new ClientTokenManager with the given configuration.
func NewClientTokenManager(config ClientTokenConfig) *ClientTokenManager {
	return &ClientTokenManager{config: config}
}

// Issue signs a token for clientID.
func (m *ClientTokenManager) Issue(clientID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    m.config.Issuer,
		Subject:   clientID,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.SecretKey))
}

// Validate verifies tokenString and returns the client ID it carries.
func (m *ClientTokenManager) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	}, jwt.WithIssuer(m.config.Issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// TTL returns how long issued tokens stay valid.
func (m *ClientTokenManager) TTL() time.Duration {
	return m.config.TTL
}
