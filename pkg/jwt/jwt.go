package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Claims is the JWT payload for API tokens
type Claims struct {
	jwt.RegisteredClaims
	UserID   uint64 `json:"user_id"`
	Nickname string `json:"nickname,omitempty"`
	Level    int    `json:"level,omitempty"`
}

// Manager issues and verifies HS256 tokens
type Manager struct {
	secretKey []byte
	expiresIn time.Duration
	refreshIn time.Duration
}

// NewManager creates a JWT manager. expiresIn/refreshIn are in minutes.
func NewManager(secret string, expiresIn, refreshIn int) *Manager {
	return &Manager{
		secretKey: []byte(secret),
		expiresIn: time.Duration(expiresIn) * time.Minute,
		refreshIn: time.Duration(refreshIn) * time.Minute,
	}
}

// GenerateToken issues an access token for a user
func (m *Manager) GenerateToken(userID uint64, nickname string, level int) (string, error) {
	return m.generate(userID, nickname, level, m.expiresIn)
}

// GenerateRefreshToken issues a longer-lived refresh token
func (m *Manager) GenerateRefreshToken(userID uint64, nickname string, level int) (string, error) {
	return m.generate(userID, nickname, level, m.refreshIn)
}

func (m *Manager) generate(userID uint64, nickname string, level int, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "annonstorg-backend",
		},
		UserID:   userID,
		Nickname: nickname,
		Level:    level,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken validates a token string and returns its claims
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
