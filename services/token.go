package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"medical-app/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by both access and refresh tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and validates JWT access/refresh token pairs.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// CreateTokenPair issues a fresh access and refresh token for the user.
func (ts *TokenService) CreateTokenPair(user *models.User) (*TokenPair, error) {
	expiresAt := time.Now().Add(ts.accessTTL)

	access, err := ts.sign(user, expiresAt, ts.accessSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := ts.sign(user, time.Now().Add(ts.refreshTTL), ts.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

func (ts *TokenService) sign(user *models.User, expiresAt time.Time, secret []byte) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "medical-app",
			Subject:   user.ID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken parses an access token and returns its claims.
func (ts *TokenService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return ts.validate(tokenString, ts.accessSecret)
}

// ValidateRefreshToken parses a refresh token and returns its claims.
func (ts *TokenService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return ts.validate(tokenString, ts.refreshSecret)
}

func (ts *TokenService) validate(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
