package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hikarock/kanban-board-api/internal/models"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by both access and refresh tokens.
type Claims struct {
	UserID    uint64          `json:"user_id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	TokenType TokenType       `json:"type"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() Principal {
	return Principal{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   c.Role,
	}
}

// TokenService issues and verifies HS256-signed tokens. Verification is a
// pure function of the token, the secret, and the clock; nothing is stored
// server-side, so validity cannot be revoked before expiry.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type TokenConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
}

// IssueAccessToken creates a short-lived token for API access.
func (s *TokenService) IssueAccessToken(user *models.User) (string, error) {
	return s.issue(user, TokenTypeAccess, s.accessTTL)
}

// IssueRefreshToken creates a longer-lived token accepted only by Refresh.
func (s *TokenService) IssueRefreshToken(user *models.User) (string, error) {
	return s.issue(user, TokenTypeRefresh, s.refreshTTL)
}

func (s *TokenService) issue(user *models.User, tokenType TokenType, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, rejecting it when the signature is
// invalid, the token is expired, required claims are missing, or the type
// claim does not match the expected use.
func (s *TokenService) Verify(tokenString string, expectedType TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == 0 || claims.TokenType == "" {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// AccessTokenTTL reports the configured access token lifetime, exposed so
// the login response can carry expiry metadata.
func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}
