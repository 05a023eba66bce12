package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess is the only token type accepted inside a session vault
const TokenTypeAccess = "access"

// Claims represents the access token claims embedded in session vaults
type Claims struct {
	Type     string `json:"type"`
	TenantID RawID  `json:"tenant_id,omitzero"`
	UserID   RawID  `json:"user_id,omitzero"`
	jwt.RegisteredClaims
}

// TokenVerifier validates a signed token and returns its claims
type TokenVerifier interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// JWTService signs and validates HS256 tokens
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a JWT service; ttl applies to access tokens it issues
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// GenerateAccessToken creates an access token for the given principal
func (s *JWTService) GenerateAccessToken(tenantID, userID *int64) (string, error) {
	return s.GenerateToken(TokenTypeAccess, tenantID, userID, s.ttl)
}

// GenerateToken creates a token of an arbitrary type
func (s *JWTService) GenerateToken(tokenType string, tenantID, userID *int64, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("JWT secret not initialized")
	}

	now := s.now()
	claims := Claims{
		Type:     tokenType,
		TenantID: IDPtr(tenantID),
		UserID:   IDPtr(userID),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims.
// Tokens without an expiry are rejected.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("JWT secret not initialized")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
