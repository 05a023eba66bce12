package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)

	token, err := svc.GenerateAccessToken(int64Ptr(9), int64Ptr(3))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, claims.Type)

	tenantID, err := claims.TenantID.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(9), tenantID)

	userID, err := claims.UserID.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), userID)
}

func TestJWTService_OmitsUnsetTenant(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)

	token, err := svc.GenerateAccessToken(nil, int64Ptr(3))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.TenantID.IsZero())
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateAccessToken(int64Ptr(1), nil)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, err := NewJWTService("secret", time.Minute).GenerateAccessToken(int64Ptr(1), nil)
	require.NoError(t, err)

	_, err = NewJWTService("other", time.Minute).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RequiresExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"type": "access"})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Minute).ValidateToken(signed)
	assert.Error(t, err)
}

func TestJWTService_RejectsNonHMAC(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Minute).ValidateToken(signed)
	assert.Error(t, err)
}

func TestJWTService_Uninitialized(t *testing.T) {
	svc := NewJWTService("", time.Minute)

	_, err := svc.GenerateAccessToken(nil, nil)
	assert.Error(t, err)

	_, err = svc.ValidateToken("anything")
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.NoError(t, VerifyPassword("hunter2", hash))
	assert.Error(t, VerifyPassword("wrong", hash))
}
