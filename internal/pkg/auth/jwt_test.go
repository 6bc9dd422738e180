package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

func newTestJWTService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: 24 * time.Hour,
		TokenIssuer:    "greenleaf-test",
	})
}

func testUser() *models.User {
	return &models.User{ID: "u-1", Email: "a@x.com", RoleType: models.RoleMember}
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()

	token, expiresIn, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)
	assert.Equal(t, int64(86400), expiresIn)

	claims, err := svc.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "MEMBER", claims.RoleType)
	assert.Equal(t, "greenleaf-test", claims.Issuer)
}

func TestExpiredToken(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	token, _, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestWrongSecretRejected(t *testing.T) {
	token, _, err := newTestJWTService().GenerateAccessToken(testUser())
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestMalformedToken(t *testing.T) {
	_, err := newTestJWTService().ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, apperrors.ErrInvalidFormat)

	_, err = newTestJWTService().ValidateAndExtractClaims("")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestNoneAlgorithmRejected(t *testing.T) {
	claims := &Claims{UserID: "u-1", Email: "a@x.com"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	for _, header := range []string{"", "abc.def.ghi", "Basic xyz", "Bearer"} {
		_, err := ExtractBearerToken(header)
		assert.ErrorIs(t, err, apperrors.ErrInvalidFormat, header)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	other, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salt must differ per hash")

	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}
