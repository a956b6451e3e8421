package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend_silant/config"
	"backend_silant/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	_, err := config.LoadConfig()
	require.NoError(t, err)

	user := &models.User{
		ID:       42,
		Username: "fpk21",
		Role:     models.RoleService,
	}

	token, err := GenerateToken(user)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "fpk21", claims.Username)
	assert.Equal(t, models.RoleService, claims.Role)
}

func TestParseTokenRejectsForged(t *testing.T) {
	_, err := config.LoadConfig()
	require.NoError(t, err)

	// Токен с чужим секретом
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1})
	signed, err := forged.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	_, err = ParseToken(signed)
	assert.Error(t, err)

	// Истекший токен
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err = expired.SignedString(config.GetConfig().JWTSecret())
	require.NoError(t, err)

	_, err = ParseToken(signed)
	assert.Error(t, err)

	// Мусор вместо токена
	_, err = ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"Bearer-префикс", "Bearer abc123", "abc123"},
		{"Token-префикс", "Token abc123", "abc123"},
		{"Без префикса", "abc123", "abc123"},
		{"Пустой заголовок", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request, _ = http.NewRequest("GET", "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.expected, extractToken(c))
		})
	}
}
