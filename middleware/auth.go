package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"backend_silant/config"
	"backend_silant/database"
	"backend_silant/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims представляет полезную нагрузку JWT-токена
type Claims struct {
	UserID   uint        `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken подписывает JWT-токен для пользователя
func GenerateToken(user *models.User) (string, error) {
	cfg := config.GetConfig()
	now := time.Now()

	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			Issuer:    cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWT.ExpiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.JWTSecret())
}

// ParseToken проверяет подпись и срок действия токена
func ParseToken(tokenStr string) (*Claims, error) {
	cfg := config.GetConfig()

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return cfg.JWTSecret(), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// RequireAuth middleware для проверки аутентификации. Загружает
// пользователя из базы и помещает его в контекст запроса.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Authorization header is required",
			})
			c.Abort()
			return
		}

		user, err := loadUser(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// OptionalAuth middleware для опциональной аутентификации: при валидном
// токене пользователь помещается в контекст, иначе запрос продолжается
// анонимно (используется для публичного просмотра машин)
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if user, err := loadUser(token); err == nil {
				c.Set("user", user)
			}
		}
		c.Next()
	}
}

// GetCurrentUser возвращает текущего пользователя из контекста или nil
// для неаутентифицированного запроса
func GetCurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get("user"); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// extractToken извлекает токен из заголовка Authorization
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		authHeader = c.GetHeader("authorization")
	}
	if authHeader == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(authHeader, "Bearer "):
		return strings.TrimPrefix(authHeader, "Bearer ")
	case strings.HasPrefix(authHeader, "Token "):
		return strings.TrimPrefix(authHeader, "Token ")
	}
	return authHeader
}

// loadUser проверяет токен и загружает активного пользователя с профилями
func loadUser(token string) (*models.User, error) {
	claims, err := ParseToken(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = database.GetDB().
		Preload("ClientProfile").
		Preload("ServiceProfile").
		First(&user, claims.UserID).Error
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.New("user is not active")
	}
	return &user, nil
}
