package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"backend_silant/middleware"
	"backend_silant/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// LoginRequest представляет запрос на вход в систему
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Password string `json:"password" binding:"required,min=3,max=128"`
}

// UserResponse представляет данные пользователя в ответах API
type UserResponse struct {
	ID          uint        `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Role        models.Role `json:"role"`
	DisplayName string      `json:"display_name"`
	IsStaff     bool        `json:"is_staff"`
	IsSuperuser bool        `json:"is_superuser"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   string      `json:"created_at"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		DisplayName: u.DisplayName(),
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}

// Структурированное логирование событий авторизации
func logAuthOperation(operation, username string, details map[string]interface{}) {
	logData := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"operation": operation,
		"username":  username,
	}
	for key, value := range details {
		logData[key] = value
	}

	logJSON, _ := json.Marshal(logData)
	log.Printf("AUTH_LOG: %s", string(logJSON))
}

// Login проверяет учетные данные и выдает JWT-токен
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Invalid username or password"})
		return
	}

	db := getDB(c)

	var user models.User
	err := db.Preload("ClientProfile").Preload("ServiceProfile").
		Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		logAuthOperation("login_failed", req.Username, map[string]interface{}{
			"reason":     "user_not_found",
			"ip_address": c.ClientIP(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Invalid credentials"})
		return
	}

	if !user.IsActive {
		logAuthOperation("login_failed", req.Username, map[string]interface{}{
			"reason":     "user_inactive",
			"ip_address": c.ClientIP(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logAuthOperation("login_failed", req.Username, map[string]interface{}{
			"reason":     "wrong_password",
			"ip_address": c.ClientIP(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Invalid credentials"})
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to generate token"})
		return
	}

	logAuthOperation("login_success", req.Username, map[string]interface{}{
		"user_id":    user.ID,
		"role":       user.Role,
		"ip_address": c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
		"user":   newUserResponse(&user),
	})
}

// GetMe возвращает текущего аутентифицированного пользователя
func GetMe(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   newUserResponse(user),
	})
}
