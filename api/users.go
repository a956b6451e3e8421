package api

import (
	"net/http"
	"strings"

	"backend_silant/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateUserRequest представляет запрос на создание пользователя.
// Роль назначается один раз при создании; для клиента и сервисной
// организации можно сразу указать отображаемое название — будет создан
// соответствующий профиль.
type CreateUserRequest struct {
	Username    string      `json:"username" binding:"required,min=3,max=150"`
	Email       string      `json:"email" binding:"omitempty,email"`
	Password    string      `json:"password" binding:"required,min=6,max=128"`
	FirstName   string      `json:"first_name" binding:"max=150"`
	LastName    string      `json:"last_name" binding:"max=150"`
	Role        models.Role `json:"role"`
	CompanyName string      `json:"company_name" binding:"max=255"`
}

// UpdateUserRequest представляет запрос на обновление пользователя.
// Роль после создания не меняется.
type UpdateUserRequest struct {
	Email     string `json:"email" binding:"omitempty,email"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	IsActive  *bool  `json:"is_active"`
}

// requireManager пропускает только менеджеров и суперпользователей
func requireManager(c *gin.Context) *models.User {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Not authenticated"})
		return nil
	}
	if !user.IsSuperuser && !user.IsManager() {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "error": "Недостаточно прав для управления пользователями"})
		return nil
	}
	return user
}

// GetUsers возвращает список пользователей с фильтрацией и пагинацией
func GetUsers(c *gin.Context) {
	if requireManager(c) == nil {
		return
	}
	db := getDB(c)

	page, limit, offset := pagination(c)

	query := db.Model(&models.User{}).
		Preload("ClientProfile").
		Preload("ServiceProfile")

	// Фильтр по роли
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	// Поиск по логину, email и имени
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to count users: " + err.Error()})
		return
	}

	var users []models.User
	if err := query.Order("username").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to fetch users: " + err.Error()})
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, newUserResponse(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   responses,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// GetUser возвращает пользователя по ID
func GetUser(c *gin.Context) {
	if requireManager(c) == nil {
		return
	}
	db := getDB(c)

	var user models.User
	err := db.Preload("ClientProfile").Preload("ServiceProfile").
		First(&user, c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Пользователь не найден"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": newUserResponse(&user)})
}

// CreateUser создает пользователя с ролью и профилем
func CreateUser(c *gin.Context) {
	if requireManager(c) == nil {
		return
	}
	db := getDB(c)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Invalid request data: " + err.Error()})
		return
	}

	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Недопустимая роль: " + string(req.Role)})
		return
	}

	var existing models.User
	if err := db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "error": "Пользователь с таким логином уже существует"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hash),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		IsActive:  true,
	}

	// Пользователь и его профиль создаются в одной транзакции
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if req.CompanyName != "" {
			switch req.Role {
			case models.RoleClient:
				profile := models.ClientProfile{UserID: user.ID, CompanyName: req.CompanyName}
				if err := tx.Create(&profile).Error; err != nil {
					return err
				}
				user.ClientProfile = &profile
			case models.RoleService:
				profile := models.ServiceOrganizationProfile{UserID: user.ID, OrganizationName: req.CompanyName}
				if err := tx.Create(&profile).Error; err != nil {
					return err
				}
				user.ServiceProfile = &profile
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to create user: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": newUserResponse(&user)})
}

// UpdateUser обновляет данные пользователя (кроме роли и пароля)
func UpdateUser(c *gin.Context) {
	if requireManager(c) == nil {
		return
	}
	db := getDB(c)

	var user models.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Пользователь не найден"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Invalid request data: " + err.Error()})
		return
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to update user: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": newUserResponse(&user)})
}
