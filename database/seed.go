package database

import (
	"fmt"
	"log"

	"backend_silant/config"
	"backend_silant/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDefaultSuperuser создает начального суперпользователя, если в базе
// еще нет ни одного пользователя. Логин и пароль берутся из конфигурации
// (ADMIN_USERNAME / ADMIN_PASSWORD); при пустом пароле суперпользователь
// не создается.
func SeedDefaultSuperuser(db *gorm.DB) error {
	cfg := config.GetConfig()

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("не удалось проверить таблицу пользователей: %w", err)
	}
	if count > 0 {
		return nil
	}

	if cfg.Admin.Password == "" {
		log.Println("⚠️  ADMIN_PASSWORD не задан, начальный суперпользователь не создан")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("не удалось захэшировать пароль суперпользователя: %w", err)
	}

	admin := models.User{
		Username:    cfg.Admin.Username,
		Password:    string(hash),
		IsStaff:     true,
		IsSuperuser: true,
		IsActive:    true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("не удалось создать суперпользователя: %w", err)
	}

	log.Printf("✅ Создан начальный суперпользователь '%s'", admin.Username)
	return nil
}
