package models

import (
	"strings"
	"time"
)

// Role представляет роль пользователя в системе мониторинга техники.
// Пустое значение означает пользователя без роли (доступа к данным нет,
// если он не суперпользователь).
type Role string

const (
	RoleClient  Role = "client"  // Клиент (владелец техники)
	RoleService Role = "service" // Сервисная организация
	RoleManager Role = "manager" // Менеджер
	RoleNone    Role = ""        // Без роли
)

// Valid проверяет, что роль входит в закрытый набор допустимых значений
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleService, RoleManager, RoleNone:
		return true
	}
	return false
}

// User представляет модель пользователя в системе
type User struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Основные поля
	Username string `json:"username" gorm:"uniqueIndex;not null;type:varchar(150)"`
	Email    string `json:"email" gorm:"type:varchar(254)"`
	Password string `json:"-" gorm:"not null"` // bcrypt-хэш, не возвращается в JSON

	FirstName string `json:"first_name" gorm:"type:varchar(150)"`
	LastName  string `json:"last_name" gorm:"type:varchar(150)"`

	// Роль назначается один раз при создании пользователя
	Role Role `json:"role" gorm:"type:varchar(20);index"`

	IsStaff     bool `json:"is_staff" gorm:"default:false"`
	IsSuperuser bool `json:"is_superuser" gorm:"default:false"`
	IsActive    bool `json:"is_active" gorm:"default:true"`

	// Профили для отображаемых названий (могут отсутствовать)
	ClientProfile  *ClientProfile              `json:"client_profile,omitempty" gorm:"foreignKey:UserID"`
	ServiceProfile *ServiceOrganizationProfile `json:"service_profile,omitempty" gorm:"foreignKey:UserID"`
}

// TableName задает имя таблицы для модели User
func (User) TableName() string {
	return "users"
}

// IsClient проверяет, является ли пользователь клиентом
func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// IsServiceOrganization проверяет, является ли пользователь сервисной организацией
func (u *User) IsServiceOrganization() bool {
	return u.Role == RoleService
}

// IsManager проверяет, является ли пользователь менеджером
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// DisplayName возвращает отображаемое имя пользователя: название компании или
// организации из профиля, иначе имя и фамилию, иначе логин
func (u *User) DisplayName() string {
	if u.ClientProfile != nil && u.ClientProfile.CompanyName != "" {
		return u.ClientProfile.CompanyName
	}
	if u.ServiceProfile != nil && u.ServiceProfile.OrganizationName != "" {
		return u.ServiceProfile.OrganizationName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}

// ClientProfile представляет профиль клиента (связь один-к-одному с User)
type ClientProfile struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID      uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	CompanyName string `json:"company_name" gorm:"not null;type:varchar(255)"`
}

// TableName задает имя таблицы для модели ClientProfile
func (ClientProfile) TableName() string {
	return "client_profiles"
}

// ServiceOrganizationProfile представляет профиль сервисной организации
type ServiceOrganizationProfile struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID           uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	OrganizationName string `json:"organization_name" gorm:"not null;type:varchar(255)"`
}

// TableName задает имя таблицы для модели ServiceOrganizationProfile
func (ServiceOrganizationProfile) TableName() string {
	return "service_organization_profiles"
}
