package models

import "time"

// Справочники системы. Каждая запись справочника содержит название и
// описание; названия уникальны в пределах своего справочника. Записи
// справочников используются машинами, ТО и рекламациями по внешнему ключу
// и не подчиняются ролевой фильтрации.

// TechniqueModel представляет справочник моделей техники
type TechniqueModel struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
}

// TableName задает имя таблицы для модели TechniqueModel
func (TechniqueModel) TableName() string {
	return "technique_models"
}

// EngineModel представляет справочник моделей двигателей
type EngineModel struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
}

// TableName задает имя таблицы для модели EngineModel
func (EngineModel) TableName() string {
	return "engine_models"
}

// TransmissionModel представляет справочник моделей трансмиссий
type TransmissionModel struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
}

// TableName задает имя таблицы для модели TransmissionModel
func (TransmissionModel) TableName() string {
	return "transmission_models"
}

// DriveAxleModel представляет справочник моделей ведущих мостов
type DriveAxleModel struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
}

// TableName задает имя таблицы для модели DriveAxleModel
func (DriveAxleModel) TableName() string {
	return "drive_axle_models"
}

// SteerAxleModel представляет справочник моделей управляемых мостов
type SteerAxleModel struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
}

// TableName задает имя таблицы для модели SteerAxleModel
func (SteerAxleModel) TableName() string {
	return "steer_axle_models"
}

// MaintenanceType представляет справочник видов технического обслуживания
type MaintenanceType struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
}

// TableName задает имя таблицы для модели MaintenanceType
func (MaintenanceType) TableName() string {
	return "maintenance_types"
}

// FailureNode представляет справочник узлов отказа
type FailureNode struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
}

// TableName задает имя таблицы для модели FailureNode
func (FailureNode) TableName() string {
	return "failure_nodes"
}

// RecoveryMethod представляет справочник способов восстановления
type RecoveryMethod struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
}

// TableName задает имя таблицы для модели RecoveryMethod
func (RecoveryMethod) TableName() string {
	return "recovery_methods"
}

// ServiceCompany представляет справочник сервисных компаний
type ServiceCompany struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
}

// TableName задает имя таблицы для модели ServiceCompany
func (ServiceCompany) TableName() string {
	return "service_companies"
}

// Directory представляет универсальный справочник, где записи разных
// сущностей различаются полем entity_name. Название уникально в пределах
// одной сущности.
type Directory struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	EntityName  string    `json:"entity_name" gorm:"not null;index;type:varchar(100);uniqueIndex:idx_directory_entity_name"`
	Name        string    `json:"name" gorm:"not null;type:varchar(255);uniqueIndex:idx_directory_entity_name"`
	Description string    `json:"description" gorm:"type:text"`
}

// TableName задает имя таблицы для модели Directory
func (Directory) TableName() string {
	return "directories"
}
