package models

import "time"

// Maintenance представляет запись о проведенном техническом обслуживании
type Maintenance struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MachineID uint    `json:"machine_id" gorm:"not null;index"`
	Machine   Machine `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	// Вид ТО (справочник)
	MaintenanceTypeID uint            `json:"maintenance_type_id" gorm:"not null;index"`
	MaintenanceType   MaintenanceType `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	// Дата проведения ТО и наработка на момент ТО, м/час
	MaintenanceDate time.Time `json:"maintenance_date" gorm:"not null;index"`
	OperatingHours  int       `json:"operating_hours"`

	// Заказ-наряд
	WorkOrderNumber string    `json:"work_order_number" gorm:"type:varchar(100)"`
	WorkOrderDate   time.Time `json:"work_order_date"`

	// Организация, проводившая ТО (свободный текст)
	MaintenanceCompany string `json:"maintenance_company" gorm:"type:varchar(200)"`

	// Сервисная компания (справочник)
	ServiceCompanyID uint           `json:"service_company_id" gorm:"not null;index"`
	ServiceCompany   ServiceCompany `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	// Автор записи. Проставляется сервером один раз при создании и
	// никогда не принимается из тела запроса.
	CreatedByID uint  `json:"created_by_id"`
	CreatedBy   *User `json:"-" gorm:"foreignKey:CreatedByID"`
}

// TableName задает имя таблицы для модели Maintenance
func (Maintenance) TableName() string {
	return "maintenances"
}
