package models

import "time"

// Complaint представляет рекламацию (запись об отказе машины)
type Complaint struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MachineID uint    `json:"machine_id" gorm:"not null;index"`
	Machine   Machine `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	// Дата отказа и наработка на момент отказа, м/час
	FailureDate    time.Time `json:"failure_date" gorm:"not null;index"`
	OperatingHours int       `json:"operating_hours"`

	// Узел отказа (справочник) и описание отказа
	FailureNodeID      uint        `json:"failure_node_id" gorm:"not null;index"`
	FailureNode        FailureNode `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	FailureDescription string      `json:"failure_description" gorm:"type:text"`

	// Способ восстановления (справочник) и использованные запчасти.
	// Отсутствие даты восстановления означает открытую рекламацию.
	RecoveryMethodID *uint           `json:"recovery_method_id" gorm:"index"`
	RecoveryMethod   *RecoveryMethod `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	SpareParts       string          `json:"spare_parts" gorm:"type:text"`
	RecoveryDate     *time.Time      `json:"recovery_date"`

	// Сервисная компания (справочник)
	ServiceCompanyID uint           `json:"service_company_id" gorm:"not null;index"`
	ServiceCompany   ServiceCompany `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	// Автор записи, проставляется сервером при создании
	CreatedByID uint  `json:"created_by_id"`
	CreatedBy   *User `json:"-" gorm:"foreignKey:CreatedByID"`
}

// TableName задает имя таблицы для модели Complaint
func (Complaint) TableName() string {
	return "complaints"
}

// Downtime возвращает время простоя техники в целых сутках между датой
// отказа и датой восстановления. Для открытой рекламации (без даты
// восстановления) возвращается nil. Значение всегда вычисляется и никогда
// не хранится в базе.
func (c *Complaint) Downtime() *int {
	if c.RecoveryDate == nil {
		return nil
	}
	days := int(c.RecoveryDate.Sub(c.FailureDate).Hours() / 24)
	return &days
}
