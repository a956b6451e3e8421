package models

import "time"

// Machine представляет машину — корневую сущность учета. Через ссылки
// машины на клиента и сервисную организацию определяется видимость всех
// связанных записей (ТО и рекламаций).
type Machine struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Заводской номер машины
	SerialNumber string `json:"serial_number" gorm:"uniqueIndex;not null;type:varchar(50)"`

	// Модели узлов (справочники). Удаление записи справочника каскадно
	// удаляет машины: машина не может существовать с висячей ссылкой.
	TechniqueModelID uint           `json:"technique_model_id" gorm:"not null;index"`
	TechniqueModel   TechniqueModel `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	EngineModelID uint        `json:"engine_model_id" gorm:"not null;index"`
	EngineModel   EngineModel `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	EngineSerial  string      `json:"engine_serial" gorm:"type:varchar(50)"`

	TransmissionModelID uint              `json:"transmission_model_id" gorm:"not null;index"`
	TransmissionModel   TransmissionModel `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	TransmissionSerial  string            `json:"transmission_serial" gorm:"type:varchar(50)"`

	DriveAxleModelID uint           `json:"drive_axle_model_id" gorm:"not null;index"`
	DriveAxleModel   DriveAxleModel `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	DriveAxleSerial  string         `json:"drive_axle_serial" gorm:"type:varchar(50)"`

	SteerAxleModelID uint           `json:"steer_axle_model_id" gorm:"not null;index"`
	SteerAxleModel   SteerAxleModel `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	SteerAxleSerial  string         `json:"steer_axle_serial" gorm:"type:varchar(50)"`

	// Договор поставки, отгрузка и доставка
	SupplyContract  string    `json:"supply_contract" gorm:"type:varchar(200)"`
	ShipmentDate    time.Time `json:"shipment_date" gorm:"not null;index"`
	Consignee       string    `json:"consignee" gorm:"type:varchar(200)"`
	DeliveryAddress string    `json:"delivery_address" gorm:"type:text"`
	Equipment       string    `json:"equipment" gorm:"type:text"`

	// Связи владения. Удаление пользователя обнуляет ссылку:
	// машина переживает удаление владельца.
	ClientID *uint `json:"client_id" gorm:"index"`
	Client   *User `json:"-" gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL"`

	ServiceOrganizationID *uint `json:"service_organization_id" gorm:"index"`
	ServiceOrganization   *User `json:"-" gorm:"foreignKey:ServiceOrganizationID;constraint:OnDelete:SET NULL"`
}

// TableName задает имя таблицы для модели Machine
func (Machine) TableName() string {
	return "machines"
}
