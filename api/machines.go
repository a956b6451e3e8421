package api

import (
	"net/http"
	"time"

	"backend_silant/access"
	"backend_silant/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MachinePublicResponse представляет публичную карточку машины для
// неавторизованных пользователей: только технические характеристики,
// без связей владения, договора и адреса поставки
type MachinePublicResponse struct {
	SerialNumber          string `json:"serial_number"`
	TechniqueModelName    string `json:"technique_model_name"`
	EngineModelName       string `json:"engine_model_name"`
	EngineSerial          string `json:"engine_serial"`
	TransmissionModelName string `json:"transmission_model_name"`
	TransmissionSerial    string `json:"transmission_serial"`
	DriveAxleModelName    string `json:"drive_axle_model_name"`
	DriveAxleSerial       string `json:"drive_axle_serial"`
	SteerAxleModelName    string `json:"steer_axle_model_name"`
	SteerAxleSerial       string `json:"steer_axle_serial"`
}

// MachineResponse представляет полную карточку машины для авторизованных
// пользователей, с разрешенными названиями справочников и владельцев
type MachineResponse struct {
	ID           uint   `json:"id"`
	SerialNumber string `json:"serial_number"`

	TechniqueModelID   uint   `json:"technique_model_id"`
	TechniqueModelName string `json:"technique_model_name"`

	EngineModelID   uint   `json:"engine_model_id"`
	EngineModelName string `json:"engine_model_name"`
	EngineSerial    string `json:"engine_serial"`

	TransmissionModelID   uint   `json:"transmission_model_id"`
	TransmissionModelName string `json:"transmission_model_name"`
	TransmissionSerial    string `json:"transmission_serial"`

	DriveAxleModelID   uint   `json:"drive_axle_model_id"`
	DriveAxleModelName string `json:"drive_axle_model_name"`
	DriveAxleSerial    string `json:"drive_axle_serial"`

	SteerAxleModelID   uint   `json:"steer_axle_model_id"`
	SteerAxleModelName string `json:"steer_axle_model_name"`
	SteerAxleSerial    string `json:"steer_axle_serial"`

	SupplyContract  string `json:"supply_contract"`
	ShipmentDate    string `json:"shipment_date"`
	Consignee       string `json:"consignee"`
	DeliveryAddress string `json:"delivery_address"`
	Equipment       string `json:"equipment"`

	ClientID   *uint  `json:"client_id"`
	ClientName string `json:"client_name"`

	ServiceOrganizationID   *uint  `json:"service_organization_id"`
	ServiceOrganizationName string `json:"service_organization_name"`
}

func newMachinePublicResponse(m *models.Machine) MachinePublicResponse {
	return MachinePublicResponse{
		SerialNumber:          m.SerialNumber,
		TechniqueModelName:    m.TechniqueModel.Name,
		EngineModelName:       m.EngineModel.Name,
		EngineSerial:          m.EngineSerial,
		TransmissionModelName: m.TransmissionModel.Name,
		TransmissionSerial:    m.TransmissionSerial,
		DriveAxleModelName:    m.DriveAxleModel.Name,
		DriveAxleSerial:       m.DriveAxleSerial,
		SteerAxleModelName:    m.SteerAxleModel.Name,
		SteerAxleSerial:       m.SteerAxleSerial,
	}
}

func newMachineResponse(m *models.Machine) MachineResponse {
	resp := MachineResponse{
		ID:                    m.ID,
		SerialNumber:          m.SerialNumber,
		TechniqueModelID:      m.TechniqueModelID,
		TechniqueModelName:    m.TechniqueModel.Name,
		EngineModelID:         m.EngineModelID,
		EngineModelName:       m.EngineModel.Name,
		EngineSerial:          m.EngineSerial,
		TransmissionModelID:   m.TransmissionModelID,
		TransmissionModelName: m.TransmissionModel.Name,
		TransmissionSerial:    m.TransmissionSerial,
		DriveAxleModelID:      m.DriveAxleModelID,
		DriveAxleModelName:    m.DriveAxleModel.Name,
		DriveAxleSerial:       m.DriveAxleSerial,
		SteerAxleModelID:      m.SteerAxleModelID,
		SteerAxleModelName:    m.SteerAxleModel.Name,
		SteerAxleSerial:       m.SteerAxleSerial,
		SupplyContract:        m.SupplyContract,
		ShipmentDate:          formatDate(m.ShipmentDate),
		Consignee:             m.Consignee,
		DeliveryAddress:       m.DeliveryAddress,
		Equipment:             m.Equipment,
		ClientID:              m.ClientID,
		ServiceOrganizationID: m.ServiceOrganizationID,
	}
	if m.Client != nil {
		resp.ClientName = m.Client.DisplayName()
	}
	if m.ServiceOrganization != nil {
		resp.ServiceOrganizationName = m.ServiceOrganization.DisplayName()
	}
	return resp
}

// machinePreloads подгружает справочники и владельцев машины
func machinePreloads(query *gorm.DB) *gorm.DB {
	return query.
		Preload("TechniqueModel").
		Preload("EngineModel").
		Preload("TransmissionModel").
		Preload("DriveAxleModel").
		Preload("SteerAxleModel").
		Preload("Client").
		Preload("Client.ClientProfile").
		Preload("ServiceOrganization").
		Preload("ServiceOrganization.ServiceProfile")
}

var machineOrderColumns = map[string]string{
	"shipment_date": "machines.shipment_date",
	"serial_number": "machines.serial_number",
}

// GetMachines возвращает список машин, видимых пользователю. Анонимные
// пользователи получают публичные карточки, авторизованные — полные.
func GetMachines(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	page, limit, offset := pagination(c)

	query := access.Scope(db.Model(&models.Machine{}), user, access.Machines)

	// Фильтры по справочникам
	query = uintFilter(c, query, "technique_model", "machines.technique_model_id")
	query = uintFilter(c, query, "engine_model", "machines.engine_model_id")
	query = uintFilter(c, query, "transmission_model", "machines.transmission_model_id")
	query = uintFilter(c, query, "drive_axle_model", "machines.drive_axle_model_id")
	query = uintFilter(c, query, "steer_axle_model", "machines.steer_axle_model_id")

	// Поиск по заводскому номеру
	if serial := c.Query("serial_number"); serial != "" {
		query = query.Where("machines.serial_number LIKE ?", "%"+serial+"%")
	}

	// Диапазон дат отгрузки
	query = dateFilter(c, query, "shipment_date", "machines.shipment_date")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to count machines: " + err.Error()})
		return
	}

	query = ordering(c, query, "-shipment_date", machineOrderColumns)

	var machines []models.Machine
	if err := machinePreloads(query).Offset(offset).Limit(limit).Find(&machines).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to fetch machines: " + err.Error()})
		return
	}

	// Неавторизованным — сокращенный набор полей
	if user == nil {
		responses := make([]MachinePublicResponse, 0, len(machines))
		for i := range machines {
			responses = append(responses, newMachinePublicResponse(&machines[i]))
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   responses,
			"total":  total,
			"page":   page,
			"limit":  limit,
		})
		return
	}

	responses := make([]MachineResponse, 0, len(machines))
	for i := range machines {
		responses = append(responses, newMachineResponse(&machines[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   responses,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// GetMachine возвращает машину по ID. Несуществующая машина отдает 404,
// существующая, но невидимая для роли — 403.
func GetMachine(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	var machine models.Machine
	if err := machinePreloads(db).First(&machine, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Машина не найдена"})
		return
	}

	if !access.CanView(user, access.Machines, &machine) {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "error": "Нет доступа к данной машине"})
		return
	}

	if user == nil {
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": newMachinePublicResponse(&machine)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": newMachineResponse(&machine)})
}

// MachineRequest представляет запрос на создание или обновление машины
type MachineRequest struct {
	SerialNumber        string `json:"serial_number" binding:"required,max=50"`
	TechniqueModelID    uint   `json:"technique_model_id" binding:"required,min=1"`
	EngineModelID       uint   `json:"engine_model_id" binding:"required,min=1"`
	EngineSerial        string `json:"engine_serial" binding:"max=50"`
	TransmissionModelID uint   `json:"transmission_model_id" binding:"required,min=1"`
	TransmissionSerial  string `json:"transmission_serial" binding:"max=50"`
	DriveAxleModelID    uint   `json:"drive_axle_model_id" binding:"required,min=1"`
	DriveAxleSerial     string `json:"drive_axle_serial" binding:"max=50"`
	SteerAxleModelID    uint   `json:"steer_axle_model_id" binding:"required,min=1"`
	SteerAxleSerial     string `json:"steer_axle_serial" binding:"max=50"`

	SupplyContract  string `json:"supply_contract" binding:"max=200"`
	ShipmentDate    string `json:"shipment_date" binding:"required"`
	Consignee       string `json:"consignee" binding:"max=200"`
	DeliveryAddress string `json:"delivery_address"`
	Equipment       string `json:"equipment"`

	ClientID              *uint `json:"client_id"`
	ServiceOrganizationID *uint `json:"service_organization_id"`
}

// applyTo переносит данные запроса в модель машины
func (req *MachineRequest) applyTo(m *models.Machine, shipmentDate time.Time) {
	m.SerialNumber = req.SerialNumber
	m.TechniqueModelID = req.TechniqueModelID
	m.EngineModelID = req.EngineModelID
	m.EngineSerial = req.EngineSerial
	m.TransmissionModelID = req.TransmissionModelID
	m.TransmissionSerial = req.TransmissionSerial
	m.DriveAxleModelID = req.DriveAxleModelID
	m.DriveAxleSerial = req.DriveAxleSerial
	m.SteerAxleModelID = req.SteerAxleModelID
	m.SteerAxleSerial = req.SteerAxleSerial
	m.SupplyContract = req.SupplyContract
	m.ShipmentDate = shipmentDate
	m.Consignee = req.Consignee
	m.DeliveryAddress = req.DeliveryAddress
	m.Equipment = req.Equipment
	m.ClientID = req.ClientID
	m.ServiceOrganizationID = req.ServiceOrganizationID
}

// CreateMachine создает машину. Доступно менеджеру и суперпользователю.
func CreateMachine(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	if user == nil || (!user.IsSuperuser && !user.IsManager()) {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "error": "Создавать машины может только менеджер"})
		return
	}

	var req MachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Invalid request data: " + err.Error()})
		return
	}

	shipmentDate, err := parseDate(req.ShipmentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Неверный формат даты отгрузки, ожидается YYYY-MM-DD"})
		return
	}

	var existing models.Machine
	if err := db.Where("serial_number = ?", req.SerialNumber).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "error": "Машина с таким заводским номером уже существует"})
		return
	}

	var machine models.Machine
	req.applyTo(&machine, shipmentDate)

	if err := db.Create(&machine).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to create machine: " + err.Error()})
		return
	}

	if err := machinePreloads(db).First(&machine, machine.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to reload machine: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": newMachineResponse(&machine)})
}

// UpdateMachine обновляет машину. Доступно менеджеру, суперпользователю и
// сервисной организации для обслуживаемых ею машин.
func UpdateMachine(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	var machine models.Machine
	if err := db.First(&machine, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Машина не найдена"})
		return
	}

	if err := access.CanModify(user, access.Machines, &machine); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "error": err.Error()})
		return
	}

	var req MachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Invalid request data: " + err.Error()})
		return
	}

	shipmentDate, err := parseDate(req.ShipmentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Неверный формат даты отгрузки, ожидается YYYY-MM-DD"})
		return
	}

	// Связи владения меняет только менеджер или суперпользователь
	if user.Role == models.RoleService && !user.IsSuperuser {
		req.ClientID = machine.ClientID
		req.ServiceOrganizationID = machine.ServiceOrganizationID
	}

	req.applyTo(&machine, shipmentDate)

	if err := db.Save(&machine).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to update machine: " + err.Error()})
		return
	}

	if err := machinePreloads(db).First(&machine, machine.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to reload machine: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": newMachineResponse(&machine)})
}

// DeleteMachine удаляет машину. Через обычный API машины не удаляются,
// операция оставлена только суперпользователю.
func DeleteMachine(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	if user == nil || !user.IsSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "error": "Удаление машин недоступно"})
		return
	}

	var machine models.Machine
	if err := db.First(&machine, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Машина не найдена"})
		return
	}

	if err := db.Delete(&machine).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to delete machine: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// SearchMachineBySerial ищет машину по точному заводскому номеру.
// Используется неавторизованным экраном проверки техники, поэтому всегда
// возвращает публичные поля.
func SearchMachineBySerial(c *gin.Context) {
	db := getDB(c)

	serial := c.Query("serial")
	if serial == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Параметр serial обязателен"})
		return
	}

	var machine models.Machine
	err := machinePreloads(db).Where("serial_number = ?", serial).First(&machine).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Машина с заводским номером '" + serial + "' не найдена"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": newMachinePublicResponse(&machine)})
}
