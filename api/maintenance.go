package api

import (
	"net/http"

	"backend_silant/access"
	"backend_silant/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MaintenanceResponse представляет запись ТО с разрешенными названиями
// справочников и машины
type MaintenanceResponse struct {
	ID uint `json:"id"`

	MachineID     uint   `json:"machine_id"`
	MachineSerial string `json:"machine_serial"`
	MachineModel  string `json:"machine_model"`

	MaintenanceTypeID   uint   `json:"maintenance_type_id"`
	MaintenanceTypeName string `json:"maintenance_type_name"`

	MaintenanceDate string `json:"maintenance_date"`
	OperatingHours  int    `json:"operating_hours"`

	WorkOrderNumber string `json:"work_order_number"`
	WorkOrderDate   string `json:"work_order_date"`

	MaintenanceCompany string `json:"maintenance_company"`

	ServiceCompanyID   uint   `json:"service_company_id"`
	ServiceCompanyName string `json:"service_company_name"`

	CreatedByID uint `json:"created_by_id"`
}

func newMaintenanceResponse(m *models.Maintenance) MaintenanceResponse {
	return MaintenanceResponse{
		ID:                  m.ID,
		MachineID:           m.MachineID,
		MachineSerial:       m.Machine.SerialNumber,
		MachineModel:        m.Machine.TechniqueModel.Name,
		MaintenanceTypeID:   m.MaintenanceTypeID,
		MaintenanceTypeName: m.MaintenanceType.Name,
		MaintenanceDate:     formatDate(m.MaintenanceDate),
		OperatingHours:      m.OperatingHours,
		WorkOrderNumber:     m.WorkOrderNumber,
		WorkOrderDate:       formatDate(m.WorkOrderDate),
		MaintenanceCompany:  m.MaintenanceCompany,
		ServiceCompanyID:    m.ServiceCompanyID,
		ServiceCompanyName:  m.ServiceCompany.Name,
		CreatedByID:         m.CreatedByID,
	}
}

// maintenancePreloads подгружает машину и справочники записи ТО
func maintenancePreloads(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Machine").
		Preload("Machine.TechniqueModel").
		Preload("MaintenanceType").
		Preload("ServiceCompany")
}

var maintenanceOrderColumns = map[string]string{
	"maintenance_date": "maintenances.maintenance_date",
	"operating_hours":  "maintenances.operating_hours",
	"machine_serial":   "machines.serial_number",
}

// GetMaintenances возвращает записи ТО, видимые пользователю
func GetMaintenances(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	page, limit, offset := pagination(c)

	query := access.Scope(db.Model(&models.Maintenance{}), user, access.Maintenances)

	// Фильтр по номеру машины и сортировка по нему требуют join до
	// machines; при клиентской и сервисной области видимости он уже есть
	serial := c.Query("machine_serial")
	orderParam := c.DefaultQuery("ordering", "-maintenance_date")
	needMachines := serial != "" || orderParam == "machine_serial" || orderParam == "-machine_serial"
	if needMachines && !access.JoinsMachines(user, access.Maintenances) {
		query = query.Joins(access.Maintenances.MachineJoin)
	}

	query = uintFilter(c, query, "maintenance_type", "maintenances.maintenance_type_id")
	query = uintFilter(c, query, "service_company", "maintenances.service_company_id")
	query = uintFilter(c, query, "machine", "maintenances.machine_id")

	if serial != "" {
		query = query.Where("machines.serial_number LIKE ?", "%"+serial+"%")
	}

	// Поиск по заказ-наряду и организации, проводившей ТО
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"maintenances.work_order_number LIKE ? OR maintenances.maintenance_company LIKE ?",
			pattern, pattern,
		)
	}

	query = dateFilter(c, query, "maintenance_date", "maintenances.maintenance_date")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to count maintenances: " + err.Error()})
		return
	}

	query = ordering(c, query, "-maintenance_date", maintenanceOrderColumns)

	var maintenances []models.Maintenance
	if err := maintenancePreloads(query).Offset(offset).Limit(limit).Find(&maintenances).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to fetch maintenances: " + err.Error()})
		return
	}

	responses := make([]MaintenanceResponse, 0, len(maintenances))
	for i := range maintenances {
		responses = append(responses, newMaintenanceResponse(&maintenances[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   responses,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// GetMaintenance возвращает запись ТО по ID
func GetMaintenance(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	var maintenance models.Maintenance
	if err := maintenancePreloads(db).First(&maintenance, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Запись ТО не найдена"})
		return
	}

	if !access.CanView(user, access.Maintenances, &maintenance.Machine) {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "error": "Нет доступа к данной записи ТО"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": newMaintenanceResponse(&maintenance)})
}

// MaintenanceRequest представляет запрос на создание или обновление
// записи ТО. Поле created_by из запроса никогда не читается.
type MaintenanceRequest struct {
	MachineID          uint   `json:"machine_id" binding:"required,min=1"`
	MaintenanceTypeID  uint   `json:"maintenance_type_id" binding:"required,min=1"`
	MaintenanceDate    string `json:"maintenance_date" binding:"required"`
	OperatingHours     int    `json:"operating_hours" binding:"min=0"`
	WorkOrderNumber    string `json:"work_order_number" binding:"max=100"`
	WorkOrderDate      string `json:"work_order_date"`
	MaintenanceCompany string `json:"maintenance_company" binding:"max=200"`
	ServiceCompanyID   uint   `json:"service_company_id" binding:"required,min=1"`
}

// CreateMaintenance создает запись ТО. Клиент может создавать ТО только
// для своих машин, сервисная организация — для обслуживаемых. Автор
// записи проставляется сервером.
func CreateMaintenance(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Invalid request data: " + err.Error()})
		return
	}

	var machine models.Machine
	if err := db.First(&machine, req.MachineID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Машина не найдена"})
		return
	}

	if err := access.CanCreate(user, access.Maintenances, &machine); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	maintenanceDate, err := parseDate(req.MaintenanceDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Неверный формат даты проведения ТО, ожидается YYYY-MM-DD"})
		return
	}
	workOrderDate := maintenanceDate
	if req.WorkOrderDate != "" {
		if workOrderDate, err = parseDate(req.WorkOrderDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Неверный формат даты заказ-наряда, ожидается YYYY-MM-DD"})
			return
		}
	}

	maintenance := models.Maintenance{
		MachineID:          req.MachineID,
		MaintenanceTypeID:  req.MaintenanceTypeID,
		MaintenanceDate:    maintenanceDate,
		OperatingHours:     req.OperatingHours,
		WorkOrderNumber:    req.WorkOrderNumber,
		WorkOrderDate:      workOrderDate,
		MaintenanceCompany: req.MaintenanceCompany,
		ServiceCompanyID:   req.ServiceCompanyID,
		CreatedByID:        user.ID,
	}

	if err := db.Create(&maintenance).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to create maintenance: " + err.Error()})
		return
	}

	if err := maintenancePreloads(db).First(&maintenance, maintenance.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to reload maintenance: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": newMaintenanceResponse(&maintenance)})
}

// UpdateMaintenance обновляет запись ТО в пределах прав роли
func UpdateMaintenance(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	var maintenance models.Maintenance
	if err := db.Preload("Machine").First(&maintenance, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Запись ТО не найдена"})
		return
	}

	if err := access.CanModify(user, access.Maintenances, &maintenance.Machine); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "error": err.Error()})
		return
	}

	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Invalid request data: " + err.Error()})
		return
	}

	// Перенос записи на другую машину проверяется по правам на целевую машину
	if req.MachineID != maintenance.MachineID {
		var target models.Machine
		if err := db.First(&target, req.MachineID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Машина не найдена"})
			return
		}
		if err := access.CanCreate(user, access.Maintenances, &target); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
			return
		}
		maintenance.MachineID = req.MachineID
	}

	maintenanceDate, err := parseDate(req.MaintenanceDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Неверный формат даты проведения ТО, ожидается YYYY-MM-DD"})
		return
	}
	if req.WorkOrderDate != "" {
		if maintenance.WorkOrderDate, err = parseDate(req.WorkOrderDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Неверный формат даты заказ-наряда, ожидается YYYY-MM-DD"})
			return
		}
	}

	maintenance.MaintenanceTypeID = req.MaintenanceTypeID
	maintenance.MaintenanceDate = maintenanceDate
	maintenance.OperatingHours = req.OperatingHours
	maintenance.WorkOrderNumber = req.WorkOrderNumber
	maintenance.MaintenanceCompany = req.MaintenanceCompany
	maintenance.ServiceCompanyID = req.ServiceCompanyID
	// created_by не меняется после создания

	if err := db.Save(&maintenance).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to update maintenance: " + err.Error()})
		return
	}

	if err := maintenancePreloads(db).First(&maintenance, maintenance.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to reload maintenance: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": newMaintenanceResponse(&maintenance)})
}

// DeleteMaintenance удаляет запись ТО в пределах прав роли
func DeleteMaintenance(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	var maintenance models.Maintenance
	if err := db.Preload("Machine").First(&maintenance, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Запись ТО не найдена"})
		return
	}

	if err := access.CanModify(user, access.Maintenances, &maintenance.Machine); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "error": err.Error()})
		return
	}

	if err := db.Delete(&maintenance).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to delete maintenance: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
