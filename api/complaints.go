package api

import (
	"net/http"

	"backend_silant/access"
	"backend_silant/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ComplaintResponse представляет рекламацию с разрешенными названиями
// справочников. Поле downtime вычисляется при сериализации и отсутствует
// (null) для открытых рекламаций.
type ComplaintResponse struct {
	ID uint `json:"id"`

	MachineID     uint   `json:"machine_id"`
	MachineSerial string `json:"machine_serial"`
	MachineModel  string `json:"machine_model"`

	FailureDate    string `json:"failure_date"`
	OperatingHours int    `json:"operating_hours"`

	FailureNodeID      uint   `json:"failure_node_id"`
	FailureNodeName    string `json:"failure_node_name"`
	FailureDescription string `json:"failure_description"`

	RecoveryMethodID   *uint   `json:"recovery_method_id"`
	RecoveryMethodName *string `json:"recovery_method_name"`
	SpareParts         string  `json:"spare_parts"`
	RecoveryDate       *string `json:"recovery_date"`

	Downtime *int `json:"downtime"`

	ServiceCompanyID   uint   `json:"service_company_id"`
	ServiceCompanyName string `json:"service_company_name"`

	CreatedByID uint `json:"created_by_id"`
}

func newComplaintResponse(cm *models.Complaint) ComplaintResponse {
	resp := ComplaintResponse{
		ID:                 cm.ID,
		MachineID:          cm.MachineID,
		MachineSerial:      cm.Machine.SerialNumber,
		MachineModel:       cm.Machine.TechniqueModel.Name,
		FailureDate:        formatDate(cm.FailureDate),
		OperatingHours:     cm.OperatingHours,
		FailureNodeID:      cm.FailureNodeID,
		FailureNodeName:    cm.FailureNode.Name,
		FailureDescription: cm.FailureDescription,
		RecoveryMethodID:   cm.RecoveryMethodID,
		SpareParts:         cm.SpareParts,
		RecoveryDate:       formatDatePtr(cm.RecoveryDate),
		Downtime:           cm.Downtime(),
		ServiceCompanyID:   cm.ServiceCompanyID,
		ServiceCompanyName: cm.ServiceCompany.Name,
		CreatedByID:        cm.CreatedByID,
	}
	if cm.RecoveryMethod != nil {
		resp.RecoveryMethodName = &cm.RecoveryMethod.Name
	}
	return resp
}

// complaintPreloads подгружает машину и справочники рекламации
func complaintPreloads(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Machine").
		Preload("Machine.TechniqueModel").
		Preload("FailureNode").
		Preload("RecoveryMethod").
		Preload("ServiceCompany")
}

var complaintOrderColumns = map[string]string{
	"failure_date":   "complaints.failure_date",
	"machine_serial": "machines.serial_number",
}

// GetComplaints возвращает рекламации, видимые пользователю
func GetComplaints(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	page, limit, offset := pagination(c)

	query := access.Scope(db.Model(&models.Complaint{}), user, access.Complaints)

	serial := c.Query("machine_serial")
	orderParam := c.DefaultQuery("ordering", "-failure_date")
	needMachines := serial != "" || orderParam == "machine_serial" || orderParam == "-machine_serial"
	if needMachines && !access.JoinsMachines(user, access.Complaints) {
		query = query.Joins(access.Complaints.MachineJoin)
	}

	query = uintFilter(c, query, "failure_node", "complaints.failure_node_id")
	query = uintFilter(c, query, "recovery_method", "complaints.recovery_method_id")
	query = uintFilter(c, query, "service_company", "complaints.service_company_id")
	query = uintFilter(c, query, "machine", "complaints.machine_id")

	if serial != "" {
		query = query.Where("machines.serial_number LIKE ?", "%"+serial+"%")
	}

	// Поиск по описанию отказа
	if search := c.Query("search"); search != "" {
		query = query.Where("complaints.failure_description LIKE ?", "%"+search+"%")
	}

	query = dateFilter(c, query, "failure_date", "complaints.failure_date")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to count complaints: " + err.Error()})
		return
	}

	query = ordering(c, query, "-failure_date", complaintOrderColumns)

	var complaints []models.Complaint
	if err := complaintPreloads(query).Offset(offset).Limit(limit).Find(&complaints).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to fetch complaints: " + err.Error()})
		return
	}

	responses := make([]ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		responses = append(responses, newComplaintResponse(&complaints[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   responses,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// GetComplaint возвращает рекламацию по ID
func GetComplaint(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	var complaint models.Complaint
	if err := complaintPreloads(db).First(&complaint, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Рекламация не найдена"})
		return
	}

	if !access.CanView(user, access.Complaints, &complaint.Machine) {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "error": "Нет доступа к данной рекламации"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": newComplaintResponse(&complaint)})
}

// ComplaintRequest представляет запрос на создание или обновление
// рекламации. Поля downtime и created_by из запроса никогда не читаются:
// первое вычисляется, второе проставляется сервером.
type ComplaintRequest struct {
	MachineID          uint   `json:"machine_id" binding:"required,min=1"`
	FailureDate        string `json:"failure_date" binding:"required"`
	OperatingHours     int    `json:"operating_hours" binding:"min=0"`
	FailureNodeID      uint   `json:"failure_node_id" binding:"required,min=1"`
	FailureDescription string `json:"failure_description"`
	RecoveryMethodID   *uint  `json:"recovery_method_id"`
	SpareParts         string `json:"spare_parts"`
	RecoveryDate       string `json:"recovery_date"`
	ServiceCompanyID   uint   `json:"service_company_id" binding:"required,min=1"`
}

// CreateComplaint создает рекламацию. Клиентам операция запрещена,
// сервисная организация может подавать рекламации только по обслуживаемым
// машинам. Автор записи проставляется сервером.
func CreateComplaint(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	var req ComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Invalid request data: " + err.Error()})
		return
	}

	var machine models.Machine
	if err := db.First(&machine, req.MachineID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Машина не найдена"})
		return
	}

	if err := access.CanCreate(user, access.Complaints, &machine); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	failureDate, err := parseDate(req.FailureDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Неверный формат даты отказа, ожидается YYYY-MM-DD"})
		return
	}

	complaint := models.Complaint{
		MachineID:          req.MachineID,
		FailureDate:        failureDate,
		OperatingHours:     req.OperatingHours,
		FailureNodeID:      req.FailureNodeID,
		FailureDescription: req.FailureDescription,
		RecoveryMethodID:   req.RecoveryMethodID,
		SpareParts:         req.SpareParts,
		ServiceCompanyID:   req.ServiceCompanyID,
		CreatedByID:        user.ID,
	}

	if req.RecoveryDate != "" {
		recoveryDate, err := parseDate(req.RecoveryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Неверный формат даты восстановления, ожидается YYYY-MM-DD"})
			return
		}
		if recoveryDate.Before(failureDate) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Дата восстановления не может быть раньше даты отказа"})
			return
		}
		complaint.RecoveryDate = &recoveryDate
	}

	if err := db.Create(&complaint).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to create complaint: " + err.Error()})
		return
	}

	if err := complaintPreloads(db).First(&complaint, complaint.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to reload complaint: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": newComplaintResponse(&complaint)})
}

// UpdateComplaint обновляет рекламацию в пределах прав роли
func UpdateComplaint(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	var complaint models.Complaint
	if err := db.Preload("Machine").First(&complaint, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Рекламация не найдена"})
		return
	}

	if err := access.CanModify(user, access.Complaints, &complaint.Machine); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "error": err.Error()})
		return
	}

	var req ComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Invalid request data: " + err.Error()})
		return
	}

	if req.MachineID != complaint.MachineID {
		var target models.Machine
		if err := db.First(&target, req.MachineID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Машина не найдена"})
			return
		}
		if err := access.CanCreate(user, access.Complaints, &target); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
			return
		}
		complaint.MachineID = req.MachineID
	}

	failureDate, err := parseDate(req.FailureDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Неверный формат даты отказа, ожидается YYYY-MM-DD"})
		return
	}

	complaint.FailureDate = failureDate
	complaint.OperatingHours = req.OperatingHours
	complaint.FailureNodeID = req.FailureNodeID
	complaint.FailureDescription = req.FailureDescription
	complaint.RecoveryMethodID = req.RecoveryMethodID
	complaint.SpareParts = req.SpareParts
	complaint.ServiceCompanyID = req.ServiceCompanyID
	// created_by не меняется после создания

	complaint.RecoveryDate = nil
	if req.RecoveryDate != "" {
		recoveryDate, err := parseDate(req.RecoveryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Неверный формат даты восстановления, ожидается YYYY-MM-DD"})
			return
		}
		if recoveryDate.Before(failureDate) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Дата восстановления не может быть раньше даты отказа"})
			return
		}
		complaint.RecoveryDate = &recoveryDate
	}

	if err := db.Save(&complaint).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to update complaint: " + err.Error()})
		return
	}

	if err := complaintPreloads(db).First(&complaint, complaint.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to reload complaint: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": newComplaintResponse(&complaint)})
}

// DeleteComplaint удаляет рекламацию в пределах прав роли
func DeleteComplaint(c *gin.Context) {
	db := getDB(c)
	user := currentUser(c)

	var complaint models.Complaint
	if err := db.Preload("Machine").First(&complaint, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Рекламация не найдена"})
		return
	}

	if err := access.CanModify(user, access.Complaints, &complaint.Machine); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "error": err.Error()})
		return
	}

	if err := db.Delete(&complaint).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to delete complaint: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
