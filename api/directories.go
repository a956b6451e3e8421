package api

import (
	"fmt"
	"net/http"
	"time"

	"backend_silant/models"

	"github.com/gin-gonic/gin"
)

// DirectoryEntry представляет запись любого справочника: у всех девяти
// справочников одинаковая форма (название и описание)
type DirectoryEntry struct {
	ID          uint      `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// DirectoryEntryRequest представляет запрос на создание или обновление
// записи справочника
type DirectoryEntryRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

// referenceUse описывает таблицу и колонку, которые ссылаются на справочник
type referenceUse struct {
	Table  string
	Column string
	Label  string
}

// directoryResource описывает один справочник: путь в API, таблицу
// и места, где его записи используются по внешнему ключу
type directoryResource struct {
	Path   string
	Table  string
	Label  string
	UsedBy []referenceUse
}

// directoryResources — реестр всех справочников системы. Маршруты и
// обработчики для них строятся по этой таблице, а не копируются.
var directoryResources = []directoryResource{
	{
		Path: "technique-models", Table: "technique_models", Label: "Модель техники",
		UsedBy: []referenceUse{{Table: "machines", Column: "technique_model_id", Label: "машинами"}},
	},
	{
		Path: "engine-models", Table: "engine_models", Label: "Модель двигателя",
		UsedBy: []referenceUse{{Table: "machines", Column: "engine_model_id", Label: "машинами"}},
	},
	{
		Path: "transmission-models", Table: "transmission_models", Label: "Модель трансмиссии",
		UsedBy: []referenceUse{{Table: "machines", Column: "transmission_model_id", Label: "машинами"}},
	},
	{
		Path: "drive-axle-models", Table: "drive_axle_models", Label: "Модель ведущего моста",
		UsedBy: []referenceUse{{Table: "machines", Column: "drive_axle_model_id", Label: "машинами"}},
	},
	{
		Path: "steer-axle-models", Table: "steer_axle_models", Label: "Модель управляемого моста",
		UsedBy: []referenceUse{{Table: "machines", Column: "steer_axle_model_id", Label: "машинами"}},
	},
	{
		Path: "maintenance-types", Table: "maintenance_types", Label: "Вид ТО",
		UsedBy: []referenceUse{{Table: "maintenances", Column: "maintenance_type_id", Label: "записями ТО"}},
	},
	{
		Path: "failure-nodes", Table: "failure_nodes", Label: "Узел отказа",
		UsedBy: []referenceUse{{Table: "complaints", Column: "failure_node_id", Label: "рекламациями"}},
	},
	{
		Path: "recovery-methods", Table: "recovery_methods", Label: "Способ восстановления",
		UsedBy: []referenceUse{{Table: "complaints", Column: "recovery_method_id", Label: "рекламациями"}},
	},
	{
		Path: "service-companies", Table: "service_companies", Label: "Сервисная компания",
		UsedBy: []referenceUse{
			{Table: "maintenances", Column: "service_company_id", Label: "записями ТО"},
			{Table: "complaints", Column: "service_company_id", Label: "рекламациями"},
		},
	},
}

// RegisterDirectoryRoutes регистрирует CRUD-маршруты всех справочников.
// Чтение открыто всем, запись — менеджеру и суперпользователю.
func RegisterDirectoryRoutes(public, protected *gin.RouterGroup) {
	for _, res := range directoryResources {
		res := res // копия для замыканий

		public.GET("/"+res.Path, func(c *gin.Context) { listDirectoryEntries(c, res) })
		public.GET("/"+res.Path+"/:id", func(c *gin.Context) { getDirectoryEntry(c, res) })

		protected.POST("/"+res.Path, func(c *gin.Context) { createDirectoryEntry(c, res) })
		protected.PUT("/"+res.Path+"/:id", func(c *gin.Context) { updateDirectoryEntry(c, res) })
		protected.DELETE("/"+res.Path+"/:id", func(c *gin.Context) { deleteDirectoryEntry(c, res) })
	}
}

// listDirectoryEntries возвращает записи справочника с поиском по названию
func listDirectoryEntries(c *gin.Context, res directoryResource) {
	db := getDB(c)
	page, limit, offset := pagination(c)

	query := db.Table(res.Table)
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to count entries: " + err.Error()})
		return
	}

	var entries []DirectoryEntry
	if err := query.Order("name").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to fetch entries: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   entries,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// getDirectoryEntry возвращает запись справочника по ID
func getDirectoryEntry(c *gin.Context, res directoryResource) {
	db := getDB(c)

	var entry DirectoryEntry
	err := db.Table(res.Table).Where("id = ?", c.Param("id")).First(&entry).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": res.Label + ": запись не найдена"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": entry})
}

// createDirectoryEntry создает запись справочника
func createDirectoryEntry(c *gin.Context, res directoryResource) {
	if requireManager(c) == nil {
		return
	}
	db := getDB(c)

	var req DirectoryEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Invalid request data: " + err.Error()})
		return
	}

	// Названия уникальны в пределах справочника
	var count int64
	if err := db.Table(res.Table).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to check name uniqueness: " + err.Error()})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "error": res.Label + " с таким названием уже существует"})
		return
	}

	now := time.Now()
	entry := DirectoryEntry{Name: req.Name, Description: req.Description, CreatedAt: now, UpdatedAt: now}
	if err := db.Table(res.Table).Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to create entry: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": entry})
}

// updateDirectoryEntry обновляет запись справочника
func updateDirectoryEntry(c *gin.Context, res directoryResource) {
	if requireManager(c) == nil {
		return
	}
	db := getDB(c)

	var entry DirectoryEntry
	if err := db.Table(res.Table).Where("id = ?", c.Param("id")).First(&entry).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": res.Label + ": запись не найдена"})
		return
	}

	var req DirectoryEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Invalid request data: " + err.Error()})
		return
	}

	var count int64
	err := db.Table(res.Table).Where("name = ? AND id <> ?", req.Name, entry.ID).Count(&count).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to check name uniqueness: " + err.Error()})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "error": res.Label + " с таким названием уже существует"})
		return
	}

	entry.Name = req.Name
	entry.Description = req.Description
	entry.UpdatedAt = time.Now()

	if err := db.Table(res.Table).Where("id = ?", entry.ID).Updates(map[string]interface{}{
		"name":        entry.Name,
		"description": entry.Description,
		"updated_at":  entry.UpdatedAt,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to update entry: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": entry})
}

// deleteDirectoryEntry удаляет запись справочника. Запись, на которую еще
// ссылаются машины, ТО или рекламации, не удаляется — возвращается конфликт,
// а не тихое каскадное удаление.
func deleteDirectoryEntry(c *gin.Context, res directoryResource) {
	if requireManager(c) == nil {
		return
	}
	db := getDB(c)

	var entry DirectoryEntry
	if err := db.Table(res.Table).Where("id = ?", c.Param("id")).First(&entry).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": res.Label + ": запись не найдена"})
		return
	}

	for _, use := range res.UsedBy {
		var count int64
		err := db.Table(use.Table).Where(use.Column+" = ?", entry.ID).Count(&count).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to check references: " + err.Error()})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{
				"status": "error",
				"error":  fmt.Sprintf("%s '%s' используется %s (%d), удаление невозможно", res.Label, entry.Name, use.Label, count),
			})
			return
		}
	}

	if err := db.Table(res.Table).Where("id = ?", entry.ID).Delete(&DirectoryEntry{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to delete entry: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// GetDirectories возвращает записи универсального справочника с фильтром
// по имени сущности
func GetDirectories(c *gin.Context) {
	db := getDB(c)
	page, limit, offset := pagination(c)

	query := db.Model(&models.Directory{})
	if entity := c.Query("entity_name"); entity != "" {
		query = query.Where("entity_name = ?", entity)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to count directories: " + err.Error()})
		return
	}

	var directories []models.Directory
	if err := query.Order("entity_name, name").Offset(offset).Limit(limit).Find(&directories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to fetch directories: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   directories,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// CreateDirectory создает запись универсального справочника
func CreateDirectory(c *gin.Context) {
	if requireManager(c) == nil {
		return
	}
	db := getDB(c)

	var req struct {
		EntityName  string `json:"entity_name" binding:"required,max=100"`
		Name        string `json:"name" binding:"required,max=255"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Invalid request data: " + err.Error()})
		return
	}

	// Название уникально в пределах одной сущности
	var count int64
	err := db.Model(&models.Directory{}).
		Where("entity_name = ? AND name = ?", req.EntityName, req.Name).
		Count(&count).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to check name uniqueness: " + err.Error()})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "error": "Запись справочника с таким названием уже существует"})
		return
	}

	directory := models.Directory{
		EntityName:  req.EntityName,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := db.Create(&directory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to create directory: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": directory})
}
