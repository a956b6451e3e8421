package api

import (
	"net/http"
	"path/filepath"

	"backend_silant/config"
	"backend_silant/services"

	"github.com/gin-gonic/gin"
)

// ExportResource выгружает таблицу машин, ТО или рекламаций в Excel или
// PDF. Выгрузка ограничена областью видимости пользователя.
func ExportResource(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Not authenticated"})
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	if format != "xlsx" && format != "pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Поддерживаются форматы xlsx и pdf"})
		return
	}

	rs := services.NewReportService(getDB(c), config.GetConfig().Reports.Dir)

	var (
		filePath string
		err      error
	)
	switch c.Param("resource") {
	case "machines":
		filePath, err = rs.ExportMachines(user, format)
	case "maintenances":
		filePath, err = rs.ExportMaintenances(user, format)
	case "complaints":
		filePath, err = rs.ExportComplaints(user, format)
	default:
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Неизвестный ресурс для выгрузки"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Failed to generate report: " + err.Error()})
		return
	}

	c.FileAttachment(filePath, filepath.Base(filePath))
}

// ImportMachines загружает машины из Excel-файла. Доступно менеджеру и
// суперпользователю.
func ImportMachines(c *gin.Context) {
	if requireManager(c) == nil {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Файл не передан: " + err.Error()})
		return
	}
	defer file.Close()

	is := services.NewImportService(getDB(c))
	result, err := is.ImportMachines(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Импорт не выполнен: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": result})
}
