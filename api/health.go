package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetStatus возвращает статус системы
func GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"system":  "Silant Backend",
			"version": "1.0.0",
			"health":  "ok",
		},
	})
}

// HealthCheck проверяет работоспособность сервиса и подключение к базе
func HealthCheck(c *gin.Context) {
	dbStatus := "ok"
	sqlDB, err := getDB(c).DB()
	if err != nil || sqlDB.Ping() != nil {
		dbStatus = "unavailable"
	}

	code := http.StatusOK
	if dbStatus != "ok" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": "success",
		"data": gin.H{
			"alive":     true,
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
