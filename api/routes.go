package api

import (
	"backend_silant/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API. Публичная группа работает
// и без токена: аноним видит ограниченную карточку машины и справочники,
// авторизованный пользователь — свою область видимости.
func RegisterRoutes(r *gin.Engine) {
	public := r.Group("/api")
	public.Use(middleware.OptionalAuth())

	protected := r.Group("/api")
	protected.Use(middleware.RequireAuth())

	// Служебные маршруты
	public.GET("/status", GetStatus)
	public.GET("/health", HealthCheck)

	// Аутентификация
	public.POST("/auth/login", Login)
	protected.GET("/auth/me", GetMe)

	// Пользователи (только менеджер и суперпользователь)
	protected.GET("/users", GetUsers)
	protected.GET("/users/:id", GetUser)
	protected.POST("/users", CreateUser)
	protected.PUT("/users/:id", UpdateUser)

	// Машины: чтение открыто, поиск по заводскому номеру доступен анониму
	public.GET("/machines", GetMachines)
	public.GET("/machines/search", SearchMachineBySerial)
	public.GET("/machines/:id", GetMachine)
	protected.POST("/machines", CreateMachine)
	protected.POST("/machines/import", ImportMachines)
	protected.PUT("/machines/:id", UpdateMachine)
	protected.DELETE("/machines/:id", DeleteMachine)

	// Техническое обслуживание
	protected.GET("/maintenances", GetMaintenances)
	protected.GET("/maintenances/:id", GetMaintenance)
	protected.POST("/maintenances", CreateMaintenance)
	protected.PUT("/maintenances/:id", UpdateMaintenance)
	protected.DELETE("/maintenances/:id", DeleteMaintenance)

	// Рекламации
	protected.GET("/complaints", GetComplaints)
	protected.GET("/complaints/:id", GetComplaint)
	protected.POST("/complaints", CreateComplaint)
	protected.PUT("/complaints/:id", UpdateComplaint)
	protected.DELETE("/complaints/:id", DeleteComplaint)

	// Справочники
	directories := public.Group("/directories")
	directoriesWrite := protected.Group("/directories")
	RegisterDirectoryRoutes(directories, directoriesWrite)
	public.GET("/directories", GetDirectories)
	protected.POST("/directories", CreateDirectory)

	// Выгрузка отчетов
	protected.GET("/reports/:resource/export", ExportResource)
}
