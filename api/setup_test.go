package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"backend_silant/models"
	"backend_silant/testutils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestAPI создает роутер со всеми маршрутами API поверх тестовой базы.
// База и пользователь кладутся в контекст каждого запроса, поэтому тесты
// не зависят от глобального подключения и JWT-токенов.
func setupTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	// Пользователь подставляется в контекст из пакетной переменной,
	// которую выставляет doRequest. Это заменяет JWT-middleware в тестах.
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("db", db)
		if testUser != nil {
			c.Set("user", testUser)
		}
		c.Next()
	})

	api := r.Group("/api")

	api.POST("/auth/login", Login)
	api.GET("/auth/me", GetMe)

	api.GET("/users", GetUsers)
	api.GET("/users/:id", GetUser)
	api.POST("/users", CreateUser)
	api.PUT("/users/:id", UpdateUser)

	api.GET("/machines", GetMachines)
	api.GET("/machines/search", SearchMachineBySerial)
	api.GET("/machines/:id", GetMachine)
	api.POST("/machines", CreateMachine)
	api.POST("/machines/import", ImportMachines)
	api.PUT("/machines/:id", UpdateMachine)
	api.DELETE("/machines/:id", DeleteMachine)

	api.GET("/maintenances", GetMaintenances)
	api.GET("/maintenances/:id", GetMaintenance)
	api.POST("/maintenances", CreateMaintenance)
	api.PUT("/maintenances/:id", UpdateMaintenance)
	api.DELETE("/maintenances/:id", DeleteMaintenance)

	api.GET("/complaints", GetComplaints)
	api.GET("/complaints/:id", GetComplaint)
	api.POST("/complaints", CreateComplaint)
	api.PUT("/complaints/:id", UpdateComplaint)
	api.DELETE("/complaints/:id", DeleteComplaint)

	directories := api.Group("/directories")
	RegisterDirectoryRoutes(directories, directories)
	api.GET("/directories", GetDirectories)
	api.POST("/directories", CreateDirectory)

	return r, db
}

// doRequest выполняет запрос от имени пользователя (nil для анонимного)
// и возвращает рекордер и разобранный JSON-ответ
func doRequest(t *testing.T, r *gin.Engine, user *models.User, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	testUser = user
	r.ServeHTTP(w, req)
	testUser = nil

	response := map[string]interface{}{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

// testUser — пользователь текущего тестового запроса, nil для анонимного
var testUser *models.User

// itoa форматирует ID для подстановки в путь запроса
func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
