package api

import (
	"strconv"
	"time"

	"backend_silant/database"
	"backend_silant/middleware"
	"backend_silant/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// dateLayout — формат дат во входных параметрах и ответах API
const dateLayout = "2006-01-02"

// getDB возвращает базу данных из контекста запроса (устанавливается в
// тестах) или глобальное подключение
func getDB(c *gin.Context) *gorm.DB {
	if v, exists := c.Get("db"); exists {
		if db, ok := v.(*gorm.DB); ok {
			return db
		}
	}
	return database.GetDB()
}

// currentUser возвращает текущего пользователя или nil для анонимного запроса
func currentUser(c *gin.Context) *models.User {
	return middleware.GetCurrentUser(c)
}

// pagination извлекает параметры постраничного вывода из запроса
func pagination(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}

// dateFilter применяет фильтр диапазона дат по паре параметров *_from / *_to
func dateFilter(c *gin.Context, query *gorm.DB, param, column string) *gorm.DB {
	if from := c.Query(param + "_from"); from != "" {
		if t, err := time.Parse(dateLayout, from); err == nil {
			query = query.Where(column+" >= ?", t)
		}
	}
	if to := c.Query(param + "_to"); to != "" {
		if t, err := time.Parse(dateLayout, to); err == nil {
			query = query.Where(column+" <= ?", t)
		}
	}
	return query
}

// uintFilter применяет фильтр точного совпадения по внешнему ключу
func uintFilter(c *gin.Context, query *gorm.DB, param, column string) *gorm.DB {
	if v := c.Query(param); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			query = query.Where(column+" = ?", id)
		}
	}
	return query
}

// ordering применяет сортировку из параметра ordering, допускаются только
// колонки из списка allowed; префикс "-" означает сортировку по убыванию
func ordering(c *gin.Context, query *gorm.DB, defaultOrder string, allowed map[string]string) *gorm.DB {
	param := c.DefaultQuery("ordering", defaultOrder)

	desc := false
	if len(param) > 0 && param[0] == '-' {
		desc = true
		param = param[1:]
	}

	column, ok := allowed[param]
	if !ok {
		return query.Order(defaultOrderClause(defaultOrder, allowed))
	}
	if desc {
		return query.Order(column + " DESC")
	}
	return query.Order(column)
}

func defaultOrderClause(defaultOrder string, allowed map[string]string) string {
	desc := false
	if len(defaultOrder) > 0 && defaultOrder[0] == '-' {
		desc = true
		defaultOrder = defaultOrder[1:]
	}
	column := allowed[defaultOrder]
	if desc {
		return column + " DESC"
	}
	return column
}

// formatDate возвращает дату в формате API
func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// formatDatePtr возвращает дату в формате API или nil
func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// parseDate разбирает обязательную дату из строки запроса
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
