package api

import (
	"net/http"
	"testing"

	"backend_silant/models"
	"backend_silant/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUsersManagerOnly(t *testing.T) {
	r, db := setupTestAPI(t)

	manager := testutils.CreateTestUser(db, models.RoleManager)
	client := testutils.CreateTestUser(db, models.RoleClient)

	w, response := doRequest(t, r, manager, "GET", "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, response["data"].([]interface{}), 2)

	// Клиенту список пользователей недоступен
	w, _ = doRequest(t, r, client, "GET", "/api/users", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Анониму — тем более
	w, _ = doRequest(t, r, nil, "GET", "/api/users", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUsersRoleFilter(t *testing.T) {
	r, db := setupTestAPI(t)

	manager := testutils.CreateTestUser(db, models.RoleManager)
	testutils.CreateTestUser(db, models.RoleClient)
	testutils.CreateTestUser(db, models.RoleClient)
	testutils.CreateTestUser(db, models.RoleService)

	w, response := doRequest(t, r, manager, "GET", "/api/users?role=client", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := response["data"].([]interface{})
	assert.Len(t, data, 2)
	for _, item := range data {
		assert.Equal(t, "client", item.(map[string]interface{})["role"])
	}
}

func TestCreateUserWithProfile(t *testing.T) {
	r, db := setupTestAPI(t)

	manager := testutils.CreateTestUser(db, models.RoleManager)

	body := map[string]interface{}{
		"username":     "chtz_client",
		"email":        "client@chtz.example.com",
		"password":     "secret123",
		"role":         "client",
		"company_name": "ООО ЧТЗ",
	}

	w, response := doRequest(t, r, manager, "POST", "/api/users", body)
	require.Equal(t, http.StatusCreated, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "chtz_client", data["username"])
	// Отображаемое имя разрешается через созданный профиль
	assert.Equal(t, "ООО ЧТЗ", data["display_name"])

	var profile models.ClientProfile
	require.NoError(t, db.Where("company_name = ?", "ООО ЧТЗ").First(&profile).Error)

	// Повторный логин — конфликт
	w, _ = doRequest(t, r, manager, "POST", "/api/users", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Недопустимая роль отклоняется
	body["username"] = "another_user"
	body["role"] = "admin"
	w, _ = doRequest(t, r, manager, "POST", "/api/users", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateUser(t *testing.T) {
	r, db := setupTestAPI(t)

	manager := testutils.CreateTestUser(db, models.RoleManager)
	client := testutils.CreateTestUser(db, models.RoleClient)

	inactive := false
	body := map[string]interface{}{
		"first_name": "Иван",
		"last_name":  "Петров",
		"is_active":  inactive,
	}

	w, response := doRequest(t, r, manager, "PUT", "/api/users/"+itoa(client.ID), body)
	require.Equal(t, http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Иван", data["first_name"])
	assert.Equal(t, false, data["is_active"])

	// Роль через обновление не меняется
	assert.Equal(t, string(models.RoleClient), data["role"])

	w, _ = doRequest(t, r, manager, "PUT", "/api/users/99999", body)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
