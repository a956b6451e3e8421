package api

import (
	"net/http"
	"testing"

	"backend_silant/models"
	"backend_silant/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetComplaintsScoping(t *testing.T) {
	r, db := setupTestAPI(t)

	refs := testutils.CreateTestReferences(db)
	client1 := testutils.CreateTestUser(db, models.RoleClient)
	service1 := testutils.CreateTestUser(db, models.RoleService)
	service2 := testutils.CreateTestUser(db, models.RoleService)
	manager := testutils.CreateTestUser(db, models.RoleManager)

	machine1 := testutils.CreateTestMachine(db, refs, client1, service1)
	machine2 := testutils.CreateTestMachine(db, refs, nil, service2)
	testutils.CreateTestComplaint(db, refs, machine1, service1)
	testutils.CreateTestComplaint(db, refs, machine2, service2)

	tests := []struct {
		name     string
		user     *models.User
		expected int
	}{
		{"Менеджер видит все рекламации", manager, 2},
		{"Клиент видит рекламации только своих машин", client1, 1},
		{"Сервисная организация видит рекламации обслуживаемых машин", service2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := doRequest(t, r, tt.user, "GET", "/api/complaints", nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Len(t, response["data"].([]interface{}), tt.expected)
		})
	}
}

func TestCreateComplaintRoles(t *testing.T) {
	r, db := setupTestAPI(t)

	refs := testutils.CreateTestReferences(db)
	client := testutils.CreateTestUser(db, models.RoleClient)
	service1 := testutils.CreateTestUser(db, models.RoleService)
	service2 := testutils.CreateTestUser(db, models.RoleService)
	machine := testutils.CreateTestMachine(db, refs, client, service1)

	body := map[string]interface{}{
		"machine_id":          machine.ID,
		"failure_date":        "2024-06-01",
		"operating_hours":     210,
		"failure_node_id":     refs.FailureNode.ID,
		"failure_description": "Перегрев двигателя",
		"service_company_id":  refs.ServiceCompany.ID,
	}

	// Клиент не может подать рекламацию даже по своей машине
	w, response := doRequest(t, r, client, "POST", "/api/complaints", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Клиенты не могут создавать рекламации", response["error"])

	// Чужая сервисная организация — тоже нет
	w, _ = doRequest(t, r, service2, "POST", "/api/complaints", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Обслуживающая организация подает рекламацию
	w, response = doRequest(t, r, service1, "POST", "/api/complaints", body)
	require.Equal(t, http.StatusCreated, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(service1.ID), data["created_by_id"])
	assert.Nil(t, data["recovery_date"])
	assert.Nil(t, data["downtime"])
}

func TestComplaintDowntime(t *testing.T) {
	r, db := setupTestAPI(t)

	refs := testutils.CreateTestReferences(db)
	service := testutils.CreateTestUser(db, models.RoleService)
	machine := testutils.CreateTestMachine(db, refs, nil, service)

	body := map[string]interface{}{
		"machine_id":          machine.ID,
		"failure_date":        "2024-01-01",
		"operating_hours":     120,
		"failure_node_id":     refs.FailureNode.ID,
		"failure_description": "Отказ трансмиссии",
		"recovery_method_id":  refs.RecoveryMethod.ID,
		"recovery_date":       "2024-01-05",
		"service_company_id":  refs.ServiceCompany.ID,
		"downtime":            777,
	}

	// Простой вычисляется в целых сутках, значение из тела игнорируется
	w, response := doRequest(t, r, service, "POST", "/api/complaints", body)
	require.Equal(t, http.StatusCreated, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["downtime"])
	assert.Equal(t, "2024-01-05", data["recovery_date"])
	assert.Equal(t, refs.RecoveryMethod.Name, data["recovery_method_name"].(string))

	// Дата восстановления раньше даты отказа отклоняется
	body["recovery_date"] = "2023-12-31"
	w, response = doRequest(t, r, service, "POST", "/api/complaints", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Дата восстановления не может быть раньше даты отказа", response["error"])
}

func TestUpdateComplaintReopen(t *testing.T) {
	r, db := setupTestAPI(t)

	refs := testutils.CreateTestReferences(db)
	service := testutils.CreateTestUser(db, models.RoleService)
	machine := testutils.CreateTestMachine(db, refs, nil, service)
	complaint := testutils.CreateTestComplaint(db, refs, machine, service)

	// Закрываем рекламацию
	body := map[string]interface{}{
		"machine_id":          machine.ID,
		"failure_date":        "2024-06-01",
		"operating_hours":     210,
		"failure_node_id":     refs.FailureNode.ID,
		"failure_description": "Перегрев двигателя",
		"recovery_method_id":  refs.RecoveryMethod.ID,
		"recovery_date":       "2024-06-10",
		"service_company_id":  refs.ServiceCompany.ID,
	}
	w, response := doRequest(t, r, service, "PUT", "/api/complaints/"+itoa(complaint.ID), body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(9), response["data"].(map[string]interface{})["downtime"])

	// Снова открываем: без даты восстановления простой исчезает
	delete(body, "recovery_date")
	delete(body, "recovery_method_id")
	w, response = doRequest(t, r, service, "PUT", "/api/complaints/"+itoa(complaint.ID), body)
	require.Equal(t, http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Nil(t, data["recovery_date"])
	assert.Nil(t, data["downtime"])
	assert.Nil(t, data["recovery_method_name"])
}

func TestDeleteComplaint(t *testing.T) {
	r, db := setupTestAPI(t)

	refs := testutils.CreateTestReferences(db)
	client := testutils.CreateTestUser(db, models.RoleClient)
	service := testutils.CreateTestUser(db, models.RoleService)
	machine := testutils.CreateTestMachine(db, refs, client, service)
	complaint := testutils.CreateTestComplaint(db, refs, machine, service)

	// Клиенту рекламации доступны только на чтение
	w, _ := doRequest(t, r, client, "DELETE", "/api/complaints/"+itoa(complaint.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doRequest(t, r, service, "DELETE", "/api/complaints/"+itoa(complaint.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
