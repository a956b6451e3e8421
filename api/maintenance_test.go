package api

import (
	"net/http"
	"testing"

	"backend_silant/models"
	"backend_silant/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMaintenancesScoping(t *testing.T) {
	r, db := setupTestAPI(t)

	refs := testutils.CreateTestReferences(db)
	client1 := testutils.CreateTestUser(db, models.RoleClient)
	client2 := testutils.CreateTestUser(db, models.RoleClient)
	service1 := testutils.CreateTestUser(db, models.RoleService)
	manager := testutils.CreateTestUser(db, models.RoleManager)

	machine1 := testutils.CreateTestMachine(db, refs, client1, service1)
	machine2 := testutils.CreateTestMachine(db, refs, client2, nil)
	testutils.CreateTestMaintenance(db, refs, machine1, client1)
	testutils.CreateTestMaintenance(db, refs, machine2, client2)

	tests := []struct {
		name     string
		user     *models.User
		expected int
	}{
		{"Менеджер видит все записи ТО", manager, 2},
		{"Клиент видит ТО только своих машин", client1, 1},
		{"Сервисная организация видит ТО обслуживаемых машин", service1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := doRequest(t, r, tt.user, "GET", "/api/maintenances", nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Len(t, response["data"].([]interface{}), tt.expected)
		})
	}
}

func TestGetMaintenancesSerialFilter(t *testing.T) {
	r, db := setupTestAPI(t)

	refs := testutils.CreateTestReferences(db)
	client := testutils.CreateTestUser(db, models.RoleClient)
	manager := testutils.CreateTestUser(db, models.RoleManager)

	machine1 := testutils.CreateTestMachine(db, refs, client, nil)
	machine2 := testutils.CreateTestMachine(db, refs, client, nil)
	testutils.CreateTestMaintenance(db, refs, machine1, client)
	testutils.CreateTestMaintenance(db, refs, machine2, client)

	// Фильтр по номеру машины работает и для менеджера (join добавляется),
	// и для клиента (join уже есть из области видимости)
	for _, user := range []*models.User{manager, client} {
		w, response := doRequest(t, r, user, "GET", "/api/maintenances?machine_serial="+machine1.SerialNumber, nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := response["data"].([]interface{})
		require.Len(t, data, 1)
		record := data[0].(map[string]interface{})
		assert.Equal(t, machine1.SerialNumber, record["machine_serial"])
	}

	// Сортировка по номеру машины не дублирует join
	w, response := doRequest(t, r, client, "GET", "/api/maintenances?ordering=machine_serial", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, response["data"].([]interface{}), 2)
}

func TestCreateMaintenance(t *testing.T) {
	r, db := setupTestAPI(t)

	refs := testutils.CreateTestReferences(db)
	client1 := testutils.CreateTestUser(db, models.RoleClient)
	client2 := testutils.CreateTestUser(db, models.RoleClient)
	machine := testutils.CreateTestMachine(db, refs, client1, nil)

	body := map[string]interface{}{
		"machine_id":          machine.ID,
		"maintenance_type_id": refs.MaintenanceType.ID,
		"maintenance_date":    "2024-05-20",
		"operating_hours":     105,
		"work_order_number":   "#2024-16",
		"maintenance_company": "Самостоятельно",
		"service_company_id":  refs.ServiceCompany.ID,
		"created_by_id":       client2.ID,
	}

	// Клиент создает ТО для своей машины; created_by из тела игнорируется
	w, response := doRequest(t, r, client1, "POST", "/api/maintenances", body)
	require.Equal(t, http.StatusCreated, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(client1.ID), data["created_by_id"])
	// Дата заказ-наряда по умолчанию равна дате проведения ТО
	assert.Equal(t, "2024-05-20", data["work_order_date"])

	// Чужая машина — ошибка валидации, а не 403
	w, response = doRequest(t, r, client2, "POST", "/api/maintenances", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Вы можете создавать ТО только для своих машин", response["error"])

	// Несуществующая машина — 404
	body["machine_id"] = 99999
	w, _ = doRequest(t, r, client1, "POST", "/api/maintenances", body)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateMaintenance(t *testing.T) {
	r, db := setupTestAPI(t)

	refs := testutils.CreateTestReferences(db)
	client1 := testutils.CreateTestUser(db, models.RoleClient)
	client2 := testutils.CreateTestUser(db, models.RoleClient)
	machine1 := testutils.CreateTestMachine(db, refs, client1, nil)
	machine2 := testutils.CreateTestMachine(db, refs, client2, nil)
	maintenance := testutils.CreateTestMaintenance(db, refs, machine1, client1)

	body := map[string]interface{}{
		"machine_id":          machine1.ID,
		"maintenance_type_id": refs.MaintenanceType.ID,
		"maintenance_date":    "2024-05-21",
		"operating_hours":     110,
		"work_order_number":   "#2024-17",
		"work_order_date":     "2024-05-20",
		"service_company_id":  refs.ServiceCompany.ID,
	}

	// Чужую запись клиент изменить не может
	w, _ := doRequest(t, r, client2, "PUT", "/api/maintenances/"+itoa(maintenance.ID), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Свою — может
	w, response := doRequest(t, r, client1, "PUT", "/api/maintenances/"+itoa(maintenance.ID), body)
	require.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(110), data["operating_hours"])
	assert.Equal(t, float64(client1.ID), data["created_by_id"])

	// Перенос на чужую машину запрещен
	body["machine_id"] = machine2.ID
	w, _ = doRequest(t, r, client1, "PUT", "/api/maintenances/"+itoa(maintenance.ID), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMaintenance(t *testing.T) {
	r, db := setupTestAPI(t)

	refs := testutils.CreateTestReferences(db)
	client1 := testutils.CreateTestUser(db, models.RoleClient)
	client2 := testutils.CreateTestUser(db, models.RoleClient)
	machine := testutils.CreateTestMachine(db, refs, client1, nil)
	maintenance := testutils.CreateTestMaintenance(db, refs, machine, client1)

	w, _ := doRequest(t, r, client2, "DELETE", "/api/maintenances/"+itoa(maintenance.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doRequest(t, r, client1, "DELETE", "/api/maintenances/"+itoa(maintenance.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Maintenance{}).Where("id = ?", maintenance.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
