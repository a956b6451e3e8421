package access

import (
	"testing"

	"backend_silant/models"
	"backend_silant/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupAccessTestData создает двух клиентов, две сервисные организации и
// по машине с записями ТО и рекламацией для каждой пары
func setupAccessTestData(t *testing.T) (*gorm.DB, map[string]*models.User) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	refs := testutils.CreateTestReferences(db)

	users := map[string]*models.User{
		"client1":   testutils.CreateTestUser(db, models.RoleClient),
		"client2":   testutils.CreateTestUser(db, models.RoleClient),
		"service1":  testutils.CreateTestUser(db, models.RoleService),
		"service2":  testutils.CreateTestUser(db, models.RoleService),
		"manager":   testutils.CreateTestUser(db, models.RoleManager),
		"norole":    testutils.CreateTestUser(db, models.RoleNone),
		"superuser": testutils.CreateTestSuperuser(db),
	}

	machine1 := testutils.CreateTestMachine(db, refs, users["client1"], users["service1"])
	machine2 := testutils.CreateTestMachine(db, refs, users["client2"], users["service2"])

	testutils.CreateTestMaintenance(db, refs, machine1, users["client1"])
	testutils.CreateTestMaintenance(db, refs, machine2, users["client2"])
	testutils.CreateTestComplaint(db, refs, machine1, users["service1"])
	testutils.CreateTestComplaint(db, refs, machine2, users["service2"])

	return db, users
}

func countScoped(t *testing.T, db *gorm.DB, user *models.User, r Resource, model interface{}) int64 {
	var count int64
	err := Scope(db.Model(model), user, r).Count(&count).Error
	require.NoError(t, err)
	return count
}

func TestScopeMachines(t *testing.T) {
	db, users := setupAccessTestData(t)

	tests := []struct {
		name     string
		user     *models.User
		expected int64
	}{
		{"Аноним видит все машины", nil, 2},
		{"Клиент видит только свои машины", users["client1"], 1},
		{"Сервисная организация видит только обслуживаемые", users["service2"], 1},
		{"Менеджер видит все", users["manager"], 2},
		{"Суперпользователь видит все", users["superuser"], 2},
		{"Пользователь без роли не видит ничего", users["norole"], 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, countScoped(t, db, tt.user, Machines, &models.Machine{}))
		})
	}
}

func TestScopeMaintenancesAndComplaints(t *testing.T) {
	db, users := setupAccessTestData(t)

	tests := []struct {
		name     string
		user     *models.User
		expected int64
	}{
		{"Аноним не видит записи ТО", nil, 0},
		{"Клиент видит ТО только своих машин", users["client1"], 1},
		{"Сервисная организация видит ТО обслуживаемых машин", users["service1"], 1},
		{"Менеджер видит все ТО", users["manager"], 2},
		{"Пользователь без роли не видит ТО", users["norole"], 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, countScoped(t, db, tt.user, Maintenances, &models.Maintenance{}))
			assert.Equal(t, tt.expected, countScoped(t, db, tt.user, Complaints, &models.Complaint{}))
		})
	}
}

func TestCanView(t *testing.T) {
	db, users := setupAccessTestData(t)

	var machine1, machine2 models.Machine
	require.NoError(t, db.Where("client_id = ?", users["client1"].ID).First(&machine1).Error)
	require.NoError(t, db.Where("client_id = ?", users["client2"].ID).First(&machine2).Error)

	// Аноним: машины видимы, ТО и рекламации нет
	assert.True(t, CanView(nil, Machines, &machine1))
	assert.False(t, CanView(nil, Maintenances, &machine1))
	assert.False(t, CanView(nil, Complaints, &machine1))

	// Клиент видит только свою машину
	assert.True(t, CanView(users["client1"], Machines, &machine1))
	assert.False(t, CanView(users["client1"], Machines, &machine2))

	// Сервисная организация видит только обслуживаемую
	assert.True(t, CanView(users["service1"], Complaints, &machine1))
	assert.False(t, CanView(users["service1"], Complaints, &machine2))

	// Менеджер и суперпользователь видят все
	assert.True(t, CanView(users["manager"], Maintenances, &machine2))
	assert.True(t, CanView(users["superuser"], Maintenances, &machine2))

	// Роль none не видит ничего, даже машины
	assert.False(t, CanView(users["norole"], Machines, &machine1))
}

func TestCanCreateMaintenance(t *testing.T) {
	db, users := setupAccessTestData(t)

	var machine1, machine2 models.Machine
	require.NoError(t, db.Where("client_id = ?", users["client1"].ID).First(&machine1).Error)
	require.NoError(t, db.Where("client_id = ?", users["client2"].ID).First(&machine2).Error)

	// Клиент может создавать ТО только для своих машин
	assert.NoError(t, CanCreate(users["client1"], Maintenances, &machine1))
	assert.Error(t, CanCreate(users["client1"], Maintenances, &machine2))

	// Сервисная организация — только для обслуживаемых
	assert.NoError(t, CanCreate(users["service1"], Maintenances, &machine1))
	assert.Error(t, CanCreate(users["service1"], Maintenances, &machine2))

	// Менеджер и суперпользователь — без ограничений
	assert.NoError(t, CanCreate(users["manager"], Maintenances, &machine2))
	assert.NoError(t, CanCreate(users["superuser"], Maintenances, &machine2))

	// Без аутентификации и без роли создание запрещено
	assert.ErrorIs(t, CanCreate(nil, Maintenances, &machine1), ErrNotAuthenticated)
	assert.ErrorIs(t, CanCreate(users["norole"], Maintenances, &machine1), ErrNoRole)
}

func TestCanCreateComplaint(t *testing.T) {
	db, users := setupAccessTestData(t)

	var machine1 models.Machine
	require.NoError(t, db.Where("client_id = ?", users["client1"].ID).First(&machine1).Error)

	// Клиенты не создают рекламации даже по своим машинам
	err := CanCreate(users["client1"], Complaints, &machine1)
	require.Error(t, err)
	assert.Equal(t, "Клиенты не могут создавать рекламации", err.Error())

	// Сервисная организация создает рекламации по обслуживаемым машинам
	assert.NoError(t, CanCreate(users["service1"], Complaints, &machine1))
	assert.Error(t, CanCreate(users["service2"], Complaints, &machine1))
}

func TestCanModify(t *testing.T) {
	db, users := setupAccessTestData(t)

	var machine1 models.Machine
	require.NoError(t, db.Where("client_id = ?", users["client1"].ID).First(&machine1).Error)

	// Машины изменяют только менеджер и суперпользователь, сервис — свои
	assert.Error(t, CanModify(users["client1"], Machines, &machine1))
	assert.NoError(t, CanModify(users["service1"], Machines, &machine1))
	assert.Error(t, CanModify(users["service2"], Machines, &machine1))
	assert.NoError(t, CanModify(users["manager"], Machines, &machine1))

	// Записи ТО клиент изменяет по своим машинам
	assert.NoError(t, CanModify(users["client1"], Maintenances, &machine1))
	assert.Error(t, CanModify(users["client2"], Maintenances, &machine1))

	// Рекламации клиентам недоступны на запись
	assert.Error(t, CanModify(users["client1"], Complaints, &machine1))
	assert.NoError(t, CanModify(users["service1"], Complaints, &machine1))
}

func TestJoinsMachines(t *testing.T) {
	_, users := setupAccessTestData(t)

	// Join добавляется только для клиентов и сервисных организаций и только
	// для таблиц, политика которых идет через машину
	assert.True(t, JoinsMachines(users["client1"], Maintenances))
	assert.True(t, JoinsMachines(users["service1"], Complaints))
	assert.False(t, JoinsMachines(users["client1"], Machines))
	assert.False(t, JoinsMachines(users["manager"], Maintenances))
	assert.False(t, JoinsMachines(users["superuser"], Maintenances))
	assert.False(t, JoinsMachines(nil, Maintenances))
}
