package testutils

import (
	"fmt"
	"time"

	"backend_silant/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB создает тестовую базу данных в памяти со всеми таблицами.
// Эта функция должна использоваться во всех тестах для обеспечения
// консистентности.
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Миграции в порядке зависимостей: справочники, пользователи, машины,
	// затем ТО и рекламации
	err = db.AutoMigrate(
		&models.TechniqueModel{},
		&models.EngineModel{},
		&models.TransmissionModel{},
		&models.DriveAxleModel{},
		&models.SteerAxleModel{},
		&models.MaintenanceType{},
		&models.FailureNode{},
		&models.RecoveryMethod{},
		&models.ServiceCompany{},
		&models.Directory{},

		&models.User{},
		&models.ClientProfile{},
		&models.ServiceOrganizationProfile{},

		&models.Machine{},
		&models.Maintenance{},
		&models.Complaint{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// CleanupTestDB закрывает тестовую базу данных
func CleanupTestDB(db *gorm.DB) {
	if db != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

var userSeq int

// CreateTestUser создает пользователя с указанной ролью. Пароль всегда
// "password123". Для клиента и сервисной организации создается профиль.
func CreateTestUser(db *gorm.DB, role models.Role) *models.User {
	userSeq++

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		Username:  fmt.Sprintf("%s_%d", role, userSeq),
		Email:     fmt.Sprintf("%s_%d@example.com", role, userSeq),
		Password:  string(hashed),
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		panic(fmt.Sprintf("failed to create test user: %v", err))
	}

	switch role {
	case models.RoleClient:
		profile := &models.ClientProfile{
			UserID:      user.ID,
			CompanyName: fmt.Sprintf("ООО Клиент %d", userSeq),
		}
		db.Create(profile)
		user.ClientProfile = profile
	case models.RoleService:
		profile := &models.ServiceOrganizationProfile{
			UserID:           user.ID,
			OrganizationName: fmt.Sprintf("Сервис %d", userSeq),
		}
		db.Create(profile)
		user.ServiceProfile = profile
	}

	return user
}

// CreateTestSuperuser создает суперпользователя
func CreateTestSuperuser(db *gorm.DB) *models.User {
	user := CreateTestUser(db, models.RoleManager)
	user.IsSuperuser = true
	user.IsStaff = true
	db.Save(user)
	return user
}

// References содержит по одной записи каждого справочника
type References struct {
	TechniqueModel    models.TechniqueModel
	EngineModel       models.EngineModel
	TransmissionModel models.TransmissionModel
	DriveAxleModel    models.DriveAxleModel
	SteerAxleModel    models.SteerAxleModel
	MaintenanceType   models.MaintenanceType
	FailureNode       models.FailureNode
	RecoveryMethod    models.RecoveryMethod
	ServiceCompany    models.ServiceCompany
}

var refSeq int

// CreateTestReferences создает минимальный набор справочных записей
func CreateTestReferences(db *gorm.DB) *References {
	refSeq++
	suffix := fmt.Sprintf(" %d", refSeq)

	refs := &References{
		TechniqueModel:    models.TechniqueModel{Name: "ПД1,5" + suffix},
		EngineModel:       models.EngineModel{Name: "Kubota D1803" + suffix},
		TransmissionModel: models.TransmissionModel{Name: "10VA-00105" + suffix},
		DriveAxleModel:    models.DriveAxleModel{Name: "20VA-00101" + suffix},
		SteerAxleModel:    models.SteerAxleModel{Name: "VS20-00001" + suffix},
		MaintenanceType:   models.MaintenanceType{Name: "ТО-1 (100 м/час)" + suffix},
		FailureNode:       models.FailureNode{Name: "Двигатель" + suffix},
		RecoveryMethod:    models.RecoveryMethod{Name: "Ремонт узла" + suffix},
		ServiceCompany:    models.ServiceCompany{Name: "ООО ФПК21" + suffix},
	}

	db.Create(&refs.TechniqueModel)
	db.Create(&refs.EngineModel)
	db.Create(&refs.TransmissionModel)
	db.Create(&refs.DriveAxleModel)
	db.Create(&refs.SteerAxleModel)
	db.Create(&refs.MaintenanceType)
	db.Create(&refs.FailureNode)
	db.Create(&refs.RecoveryMethod)
	db.Create(&refs.ServiceCompany)

	return refs
}

var machineSeq int

// CreateTestMachine создает машину с указанными владельцами. Клиент или
// сервисная организация могут быть nil.
func CreateTestMachine(db *gorm.DB, refs *References, client, service *models.User) *models.Machine {
	machineSeq++

	machine := &models.Machine{
		SerialNumber:        fmt.Sprintf("%04d", machineSeq),
		TechniqueModelID:    refs.TechniqueModel.ID,
		EngineModelID:       refs.EngineModel.ID,
		EngineSerial:        fmt.Sprintf("EN-%04d", machineSeq),
		TransmissionModelID: refs.TransmissionModel.ID,
		TransmissionSerial:  fmt.Sprintf("TR-%04d", machineSeq),
		DriveAxleModelID:    refs.DriveAxleModel.ID,
		DriveAxleSerial:     fmt.Sprintf("DA-%04d", machineSeq),
		SteerAxleModelID:    refs.SteerAxleModel.ID,
		SteerAxleSerial:     fmt.Sprintf("SA-%04d", machineSeq),
		SupplyContract:      fmt.Sprintf("№2022-%04d", machineSeq),
		ShipmentDate:        time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		Consignee:           "ИП Трудолюбов",
		DeliveryAddress:     "г. Чебоксары",
		Equipment:           "Стандарт",
	}
	if client != nil {
		machine.ClientID = &client.ID
	}
	if service != nil {
		machine.ServiceOrganizationID = &service.ID
	}

	if err := db.Create(machine).Error; err != nil {
		panic(fmt.Sprintf("failed to create test machine: %v", err))
	}
	return machine
}

// CreateTestMaintenance создает запись ТО для машины
func CreateTestMaintenance(db *gorm.DB, refs *References, machine *models.Machine, createdBy *models.User) *models.Maintenance {
	maintenance := &models.Maintenance{
		MachineID:          machine.ID,
		MaintenanceTypeID:  refs.MaintenanceType.ID,
		MaintenanceDate:    time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
		OperatingHours:     105,
		WorkOrderNumber:    "#2024-16",
		WorkOrderDate:      time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC),
		MaintenanceCompany: "Самостоятельно",
		ServiceCompanyID:   refs.ServiceCompany.ID,
	}
	if createdBy != nil {
		maintenance.CreatedByID = createdBy.ID
	}

	if err := db.Create(maintenance).Error; err != nil {
		panic(fmt.Sprintf("failed to create test maintenance: %v", err))
	}
	return maintenance
}

// CreateTestComplaint создает рекламацию для машины
func CreateTestComplaint(db *gorm.DB, refs *References, machine *models.Machine, createdBy *models.User) *models.Complaint {
	complaint := &models.Complaint{
		MachineID:          machine.ID,
		FailureDate:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		OperatingHours:     210,
		FailureNodeID:      refs.FailureNode.ID,
		FailureDescription: "Перегрев двигателя",
		SpareParts:         "Термостат",
		ServiceCompanyID:   refs.ServiceCompany.ID,
	}
	if createdBy != nil {
		complaint.CreatedByID = createdBy.ID
	}

	if err := db.Create(complaint).Error; err != nil {
		panic(fmt.Sprintf("failed to create test complaint: %v", err))
	}
	return complaint
}
