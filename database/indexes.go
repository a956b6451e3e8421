package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

// DatabaseIndex представляет индекс базы данных
type DatabaseIndex struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// ScopeIndexes — композитные индексы под запросы ролевой фильтрации и
// сортировку по умолчанию (последние записи сверху)
var ScopeIndexes = []DatabaseIndex{
	// Машины: выборки клиента и сервисной организации, сортировка по отгрузке
	{
		Name:    "idx_machines_client_shipment",
		Table:   "machines",
		Columns: []string{"client_id", "shipment_date"},
	},
	{
		Name:    "idx_machines_service_shipment",
		Table:   "machines",
		Columns: []string{"service_organization_id", "shipment_date"},
	},

	// ТО: join до машины и сортировка по дате проведения
	{
		Name:    "idx_maintenances_machine_date",
		Table:   "maintenances",
		Columns: []string{"machine_id", "maintenance_date"},
	},

	// Рекламации: join до машины и сортировка по дате отказа
	{
		Name:    "idx_complaints_machine_failure",
		Table:   "complaints",
		Columns: []string{"machine_id", "failure_date"},
	},

	// Универсальный справочник: выборка по сущности и названию
	{
		Name:    "idx_directories_entity_name_name",
		Table:   "directories",
		Columns: []string{"entity_name", "name"},
	},
}

// CreateIndexes создает все дополнительные индексы
func CreateIndexes(db *gorm.DB) error {
	log.Printf("Creating indexes...")

	for _, index := range ScopeIndexes {
		if err := CreateIndex(db, index); err != nil {
			log.Printf("Failed to create index %s: %v", index.Name, err)
			// Продолжаем создание других индексов даже если один упал
			continue
		}
	}

	log.Printf("Indexes creation completed")
	return nil
}

// CreateIndex создает отдельный индекс
func CreateIndex(db *gorm.DB, index DatabaseIndex) error {
	uniqueStr := ""
	if index.Unique {
		uniqueStr = "UNIQUE "
	}

	sql := fmt.Sprintf(
		"CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		uniqueStr, index.Name, index.Table, strings.Join(index.Columns, ", "),
	)

	return db.Exec(sql).Error
}

// DropIndex удаляет индекс
func DropIndex(db *gorm.DB, indexName string) error {
	sql := fmt.Sprintf("DROP INDEX IF EXISTS %s", indexName)
	return db.Exec(sql).Error
}
