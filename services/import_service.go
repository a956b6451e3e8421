package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"backend_silant/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportService загружает машины из Excel-файла. Ожидается лист, где
// первая строка — заголовки, а колонки идут в порядке паспорта машины:
// зав. № машины, модель техники, модель двигателя, зав. № двигателя,
// модель трансмиссии, зав. № трансмиссии, модель ведущего моста,
// зав. № ведущего моста, модель управляемого моста, зав. № управляемого
// моста, дата отгрузки.
type ImportService struct {
	db *gorm.DB
}

// NewImportService создает новый экземпляр ImportService
func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{db: db}
}

// ImportResult представляет итог импорта
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

const machineImportColumns = 11

// ImportMachines читает Excel-файл и создает машины. Справочные записи
// разрешаются по названию и создаются при отсутствии; машины с уже
// существующим заводским номером пропускаются. Ошибки отдельных строк
// не прерывают импорт остальных.
func (is *ImportService) ImportMachines(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheets[0])
	}

	result := &ImportResult{}

	// Первая строка — заголовки
	for i, row := range rows[1:] {
		rowNum := i + 2
		if err := is.importRow(row); err != nil {
			if err == errDuplicateSerial {
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("строка %d: %v", rowNum, err))
			continue
		}
		result.Created++
	}

	return result, nil
}

var errDuplicateSerial = fmt.Errorf("машина с таким заводским номером уже существует")

// importRow создает одну машину из строки листа
func (is *ImportService) importRow(row []string) error {
	if len(row) < machineImportColumns {
		return fmt.Errorf("ожидается %d колонок, получено %d", machineImportColumns, len(row))
	}

	cell := func(idx int) string { return strings.TrimSpace(row[idx]) }

	serial := cell(0)
	if serial == "" {
		return fmt.Errorf("пустой заводской номер машины")
	}

	var count int64
	if err := is.db.Model(&models.Machine{}).Where("serial_number = ?", serial).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errDuplicateSerial
	}

	shipmentDate, err := time.Parse("2006-01-02", cell(10))
	if err != nil {
		return fmt.Errorf("неверная дата отгрузки %q, ожидается YYYY-MM-DD", cell(10))
	}

	machine := models.Machine{
		SerialNumber:       serial,
		EngineSerial:       cell(3),
		TransmissionSerial: cell(5),
		DriveAxleSerial:    cell(7),
		SteerAxleSerial:    cell(9),
		ShipmentDate:       shipmentDate,
	}

	// Справочники разрешаются по названию в одной транзакции с машиной
	return is.db.Transaction(func(tx *gorm.DB) error {
		if machine.TechniqueModelID, err = resolveReference(tx, "technique_models", cell(1)); err != nil {
			return err
		}
		if machine.EngineModelID, err = resolveReference(tx, "engine_models", cell(2)); err != nil {
			return err
		}
		if machine.TransmissionModelID, err = resolveReference(tx, "transmission_models", cell(4)); err != nil {
			return err
		}
		if machine.DriveAxleModelID, err = resolveReference(tx, "drive_axle_models", cell(6)); err != nil {
			return err
		}
		if machine.SteerAxleModelID, err = resolveReference(tx, "steer_axle_models", cell(8)); err != nil {
			return err
		}
		return tx.Create(&machine).Error
	})
}

// resolveReference находит запись справочника по названию или создает новую
func resolveReference(tx *gorm.DB, table, name string) (uint, error) {
	if name == "" {
		return 0, fmt.Errorf("пустое название справочника %s", table)
	}

	var ref struct{ ID uint }
	err := tx.Table(table).Select("id").Where("name = ?", name).First(&ref).Error
	if err == nil {
		return ref.ID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, err
	}

	entry := map[string]interface{}{
		"name":       name,
		"created_at": time.Now(),
		"updated_at": time.Now(),
	}
	if err := tx.Table(table).Create(entry).Error; err != nil {
		return 0, err
	}
	if err := tx.Table(table).Select("id").Where("name = ?", name).First(&ref).Error; err != nil {
		return 0, err
	}
	return ref.ID, nil
}
