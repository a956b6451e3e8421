package services

import (
	"bytes"
	"testing"

	"backend_silant/models"
	"backend_silant/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildImportFile собирает Excel-файл импорта из строк данных
func buildImportFile(t *testing.T, rows [][]string) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	headers := []string{
		"Зав. № машины", "Модель техники", "Модель двигателя", "Зав. № двигателя",
		"Модель трансмиссии", "Зав. № трансмиссии", "Модель ведущего моста",
		"Зав. № ведущего моста", "Модель управляемого моста",
		"Зав. № управляемого моста", "Дата отгрузки",
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &headers))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportMachines(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	is := NewImportService(db)

	rows := [][]string{
		{"9001", "ПД1,5", "Kubota D1803", "EN-9001", "10VA-00105", "TR-9001", "20VA-00101", "DA-9001", "VS20-00001", "SA-9001", "2024-03-12"},
		{"9002", "ПД1,5", "Kubota D1803", "EN-9002", "10VA-00105", "TR-9002", "20VA-00101", "DA-9002", "VS20-00001", "SA-9002", "2024-04-01"},
	}

	result, err := is.ImportMachines(buildImportFile(t, rows))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Errors)

	// Справочники созданы по названию и переиспользованы между строками
	var modelCount int64
	db.Model(&models.TechniqueModel{}).Count(&modelCount)
	assert.Equal(t, int64(1), modelCount)

	var machine models.Machine
	require.NoError(t, db.Where("serial_number = ?", "9001").First(&machine).Error)
	assert.Equal(t, "EN-9001", machine.EngineSerial)
	assert.Equal(t, "2024-03-12", machine.ShipmentDate.Format("2006-01-02"))
}

func TestImportMachinesSkipsAndErrors(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	refs := testutils.CreateTestReferences(db)
	existing := testutils.CreateTestMachine(db, refs, nil, nil)

	is := NewImportService(db)

	rows := [][]string{
		// Существующий заводской номер пропускается
		{existing.SerialNumber, "ПД1,5", "Kubota D1803", "EN-1", "10VA-00105", "TR-1", "20VA-00101", "DA-1", "VS20-00001", "SA-1", "2024-03-12"},
		// Неверная дата — ошибка строки
		{"9101", "ПД1,5", "Kubota D1803", "EN-2", "10VA-00105", "TR-2", "20VA-00101", "DA-2", "VS20-00001", "SA-2", "12.03.2024"},
		// Пустой заводской номер — ошибка строки
		{"", "ПД1,5", "Kubota D1803", "EN-3", "10VA-00105", "TR-3", "20VA-00101", "DA-3", "VS20-00001", "SA-3", "2024-03-12"},
		// Корректная строка импортируется несмотря на ошибки выше
		{"9102", "ПД1,5", "Kubota D1803", "EN-4", "10VA-00105", "TR-4", "20VA-00101", "DA-4", "VS20-00001", "SA-4", "2024-03-12"},
	}

	result, err := is.ImportMachines(buildImportFile(t, rows))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Errors, 2)

	// Ошибки привязаны к номерам строк листа
	assert.Contains(t, result.Errors[0], "строка 3")
	assert.Contains(t, result.Errors[1], "строка 4")
}

func TestImportMachinesEmptySheet(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	defer testutils.CleanupTestDB(db)

	is := NewImportService(db)

	_, err = is.ImportMachines(buildImportFile(t, nil))
	assert.Error(t, err)
}
