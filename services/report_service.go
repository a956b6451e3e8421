package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"backend_silant/access"
	"backend_silant/models"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportService выгружает таблицы машин, ТО и рекламаций в файлы.
// Выборка всегда ограничивается областью видимости пользователя, поэтому
// каждая роль выгружает ровно то, что видит в API.
type ReportService struct {
	db  *gorm.DB
	dir string
}

// NewReportService создает новый экземпляр ReportService
func NewReportService(db *gorm.DB, dir string) *ReportService {
	return &ReportService{db: db, dir: dir}
}

// ReportData представляет данные для выгрузки
type ReportData struct {
	Title   string
	Headers []string
	Rows    [][]string
}

const dateLayout = "2006-01-02"

// ExportMachines выгружает машины, видимые пользователю
func (rs *ReportService) ExportMachines(user *models.User, format string) (string, error) {
	var machines []models.Machine
	err := access.Scope(rs.db.Model(&models.Machine{}), user, access.Machines).
		Preload("TechniqueModel").
		Preload("EngineModel").
		Preload("TransmissionModel").
		Preload("DriveAxleModel").
		Preload("SteerAxleModel").
		Order("machines.shipment_date DESC").
		Find(&machines).Error
	if err != nil {
		return "", fmt.Errorf("failed to fetch machines: %w", err)
	}

	data := &ReportData{
		Title: "Машины",
		Headers: []string{
			"Зав. № машины", "Модель техники", "Модель двигателя", "Зав. № двигателя",
			"Модель трансмиссии", "Зав. № трансмиссии", "Модель ведущего моста",
			"Модель управляемого моста", "Дата отгрузки", "Грузополучатель",
		},
	}
	for i := range machines {
		m := &machines[i]
		data.Rows = append(data.Rows, []string{
			m.SerialNumber, m.TechniqueModel.Name, m.EngineModel.Name, m.EngineSerial,
			m.TransmissionModel.Name, m.TransmissionSerial, m.DriveAxleModel.Name,
			m.SteerAxleModel.Name, m.ShipmentDate.Format(dateLayout), m.Consignee,
		})
	}

	return rs.generate(data, "machines", format)
}

// ExportMaintenances выгружает записи ТО, видимые пользователю
func (rs *ReportService) ExportMaintenances(user *models.User, format string) (string, error) {
	var maintenances []models.Maintenance
	err := access.Scope(rs.db.Model(&models.Maintenance{}), user, access.Maintenances).
		Preload("Machine").
		Preload("MaintenanceType").
		Preload("ServiceCompany").
		Order("maintenances.maintenance_date DESC").
		Find(&maintenances).Error
	if err != nil {
		return "", fmt.Errorf("failed to fetch maintenances: %w", err)
	}

	data := &ReportData{
		Title: "Техническое обслуживание",
		Headers: []string{
			"Зав. № машины", "Вид ТО", "Дата проведения", "Наработка, м/час",
			"№ заказ-наряда", "Дата заказ-наряда", "Сервисная компания",
		},
	}
	for i := range maintenances {
		m := &maintenances[i]
		data.Rows = append(data.Rows, []string{
			m.Machine.SerialNumber, m.MaintenanceType.Name,
			m.MaintenanceDate.Format(dateLayout), strconv.Itoa(m.OperatingHours),
			m.WorkOrderNumber, m.WorkOrderDate.Format(dateLayout), m.ServiceCompany.Name,
		})
	}

	return rs.generate(data, "maintenances", format)
}

// ExportComplaints выгружает рекламации, видимые пользователю
func (rs *ReportService) ExportComplaints(user *models.User, format string) (string, error) {
	var complaints []models.Complaint
	err := access.Scope(rs.db.Model(&models.Complaint{}), user, access.Complaints).
		Preload("Machine").
		Preload("FailureNode").
		Preload("RecoveryMethod").
		Preload("ServiceCompany").
		Order("complaints.failure_date DESC").
		Find(&complaints).Error
	if err != nil {
		return "", fmt.Errorf("failed to fetch complaints: %w", err)
	}

	data := &ReportData{
		Title: "Рекламации",
		Headers: []string{
			"Зав. № машины", "Дата отказа", "Наработка, м/час", "Узел отказа",
			"Описание отказа", "Способ восстановления", "Дата восстановления",
			"Время простоя, дней", "Сервисная компания",
		},
	}
	for i := range complaints {
		cm := &complaints[i]
		recoveryMethod, recoveryDate, downtime := "", "", ""
		if cm.RecoveryMethod != nil {
			recoveryMethod = cm.RecoveryMethod.Name
		}
		if cm.RecoveryDate != nil {
			recoveryDate = cm.RecoveryDate.Format(dateLayout)
		}
		if d := cm.Downtime(); d != nil {
			downtime = strconv.Itoa(*d)
		}
		data.Rows = append(data.Rows, []string{
			cm.Machine.SerialNumber, cm.FailureDate.Format(dateLayout),
			strconv.Itoa(cm.OperatingHours), cm.FailureNode.Name,
			cm.FailureDescription, recoveryMethod, recoveryDate,
			downtime, cm.ServiceCompany.Name,
		})
	}

	return rs.generate(data, "complaints", format)
}

// generate создает файл выгрузки в нужном формате и возвращает путь к нему
func (rs *ReportService) generate(data *ReportData, resource, format string) (string, error) {
	if err := os.MkdirAll(rs.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.%s",
		resource, time.Now().Format("20060102"), uuid.New().String()[:8], format)
	filePath := filepath.Join(rs.dir, name)

	switch format {
	case "xlsx":
		return rs.generateExcel(data, filePath)
	case "pdf":
		return rs.generatePDF(data, filePath)
	default:
		return "", fmt.Errorf("unsupported report format: %s", format)
	}
}

// generateExcel генерирует Excel файл выгрузки
func (rs *ReportService) generateExcel(data *ReportData, filePath string) (string, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close Excel file: %v", err)
		}
	}()

	sheetName := data.Title
	f.SetSheetName("Sheet1", sheetName)

	// Записываем заголовки
	for i, header := range data.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	// Записываем данные
	for rowIdx, row := range data.Rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	// Добавляем автофильтр по всей таблице
	endCell, _ := excelize.CoordinatesToCellName(len(data.Headers), len(data.Rows)+1)
	f.AutoFilter(sheetName, "A1:"+endCell, []excelize.AutoFilterOptions{})

	if err := f.SaveAs(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

// generatePDF генерирует PDF файл выгрузки
func (rs *ReportService) generatePDF(data *ReportData, filePath string) (string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	// Кириллица в стандартных шрифтах идет через cp1251
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1251")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(60, 10, tr(data.Title))
	pdf.Ln(14)

	pdf.SetFont("Arial", "B", 8)
	colWidth := 270.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.Cell(colWidth, 8, tr(header))
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for _, value := range row {
			if runes := []rune(value); len(runes) > 30 {
				value = string(runes[:30])
			}
			pdf.Cell(colWidth, 6, tr(value))
		}
		pdf.Ln(6)
	}

	return filePath, pdf.OutputFileAndClose(filePath)
}
