package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/freshroot/freshroot-backend/pkg/database"
)

type ImportHandler struct {
	db *gorm.DB
}

func NewImportHandler(db *gorm.DB) *ImportHandler {
	return &ImportHandler{db: db}
}

type ImportResult struct {
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
	Errors       []string `json:"errors"`
}

type ImportRow struct {
	ProductName string
	Category    string
	Unit        string
	Price       float64
	Stock       float64
	MinStock    float64
}

// ImportFile handles Excel/CSV file upload for bulk catalog import
func (h *ImportHandler) ImportFile(c *gin.Context) {
	userIDStr := c.GetString("user_id")
	userID, _ := uuid.Parse(userIDStr)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	var rows []ImportRow
	fileName := strings.ToLower(header.Filename)

	if strings.HasSuffix(fileName, ".xlsx") || strings.HasSuffix(fileName, ".xls") {
		rows, err = parseExcel(file)
	} else if strings.HasSuffix(fileName, ".csv") {
		rows, err = parseCSV(file)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file format. Please upload .xlsx or .csv"})
		return
	}

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse file: %v", err)})
		return
	}

	result := ImportResult{
		TotalRows: len(rows),
		Errors:    []string{},
	}

	for i, row := range rows {
		if row.ProductName == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Product name is required", i+2))
			result.FailedCount++
			continue
		}

		unit := row.Unit
		if unit == "" {
			unit = database.UnitPcs
		}
		if !database.ValidUnit(unit) {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Invalid unit %q", i+2, row.Unit))
			result.FailedCount++
			continue
		}
		if !database.UnitAllowsFraction(unit) && row.Stock != math.Trunc(row.Stock) {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Fractional stock is not allowed for unit %s", i+2, unit))
			result.FailedCount++
			continue
		}

		// Update by name, create if absent
		var existing database.Product
		if err := h.db.Where("user_id = ? AND name = ?", userID, row.ProductName).First(&existing).Error; err == nil {
			updates := map[string]interface{}{
				"stock": row.Stock,
			}
			if row.Price > 0 {
				updates["price"] = row.Price
			}
			if row.Category != "" {
				updates["category"] = row.Category
			}
			if row.MinStock > 0 {
				updates["min_stock"] = row.MinStock
			}

			if err := h.db.Model(&existing).Updates(updates).Error; err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Failed to update %s - %v", i+2, row.ProductName, err))
				result.FailedCount++
				continue
			}
			result.SuccessCount++
		} else {
			newProduct := database.Product{
				UserID:   userID,
				Name:     row.ProductName,
				Category: row.Category,
				Unit:     unit,
				Price:    row.Price,
				Stock:    row.Stock,
			}
			if row.MinStock > 0 {
				minStock := row.MinStock
				newProduct.MinStock = &minStock
			}

			if err := h.db.Create(&newProduct).Error; err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Failed to create %s - %v", i+2, row.ProductName, err))
				result.FailedCount++
				continue
			}
			result.SuccessCount++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    result,
		"message": fmt.Sprintf("Import completed: %d success, %d failed", result.SuccessCount, result.FailedCount),
	})
}

func headerMap(header []string) map[string]int {
	colMap := make(map[string]int)
	for i, cell := range header {
		colMap[strings.ToLower(strings.TrimSpace(cell))] = i
	}
	return colMap
}

func parseRow(colMap map[string]int, row []string) ImportRow {
	importRow := ImportRow{}

	lookup := func(names ...string) string {
		for _, col := range names {
			if idx, ok := colMap[col]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
		}
		return ""
	}

	importRow.ProductName = lookup("product name", "name", "product")
	importRow.Category = lookup("category")
	importRow.Unit = strings.ToLower(lookup("unit", "uom"))
	if v, err := strconv.ParseFloat(lookup("price", "unit price"), 64); err == nil {
		importRow.Price = v
	}
	if v, err := strconv.ParseFloat(lookup("stock", "qty", "quantity"), 64); err == nil {
		importRow.Stock = v
	}
	if v, err := strconv.ParseFloat(lookup("min stock", "min_stock", "minimum stock"), 64); err == nil {
		importRow.MinStock = v
	}

	return importRow
}

// parseExcel parses .xlsx files
func parseExcel(file io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have header row and at least one data row")
	}

	colMap := headerMap(rows[0])

	var result []ImportRow
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		importRow := parseRow(colMap, row)
		if importRow.ProductName != "" {
			result = append(result, importRow)
		}
	}

	return result, nil
}

// parseCSV parses .csv files
func parseCSV(file io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("file must have header row and at least one data row")
	}

	colMap := headerMap(records[0])

	var result []ImportRow
	for _, row := range records[1:] {
		if len(row) == 0 {
			continue
		}
		importRow := parseRow(colMap, row)
		if importRow.ProductName != "" {
			result = append(result, importRow)
		}
	}

	return result, nil
}

// DownloadTemplate generates a sample Excel template for import
func (h *ImportHandler) DownloadTemplate(c *gin.Context) {
	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"Product Name", "Category", "Unit", "Price", "Stock", "Min Stock"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Sheet1", cell, header)
	}

	sampleData := [][]interface{}{
		{"Organic Tomatoes", "Vegetables", "kg", 80, 25, 5},
		{"Organic Apples", "Fruits", "kg", 120, 40, 10},
		{"Almond Milk", "Beverages", "l", 250, 12, 4},
		{"Brown Rice", "Grains", "pack", 95, 30, 10},
	}

	for rowIdx, row := range sampleData {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue("Sheet1", cell, value)
		}
	}

	f.SetColWidth("Sheet1", "A", "B", 20)
	f.SetColWidth("Sheet1", "C", "F", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=catalog_import_template.xlsx")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate template"})
		return
	}
}

// Export writes the full catalog to an Excel workbook
func (h *ImportHandler) Export(c *gin.Context) {
	userID := c.GetString("user_id")

	var products []database.Product
	if err := h.db.Where("user_id = ?", userID).Order("name ASC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"Product Name", "Category", "Unit", "Price", "Stock", "Min Stock"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Sheet1", cell, header)
	}

	for rowIdx, p := range products {
		minStock := ""
		if p.MinStock != nil {
			minStock = strconv.FormatFloat(*p.MinStock, 'f', -1, 64)
		}
		values := []interface{}{p.Name, p.Category, p.Unit, p.Price, p.Stock, minStock}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue("Sheet1", cell, value)
		}
	}

	f.SetColWidth("Sheet1", "A", "B", 20)
	f.SetColWidth("Sheet1", "C", "F", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=catalog_export.xlsx")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate export"})
		return
	}
}
