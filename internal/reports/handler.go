package reports

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/freshroot/freshroot-backend/pkg/database"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type SalesReportRequest struct {
	StartDate string `form:"start_date"` // Format: 2024-01-01
	EndDate   string `form:"end_date"`   // Format: 2024-01-31
}

type DailySales struct {
	Date      string  `json:"date"`
	Sales     float64 `json:"sales"`
	SaleCount int     `json:"sale_count"`
}

type SalesReport struct {
	StartDate      string       `json:"start_date"`
	EndDate        string       `json:"end_date"`
	TotalSales     float64      `json:"total_sales"`
	TotalSaleCount int          `json:"total_sale_count"`
	TotalExpenses  float64      `json:"total_expenses"`
	AveragePerSale float64      `json:"average_per_sale"`
	DailySales     []DailySales `json:"daily_sales"`
}

// GetSalesReport returns the sales report for a date range, defaulting to the
// current month
func (h *Handler) GetSalesReport(c *gin.Context) {
	userID := c.GetString("user_id")

	var req SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	endDate := time.Date(now.Year(), now.Month()+1, 0, 23, 59, 59, 0, now.Location())

	if req.StartDate != "" {
		if parsed, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			startDate = parsed
		}
	}
	if req.EndDate != "" {
		if parsed, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			endDate = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, 0, parsed.Location())
		}
	}

	var report SalesReport
	report.StartDate = startDate.Format("2006-01-02")
	report.EndDate = endDate.Format("2006-01-02")

	var sales []database.Sale
	if err := h.db.Where("user_id = ? AND created_at >= ? AND created_at <= ? AND payment_status <> ?",
		userID, startDate, endDate, database.StatusCancelled).
		Order("created_at ASC").
		Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	daily := make(map[string]*DailySales)
	var order []string
	for _, s := range sales {
		report.TotalSales += s.Total
		report.TotalSaleCount++

		day := s.CreatedAt.Format("2006-01-02")
		if _, ok := daily[day]; !ok {
			daily[day] = &DailySales{Date: day}
			order = append(order, day)
		}
		daily[day].Sales += s.Total
		daily[day].SaleCount++
	}

	if report.TotalSaleCount > 0 {
		report.AveragePerSale = report.TotalSales / float64(report.TotalSaleCount)
	}

	h.db.Model(&database.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, startDate, endDate).
		Scan(&report.TotalExpenses)

	report.DailySales = []DailySales{}
	for _, day := range order {
		report.DailySales = append(report.DailySales, *daily[day])
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
