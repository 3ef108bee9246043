package dashboard

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

type DashboardStats struct {
	TodaySales     float64 `json:"today_sales"`
	TodaySaleCount int     `json:"today_sale_count"`
	TodayItemsSold float64 `json:"today_items_sold"`
	WeekSales      float64 `json:"week_sales"`
	WeekSaleCount  int     `json:"week_sale_count"`
	MonthSales     float64 `json:"month_sales"`
	MonthSaleCount int     `json:"month_sale_count"`
	MonthExpenses  float64 `json:"month_expenses"`
	TotalProducts  int     `json:"total_products"`
	LowStockCount  int     `json:"low_stock_count"`
}

type TopProduct struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	TotalQty    float64 `json:"total_qty"`
	TotalSales  float64 `json:"total_sales"`
}

// GetStats returns dashboard statistics
func (h *Handler) GetStats(c *gin.Context) {
	userID := c.GetString("user_id")

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := todayStart.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var stats DashboardStats

	type periodResult struct {
		Total float64
		Count int
	}

	sumSince := func(since time.Time) periodResult {
		var r periodResult
		h.db.Model(&database.Sale{}).
			Select("COALESCE(SUM(total), 0) as total, COUNT(*) as count").
			Where("user_id = ? AND created_at >= ? AND payment_status <> ?", userID, since, database.StatusCancelled).
			Scan(&r)
		return r
	}

	today := sumSince(todayStart)
	stats.TodaySales = today.Total
	stats.TodaySaleCount = today.Count

	week := sumSince(weekStart)
	stats.WeekSales = week.Total
	stats.WeekSaleCount = week.Count

	month := sumSince(monthStart)
	stats.MonthSales = month.Total
	stats.MonthSaleCount = month.Count

	// Items sold today
	h.db.Model(&database.SaleItem{}).
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.user_id = ? AND sales.created_at >= ? AND sales.payment_status <> ?",
			userID, todayStart, database.StatusCancelled).
		Select("COALESCE(SUM(sale_items.quantity), 0)").
		Scan(&stats.TodayItemsSold)

	// Month expenses
	h.db.Model(&database.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND date >= ?", userID, monthStart).
		Scan(&stats.MonthExpenses)

	// Product counts
	var products []database.Product
	h.db.Where("user_id = ?", userID).Find(&products)
	stats.TotalProducts = len(products)
	for _, p := range products {
		threshold := 10.0
		if p.MinStock != nil {
			threshold = *p.MinStock
		}
		if p.Stock < threshold {
			stats.LowStockCount++
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GetTopProducts returns best selling products for the current month
func (h *Handler) GetTopProducts(c *gin.Context) {
	userID := c.GetString("user_id")

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var topProducts []TopProduct
	h.db.Model(&database.SaleItem{}).
		Select("sale_items.product_id, sale_items.product_name, SUM(sale_items.quantity) as total_qty, SUM(sale_items.line_total) as total_sales").
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.user_id = ? AND sales.created_at >= ? AND sales.payment_status <> ?",
			userID, monthStart, database.StatusCancelled).
		Group("sale_items.product_id, sale_items.product_name").
		Order("total_qty DESC").
		Limit(5).
		Scan(&topProducts)

	c.JSON(http.StatusOK, gin.H{"data": topProducts})
}

// GetRecentSales returns the latest sales
func (h *Handler) GetRecentSales(c *gin.Context) {
	userID := c.GetString("user_id")

	var sales []database.Sale
	h.db.Where("user_id = ?", userID).
		Preload("Items").
		Order("created_at DESC").
		Limit(5).
		Find(&sales)

	c.JSON(http.StatusOK, gin.H{"data": sales})
}
