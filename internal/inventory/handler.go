package inventory

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshroot/freshroot-backend/pkg/database"
)

// DefaultMinStock is the alert threshold for products without an explicit
// minimum-stock setting.
const DefaultMinStock = 10

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type InventoryItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Category    string    `json:"category"`
	Unit        string    `json:"unit"`
	Stock       float64   `json:"stock"`
	MinStock    float64   `json:"min_stock"`
	Price       float64   `json:"price"`
	StockValue  float64   `json:"stock_value"`
	Status      string    `json:"status"` // ok, low, out
}

type InventorySummary struct {
	TotalProducts   int     `json:"total_products"`
	TotalStockValue float64 `json:"total_stock_value"`
	LowStockCount   int     `json:"low_stock_count"`
	OutOfStockCount int     `json:"out_of_stock_count"`
}

func thresholdFor(p database.Product) float64 {
	if p.MinStock != nil {
		return *p.MinStock
	}
	return DefaultMinStock
}

func statusFor(p database.Product) string {
	if p.Stock <= 0 {
		return "out"
	}
	if p.Stock < thresholdFor(p) {
		return "low"
	}
	return "ok"
}

// GetInventory returns inventory status for all products
func (h *Handler) GetInventory(c *gin.Context) {
	userID := c.GetString("user_id")
	filter := c.Query("filter") // all, low, out

	var products []database.Product
	h.db.Where("user_id = ?", userID).
		Order("name ASC").
		Find(&products)

	var items []InventoryItem
	for _, p := range products {
		status := statusFor(p)

		if filter == "low" && status != "low" {
			continue
		}
		if filter == "out" && status != "out" {
			continue
		}

		items = append(items, InventoryItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Category:    p.Category,
			Unit:        p.Unit,
			Stock:       p.Stock,
			MinStock:    thresholdFor(p),
			Price:       p.Price,
			StockValue:  p.Stock * p.Price,
			Status:      status,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// GetSummary returns inventory summary stats
func (h *Handler) GetSummary(c *gin.Context) {
	userID := c.GetString("user_id")

	var products []database.Product
	h.db.Where("user_id = ?", userID).Find(&products)

	var summary InventorySummary
	summary.TotalProducts = len(products)
	for _, p := range products {
		summary.TotalStockValue += p.Stock * p.Price
		switch statusFor(p) {
		case "low":
			summary.LowStockCount++
		case "out":
			summary.OutOfStockCount++
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// GetAlerts returns products that need attention
func (h *Handler) GetAlerts(c *gin.Context) {
	userID := c.GetString("user_id")

	var products []database.Product
	h.db.Where("user_id = ?", userID).Order("stock ASC").Find(&products)

	var lowStock []database.Product
	var outOfStock []database.Product
	for _, p := range products {
		switch statusFor(p) {
		case "low":
			lowStock = append(lowStock, p)
		case "out":
			outOfStock = append(outOfStock, p)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"low_stock":    lowStock,
			"out_of_stock": outOfStock,
		},
	})
}
