package product

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshroot/freshroot-backend/pkg/activitylog"
	"github.com/freshroot/freshroot-backend/pkg/database"
)

type Handler struct {
	db     *gorm.DB
	logger *activitylog.Logger
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		db:     db,
		logger: activitylog.NewLogger(db),
	}
}

type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Category    string   `json:"category"`
	Stock       float64  `json:"stock" binding:"gte=0"`
	Unit        string   `json:"unit"`
	MinStock    *float64 `json:"min_stock"`
	ImageURL    string   `json:"image_url"`
	Description string   `json:"description"`
}

type RestockRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Note     string  `json:"note"`
}

// validateUnitStock enforces the unit policy: fractional stock is only legal
// for weight/volume units.
func validateUnitStock(unit string, stock float64) string {
	if !database.ValidUnit(unit) {
		return "Invalid unit of measure"
	}
	if !database.UnitAllowsFraction(unit) && stock != math.Trunc(stock) {
		return "Fractional stock is not allowed for unit " + unit
	}
	return ""
}

// List returns all products for the owner, optionally filtered by category
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")
	categoryName := c.Query("category")

	query := h.db.Where("user_id = ?", userID)
	if categoryName != "" {
		query = query.Where("category = ?", categoryName)
	}

	var products []database.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products})
}

// Create adds a new product
func (h *Handler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unit := req.Unit
	if unit == "" {
		unit = database.UnitPcs
	}
	if msg := validateUnitStock(unit, req.Stock); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	userIDStr := c.GetString("user_id")
	userID, _ := uuid.Parse(userIDStr)

	product := database.Product{
		UserID:      userID,
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		Unit:        unit,
		MinStock:    req.MinStock,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	}

	if err := h.db.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	h.logger.LogCreate(c, "product", product.ID, map[string]interface{}{
		"name":  product.Name,
		"price": product.Price,
		"unit":  product.Unit,
		"stock": product.Stock,
	})

	c.JSON(http.StatusCreated, gin.H{"data": product})
}

// Get returns a single product
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("id")

	var product database.Product
	if err := h.db.Where("id = ? AND user_id = ?", productID, userID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// Update modifies a product
func (h *Handler) Update(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("id")

	var product database.Product
	if err := h.db.Where("id = ? AND user_id = ?", productID, userID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	oldValues := map[string]interface{}{
		"name":     product.Name,
		"price":    product.Price,
		"category": product.Category,
		"stock":    product.Stock,
		"unit":     product.Unit,
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unit := req.Unit
	if unit == "" {
		unit = product.Unit
	}
	if msg := validateUnitStock(unit, req.Stock); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	product.Name = req.Name
	product.Price = req.Price
	product.Category = req.Category
	product.Stock = req.Stock
	product.Unit = unit
	product.MinStock = req.MinStock
	product.ImageURL = req.ImageURL
	product.Description = req.Description

	if err := h.db.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	h.logger.LogUpdate(c, "product", product.ID, oldValues, map[string]interface{}{
		"name":     product.Name,
		"price":    product.Price,
		"category": product.Category,
		"stock":    product.Stock,
		"unit":     product.Unit,
	})

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// Delete soft-deletes a product
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("id")

	var product database.Product
	if err := h.db.Where("id = ? AND user_id = ?", productID, userID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := h.db.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	h.logger.LogDelete(c, "product", product.ID, map[string]interface{}{
		"name":  product.Name,
		"price": product.Price,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// Restock increments a product's stock by a positive quantity
func (h *Handler) Restock(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("id")

	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product database.Product
	if err := h.db.Where("id = ? AND user_id = ?", productID, userID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if msg := validateUnitStock(product.Unit, req.Quantity); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if err := h.db.Model(&product).Update("stock", gorm.Expr("stock + ?", req.Quantity)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
		return
	}

	h.db.First(&product, product.ID)

	h.logger.LogUpdate(c, "product", product.ID, nil, map[string]interface{}{
		"restocked": req.Quantity,
		"stock":     product.Stock,
		"note":      req.Note,
	})

	c.JSON(http.StatusOK, gin.H{"data": product})
}
