package waste

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshroot/freshroot-backend/pkg/activitylog"
	"github.com/freshroot/freshroot-backend/pkg/database"
	"github.com/freshroot/freshroot-backend/pkg/money"
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

type CreateWasteRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  float64   `json:"quantity" binding:"required,gt=0"`
	Reason    string    `json:"reason"`
}

// List returns waste entries for the owner, optionally filtered by status
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")
	status := c.Query("status")

	query := h.db.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var entries []database.WasteEntry
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch waste entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// Create records a waste entry. The cost is computed from the product's
// current price and frozen on the entry.
func (h *Handler) Create(c *gin.Context) {
	var req CreateWasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userIDStr := c.GetString("user_id")
	userID, _ := uuid.Parse(userIDStr)

	var product database.Product
	if err := h.db.Where("id = ? AND user_id = ?", req.ProductID, userID).First(&product).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product not found"})
		return
	}

	if !database.UnitAllowsFraction(product.Unit) && req.Quantity != math.Trunc(req.Quantity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Fractional quantity is not allowed for unit %s", product.Unit)})
		return
	}

	entry := database.WasteEntry{
		UserID:      userID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Unit:        product.Unit,
		Quantity:    req.Quantity,
		Cost:        money.Round2(product.Price * req.Quantity),
		Reason:      req.Reason,
		Status:      database.WastePending,
	}

	if err := h.db.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create waste entry"})
		return
	}

	h.logger.LogCreate(c, "waste", entry.ID, map[string]interface{}{
		"product": entry.ProductName,
		"qty":     entry.Quantity,
		"cost":    entry.Cost,
	})

	c.JSON(http.StatusCreated, gin.H{"data": entry})
}

// Approve moves a pending entry to approved
func (h *Handler) Approve(c *gin.Context) {
	h.resolve(c, database.WasteApproved)
}

// Reject moves a pending entry to rejected
func (h *Handler) Reject(c *gin.Context) {
	h.resolve(c, database.WasteRejected)
}

// resolve transitions a pending entry to a terminal status
func (h *Handler) resolve(c *gin.Context, status string) {
	userID := c.GetString("user_id")
	entryID := c.Param("id")

	var entry database.WasteEntry
	if err := h.db.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Waste entry not found"})
		return
	}

	if entry.Status != database.WastePending {
		c.JSON(http.StatusConflict, gin.H{"error": "Waste entry is already resolved"})
		return
	}

	entry.Status = status
	if err := h.db.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update waste entry"})
		return
	}

	h.logger.LogUpdate(c, "waste", entry.ID, map[string]interface{}{"status": database.WastePending},
		map[string]interface{}{"status": entry.Status})

	c.JSON(http.StatusOK, gin.H{"data": entry})
}
