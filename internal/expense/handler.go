package expense

import (
	"net/http"
	"time"

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

type CreateExpenseRequest struct {
	Date        string  `json:"date" binding:"required"` // 2006-01-02
	Category    string  `json:"category" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description"`
	ReceiptURL  string  `json:"receipt_url"`
}

// List returns all expenses for the owner, optionally limited to a date range
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	query := h.db.Where("user_id = ?", userID)
	if from := c.Query("start_date"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("date >= ?", parsed)
		}
	}
	if to := c.Query("end_date"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("date <= ?", time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, 0, parsed.Location()))
		}
	}

	var expenses []database.Expense
	if err := query.Order("date DESC").Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": expenses})
}

// Create adds a new expense
func (h *Handler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	userIDStr := c.GetString("user_id")
	userID, _ := uuid.Parse(userIDStr)

	expense := database.Expense{
		UserID:      userID,
		Date:        date,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		ReceiptURL:  req.ReceiptURL,
	}

	if err := h.db.Create(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create expense"})
		return
	}

	h.logger.LogCreate(c, "expense", expense.ID, map[string]interface{}{
		"category": expense.Category,
		"amount":   expense.Amount,
	})

	c.JSON(http.StatusCreated, gin.H{"data": expense})
}

// Update modifies an expense
func (h *Handler) Update(c *gin.Context) {
	userID := c.GetString("user_id")
	expenseID := c.Param("id")

	var expense database.Expense
	if err := h.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	oldValues := map[string]interface{}{
		"category": expense.Category,
		"amount":   expense.Amount,
	}

	expense.Date = date
	expense.Category = req.Category
	expense.Amount = req.Amount
	expense.Description = req.Description
	expense.ReceiptURL = req.ReceiptURL

	if err := h.db.Save(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expense"})
		return
	}

	h.logger.LogUpdate(c, "expense", expense.ID, oldValues, map[string]interface{}{
		"category": expense.Category,
		"amount":   expense.Amount,
	})

	c.JSON(http.StatusOK, gin.H{"data": expense})
}

// Delete removes an expense
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")
	expenseID := c.Param("id")

	var expense database.Expense
	if err := h.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}

	if err := h.db.Delete(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
		return
	}

	h.logger.LogDelete(c, "expense", expense.ID, map[string]interface{}{
		"category": expense.Category,
		"amount":   expense.Amount,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
}
