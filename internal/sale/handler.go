package sale

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

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

type SaleItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  float64   `json:"quantity" binding:"required,gt=0"`
}

type CreateSaleRequest struct {
	CustomerID    *uuid.UUID        `json:"customer_id"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1"`
	Discount      float64           `json:"discount" binding:"gte=0"`
	Tax           float64           `json:"tax" binding:"gte=0"`
	PaymentMethod string            `json:"payment_method"`
	PaymentStatus string            `json:"payment_status"`
	PaidAmount    float64           `json:"paid_amount"` // for partial payments
	CashReceived  *float64          `json:"cash_received"`
	AllowOversell bool              `json:"allow_oversell"` // explicit operator override
}

type QuoteRequest struct {
	Items    []SaleItemRequest `json:"items" binding:"required,min=1"`
	Discount float64           `json:"discount" binding:"gte=0"`
}

type UpdatePaymentRequest struct {
	PaidAmount float64 `json:"paid_amount"`
	Status     string  `json:"status"`
}

// List returns all sales for the owner, newest first
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	var sales []database.Sale
	if err := h.db.Where("user_id = ?", userID).
		Preload("Items").
		Preload("Customer").
		Order("created_at DESC").
		Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sales})
}

// Get returns a single sale
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetString("user_id")
	saleID := c.Param("id")

	var sale database.Sale
	if err := h.db.Where("id = ? AND user_id = ?", saleID, userID).
		Preload("Items").
		Preload("Customer").
		First(&sale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale})
}

// Quote evaluates a proposed cart without persisting anything: per-line
// totals, subtotal, total and any overselling warnings.
func (h *Handler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")

	var cart Cart
	var warnings []OversellWarning
	for _, item := range req.Items {
		var product database.Product
		if err := h.db.Where("id = ? AND user_id = ?", item.ProductID, userID).First(&product).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Product %s not found", item.ProductID)})
			return
		}
		if msg := validateQuantity(product, item.Quantity); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		if item.Quantity > product.Stock {
			warnings = append(warnings, OversellWarning{
				ProductID:   product.ID,
				ProductName: product.Name,
				Attempted:   item.Quantity,
				Stock:       product.Stock,
			})
			continue
		}
		cart.Lines = append(cart.Lines, CartLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Unit:        product.Unit,
			UnitPrice:   product.Price,
			Quantity:    item.Quantity,
			LineTotal:   money.Round2(product.Price * item.Quantity),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"lines":    cart.Lines,
		"subtotal": cart.Subtotal(),
		"total":    cart.Total(req.Discount),
		"warnings": warnings,
	}})
}

func validateQuantity(p database.Product, qty float64) string {
	if !database.UnitAllowsFraction(p.Unit) && qty != math.Trunc(qty) {
		return fmt.Sprintf("Fractional quantity is not allowed for %s (unit %s)", p.Name, p.Unit)
	}
	return ""
}

type oversellOverride struct {
	product   database.Product
	requested float64
}

// Create processes a checkout. The stock re-check, sale insert, item inserts,
// stock decrements and customer totals all run in one database transaction.
func (h *Handler) Create(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = database.PaymentCash
	}
	if !database.ValidPaymentMethod(paymentMethod) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method"})
		return
	}

	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = database.StatusCompleted
	}
	switch paymentStatus {
	case database.StatusCompleted, database.StatusPending, database.StatusPartial:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment status"})
		return
	}

	userIDStr := c.GetString("user_id")
	userID, _ := uuid.Parse(userIDStr)

	tx := h.db.Begin()
	if tx.Error != nil {
		log.Printf("checkout: begin failed: %v", tx.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
		return
	}

	// Re-check stock against the store and build items
	var items []database.SaleItem
	var overrides []oversellOverride
	var subtotal float64

	for _, item := range req.Items {
		var product database.Product
		if err := tx.Where("id = ? AND user_id = ?", item.ProductID, userID).First(&product).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Product %s not found", item.ProductID)})
			return
		}

		if msg := validateQuantity(product, item.Quantity); msg != "" {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		if item.Quantity > product.Stock {
			if !req.AllowOversell {
				tx.Rollback()
				c.JSON(http.StatusConflict, gin.H{
					"error": fmt.Sprintf("Insufficient stock for %s", product.Name),
					"warning": OversellWarning{
						ProductID:   product.ID,
						ProductName: product.Name,
						Attempted:   item.Quantity,
						Stock:       product.Stock,
					},
				})
				return
			}
			overrides = append(overrides, oversellOverride{product: product, requested: item.Quantity})
		}

		lineTotal := money.Round2(product.Price * item.Quantity)
		items = append(items, database.SaleItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Unit:        product.Unit,
			UnitPrice:   product.Price,
			Quantity:    item.Quantity,
			LineTotal:   lineTotal,
		})
		subtotal += lineTotal

		// Reduce stock
		if err := tx.Model(&product).Update("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			log.Printf("checkout: stock update failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
			return
		}
	}

	subtotal = money.Round2(subtotal)
	total := money.Round2(subtotal - req.Discount + req.Tax)
	if total < 0 {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Discount exceeds subtotal"})
		return
	}

	// Payment bookkeeping: paid + remaining must always equal total
	var paidAmount, remainingAmount float64
	var cashReceived, changeGiven *float64

	switch paymentStatus {
	case database.StatusCompleted:
		paidAmount = total
		remainingAmount = 0
		if paymentMethod == database.PaymentCash {
			if req.CashReceived == nil || *req.CashReceived < total {
				tx.Rollback()
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cash received is less than the total"})
				return
			}
			change := money.Round2(*req.CashReceived - total)
			cashReceived = req.CashReceived
			changeGiven = &change
		}
	case database.StatusPending:
		paidAmount = 0
		remainingAmount = total
	case database.StatusPartial:
		if req.PaidAmount <= 0 || req.PaidAmount > total {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Partial payment must be greater than zero and at most the total"})
			return
		}
		paidAmount = money.Round2(req.PaidAmount)
		remainingAmount = money.Round2(total - paidAmount)
	}

	// Attach the customer, if any
	if req.CustomerID != nil {
		var customer database.Customer
		if err := tx.Where("id = ? AND user_id = ?", req.CustomerID, userID).First(&customer).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Customer not found"})
			return
		}
	}

	receiptCode, err := GenerateReceiptCode(func(code string) (bool, error) {
		var count int64
		if err := tx.Model(&database.Sale{}).
			Where("user_id = ? AND receipt_code = ?", userID, code).
			Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	})
	if err != nil {
		tx.Rollback()
		log.Printf("checkout: receipt code generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate receipt code"})
		return
	}

	sale := database.Sale{
		UserID:          userID,
		ReceiptCode:     receiptCode,
		CustomerID:      req.CustomerID,
		Items:           items,
		Subtotal:        subtotal,
		Discount:        req.Discount,
		Tax:             req.Tax,
		Total:           total,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   paymentStatus,
		PaidAmount:      paidAmount,
		RemainingAmount: remainingAmount,
		CashReceived:    cashReceived,
		ChangeGiven:     changeGiven,
	}

	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		log.Printf("checkout: sale insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
		return
	}

	// Bump the customer's running purchase total
	if req.CustomerID != nil {
		now := time.Now()
		if err := tx.Model(&database.Customer{}).
			Where("id = ? AND user_id = ?", req.CustomerID, userID).
			Updates(map[string]interface{}{
				"total_purchases":  gorm.Expr("total_purchases + ?", total),
				"last_purchase_at": now,
			}).Error; err != nil {
			tx.Rollback()
			log.Printf("checkout: customer update failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("checkout: commit failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
		return
	}

	// The override decision is recorded, one entry per force-completed line
	for _, o := range overrides {
		h.logger.LogOversellOverride(c, o.product.ID, o.product.Name, o.requested, o.product.Stock)
	}

	// Reload with associations
	h.db.Preload("Items").Preload("Customer").First(&sale, sale.ID)

	c.JSON(http.StatusCreated, gin.H{"data": sale})
}

// UpdatePayment is the only mutation a sale supports after creation. It moves
// paid amount, remaining amount and status together.
func (h *Handler) UpdatePayment(c *gin.Context) {
	userID := c.GetString("user_id")
	saleID := c.Param("id")

	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var sale database.Sale
	if err := h.db.Where("id = ? AND user_id = ?", saleID, userID).First(&sale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	if sale.PaymentStatus == database.StatusCompleted || sale.PaymentStatus == database.StatusCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "Sale payment is already settled"})
		return
	}

	oldValues := map[string]interface{}{
		"paid_amount":      sale.PaidAmount,
		"remaining_amount": sale.RemainingAmount,
		"payment_status":   sale.PaymentStatus,
	}

	switch {
	case req.Status == database.StatusCancelled:
		sale.PaymentStatus = database.StatusCancelled
	case req.PaidAmount > 0:
		if req.PaidAmount > sale.RemainingAmount {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment exceeds the remaining amount"})
			return
		}
		sale.PaidAmount = money.Round2(sale.PaidAmount + req.PaidAmount)
		sale.RemainingAmount = money.Round2(sale.Total - sale.PaidAmount)
		if sale.RemainingAmount == 0 {
			sale.PaymentStatus = database.StatusCompleted
		} else {
			sale.PaymentStatus = database.StatusPartial
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := h.db.Save(&sale).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sale"})
		return
	}

	h.logger.LogUpdate(c, "sale", sale.ID, oldValues, map[string]interface{}{
		"paid_amount":      sale.PaidAmount,
		"remaining_amount": sale.RemainingAmount,
		"payment_status":   sale.PaymentStatus,
	})

	c.JSON(http.StatusOK, gin.H{"data": sale})
}
