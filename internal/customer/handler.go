package customer

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshroot/freshroot-backend/pkg/activitylog"
	"github.com/freshroot/freshroot-backend/pkg/database"
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
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

type CreateCustomerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	AgeGroup  string `json:"age_group"`
}

// NormalizePhone strips non-digit characters. The result must be exactly 10
// digits to be accepted.
func NormalizePhone(phone string) string {
	return nonDigitRe.ReplaceAllString(phone, "")
}

func validateRequest(req *CreateCustomerRequest) string {
	if strings.TrimSpace(req.FirstName) == "" {
		return "First name is required"
	}
	phone := NormalizePhone(req.Phone)
	if len(phone) != 10 {
		return "Phone number must have exactly 10 digits"
	}
	req.Phone = phone
	if req.Email != "" && !emailRe.MatchString(req.Email) {
		return "Invalid email address"
	}
	return ""
}

// List returns all customers for the owner, with optional substring search
// across name, phone and email
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")
	search := c.Query("search")

	query := h.db.Where("user_id = ?", userID)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(first_name || ' ' || last_name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	var customers []database.Customer
	if err := query.Order("first_name ASC").Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": customers})
}

// Create adds a new customer. A phone number already used by another customer
// of the same owner is rejected, never merged.
func (h *Handler) Create(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := validateRequest(&req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	userIDStr := c.GetString("user_id")
	userID, _ := uuid.Parse(userIDStr)

	var existing database.Customer
	if err := h.db.Where("user_id = ? AND phone = ?", userID, req.Phone).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A customer with this phone number already exists"})
		return
	}

	customer := database.Customer{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		AgeGroup:  req.AgeGroup,
	}

	if err := h.db.Create(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
		return
	}

	h.logger.LogCreate(c, "customer", customer.ID, map[string]interface{}{
		"first_name": customer.FirstName,
		"phone":      customer.Phone,
	})

	c.JSON(http.StatusCreated, gin.H{"data": customer})
}

// Get returns a single customer
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetString("user_id")
	customerID := c.Param("id")

	var customer database.Customer
	if err := h.db.Where("id = ? AND user_id = ?", customerID, userID).First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": customer})
}

// Update modifies a customer
func (h *Handler) Update(c *gin.Context) {
	userID := c.GetString("user_id")
	customerID := c.Param("id")

	var customer database.Customer
	if err := h.db.Where("id = ? AND user_id = ?", customerID, userID).First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := validateRequest(&req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	// The new phone must not belong to a different customer
	var existing database.Customer
	if err := h.db.Where("user_id = ? AND phone = ? AND id <> ?", userID, req.Phone, customer.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A customer with this phone number already exists"})
		return
	}

	oldValues := map[string]interface{}{
		"first_name": customer.FirstName,
		"phone":      customer.Phone,
		"email":      customer.Email,
	}

	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address
	customer.AgeGroup = req.AgeGroup

	if err := h.db.Save(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
		return
	}

	h.logger.LogUpdate(c, "customer", customer.ID, oldValues, map[string]interface{}{
		"first_name": customer.FirstName,
		"phone":      customer.Phone,
		"email":      customer.Email,
	})

	c.JSON(http.StatusOK, gin.H{"data": customer})
}

// Delete soft-deletes a customer
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")
	customerID := c.Param("id")

	var customer database.Customer
	if err := h.db.Where("id = ? AND user_id = ?", customerID, userID).First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	if err := h.db.Delete(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete customer"})
		return
	}

	h.logger.LogDelete(c, "customer", customer.ID, map[string]interface{}{
		"first_name": customer.FirstName,
		"phone":      customer.Phone,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted"})
}

// GetStats returns customer purchase statistics
func (h *Handler) GetStats(c *gin.Context) {
	userID := c.GetString("user_id")
	customerID := c.Param("id")

	var stats struct {
		TotalSales int64   `json:"total_sales"`
		TotalSpent float64 `json:"total_spent"`
	}

	h.db.Model(&database.Sale{}).
		Select("COUNT(*) as total_sales, COALESCE(SUM(total), 0) as total_spent").
		Where("user_id = ? AND customer_id = ? AND payment_status <> ?", userID, customerID, database.StatusCancelled).
		Scan(&stats)

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
