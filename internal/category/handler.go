package category

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshroot/freshroot-backend/pkg/database"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// SeedDefaults inserts the default taxonomy for a new store
func SeedDefaults(db *gorm.DB, userID uuid.UUID) error {
	defaults := []database.Category{
		{UserID: userID, Name: "Vegetables", Icon: "🥬", Color: "#4CAF50"},
		{UserID: userID, Name: "Fruits", Icon: "🍎", Color: "#F44336"},
		{UserID: userID, Name: "Dairy", Icon: "🥛", Color: "#2196F3"},
		{UserID: userID, Name: "Grains", Icon: "🌾", Color: "#FF9800"},
		{UserID: userID, Name: "Beverages", Icon: "🧃", Color: "#9C27B0"},
		{UserID: userID, Name: "Other", Icon: "📦", Color: "#607D8B"},
	}
	return db.Create(&defaults).Error
}

// List returns all categories for the owner
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	var categories []database.Category
	if err := h.db.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// Create adds a new category
func (h *Handler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userIDStr := c.GetString("user_id")
	userID, _ := uuid.Parse(userIDStr)

	var existing database.Category
	if err := h.db.Where("user_id = ? AND name = ?", userID, req.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}

	category := database.Category{
		UserID: userID,
		Name:   req.Name,
		Icon:   req.Icon,
		Color:  req.Color,
	}

	if err := h.db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": category})
}
