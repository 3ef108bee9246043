package profile

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshroot/freshroot-backend/pkg/database"
)

type Handler struct {
	db    *gorm.DB
	cache *Cache
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		db:    db,
		cache: NewCache(CacheTTL),
	}
}

type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	StoreName *string `json:"store_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Currency  *string `json:"currency"`
}

// Get returns the operator's store profile, served from the cache when fresh
func (h *Handler) Get(c *gin.Context) {
	userIDStr := c.GetString("user_id")
	userID, _ := uuid.Parse(userIDStr)

	if user, ok := h.cache.Get(userID, time.Now()); ok {
		c.JSON(http.StatusOK, gin.H{"data": user, "cached": true})
		return
	}

	var user database.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	h.cache.Put(user, time.Now())

	c.JSON(http.StatusOK, gin.H{"data": user})
}

// Update modifies the profile and invalidates the cached copy
func (h *Handler) Update(c *gin.Context) {
	userIDStr := c.GetString("user_id")
	userID, _ := uuid.Parse(userIDStr)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.StoreName != nil {
		user.StoreName = *req.StoreName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Currency != nil {
		user.Currency = *req.Currency
	}

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	h.cache.Invalidate(userID)

	c.JSON(http.StatusOK, gin.H{"data": user})
}
