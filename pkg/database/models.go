package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/plugin/soft_delete"
)

// Units of measure for products. Weight and volume units allow fractional
// quantities; count units are integer only.
const (
	UnitKg   = "kg"
	UnitG    = "g"
	UnitL    = "l"
	UnitMl   = "ml"
	UnitPcs  = "pcs"
	UnitPack = "pack"
)

// Payment methods
const (
	PaymentCash = "cash"
	PaymentCard = "card"
	PaymentUPI  = "upi"
)

// Payment statuses
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusPartial   = "partial"
	StatusCancelled = "cancelled"
)

// Waste entry statuses
const (
	WastePending  = "pending"
	WasteApproved = "approved"
	WasteRejected = "rejected"
)

// ValidUnit reports whether unit is one of the supported units of measure.
func ValidUnit(unit string) bool {
	switch unit {
	case UnitKg, UnitG, UnitL, UnitMl, UnitPcs, UnitPack:
		return true
	}
	return false
}

// UnitAllowsFraction reports whether fractional quantities and stock are
// legal for the given unit.
func UnitAllowsFraction(unit string) bool {
	switch unit {
	case UnitKg, UnitG, UnitL, UnitMl:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether method is a supported payment method.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCash, PaymentCard, PaymentUPI:
		return true
	}
	return false
}

// Base model for all entities
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID so primary keys behave the same on every
// supported database.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// User represents a store operator account. Every owner-scoped row carries
// the user's id as its owner key.
type User struct {
	BaseModel
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	GoogleID     string `gorm:"index" json:"-"` // For Google OAuth users
	PasswordHash string `json:"-"`              // Optional for OAuth users
	Name         string `gorm:"not null" json:"name"`
	StoreName    string `json:"store_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Currency     string `gorm:"default:'INR'" json:"currency"`
}

// Category for products. A small icon/color taxonomy, insert-only.
type Category struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string    `gorm:"not null" json:"name"`
	Icon   string    `json:"icon"`
	Color  string    `json:"color"`
}

// Product represents a sellable item. Stock is only mutated by checkout
// (decrement), explicit restock (increment) and bulk import.
type Product struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string    `gorm:"not null" json:"name"`
	Price       float64   `gorm:"not null" json:"price"`
	Category    string    `json:"category"`
	Stock       float64   `gorm:"default:0" json:"stock"`
	Unit        string    `gorm:"not null;default:'pcs'" json:"unit"`
	MinStock    *float64  `json:"min_stock"`
	ImageURL    string    `json:"image_url"`
	Description string    `json:"description"`
}

// Customer represents a buyer. Phone is the de-duplication key per owner.
// The unique index includes deleted_at (zero for live rows) so a phone
// number becomes reusable once its customer is deleted.
type Customer struct {
	ID             uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	DeletedAt      soft_delete.DeletedAt `gorm:"index:idx_customers_owner_phone,unique" json:"-"`
	UserID         uuid.UUID             `gorm:"type:uuid;not null;index:idx_customers_owner_phone,unique" json:"user_id"`
	FirstName      string                `gorm:"not null" json:"first_name"`
	LastName       string                `json:"last_name"`
	Phone          string                `gorm:"not null;index:idx_customers_owner_phone,unique" json:"phone"`
	Email          string                `json:"email"`
	Address        string                `json:"address"`
	AgeGroup       string                `json:"age_group"`
	TotalPurchases float64               `gorm:"default:0" json:"total_purchases"`
	LastPurchaseAt *time.Time            `json:"last_purchase_at"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Sale represents a completed checkout. Immutable after creation except for
// the payment fields, which move together through the payment endpoint.
type Sale struct {
	BaseModel
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_sales_owner_receipt,unique" json:"user_id"`
	ReceiptCode     string     `gorm:"not null;index:idx_sales_owner_receipt,unique" json:"receipt_code"`
	CustomerID      *uuid.UUID `gorm:"type:uuid" json:"customer_id"`
	Customer        *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items           []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
	Subtotal        float64    `gorm:"not null" json:"subtotal"`
	Discount        float64    `gorm:"default:0" json:"discount"`
	Tax             float64    `gorm:"default:0" json:"tax"`
	Total           float64    `gorm:"not null" json:"total"`
	PaymentMethod   string     `gorm:"default:'cash'" json:"payment_method"`     // cash, card, upi
	PaymentStatus   string     `gorm:"default:'completed'" json:"payment_status"` // completed, pending, partial, cancelled
	PaidAmount      float64    `gorm:"default:0" json:"paid_amount"`
	RemainingAmount float64    `gorm:"default:0" json:"remaining_amount"`
	CashReceived    *float64   `json:"cash_received"`
	ChangeGiven     *float64   `json:"change_given"`
}

// SaleItem represents a line within a sale. Product name and unit price are
// captured at sale time and never change afterwards.
type SaleItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string    `gorm:"not null" json:"product_name"`
	Unit        string    `json:"unit"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	LineTotal   float64   `gorm:"not null" json:"line_total"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Expense is a simple ledger entry.
type Expense struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Date        time.Time `gorm:"not null" json:"date"`
	Category    string    `gorm:"not null" json:"category"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Description string    `json:"description"`
	ReceiptURL  string    `json:"receipt_url"`
}

// WasteEntry records discarded stock. Cost is frozen at entry time; later
// price changes on the product do not affect it.
type WasteEntry struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string    `gorm:"not null" json:"product_name"`
	Unit        string    `json:"unit"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	Cost        float64   `gorm:"not null" json:"cost"`
	Reason      string    `json:"reason"`
	Status      string    `gorm:"default:'pending'" json:"status"` // pending, approved, rejected
}

// ActivityLog tracks owner actions for the audit trail, including oversell
// overrides at checkout.
type ActivityLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Action     string     `gorm:"not null" json:"action"` // create, update, delete, oversell_override
	EntityType string     `json:"entity_type"`            // product, customer, sale, expense, waste
	EntityID   *uuid.UUID `gorm:"type:uuid" json:"entity_id"`
	Details    string     `gorm:"type:text" json:"details"`
	IPAddress  string     `json:"ip_address"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Category{},
		&Product{},
		&Customer{},
		&Sale{},
		&SaleItem{},
		&Expense{},
		&WasteEntry{},
		&ActivityLog{},
	)
}
