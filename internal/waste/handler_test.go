package waste

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freshroot/freshroot-backend/pkg/database"
)

func setupWasteTest(t *testing.T) (*gorm.DB, *gin.Engine, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	user := database.User{Email: t.Name() + "@test", Name: "Owner"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}

	h := NewHandler(db)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", user.ID.String())
		c.Next()
	})
	r.GET("/waste", h.List)
	r.POST("/waste", h.Create)
	r.POST("/waste/:id/approve", h.Approve)
	r.POST("/waste/:id/reject", h.Reject)

	return db, r, user.ID
}

func postWaste(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/waste", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type wasteEnvelope struct {
	Data database.WasteEntry `json:"data"`
}

func TestCreateWasteFreezesCost(t *testing.T) {
	db, r, userID := setupWasteTest(t)

	spinach := database.Product{UserID: userID, Name: "Baby Spinach", Price: 60, Unit: database.UnitKg, Stock: 8}
	db.Create(&spinach)

	w := postWaste(t, r, fmt.Sprintf(`{"product_id":%q,"quantity":1.5,"reason":"wilted"}`, spinach.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d body=%s", w.Code, w.Body.String())
	}

	var resp wasteEnvelope
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Cost != 90 {
		t.Fatalf("cost = %v, want 90", resp.Data.Cost)
	}
	if resp.Data.Status != database.WastePending {
		t.Fatalf("status = %q, want pending", resp.Data.Status)
	}

	// Raising the product price later does not touch the recorded cost
	db.Model(&spinach).Update("price", 100)
	var stored database.WasteEntry
	db.First(&stored, resp.Data.ID)
	if stored.Cost != 90 {
		t.Fatalf("cost changed after price update: %v", stored.Cost)
	}
}

func TestCreateWasteFractionalCountUnit(t *testing.T) {
	db, r, userID := setupWasteTest(t)

	eggs := database.Product{UserID: userID, Name: "Eggs", Price: 10, Unit: database.UnitPcs, Stock: 30}
	db.Create(&eggs)

	w := postWaste(t, r, fmt.Sprintf(`{"product_id":%q,"quantity":2.5}`, eggs.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateWasteUnknownProduct(t *testing.T) {
	_, r, _ := setupWasteTest(t)

	w := postWaste(t, r, fmt.Sprintf(`{"product_id":%q,"quantity":1}`, uuid.New()))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestResolveWasteIsTerminal(t *testing.T) {
	db, r, userID := setupWasteTest(t)

	entry := database.WasteEntry{
		UserID: userID, ProductID: uuid.New(), ProductName: "Kale",
		Unit: database.UnitKg, Quantity: 2, Cost: 100, Status: database.WastePending,
	}
	db.Create(&entry)

	approve := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/waste/"+entry.ID.String()+"/approve", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := approve(); w.Code != http.StatusOK {
		t.Fatalf("approve: %d body=%s", w.Code, w.Body.String())
	}
	var stored database.WasteEntry
	db.First(&stored, entry.ID)
	if stored.Status != database.WasteApproved {
		t.Fatalf("status = %q, want approved", stored.Status)
	}

	// Already-resolved entries refuse further transitions
	if w := approve(); w.Code != http.StatusConflict {
		t.Fatalf("second approve: %d", w.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/waste/"+entry.ID.String()+"/reject", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("reject after approve: %d", w.Code)
	}
}

func TestListWasteByStatus(t *testing.T) {
	db, r, userID := setupWasteTest(t)

	for _, status := range []string{database.WastePending, database.WasteApproved, database.WastePending} {
		db.Create(&database.WasteEntry{
			UserID: userID, ProductID: uuid.New(), ProductName: "X",
			Unit: database.UnitPcs, Quantity: 1, Cost: 10, Status: status,
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/waste?status=pending", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}

	var resp struct {
		Data []database.WasteEntry `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 pending entries, got %d", len(resp.Data))
	}
}
