package customer

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

func setupCustomerTest(t *testing.T) (*gorm.DB, *gin.Engine, uuid.UUID) {
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
	r.GET("/customers", h.List)
	r.POST("/customers", h.Create)
	r.PUT("/customers/:id", h.Update)
	r.DELETE("/customers/:id", h.Delete)

	return db, r, user.ID
}

func postCustomer(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCustomer(t *testing.T) {
	db, r, _ := setupCustomerTest(t)

	w := postCustomer(t, r, `{"first_name":"Asha","last_name":"Patel","phone":"(987) 654-3210","email":"asha@example.com"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data database.Customer `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Phone != "9876543210" {
		t.Fatalf("phone not normalized: %q", resp.Data.Phone)
	}
	_ = db
}

func TestCreateCustomerDuplicatePhone(t *testing.T) {
	db, r, _ := setupCustomerTest(t)

	if w := postCustomer(t, r, `{"first_name":"Asha","phone":"9876543210"}`); w.Code != http.StatusCreated {
		t.Fatalf("first create: %d", w.Code)
	}

	w := postCustomer(t, r, `{"first_name":"Ravi","phone":"9876543210"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}

	// The customer list is unchanged
	var count int64
	db.Model(&database.Customer{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 customer, got %d", count)
	}
}

func TestRecreateCustomerAfterDelete(t *testing.T) {
	db, r, _ := setupCustomerTest(t)

	w := postCustomer(t, r, `{"first_name":"Asha","phone":"9876543210"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("first create: %d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		Data database.Customer `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)

	req := httptest.NewRequest(http.MethodDelete, "/customers/"+created.Data.ID.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d body=%s", rec.Code, rec.Body.String())
	}

	// The phone number is free again once its customer is gone
	w = postCustomer(t, r, `{"first_name":"Ravi","phone":"9876543210"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("re-create after delete: %d body=%s", w.Code, w.Body.String())
	}

	// And the new live row blocks further duplicates as usual
	if w := postCustomer(t, r, `{"first_name":"Mira","phone":"9876543210"}`); w.Code != http.StatusConflict {
		t.Fatalf("duplicate of re-created customer: %d", w.Code)
	}

	var live int64
	db.Model(&database.Customer{}).Count(&live)
	if live != 1 {
		t.Fatalf("expected 1 live customer, got %d", live)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	_, r, _ := setupCustomerTest(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing first name", `{"phone":"9876543210"}`},
		{"blank first name", `{"first_name":"  ","phone":"9876543210"}`},
		{"short phone", `{"first_name":"Asha","phone":"12345"}`},
		{"long phone", `{"first_name":"Asha","phone":"98765432101"}`},
		{"bad email", `{"first_name":"Asha","phone":"9876543210","email":"not-an-email"}`},
	}

	for _, tc := range cases {
		if w := postCustomer(t, r, tc.body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400 got %d body=%s", tc.name, w.Code, w.Body.String())
		}
	}
}

func TestUpdateCustomerPhoneConflict(t *testing.T) {
	db, r, userID := setupCustomerTest(t)

	first := database.Customer{UserID: userID, FirstName: "Asha", Phone: "9876543210"}
	second := database.Customer{UserID: userID, FirstName: "Ravi", Phone: "9123456780"}
	db.Create(&first)
	db.Create(&second)

	req := httptest.NewRequest(http.MethodPut, "/customers/"+second.ID.String(),
		strings.NewReader(`{"first_name":"Ravi","phone":"9876543210"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestSearchCustomers(t *testing.T) {
	db, r, userID := setupCustomerTest(t)

	db.Create(&database.Customer{UserID: userID, FirstName: "Asha", LastName: "Patel", Phone: "9876543210", Email: "asha@example.com"})
	db.Create(&database.Customer{UserID: userID, FirstName: "Ravi", LastName: "Kumar", Phone: "9123456780"})

	search := func(q string) []database.Customer {
		req := httptest.NewRequest(http.MethodGet, "/customers?search="+q, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("search %q: %d", q, w.Code)
		}
		var resp struct {
			Data []database.Customer `json:"data"`
		}
		json.Unmarshal(w.Body.Bytes(), &resp)
		return resp.Data
	}

	if got := search("asha"); len(got) != 1 || got[0].FirstName != "Asha" {
		t.Fatalf("name search: %+v", got)
	}
	if got := search("912345"); len(got) != 1 || got[0].FirstName != "Ravi" {
		t.Fatalf("phone search: %+v", got)
	}
	if got := search("example.com"); len(got) != 1 {
		t.Fatalf("email search: %+v", got)
	}
	if got := search("zzz"); len(got) != 0 {
		t.Fatalf("no-match search: %+v", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"(987) 654-3210": "9876543210",
		"+91 98765 43210": "919876543210",
		"9876543210":      "9876543210",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}
