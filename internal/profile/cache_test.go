package profile

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freshroot/freshroot-backend/pkg/database"
)

func TestFresh(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 30 * time.Second

	cases := []struct {
		elapsed time.Duration
		want    bool
	}{
		{0, true},
		{29 * time.Second, true},
		{30 * time.Second, false},
		{time.Minute, false},
	}
	for _, tc := range cases {
		if got := Fresh(base, base.Add(tc.elapsed), ttl); got != tc.want {
			t.Errorf("Fresh after %v = %v, want %v", tc.elapsed, got, tc.want)
		}
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(30 * time.Second)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	user := database.User{Name: "Asha"}
	user.ID = uuid.New()
	cache.Put(user, now)

	if got, ok := cache.Get(user.ID, now.Add(10*time.Second)); !ok || got.Name != "Asha" {
		t.Fatalf("expected fresh hit, got ok=%v user=%+v", ok, got)
	}
	if _, ok := cache.Get(user.ID, now.Add(31*time.Second)); ok {
		t.Fatal("expected miss after TTL")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewCache(30 * time.Second)
	now := time.Now()

	user := database.User{Name: "Asha"}
	user.ID = uuid.New()
	cache.Put(user, now)
	cache.Invalidate(user.ID)

	if _, ok := cache.Get(user.ID, now); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func setupProfileTest(t *testing.T) (*gorm.DB, *gin.Engine, uuid.UUID) {
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

	user := database.User{Email: t.Name() + "@test", Name: "Owner", StoreName: "Fresh Root"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}

	h := NewHandler(db)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", user.ID.String())
		c.Next()
	})
	r.GET("/profile", h.Get)
	r.PUT("/profile", h.Update)

	return db, r, user.ID
}

func TestGetProfileCached(t *testing.T) {
	_, r, _ := setupProfileTest(t)

	get := func() map[string]json.RawMessage {
		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("get: %d body=%s", w.Code, w.Body.String())
		}
		var resp map[string]json.RawMessage
		json.Unmarshal(w.Body.Bytes(), &resp)
		return resp
	}

	// First read comes from the database
	if _, cached := get()["cached"]; cached {
		t.Fatal("first read should not be cached")
	}
	// Second read within the TTL is served from the cache
	if _, cached := get()["cached"]; !cached {
		t.Fatal("second read should be cached")
	}
}

func TestUpdateProfileInvalidatesCache(t *testing.T) {
	_, r, _ := setupProfileTest(t)

	// Warm the cache
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	upd := httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"store_name":"Green Basket"}`))
	upd.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, upd)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d body=%s", w.Code, w.Body.String())
	}

	// The read after an update reflects the new value, not a stale cache hit
	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp struct {
		Data   database.User `json:"data"`
		Cached bool          `json:"cached"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Cached {
		t.Fatal("read after update should not be served from cache")
	}
	if resp.Data.StoreName != "Green Basket" {
		t.Fatalf("store name = %q, want Green Basket", resp.Data.StoreName)
	}
}
