package sale

import (
	"testing"

	"github.com/google/uuid"

	"github.com/freshroot/freshroot-backend/pkg/database"
)

func kgProduct(name string, price, stock float64) database.Product {
	p := database.Product{Name: name, Price: price, Unit: database.UnitKg, Stock: stock}
	p.ID = uuid.New()
	return p
}

func pcsProduct(name string, price, stock float64) database.Product {
	p := database.Product{Name: name, Price: price, Unit: database.UnitPcs, Stock: stock}
	p.ID = uuid.New()
	return p
}

func TestUnitStep(t *testing.T) {
	for unit, want := range map[string]float64{
		database.UnitKg:   0.5,
		database.UnitG:    0.5,
		database.UnitL:    0.5,
		database.UnitMl:   0.5,
		database.UnitPcs:  1,
		database.UnitPack: 1,
	} {
		if got := UnitStep(unit); got != want {
			t.Errorf("UnitStep(%s) = %v, want %v", unit, got, want)
		}
	}
}

func TestAddProductWeightUnit(t *testing.T) {
	tomatoes := kgProduct("Organic Tomatoes", 80, 25)

	var cart Cart
	if w := cart.AddProduct(tomatoes); w != nil {
		t.Fatalf("unexpected warning: %+v", w)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 1 || cart.Lines[0].LineTotal != 80 {
		t.Fatalf("first add: qty=%v total=%v", cart.Lines[0].Quantity, cart.Lines[0].LineTotal)
	}

	// Second add increments by the 0.5 weight-unit step
	if w := cart.AddProduct(tomatoes); w != nil {
		t.Fatalf("unexpected warning: %+v", w)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 1.5 || cart.Lines[0].LineTotal != 120 {
		t.Fatalf("second add: qty=%v total=%v", cart.Lines[0].Quantity, cart.Lines[0].LineTotal)
	}
}

func TestAddProductCountUnit(t *testing.T) {
	eggs := pcsProduct("Free Range Eggs", 9.99, 50)

	var cart Cart
	cart.AddProduct(eggs)
	cart.AddProduct(eggs)
	if cart.Lines[0].Quantity != 2 {
		t.Fatalf("count unit should step by 1, got qty=%v", cart.Lines[0].Quantity)
	}
	if cart.Lines[0].LineTotal != 19.98 {
		t.Fatalf("line total = %v, want 19.98", cart.Lines[0].LineTotal)
	}
}

func TestAddProductOversellLeavesCartUntouched(t *testing.T) {
	lettuce := pcsProduct("Lettuce", 30, 0)

	var cart Cart
	w := cart.AddProduct(lettuce)
	if w == nil {
		t.Fatal("expected an overselling warning")
	}
	if w.Attempted != 1 || w.Stock != 0 {
		t.Fatalf("warning = %+v", w)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("cart mutated on warning: %+v", cart.Lines)
	}

	// Explicit proceed applies the mutation anyway
	cart.ForceAddProduct(lettuce)
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 1 {
		t.Fatalf("force add failed: %+v", cart.Lines)
	}
}

func TestUpdateQuantity(t *testing.T) {
	carrots := kgProduct("Carrots", 40, 10)

	var cart Cart
	cart.AddProduct(carrots)

	if w := cart.UpdateQuantity(carrots.ID, 2.5, carrots.Stock); w != nil {
		t.Fatalf("unexpected warning: %+v", w)
	}
	if cart.Lines[0].Quantity != 2.5 || cart.Lines[0].LineTotal != 100 {
		t.Fatalf("after update: qty=%v total=%v", cart.Lines[0].Quantity, cart.Lines[0].LineTotal)
	}

	// Exceeding stock warns and keeps the old quantity
	if w := cart.UpdateQuantity(carrots.ID, 11, carrots.Stock); w == nil {
		t.Fatal("expected warning for quantity over stock")
	}
	if cart.Lines[0].Quantity != 2.5 {
		t.Fatalf("quantity changed on warning: %v", cart.Lines[0].Quantity)
	}

	// Zero or negative removes the line
	cart.UpdateQuantity(carrots.ID, 0, carrots.Stock)
	if len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart.Lines)
	}
}

func TestRemoveProduct(t *testing.T) {
	a := pcsProduct("A", 10, 5)
	b := pcsProduct("B", 20, 5)

	var cart Cart
	cart.AddProduct(a)
	cart.AddProduct(b)
	cart.RemoveProduct(a.ID)
	if len(cart.Lines) != 1 || cart.Lines[0].ProductID != b.ID {
		t.Fatalf("unexpected lines after removal: %+v", cart.Lines)
	}
}

func TestTotals(t *testing.T) {
	a := kgProduct("A", 33.33, 100)
	b := kgProduct("B", 11.11, 100)

	var cart Cart
	cart.AddProduct(a) // 33.33
	cart.AddProduct(b) // 11.11
	if got := cart.Subtotal(); got != 44.44 {
		t.Fatalf("subtotal = %v, want 44.44", got)
	}
	if got := cart.Total(4.44); got != 40 {
		t.Fatalf("total = %v, want 40", got)
	}
	if got := cart.Total(0); got != 44.44 {
		t.Fatalf("total with zero discount = %v, want 44.44", got)
	}
}
