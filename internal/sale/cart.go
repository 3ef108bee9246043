package sale

import (
	"github.com/google/uuid"

	"github.com/freshroot/freshroot-backend/pkg/database"
	"github.com/freshroot/freshroot-backend/pkg/money"
)

// CartLine is a working sale line before checkout.
type CartLine struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Unit        string    `json:"unit"`
	UnitPrice   float64   `json:"unit_price"`
	Quantity    float64   `json:"quantity"`
	LineTotal   float64   `json:"line_total"`
}

// OversellWarning is returned instead of mutating the cart when a requested
// quantity exceeds the product's recorded stock. The operator must decide to
// proceed (apply anyway) or cancel (discard).
type OversellWarning struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Attempted   float64   `json:"attempted"`
	Stock       float64   `json:"stock"`
}

// Cart accumulates sale lines before checkout.
type Cart struct {
	Lines []CartLine
}

// UnitStep is the per-click quantity increment: 0.5 for weight/volume units,
// 1 otherwise.
func UnitStep(unit string) float64 {
	if database.UnitAllowsFraction(unit) {
		return 0.5
	}
	return 1
}

func (c *Cart) find(productID uuid.UUID) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddProduct inserts the product with quantity 1 or increments an existing
// line by the unit step. If the resulting quantity would exceed stock, the
// cart is left untouched and a warning is returned.
func (c *Cart) AddProduct(p database.Product) *OversellWarning {
	qty := 1.0
	if i := c.find(p.ID); i >= 0 {
		qty = c.Lines[i].Quantity + UnitStep(p.Unit)
	}
	if qty > p.Stock {
		return &OversellWarning{ProductID: p.ID, ProductName: p.Name, Attempted: qty, Stock: p.Stock}
	}
	c.ForceAddProduct(p)
	return nil
}

// ForceAddProduct applies the add/increment regardless of stock. Used when
// the operator proceeds past an overselling warning.
func (c *Cart) ForceAddProduct(p database.Product) {
	if i := c.find(p.ID); i >= 0 {
		c.setQuantity(i, c.Lines[i].Quantity+UnitStep(p.Unit))
		return
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID:   p.ID,
		ProductName: p.Name,
		Unit:        p.Unit,
		UnitPrice:   p.Price,
		Quantity:    1,
		LineTotal:   money.Round2(p.Price),
	})
}

// UpdateQuantity sets a line's quantity. A quantity <= 0 removes the line;
// otherwise the same overselling check as AddProduct applies.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity, stock float64) *OversellWarning {
	i := c.find(productID)
	if i < 0 {
		return nil
	}
	if quantity <= 0 {
		c.RemoveProduct(productID)
		return nil
	}
	if quantity > stock {
		return &OversellWarning{
			ProductID:   productID,
			ProductName: c.Lines[i].ProductName,
			Attempted:   quantity,
			Stock:       stock,
		}
	}
	c.setQuantity(i, quantity)
	return nil
}

// RemoveProduct removes a line unconditionally.
func (c *Cart) RemoveProduct(productID uuid.UUID) {
	if i := c.find(productID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

func (c *Cart) setQuantity(i int, quantity float64) {
	c.Lines[i].Quantity = quantity
	c.Lines[i].LineTotal = money.Round2(c.Lines[i].UnitPrice * quantity)
}

// Subtotal is the sum of line totals, rounded to 2 decimal places.
func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, l := range c.Lines {
		sum += l.LineTotal
	}
	return money.Round2(sum)
}

// Total applies the discount to the subtotal.
func (c *Cart) Total(discount float64) float64 {
	return money.Round2(c.Subtotal() - discount)
}
