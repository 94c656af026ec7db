// Package cart holds the transient, per-view shopping cart.
//
// A Cart is not safe for concurrent use; the view that owns it serialises access.
package cart

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/NunnaRupaSri/terraform-sample/pkg/shopapi"
)

type Line struct {
	shopapi.Product
	Quantity int `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps at most one line per product id, in the order products were first added.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add bumps the quantity of the product's line, or appends a new line with quantity 1.
// Stock is deliberately not consulted here.
func (c *Cart) Add(p shopapi.Product) Line {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return c.lines[i]
	}
	line := Line{Product: p, Quantity: 1}
	c.lines = append(c.lines, line)
	return line
}

// Remove drops the whole line for id regardless of its quantity.
func (c *Cart) Remove(id int64) bool {
	before := len(c.lines)
	c.lines = slices.DeleteFunc(c.lines, func(l Line) bool { return l.ID == id })
	return len(c.lines) != before
}

func (c *Cart) quantity(id int64) int {
	if i := c.index(id); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) Lines() []Line {
	return slices.Clone(c.lines)
}

// Len is the number of distinct products in the cart.
func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Total is the sum of price * quantity over all lines, rounded to cents.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) index(id int64) int {
	return slices.IndexFunc(c.lines, func(l Line) bool { return l.ID == id })
}
