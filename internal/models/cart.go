package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variant holds the optional selectors that distinguish physical variants of
// the same product. An empty field means "no selector"; all three fields take
// part in line identity, so an item added without a size never merges with an
// item that has one.
type Variant struct {
	Size   string `bson:"size,omitempty" json:"size,omitempty"`
	Color  string `bson:"color,omitempty" json:"color,omitempty"`
	Weight string `bson:"weight,omitempty" json:"weight,omitempty"`
}

// CartItem is a single line in a cart. UnitPrice is snapshotted when the item
// is added and is not affected by later product edits.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	UnitPrice float64            `bson:"unitPrice" json:"unitPrice"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Variant   Variant            `bson:"variant" json:"variant"`
	LineTotal float64            `bson:"lineTotal" json:"lineTotal"`
	AddedAt   time.Time          `bson:"addedAt" json:"addedAt"`
}

// Cart is the single active cart of a user.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	Subtotal  float64            `bson:"subtotal" json:"subtotal"`
	Total     float64            `bson:"total" json:"total"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SameLine reports whether the item and the given product/variant pair
// identify the same cart line.
func (i CartItem) SameLine(productID primitive.ObjectID, v Variant) bool {
	return i.ProductID == productID && i.Variant == v
}

// Recompute refreshes every line total and the cart totals. It must run after
// every mutation so that total == subtotal == sum of line totals.
func (c *Cart) Recompute() {
	subtotal := 0.0
	for idx := range c.Items {
		item := &c.Items[idx]
		item.LineTotal = float64(item.Quantity) * item.UnitPrice
		subtotal += item.LineTotal
	}
	c.Subtotal = subtotal
	c.Total = subtotal
}

// FindLine returns the index of the line matching (productID, variant), or -1.
func (c *Cart) FindLine(productID primitive.ObjectID, v Variant) int {
	for idx, item := range c.Items {
		if item.SameLine(productID, v) {
			return idx
		}
	}
	return -1
}

// AddLine merges the quantity into an existing matching line or appends a new
// one, then recomputes totals.
func (c *Cart) AddLine(item CartItem) {
	if idx := c.FindLine(item.ProductID, item.Variant); idx >= 0 {
		c.Items[idx].Quantity += item.Quantity
	} else {
		c.Items = append(c.Items, item)
	}
	c.Recompute()
}

// SetLineQuantity replaces the quantity of the matching line. It returns false
// when no line matches.
func (c *Cart) SetLineQuantity(productID primitive.ObjectID, v Variant, quantity int) bool {
	idx := c.FindLine(productID, v)
	if idx < 0 {
		return false
	}
	c.Items[idx].Quantity = quantity
	c.Recompute()
	return true
}

// RemoveLine filters out the matching line and recomputes totals. Removing an
// absent line is a no-op; the returned bool tells whether a line was dropped.
func (c *Cart) RemoveLine(productID primitive.ObjectID, v Variant) bool {
	idx := c.FindLine(productID, v)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.Recompute()
	return true
}

// Clear empties the cart in place. Carts are emptied, never deleted, so "no
// cart document" and "empty cart" read the same.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Recompute()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
