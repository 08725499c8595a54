// Package cart holds the order-form draft: the products picked for a new
// order. It lives for the session only and is never persisted.
package cart

import "errors"

// ErrDuplicateItem is returned when a product id is already in the cart.
// Duplicate adds are rejected, not merged.
var ErrDuplicateItem = errors.New("item already in cart")

// Item is one product in the cart.
type Item struct {
	ProductID string
	Title     string
	Price     float64
	Image     string
}

// Cart is an ordered collection of items with at most one entry per
// product id.
type Cart struct {
	items []Item
}

func New() *Cart {
	return &Cart{}
}

// Add appends item unless its product id is already present, in which
// case the cart is left unchanged and ErrDuplicateItem is returned.
func (c *Cart) Add(item Item) error {
	for _, it := range c.items {
		if it.ProductID == item.ProductID {
			return ErrDuplicateItem
		}
	}
	c.items = append(c.items, item)
	return nil
}

// Remove deletes the item with the given product id. Removing an absent
// id is a no-op.
func (c *Cart) Remove(productID string) {
	for i, it := range c.items {
		if it.ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// TotalPrice is the sum of item prices.
func (c *Cart) TotalPrice() float64 {
	var total float64
	for _, it := range c.items {
		total += it.Price
	}
	return total
}

// Count is the number of items in the cart.
func (c *Cart) Count() int {
	return len(c.items)
}
