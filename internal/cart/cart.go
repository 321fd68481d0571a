// Package cart holds the shopping cart rules. It performs no I/O; the cart service
// loads and stores carts around these transitions.
package cart

import (
	"errors"

	"arc-web/internal/data/entity"
)

const (
	// MaxQuantity caps a single key line.
	MaxQuantity = 99
	// MaxKeyItems is the number of distinct key products a cart may hold.
	MaxKeyItems = 4
)

var (
	ErrKeyLimit        = errors.New("cart already holds the maximum number of different keys")
	ErrItemNotFound    = errors.New("item not in cart")
	ErrNotSubscription = errors.New("only subscriptions have a duration")
	ErrInvalidDuration = errors.New("invalid subscription duration")
)

type Item struct {
	Product  entity.Product
	Quantity int
	Duration *entity.Duration
}

// Subtotal applies the duration tier to subscriptions and the quantity to keys.
func (i Item) Subtotal() float64 {
	if i.Product.Type == entity.ProductTypeSubscription {
		d := entity.Duration30Days
		if i.Duration != nil {
			d = *i.Duration
		}
		return i.Product.Price * d.Multiplier()
	}
	return i.Product.Price * float64(i.Quantity)
}

type Cart struct {
	items []Item
}

func New(items ...Item) *Cart {
	return &Cart{items: append([]Item(nil), items...)}
}

// Items returns the lines in insertion order.
func (c *Cart) Items() []Item {
	return append([]Item(nil), c.items...)
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// AddItem puts product in the cart. A subscription replaces any other subscription;
// a key already present has its quantity raised by qty.
func (c *Cart) AddItem(product entity.Product, qty int) error {
	if qty < 1 {
		qty = 1
	}

	if product.Type == entity.ProductTypeSubscription {
		kept := c.items[:0]
		for _, item := range c.items {
			if item.Product.Type != entity.ProductTypeSubscription {
				kept = append(kept, item)
			}
		}
		d := entity.Duration30Days
		c.items = append(kept, Item{Product: product, Quantity: 1, Duration: &d})
		return nil
	}

	if i := c.index(product.ID); i >= 0 {
		c.items[i].Quantity = capQuantity(c.items[i].Quantity + qty)
		return nil
	}

	keys := 0
	for _, item := range c.items {
		if item.Product.Type == entity.ProductTypeKey {
			keys++
		}
	}
	if keys >= MaxKeyItems {
		return ErrKeyLimit
	}

	c.items = append(c.items, Item{Product: product, Quantity: capQuantity(qty)})
	return nil
}

// UpdateQuantity sets the quantity of a key line. Values below one are ignored and
// subscriptions always stay at one.
func (c *Cart) UpdateQuantity(productID string, qty int) error {
	i := c.index(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	if qty < 1 || c.items[i].Product.Type == entity.ProductTypeSubscription {
		return nil
	}
	c.items[i].Quantity = capQuantity(qty)
	return nil
}

func (c *Cart) UpdateDuration(productID string, duration entity.Duration) error {
	i := c.index(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	if c.items[i].Product.Type != entity.ProductTypeSubscription {
		return ErrNotSubscription
	}
	if !duration.Valid() {
		return ErrInvalidDuration
	}
	c.items[i].Duration = &duration
	return nil
}

func (c *Cart) RemoveItem(productID string) {
	if i := c.index(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) index(productID string) int {
	for i, item := range c.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

func capQuantity(qty int) int {
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}
