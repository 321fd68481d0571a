package cart

import (
	"fmt"
	"testing"

	"arc-web/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscription(id string, price float64) entity.Product {
	return entity.Product{ID: id, Name: id, Type: entity.ProductTypeSubscription, Price: price}
}

func key(id string, price float64) entity.Product {
	return entity.Product{ID: id, Name: id, Type: entity.ProductTypeKey, Price: price}
}

func TestCart_SubscriptionExclusivity(t *testing.T) {
	c := New()

	require.NoError(t, c.AddItem(subscription("vip", 500), 1))
	require.NoError(t, c.UpdateDuration("vip", entity.Duration1Year))
	require.NoError(t, c.AddItem(key("crate", 100), 2))
	require.NoError(t, c.AddItem(subscription("mvp", 800), 3))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "crate", items[0].Product.ID)
	assert.Equal(t, "mvp", items[1].Product.ID)
	assert.Equal(t, 1, items[1].Quantity)
	require.NotNil(t, items[1].Duration)
	assert.Equal(t, entity.Duration30Days, *items[1].Duration)
}

func TestCart_KeyLimit(t *testing.T) {
	c := New()
	for i := 0; i < MaxKeyItems; i++ {
		require.NoError(t, c.AddItem(key(fmt.Sprintf("key-%d", i), 10), 1))
	}
	require.NoError(t, c.AddItem(subscription("vip", 500), 1))

	before := c.Items()
	err := c.AddItem(key("key-extra", 10), 1)
	assert.ErrorIs(t, err, ErrKeyLimit)
	assert.Equal(t, before, c.Items())

	t.Run("duplicate key accumulates", func(t *testing.T) {
		require.NoError(t, c.AddItem(key("key-0", 10), 3))
		items := c.Items()
		assert.Len(t, items, MaxKeyItems+1)
		assert.Equal(t, 4, items[0].Quantity)
	})
}

func TestCart_UpdateQuantity(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(key("crate", 10), 2))
	require.NoError(t, c.AddItem(subscription("vip", 500), 1))

	tests := []struct {
		name string
		id   string
		qty  int
		want int
	}{
		{"sets exactly", "crate", 7, 7},
		{"ignores zero", "crate", 0, 7},
		{"ignores negative", "crate", -3, 7},
		{"caps at maximum", "crate", 500, MaxQuantity},
		{"subscription stays at one", "vip", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, c.UpdateQuantity(tt.id, tt.qty))
			for _, item := range c.Items() {
				if item.Product.ID == tt.id {
					assert.Equal(t, tt.want, item.Quantity)
				}
			}
		})
	}

	assert.ErrorIs(t, c.UpdateQuantity("missing", 2), ErrItemNotFound)
}

func TestCart_AddKeyCapsQuantity(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(key("crate", 10), 98))
	require.NoError(t, c.AddItem(key("crate", 10), 5))
	assert.Equal(t, MaxQuantity, c.Items()[0].Quantity)
}

func TestCart_UpdateDuration(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(key("crate", 10), 1))
	require.NoError(t, c.AddItem(subscription("vip", 500), 1))

	assert.ErrorIs(t, c.UpdateDuration("crate", entity.Duration90Days), ErrNotSubscription)
	assert.ErrorIs(t, c.UpdateDuration("vip", entity.Duration("2-y")), ErrInvalidDuration)
	assert.ErrorIs(t, c.UpdateDuration("missing", entity.Duration90Days), ErrItemNotFound)
	assert.NoError(t, c.UpdateDuration("vip", entity.Duration90Days))
}

func TestCart_Pricing(t *testing.T) {
	tests := []struct {
		duration entity.Duration
		want     float64
	}{
		{entity.Duration30Days, 500},
		{entity.Duration90Days, 1250},
		{entity.Duration1Year, 4000},
	}

	for _, tt := range tests {
		t.Run(string(tt.duration), func(t *testing.T) {
			c := New()
			require.NoError(t, c.AddItem(subscription("vip", 500), 1))
			require.NoError(t, c.UpdateDuration("vip", tt.duration))
			assert.InDelta(t, tt.want, c.Items()[0].Subtotal(), 0.0001)
		})
	}

	t.Run("keys scale with quantity", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddItem(key("crate", 2.5), 4))
		require.NoError(t, c.AddItem(subscription("vip", 500), 1))
		require.NoError(t, c.UpdateDuration("vip", entity.Duration90Days))
		assert.InDelta(t, 1260, c.Total(), 0.0001)
	})
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(key("a", 1), 1))
	require.NoError(t, c.AddItem(key("b", 1), 1))

	c.RemoveItem("a")
	c.RemoveItem("missing")
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "b", c.Items()[0].Product.ID)

	c.Clear()
	assert.Zero(t, c.Len())
	assert.Zero(t, c.Total())
}
