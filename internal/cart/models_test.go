package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubtotalCents(t *testing.T) {
	c := Cart{Items: []Item{
		{ProductID: "a", Quantity: 2, UnitPriceCents: 1000},
		{ProductID: "b", Quantity: 1, UnitPriceCents: 350},
	}}
	assert.Equal(t, 2350, c.SubtotalCents())
	assert.Equal(t, []string{"a", "b"}, c.ProductIDs())
	assert.False(t, c.Empty())
}

func TestEmptyCart(t *testing.T) {
	var c Cart
	assert.True(t, c.Empty())
	assert.Equal(t, 0, c.SubtotalCents())
}
