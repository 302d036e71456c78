package cart_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/example/beanie/internal/cart"
)

func TestUnitPriceWithAdjustments(t *testing.T) {
	item := cart.Item{
		BasePrice: 45.00,
		Modifiers: []cart.ItemModifier{
			{OptionID: uuid.New(), PriceAdjustment: 5.50},
		},
		Quantity: 2,
	}

	assert.InDelta(t, 50.50, cart.UnitPrice(item), 1e-9)
	assert.InDelta(t, 101.00, cart.LineTotal(item), 1e-9)
	assert.InDelta(t, 101.00, cart.Total([]cart.Item{item}), 1e-9)
}

func TestTotalIsSumOfLineTotals(t *testing.T) {
	items := []cart.Item{
		{BasePrice: 3.25, Quantity: 2},
		{
			BasePrice: 4.00,
			Quantity:  1,
			Modifiers: []cart.ItemModifier{
				{OptionID: uuid.New(), PriceAdjustment: 0.75},
				{OptionID: uuid.New(), PriceAdjustment: 0.25},
			},
		},
	}

	var want float64
	for _, item := range items {
		want += cart.LineTotal(item)
	}
	assert.InDelta(t, want, cart.Total(items), 1e-9)
	assert.InDelta(t, 11.50, cart.Total(items), 1e-9)

	for _, item := range items {
		assert.GreaterOrEqual(t, cart.LineTotal(item), 0.0)
	}
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 1.23, cart.Round2(1.234), 1e-9)
	assert.InDelta(t, 1.24, cart.Round2(1.236), 1e-9)
	assert.InDelta(t, 101.00, cart.Round2(101.0), 1e-9)
}
