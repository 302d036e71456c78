package cart

import "math"

// The pricing functions below are the single source of truth for money
// math: the live cart display and the persisted order snapshot both go
// through them, so the two can never disagree.

// UnitPrice is the product base price plus all selected modifier
// adjustments.
func UnitPrice(item Item) float64 {
	price := item.BasePrice
	for _, m := range item.Modifiers {
		price += m.PriceAdjustment
	}
	return price
}

// LineTotal is the unit price multiplied by the line quantity.
func LineTotal(item Item) float64 {
	return UnitPrice(item) * float64(item.Quantity)
}

// Total sums the line totals of all items.
func Total(items []Item) float64 {
	var sum float64
	for _, item := range items {
		sum += LineTotal(item)
	}
	return sum
}

// Round2 rounds a monetary figure to 2 decimal places. Applied at the point
// of persistence.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
