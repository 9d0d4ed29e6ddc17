// Package pricing holds the money arithmetic shared by carts and orders.
package pricing

import "github.com/shopspring/decimal"

type AddOn struct {
	Price    decimal.Decimal
	Quantity int
}

// LineTotal is unit*qty plus every add-on at its own quantity. Add-ons are
// priced per line, not per unit.
func LineTotal(unit decimal.Decimal, qty int, addOns []AddOn) decimal.Decimal {
	total := unit.Mul(decimal.NewFromInt(int64(qty)))
	for _, a := range addOns {
		q := a.Quantity
		if q < 1 {
			q = 1
		}
		total = total.Add(a.Price.Mul(decimal.NewFromInt(int64(q))))
	}
	return total
}

// ShippingRule charges FlatFee unless the subtotal strictly exceeds
// FreeAbove.
type ShippingRule struct {
	FlatFee   decimal.Decimal
	FreeAbove decimal.Decimal
}

func DefaultShipping() ShippingRule {
	return ShippingRule{FlatFee: decimal.NewFromInt(99), FreeAbove: decimal.NewFromInt(1000)}
}

func (r ShippingRule) For(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || subtotal.GreaterThan(r.FreeAbove) {
		return decimal.Zero
	}
	return r.FlatFee
}

// Discount applies a whole-number percentage, rounded to cents and capped at
// the subtotal.
func Discount(subtotal decimal.Decimal, pct int) decimal.Decimal {
	if pct <= 0 || !subtotal.IsPositive() {
		return decimal.Zero
	}
	d := subtotal.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)).Round(2)
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Compute shipping is decided on the pre-discount subtotal.
func Compute(subtotal decimal.Decimal, discountPct int, rule ShippingRule) Totals {
	discount := Discount(subtotal, discountPct)
	shipping := rule.For(subtotal)
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    subtotal.Sub(discount).Add(shipping),
	}
}
