// Package pricing computes checkout totals. All arithmetic runs on
// decimal.Decimal and is converted back to float64 only for storage.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

var hundred = decimal.NewFromInt(100)

// Rates are the settings values that influence a checkout.
type Rates struct {
	TaxRate               float64
	ShippingCost          float64
	FreeShippingThreshold float64
}

func RatesFrom(s models.Settings) Rates {
	return Rates{
		TaxRate:               s.TaxRate,
		ShippingCost:          s.ShippingCost,
		FreeShippingThreshold: s.FreeShippingThreshold,
	}
}

type Line struct {
	Price    float64
	Quantity int
}

type Breakdown struct {
	Subtotal              float64
	Discount              float64
	SubtotalAfterDiscount float64
	ShippingCost          float64
	Tax                   float64
	Total                 float64
}

// Subtotal sums price times quantity over lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Discount is the raw amount a coupon takes off subtotal, before clamping.
// Percentage discounts are capped by MaxDiscount when it is set.
func Discount(c *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	value := decimal.NewFromFloat(c.DiscountValue)
	switch c.DiscountType {
	case models.DiscountPercentage:
		d := subtotal.Mul(value).Div(hundred)
		if c.MaxDiscount != nil {
			d = decimal.Min(d, decimal.NewFromFloat(*c.MaxDiscount))
		}
		return d
	case models.DiscountFixed:
		return value
	default:
		return decimal.Zero
	}
}

// Compute prices lines under rates with an optional coupon. The applied
// discount never exceeds the subtotal.
func Compute(lines []Line, coupon *models.Coupon, rates Rates) Breakdown {
	subtotal := Subtotal(lines)
	discount := decimal.Min(Discount(coupon, subtotal), subtotal)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	after := subtotal.Sub(discount)

	shipping := decimal.NewFromFloat(rates.ShippingCost)
	if after.GreaterThan(decimal.NewFromFloat(rates.FreeShippingThreshold)) {
		shipping = decimal.Zero
	}

	// Round(0) rounds half away from zero.
	tax := after.Mul(decimal.NewFromFloat(rates.TaxRate)).Div(hundred).Round(0)
	total := after.Add(shipping).Add(tax)

	return Breakdown{
		Subtotal:              subtotal.InexactFloat64(),
		Discount:              discount.InexactFloat64(),
		SubtotalAfterDiscount: after.InexactFloat64(),
		ShippingCost:          shipping.InexactFloat64(),
		Tax:                   tax.InexactFloat64(),
		Total:                 total.InexactFloat64(),
	}
}
