package domain

import "github.com/shopspring/decimal"

const moneyPlaces = 2

type (
	Totals struct {
		Subtotal decimal.Decimal
		Tax      decimal.Decimal
		Total    decimal.Decimal
		TaxRate  decimal.Decimal
	}

	FormattedTotals struct {
		Subtotal string `json:"subtotal"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
		TaxRate  string `json:"tax_rate"`
	}
)

// CalculateTotals derives the cart totals without any rounding.
func CalculateTotals(items []CartLineItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	tax := subtotal.Mul(taxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
		TaxRate:  taxRate,
	}
}

// Format rounds the totals for display.
func (t Totals) Format() FormattedTotals {
	return FormattedTotals{
		Subtotal: t.Subtotal.StringFixed(moneyPlaces),
		Tax:      t.Tax.StringFixed(moneyPlaces),
		Total:    t.Total.StringFixed(moneyPlaces),
		TaxRate:  t.TaxRate.Mul(decimal.NewFromInt(100)).String() + "%",
	}
}
