package domain

import "github.com/shopspring/decimal"

type (
	Product struct {
		ProductID        string
		Name             string
		Brand            string
		Description      string
		ShortDescription string
		Price            decimal.Decimal
		Stock            Stock
		Images           []string
	}

	// A Stock is the available stock reported by the catalog.
	//
	// Raw keeps the wire value so an invalid stock can be reported as is.
	Stock struct {
		Count int
		Raw   string
		Valid bool
	}
)

func (p Product) ImageRef() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Product) Summary() string {
	if p.ShortDescription != "" {
		return p.ShortDescription
	}
	return p.Description
}
