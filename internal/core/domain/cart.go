package domain

import "github.com/shopspring/decimal"

type (
	CartLineItem struct {
		ProductID string
		Name      string
		UnitPrice decimal.Decimal
		Quantity  int
		ImageRef  string
	}

	// A Cart is an ordered list of line items unique by product id.
	Cart struct {
		Items []CartLineItem
	}
)

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) TotalQuantity() (n int) {
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	if c.Items == nil {
		return Cart{}
	}
	items := make([]CartLineItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type CartAction string

const (
	CartActionAdd    CartAction = "add"
	CartActionChange CartAction = "change"
	CartActionRemove CartAction = "remove"
	CartActionClear  CartAction = "clear"
)

// A CartEvent describes one cart mutation for the activity stream.
type CartEvent struct {
	EventID   string
	Owner     string
	Action    CartAction
	ProductID string
	Quantity  int
	UnixMilli int64
}
