package httphandler

import (
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
)

// A Status is carried by every response.
//
// Notice is the text to show to the user, Next is where to navigate and
// Warning reports a non-blocking problem of an applied operation.
type Status struct {
	Notice  string          `json:"notice,omitempty"`
	Next    domain.NextStep `json:"next,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

type (
	Product struct {
		ProductID        string   `json:"id"`
		Name             string   `json:"name"`
		Brand            string   `json:"brand,omitempty"`
		Description      string   `json:"description,omitempty"`
		ShortDescription string   `json:"short_description,omitempty"`
		Price            string   `json:"price"`
		Stock            *int     `json:"stock"`
		Images           []string `json:"images,omitempty"`
	}

	ProductsResponse struct {
		Status
		Products []Product `json:"products"`
	}
)

type (
	CartItem struct {
		Index     int    `json:"index"`
		ProductID string `json:"id"`
		Name      string `json:"name"`
		Price     string `json:"price"`
		Quantity  int    `json:"quantity"`
		Image     string `json:"image,omitempty"`
		LineTotal string `json:"line_total"`
	}

	CartResponse struct {
		Status
		Items  []CartItem             `json:"items"`
		Totals domain.FormattedTotals `json:"totals"`
	}

	AddItemRequest struct {
		ProductID string          `json:"id"`
		Name      string          `json:"name"`
		Price     decimal.Decimal `json:"price"`
		Image     string          `json:"image"`
		Quantity  int             `json:"quantity"`
	}

	ChangeQuantityRequest struct {
		Delta int `json:"delta"`
	}
)

type (
	Customer struct {
		Cedula    string `json:"cedula"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		Address   string `json:"address"`
		Email     string `json:"email"`
	}

	PaymentDraftResponse struct {
		CartResponse
		Customer Customer `json:"customer"`
	}

	PaymentRequest struct {
		Account              string   `json:"account"`
		UseRegisteredAddress bool     `json:"use_registered_address"`
		Address              string   `json:"address"`
		Customer             Customer `json:"customer"`
	}

	ReceiptResponse struct {
		Status
		InvoiceID string                 `json:"invoice_id"`
		Address   string                 `json:"address"`
		Items     []CartItem             `json:"items"`
		Totals    domain.FormattedTotals `json:"totals"`
	}
)

type (
	LoginRequest struct {
		Email string `json:"email"`
	}

	SessionResponse struct {
		Status
		Email         string `json:"email,omitempty"`
		Role          string `json:"role,omitempty"`
		Authenticated bool   `json:"authenticated"`
	}

	RegisterRequest struct {
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		BirthDate       string `json:"birth_date"`
		Email           string `json:"email"`
		Sex             string `json:"sex"`
		Address         string `json:"address"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
		Cedula          string `json:"cedula"`
		Phone           string `json:"phone"`
		Sector          string `json:"sector"`
	}
)

func productFromDomain(p domain.Product) Product {
	v := Product{
		ProductID:        p.ProductID,
		Name:             p.Name,
		Brand:            p.Brand,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            p.Price.StringFixed(2),
		Images:           p.Images,
	}
	if p.Stock.Valid {
		n := p.Stock.Count
		v.Stock = &n
	}
	return v
}

func cartItemsFromDomain(items []domain.CartLineItem) []CartItem {
	vs := make([]CartItem, len(items))
	for i, item := range items {
		vs[i] = CartItem{
			Index:     i,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
			Image:     item.ImageRef,
			LineTotal: item.LineTotal().StringFixed(2),
		}
	}
	return vs
}

func customerFromDomain(c domain.CustomerProfile) Customer {
	return Customer(c)
}

func (c Customer) toDomain() domain.CustomerProfile {
	return domain.CustomerProfile(c)
}
