package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

var errNotScalar = errors.New("expected string, number or boolean")

// A looseValue accepts a JSON string, number or boolean and keeps its
// text. The backend sends numeric fields either way.
type looseValue string

func (v *looseValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = looseValue(s)
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		return errNotScalar
	}
	*v = looseValue(data)
	return nil
}

// A looseStrings accepts a single string or a list of strings.
type looseStrings []string

func (v *looseStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = nil
		return nil
	case data[0] == '[':
		var ss []string
		if err := json.Unmarshal(data, &ss); err != nil {
			return err
		}
		*v = ss
		return nil
	default:
		var s looseValue
		if err := s.UnmarshalJSON(data); err != nil {
			return err
		}
		if s == "" {
			*v = nil
			return nil
		}
		*v = looseStrings{string(s)}
		return nil
	}
}

// An identifier is sent as a JSON number when it is numeric.
type identifier string

func (id identifier) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

type (
	product struct {
		ID               looseValue   `json:"PROD_ID"`
		Name             string       `json:"PROD_NOMBRE"`
		Brand            string       `json:"PROD_MARCA"`
		Description      string       `json:"PROD_DESC"`
		ShortDescription string       `json:"PROD_DESCCORTA"`
		Price            looseValue   `json:"PROD_PRECIO"`
		Stock            looseValue   `json:"PROD_STOCK"`
		Images           looseStrings `json:"PROD_IMG"`
	}

	customer struct {
		Cedula    looseValue `json:"cliCedula"`
		FirstName string     `json:"cliNombre"`
		LastName  string     `json:"cliApellido"`
		Phone     looseValue `json:"cliTelefono"`
		Address   string     `json:"cliDireccion"`
		Email     string     `json:"cliCorreo"`
	}

	newCustomer struct {
		FirstName string `json:"CLI_NOMBRE"`
		LastName  string `json:"CLI_APELLIDO"`
		BirthDate string `json:"CLI_FECHANACIMIENTO"`
		Email     string `json:"CLI_CORREO"`
		Sex       string `json:"CLI_SEXO"`
		Address   string `json:"CLI_DIRECCION"`
		Password  string `json:"CLI_CLAVE"`
		Cedula    string `json:"CLI_CEDULA"`
		Phone     string `json:"CLI_TELEFONO"`
		Sector    string `json:"CLI_SECTOR"`
	}

	purchaseItem struct {
		ProductID identifier `json:"idProducto"`
		Quantity  int        `json:"cantidad"`
	}

	purchaseCart struct {
		Products []purchaseItem `json:"productos"`
	}

	purchaseCustomer struct {
		Cedula    string `json:"cliCedula"`
		FirstName string `json:"cliNombre"`
		LastName  string `json:"cliApellido"`
		Phone     string `json:"cliTelefono"`
		Address   string `json:"cliDireccion"`
	}

	purchase struct {
		Cart          purchaseCart     `json:"carrito"`
		Address       string           `json:"direccion"`
		PaymentMethod string           `json:"metodoPago"`
		Customer      purchaseCustomer `json:"cliente"`
	}

	purchaseResponse struct {
		InvoiceID looseValue `json:"idFactura"`
	}

	confirmation struct {
		InvoiceID identifier `json:"idFactura"`
		Account   string     `json:"cuenta"`
	}

	errorBody struct {
		Message string `json:"Message"`
	}
)
