package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	_ port.Catalog           = (*Client)(nil)
	_ port.CustomerDirectory = (*Client)(nil)
	_ port.PurchaseGateway   = (*Client)(nil)
)

const maxErrorBody = 64 << 10

type Paths struct {
	Products        string
	ProductsByBrand string
	CustomerByEmail string
	Customers       string
	Purchase        string
	LatestInvoice   string
	ConfirmPurchase string
}

func DefaultPaths() Paths {
	return Paths{
		Products:        "/api/Producto",
		ProductsByBrand: "/api/Producto/brand",
		CustomerByEmail: "/api/DTOCliente/correo",
		Customers:       "/api/Cliente",
		Purchase:        "/api/integracion/compra",
		LatestInvoice:   "/api/Factura/ultimaFactura",
		ConfirmPurchase: "/api/integracion/confirmarCompraInterna",
	}
}

// A ClientConfig used for setup [Client].
//
// Zero Paths fields fall back to [DefaultPaths].
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Paths   Paths

	// Transport is wrapped with otelhttp. Defaults to
	// [http.DefaultTransport].
	Transport http.RoundTripper
}

// A Client is the REST backend of the store.
type Client struct {
	baseURL *url.URL
	paths   Paths
	httpCl  *http.Client
}

func NewClient(config ClientConfig) (*Client, error) {
	const op = "backend.NewClient"

	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%s: base url %q is not absolute", op, config.BaseURL)
	}

	transport := config.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL: base,
		paths:   withDefaults(config.Paths),
		httpCl: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
	}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends the request and decodes a successful JSON response into out
// when out is not nil.
//
// Returns [*domain.ConnectivityError] when no response is received and
// [*domain.ServerError] on an error status.
func (c *Client) do(
	ctx context.Context, method, endpoint string, in, out any,
) (rawBody []byte, err error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpCl.Do(req)
	if err != nil {
		return nil, &domain.ConnectivityError{Err: err}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Debug("failed to close response body", "err", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, c.statusError(res)
	}

	rawBody, err = io.ReadAll(res.Body)
	if err != nil {
		return nil, &domain.ConnectivityError{Err: err}
	}

	if out != nil {
		if err := json.Unmarshal(rawBody, out); err != nil {
			return rawBody, &decodeError{err}
		}
	}
	return rawBody, nil
}

func (c *Client) statusError(res *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	serverErr := &domain.ServerError{StatusCode: res.StatusCode}

	var eb errorBody
	if err := json.Unmarshal(b, &eb); err == nil && eb.Message != "" {
		serverErr.Message = eb.Message
		return serverErr
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		serverErr.Message = s
		return serverErr
	}

	serverErr.Message = strings.TrimSpace(string(b))
	return serverErr
}

func withDefaults(p Paths) Paths {
	d := DefaultPaths()
	set := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	set(&p.Products, d.Products)
	set(&p.ProductsByBrand, d.ProductsByBrand)
	set(&p.CustomerByEmail, d.CustomerByEmail)
	set(&p.Customers, d.Customers)
	set(&p.Purchase, d.Purchase)
	set(&p.LatestInvoice, d.LatestInvoice)
	set(&p.ConfirmPurchase, d.ConfirmPurchase)
	return p
}

// A decodeError is a response body that does not match the wire type.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string {
	return "decode response: " + e.err.Error()
}

func (e *decodeError) Unwrap() error {
	return e.err
}

func isDecodeErr(err error) bool {
	var de *decodeError
	return errors.As(err, &de)
}

func malformed(resource, reason string, err error) error {
	return &domain.MalformedResponseError{
		Resource: resource, Reason: reason, Err: err,
	}
}
