package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

const (
	birthDateLayout = "2006-01-02"
	maxBodyBytes    = 1 << 20
)

// GET v1/products?brand=b&q=text (200 OK)

type ProductsHandler struct {
	browser port.ProductBrowser
}

func RegisterProducts(mux *http.ServeMux, browser port.ProductBrowser) {
	h := ProductsHandler{browser}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
}

func (h ProductsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProducts"
	log := slog.With("op", op)

	q := r.URL.Query()
	ps, err := h.browser.Products(r.Context(), q.Get("brand"), q.Get("q"))
	if err != nil {
		writeError(w, log, err)
		return
	}

	res := ProductsResponse{Products: make([]Product, len(ps))}
	for i, p := range ps {
		res.Products[i] = productFromDomain(p)
	}
	writeJSON(w, log, http.StatusOK, res)
}

// GET v1/cart (200 OK)
// POST v1/cart/items JSON {"id","name","price","image","quantity"} (200 OK, 400 Bad request)
// PATCH v1/cart/items/{index} JSON {"delta"} (200 OK)
// DELETE v1/cart/items/{index} (200 OK)
// DELETE v1/cart (200 OK)

type CartHandler struct {
	cart port.CartManager
}

func RegisterCart(mux *http.ServeMux, cart port.CartManager) {
	h := CartHandler{cart}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("POST /v1/cart/items", h.PostItem)
	mux.HandleFunc("PATCH /v1/cart/items/{index}", h.PatchItem)
	mux.HandleFunc("DELETE /v1/cart/items/{index}", h.DeleteItem)
	mux.HandleFunc("DELETE /v1/cart", h.DeleteCart)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"
	h.writeCart(w, slog.With("op", op), nil)
}

func (h CartHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostItem"
	log := slog.With("op", op)

	var req AddItemRequest
	if !decodeJSON(w, r, log, &req) {
		return
	}

	err := h.cart.AddItem(
		r.Context(), req.ProductID, req.Name, req.Price, req.Image, req.Quantity,
	)
	h.writeCart(w, log, err)
}

func (h CartHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PatchItem"
	log := slog.With("op", op)

	index, ok := pathIndex(w, r, log)
	if !ok {
		return
	}

	var req ChangeQuantityRequest
	if !decodeJSON(w, r, log, &req) {
		return
	}

	err := h.cart.ChangeQuantity(r.Context(), index, req.Delta)
	h.writeCart(w, log, err)
}

func (h CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteItem"
	log := slog.With("op", op)

	index, ok := pathIndex(w, r, log)
	if !ok {
		return
	}

	err := h.cart.RemoveItem(r.Context(), index)
	h.writeCart(w, log, err)
}

func (h CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteCart"
	log := slog.With("op", op)

	err := h.cart.Clear(r.Context())
	h.writeCart(w, log, err)
}

// writeCart responds with the current cart. A persistence failure is
// reported as a warning because the mutation is applied.
func (h CartHandler) writeCart(w http.ResponseWriter, log *slog.Logger, err error) {
	var status Status
	if err != nil {
		if !errors.Is(err, domain.ErrPersistFailed) {
			writeError(w, log, err)
			return
		}
		log.Warn("cart is not persisted", "err", err)
		status.Warning = warningNotSaved
	}

	cart, totals := h.cart.View()
	writeJSON(w, log, http.StatusOK, CartResponse{
		Status: status,
		Items:  cartItemsFromDomain(cart.Items),
		Totals: totals.Format(),
	})
}

// POST v1/checkout (200 OK next=payment, 401 next=login, 409 next=cart|products)

type CheckoutHandler struct {
	checkout port.CheckoutValidator
}

func RegisterCheckout(mux *http.ServeMux, checkout port.CheckoutValidator) {
	h := CheckoutHandler{checkout}
	mux.HandleFunc("POST /v1/checkout", h.PostCheckout)
}

func (h CheckoutHandler) PostCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.PostCheckout"
	log := slog.With("op", op)

	res, err := h.checkout.Continue(r.Context())
	if err != nil {
		code, status := errorStatus(err)
		if status.Next == "" {
			status.Next = res.Next
		}
		log.Info("checkout stopped", "next", status.Next, "err", err)
		writeJSON(w, log, code, status)
		return
	}

	writeJSON(w, log, http.StatusOK, CartResponse{
		Status: Status{Next: res.Next},
		Items:  cartItemsFromDomain(res.Cart.Items),
		Totals: res.Totals.Format(),
	})
}

// GET v1/payment (200 OK)
// POST v1/payment JSON {"account","use_registered_address","address","customer"} (201 Created)
// POST v1/payment/confirmation (201 Created)

type PaymentHandler struct {
	purchase port.PurchaseSubmitter
}

func RegisterPayment(mux *http.ServeMux, purchase port.PurchaseSubmitter) {
	h := PaymentHandler{purchase}
	mux.HandleFunc("GET /v1/payment", h.GetPayment)
	mux.HandleFunc("POST /v1/payment", h.PostPayment)
	mux.HandleFunc("POST /v1/payment/confirmation", h.PostConfirmation)
}

func (h PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	const op = "PaymentHandler.GetPayment"
	log := slog.With("op", op)

	draft, err := h.purchase.Prepare(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusOK, PaymentDraftResponse{
		CartResponse: CartResponse{
			Items:  cartItemsFromDomain(draft.Cart.Items),
			Totals: draft.Totals.Format(),
		},
		Customer: customerFromDomain(draft.Customer),
	})
}

func (h PaymentHandler) PostPayment(w http.ResponseWriter, r *http.Request) {
	const op = "PaymentHandler.PostPayment"
	log := slog.With("op", op)

	var req PaymentRequest
	if !decodeJSON(w, r, log, &req) {
		return
	}

	receipt, err := h.purchase.Submit(r.Context(), domain.PaymentRequest{
		Account:              req.Account,
		UseRegisteredAddress: req.UseRegisteredAddress,
		Address:              req.Address,
		Customer:             req.Customer.toDomain(),
	})
	if err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("purchase completed", "invoiceID", receipt.InvoiceID)
	h.writeReceipt(w, log, receipt)
}

func (h PaymentHandler) PostConfirmation(w http.ResponseWriter, r *http.Request) {
	const op = "PaymentHandler.PostConfirmation"
	log := slog.With("op", op)

	receipt, err := h.purchase.RetryConfirmation(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("payment confirmed", "invoiceID", receipt.InvoiceID)
	h.writeReceipt(w, log, receipt)
}

func (PaymentHandler) writeReceipt(
	w http.ResponseWriter, log *slog.Logger, receipt domain.Receipt,
) {
	writeJSON(w, log, http.StatusCreated, ReceiptResponse{
		Status: Status{
			Notice: "Purchase completed, invoice " + receipt.InvoiceID + ".",
			Next:   domain.NextBrowse,
		},
		InvoiceID: receipt.InvoiceID,
		Address:   receipt.Address,
		Items:     cartItemsFromDomain(receipt.Items),
		Totals:    receipt.Totals.Format(),
	})
}

// POST v1/session JSON {"email"} (200 OK, 404 Not found)
// DELETE v1/session (200 OK)

type SessionHandler struct {
	auth port.Authenticator
}

func RegisterSession(mux *http.ServeMux, auth port.Authenticator) {
	h := SessionHandler{auth}
	mux.HandleFunc("GET /v1/session", h.GetSession)
	mux.HandleFunc("POST /v1/session", h.PostSession)
	mux.HandleFunc("DELETE /v1/session", h.DeleteSession)
}

func (h SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.GetSession"
	writeJSON(w, slog.With("op", op), http.StatusOK, sessionResponse(h.auth.Current()))
}

func (h SessionHandler) PostSession(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.PostSession"
	log := slog.With("op", op)

	var req LoginRequest
	if !decodeJSON(w, r, log, &req) {
		return
	}

	s, err := h.auth.Login(r.Context(), req.Email)
	if err != nil {
		writeError(w, log, err)
		return
	}

	res := sessionResponse(s)
	res.Next = domain.NextCart
	writeJSON(w, log, http.StatusOK, res)
}

func (h SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.DeleteSession"
	log := slog.With("op", op)

	if err := h.auth.Logout(r.Context()); err != nil {
		writeError(w, log, err)
		return
	}

	res := sessionResponse(h.auth.Current())
	res.Next = domain.NextLogin
	writeJSON(w, log, http.StatusOK, res)
}

func sessionResponse(s domain.Session) SessionResponse {
	return SessionResponse{
		Email:         s.Email,
		Role:          s.Role,
		Authenticated: s.IsAuthenticated(),
	}
}

// POST v1/customers JSON [sign-up form] (201 Created, 400 Bad request)

type CustomersHandler struct {
	registrar port.CustomerRegistrar
}

func RegisterCustomers(mux *http.ServeMux, registrar port.CustomerRegistrar) {
	h := CustomersHandler{registrar}
	mux.HandleFunc("POST /v1/customers", h.PostCustomer)
}

func (h CustomersHandler) PostCustomer(w http.ResponseWriter, r *http.Request) {
	const op = "CustomersHandler.PostCustomer"
	log := slog.With("op", op)

	var req RegisterRequest
	if !decodeJSON(w, r, log, &req) {
		return
	}

	var birthDate time.Time
	if req.BirthDate != "" {
		var err error
		birthDate, err = time.Parse(birthDateLayout, req.BirthDate)
		if err != nil {
			writeError(w, log, domain.ValidationErrors{domain.FieldError{
				Field: "birth_date", Message: "birth date must be YYYY-MM-DD",
			}})
			return
		}
	}

	err := h.registrar.Register(r.Context(), domain.NewCustomer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
		Email:     req.Email,
		Sex:       req.Sex,
		Address:   req.Address,
		Password:  req.Password,
		Cedula:    req.Cedula,
		Phone:     req.Phone,
		Sector:    req.Sector,
	}, req.ConfirmPassword)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusCreated, Status{
		Notice: "Registration completed.",
		Next:   domain.NextLogin,
	})
}

func decodeJSON(
	w http.ResponseWriter, r *http.Request, log *slog.Logger, v any,
) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("request body is too large", "limit", tooLarge.Limit)
			writeJSON(w, log, http.StatusRequestEntityTooLarge,
				Status{Notice: "request body is too large"})
			return false
		}
		log.Warn("failed to parse JSON", "err", err)
		writeJSON(w, log, http.StatusBadRequest, Status{Notice: "invalid JSON data"})
		return false
	}
	return true
}

func pathIndex(
	w http.ResponseWriter, r *http.Request, log *slog.Logger,
) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		log.Warn("invalid item index", "err", err)
		writeJSON(w, log, http.StatusBadRequest, Status{Notice: "invalid item index"})
		return 0, false
	}
	return index, true
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}
