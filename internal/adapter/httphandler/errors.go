package httphandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/domain"
)

const (
	noticeLoginRequired  = "You must log in to continue with the purchase."
	noticeEmptyCart      = "Your cart is empty."
	noticeUnreachable    = "Could not connect to the server. Check your connection and try again."
	noticeMalformed      = "The server returned unexpected data. Try again later."
	noticeInProgress     = "The purchase is already being processed."
	noticeNotRegistered  = "The email is not registered."
	noticeNoPending      = "There is no payment waiting for confirmation."
	noticeUnavailable    = "The store is unavailable."
	noticeTimeout        = "The request took too long. Try again."
	noticeUnexpected     = "Unexpected error. Try again later."
	noticeConfirmPending = "The purchase was created but the payment was not confirmed. Retry the confirmation."
	warningNotSaved      = "The cart could not be saved on this device."
)

// errorStatus converts err into the status code and the user-facing
// response.
func errorStatus(err error) (int, Status) {
	var (
		validationErrs domain.ValidationErrors
		stockErr       *domain.StockError
		serverErr      *domain.ServerError
		connErr        *domain.ConnectivityError
		malformedErr   *domain.MalformedResponseError
		pendingErr     *domain.ConfirmationPendingError
	)

	switch {
	case errors.As(err, &pendingErr):
		return http.StatusBadGateway, Status{
			Notice: noticeConfirmPending, Next: domain.NextPayment,
		}
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, Status{Notice: validationErrs.Error()}
	case errors.As(err, &stockErr):
		return http.StatusConflict, Status{
			Notice: stockErr.Error(), Next: domain.NextCart,
		}
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusConflict, Status{
			Notice: noticeEmptyCart, Next: domain.NextBrowse,
		}
	case errors.Is(err, domain.ErrLoginRequired):
		return http.StatusUnauthorized, Status{
			Notice: noticeLoginRequired, Next: domain.NextLogin,
		}
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrIncompleteProfile):
		return http.StatusBadRequest, Status{Notice: capitalize(rootErr(err))}
	case errors.Is(err, domain.ErrEmailNotRegistered):
		return http.StatusNotFound, Status{Notice: noticeNotRegistered}
	case errors.Is(err, domain.ErrPurchaseInProgress):
		return http.StatusConflict, Status{Notice: noticeInProgress}
	case errors.Is(err, domain.ErrNoPendingConfirmation):
		return http.StatusNotFound, Status{Notice: noticeNoPending}
	case errors.Is(err, domain.ErrClosed):
		return http.StatusServiceUnavailable, Status{Notice: noticeUnavailable}
	case errors.As(err, &connErr):
		return http.StatusServiceUnavailable, Status{Notice: noticeUnreachable}
	case errors.As(err, &serverErr):
		return http.StatusBadGateway, Status{Notice: serverNotice(serverErr)}
	case errors.As(err, &malformedErr):
		return http.StatusBadGateway, Status{Notice: noticeMalformed}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, Status{Notice: noticeTimeout}
	}
	return http.StatusInternalServerError, Status{Notice: noticeUnexpected}
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	code, status := errorStatus(err)
	if code >= http.StatusInternalServerError {
		log.Error("request failed", "err", err)
	} else {
		log.Info("request rejected", "err", err)
	}
	writeJSON(w, log, code, status)
}

func rootErr(err error) string {
	for _, target := range []error{
		domain.ErrInvalidQuantity,
		domain.ErrInvalidPrice,
		domain.ErrIncompleteProfile,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b) + "."
}

func serverNotice(e *domain.ServerError) string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("Server error %d: %s", e.StatusCode, msg)
}
