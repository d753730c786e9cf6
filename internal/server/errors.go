package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/bizledger/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/bizledger/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/bizledger/internal/payment/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   "request",
					Code:    err.Error(),
					Message: err.Error(),
				},
			},
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, paymentdomain.ErrConcurrencyConflict),
		errors.Is(err, invoicedomain.ErrNumberConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		invoicedomain.ErrInvalidTenant,
		invoicedomain.ErrInvalidBranch,
		invoicedomain.ErrInvalidInvoiceID,
		invoicedomain.ErrEmptyLineItems,
		invoicedomain.ErrInvalidLineItem,
		invoicedomain.ErrMissingCustomerName,
		invoicedomain.ErrInvalidStatus,
		invoicedomain.ErrInvalidTransition,
		invoicedomain.ErrInvalidDiscount,
		invoicedomain.ErrInvalidTaxRate,
		invoicedomain.ErrInvalidFrequency,
		invoicedomain.ErrInvoiceImmutable,
		paymentdomain.ErrInvalidAmount,
		paymentdomain.ErrInvalidMethod,
		paymentdomain.ErrInvalidPaymentID,
		paymentdomain.ErrInvoiceNotPayable,
		customerdomain.ErrInvalidCustomerID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isNotFoundError(err error) bool {
	return errors.Is(err, invoicedomain.ErrInvoiceNotFound) ||
		errors.Is(err, paymentdomain.ErrPaymentNotFound) ||
		errors.Is(err, customerdomain.ErrCustomerNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}
