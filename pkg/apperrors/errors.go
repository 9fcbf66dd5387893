package apperrors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an application error with an HTTP status code.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error.
func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Wrap attaches an underlying cause to a sentinel without mutating it.
func (e *Error) Wrap(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// WithMessage derives a copy of a sentinel carrying a specific message, so
// handlers can keep the status code while naming the offending resource.
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

// Checkout error taxonomy.
var (
	ErrCartNotFound           = New(http.StatusNotFound, "Cart not found", nil)
	ErrCartCheckingOut        = New(http.StatusConflict, "Cart is already being checked out", nil)
	ErrConcurrentModification = New(http.StatusConflict, "Cart was modified concurrently, try again shortly", nil)
	ErrVoucherNotUsable       = New(http.StatusBadRequest, "Voucher is not usable", nil)
	ErrSessionNotFound        = New(http.StatusNotFound, "Checkout session not found or expired", nil)
	ErrPublishFailed          = New(http.StatusBadGateway, "Failed to finalize checkout", nil)
	ErrBadRequest             = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized           = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden              = New(http.StatusForbidden, "Forbidden", nil)
	ErrInternalServer         = New(http.StatusInternalServerError, "Internal server error", nil)
)

// ErrorMiddleware converts errors recorded on the gin context into the
// structured error envelope.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := err.(*Error)
		if !ok {
			appErr = ErrInternalServer.Wrap(err)
		}
		c.JSON(appErr.Code, appErr)
		c.Abort()
	}
}
