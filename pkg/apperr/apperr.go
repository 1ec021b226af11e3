// Package apperr defines the error taxonomy shared by services and the HTTP
// gateway. Every error carries a stable machine-readable code next to the
// human message so clients do not have to match on text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error and decides its HTTP status.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "unexpected"
	}
}

// Status maps the kind onto an HTTP status code. Conflicts are reported as
// 400 because clients of this API treat them as rejected input.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Machine codes.
const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeUnexpected          = "UNEXPECTED"
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodeProductUnavailable  = "PRODUCT_UNAVAILABLE"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	CodeCouponNotFound      = "COUPON_NOT_FOUND"
	CodeCouponExpired       = "COUPON_EXPIRED"
	CodeCouponLimitReached  = "COUPON_LIMIT_REACHED"
	CodeCouponMinOrder      = "COUPON_MIN_ORDER"
	CodeCouponExists        = "COUPON_EXISTS"
	CodeOrderNotFound       = "ORDER_NOT_FOUND"
	CodeOrderNotCancellable = "ORDER_NOT_CANCELLABLE"
	CodeEmptyOrder          = "EMPTY_ORDER"
	CodeCartNotFound        = "CART_NOT_FOUND"
	CodeCartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeEmailTaken          = "EMAIL_TAKEN"
	CodeEmailNotVerified    = "EMAIL_NOT_VERIFIED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidOTP          = "INVALID_OTP"
	CodeOTPExpired          = "OTP_EXPIRED"
	CodeRegistrationMissing = "REGISTRATION_NOT_FOUND"
	CodeAddressNotFound     = "ADDRESS_NOT_FOUND"
	CodeNotFound            = "NOT_FOUND"
	CodeMailDelivery        = "MAIL_DELIVERY_FAILED"
	CodeUnsupportedMedia    = "UNSUPPORTED_MEDIA"
	CodeFileTooLarge        = "FILE_TOO_LARGE"
)

// Error is the typed error returned by services.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
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

// Is matches on Code so sentinel-style comparisons work:
// errors.Is(err, apperr.New(apperr.KindConflict, apperr.CodeInsufficientStock, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(err error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, CodeValidation, message)
}

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, CodeForbidden, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func Upstream(err error, code, message string) *Error {
	return Wrap(err, KindUpstream, code, message)
}

func Unexpected(err error) *Error {
	msg := "unexpected error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: KindUnexpected, Code: CodeUnexpected, Message: msg, Err: err}
}

// From returns the *Error inside err, or wraps err as unexpected.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Unexpected(err)
}

// CodeOf reports the machine code of err, or "" when err is nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return From(err).Code
}
