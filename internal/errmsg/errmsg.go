package errmsg

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Code    int
	Message error
}

func NewHTTPError(code int, message error) HTTPError {
	return HTTPError{Code: code, Message: message}
}

func (e *HTTPError) Error() string {
	return e.Message.Error()
}

var (
	ErrRequestPayloadEmpty = NewHTTPError(
		http.StatusBadRequest,
		errors.New("request payload is empty"),
	)

	ErrRequestPayloadInvalid = NewHTTPError(
		http.StatusBadRequest,
		errors.New("request payload is invalid"),
	)

	ErrForbidden = NewHTTPError(
		http.StatusForbidden,
		errors.New("administrator role required"),
	)
)

var (
	ErrUserAlreadyExists = NewHTTPError(
		http.StatusConflict,
		errors.New("user already exists"),
	)

	ErrUserNotFound = NewHTTPError(
		http.StatusNotFound,
		errors.New("user not found"),
	)

	ErrAdminCredentialsInvalid = NewHTTPError(
		http.StatusUnauthorized,
		errors.New("admin credentials invalid"),
	)
)

var (
	ErrGroupAlreadyExists = NewHTTPError(
		http.StatusConflict,
		errors.New("group already exists"),
	)

	ErrGroupNotFound = NewHTTPError(
		http.StatusNotFound,
		errors.New("group not found"),
	)

	ErrMembershipAlreadyExists = NewHTTPError(
		http.StatusConflict,
		errors.New("user is already a member of the group"),
	)

	ErrMemberInAnotherGroup = NewHTTPError(
		http.StatusConflict,
		errors.New("user is already enrolled in another group"),
	)

	ErrMemberHasNoGroup = NewHTTPError(
		http.StatusConflict,
		errors.New("user is not enrolled in any group"),
	)
)

var (
	ErrPaymentNotFound = NewHTTPError(
		http.StatusNotFound,
		errors.New("payment not found"),
	)

	ErrPaymentNotPending = NewHTTPError(
		http.StatusConflict,
		errors.New("payment has already been reviewed"),
	)

	ErrPaymentAmountInvalid = NewHTTPError(
		http.StatusUnprocessableEntity,
		errors.New("payment amount must be positive"),
	)
)
