package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/acrispino/socialchat/internal/access"
)

// ApiError is the JSON error envelope. Code is set only for failures a
// client needs to tell apart programmatically.
type ApiError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}

	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func lower(s string) string {
	return strings.ToLower(s)
}

func NewBadRequestError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusBadRequest,
		Message:    lower(http.StatusText(http.StatusBadRequest)),
	}
}

func NewNotFoundError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusNotFound,
		Message:    lower(http.StatusText(http.StatusNotFound)),
	}
}

func NewInternalServerError(err error) *ApiError {
	return &ApiError{
		StatusCode: http.StatusInternalServerError,
		Message:    lower(http.StatusText(http.StatusInternalServerError)),
		Err:        err,
	}
}

func NewUnauthorizedError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusUnauthorized,
		Message:    lower(http.StatusText(http.StatusUnauthorized)),
	}
}

func NewForbiddenError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusForbidden,
		Message:    lower(http.StatusText(http.StatusForbidden)),
	}
}

func NewConflictError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusConflict,
		Message:    lower(http.StatusText(http.StatusConflict)),
	}
}

func NewEmailVerificationRequiredError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusForbidden,
		Code:       "email_verification_required",
		Message:    "email verification required",
	}
}

func accessError(level access.Level) *ApiError {
	if level == access.MustJoin {
		return NewMustJoinError()
	}
	return NewForbiddenError()
}

// NewMustJoinError is the distinguishable denial for public rooms the
// user has not joined; clients prompt a join action instead of showing a
// generic forbidden toast.
func NewMustJoinError() *ApiError {
	return &ApiError{
		StatusCode: http.StatusForbidden,
		Code:       "must_join",
		Message:    "join the room to participate",
	}
}
