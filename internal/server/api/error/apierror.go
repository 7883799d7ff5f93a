package apierror

import (
	"errors"

	"github.com/Alia5/vinject/apitypes"
	"github.com/Alia5/vinject/hook"
	"github.com/Alia5/vinject/input"
)

func ErrBadRequest(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 400, Title: "Bad Request", Detail: detail}
}
func ErrUnauthorized(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 401, Title: "Unauthorized", Detail: detail}
}
func ErrNotFound(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 404, Title: "Not Found", Detail: detail}
}
func ErrConflict(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 409, Title: "Conflict", Detail: detail}
}
func ErrUnprocessable(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 422, Title: "Unprocessable Entity", Detail: detail}
}
func ErrInternal(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 500, Title: "Internal Server Error", Detail: detail}
}
func ErrNotImplemented(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 501, Title: "Not Implemented", Detail: detail}
}

// WrapError normalizes any error into apitypes.ApiError. Injection errors
// map to a fitting status; anything else is an internal error.
func WrapError(err error) apitypes.ApiError {
	var ae apitypes.ApiError
	if errors.As(err, &ae) {
		return ae
	}
	var aep *apitypes.ApiError
	if errors.As(err, &aep) {
		return *aep
	}
	switch {
	case errors.Is(err, input.ErrInvalidInput):
		return ErrBadRequest(err.Error())
	case errors.Is(err, input.ErrUnmappableChar):
		return ErrUnprocessable(err.Error())
	case errors.Is(err, hook.ErrAlreadyActive):
		return ErrConflict(err.Error())
	case errors.Is(err, input.ErrUnsupported), errors.Is(err, hook.ErrUnsupported):
		return ErrNotImplemented(err.Error())
	}
	return ErrInternal(err.Error())
}
