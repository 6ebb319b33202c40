package httpserver

import (
	"errors"
	"net/http"

	"github.com/and161185/todo-keeper/internal/errs"
)

// Error kinds sent to clients in the "error" field.
const (
	KindPasswordInsufficient = "PasswordInsufficient"
	KindUsernameInUse        = "UsernameInUse"
	KindInvalidRequest       = "InvalidRequest"
	KindIncorrectCredentials = "IncorrectCredentials"
	KindTooManyAttempts      = "TooManyAttempts"
	KindMissingSessionToken  = "MissingSessionToken"
	KindInternalServerError  = "InternalServerError"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type apiError struct {
	status int
	body   ErrorBody
}

var apiErrors = []struct {
	target error
	apiError
}{
	{errs.ErrInvalidInput, apiError{http.StatusBadRequest, ErrorBody{KindInvalidRequest, "Request is malformed."}}},
	{errs.ErrPasswordInsufficient, apiError{http.StatusBadRequest, ErrorBody{KindPasswordInsufficient,
		"Password must be 7 to 14 bytes long, contain a digit or special character, and contain none of # : \\ \"."}}},
	{errs.ErrUsernameInUse, apiError{http.StatusConflict, ErrorBody{KindUsernameInUse, "Username is already in use."}}},
	{errs.ErrIncorrectCredentials, apiError{http.StatusUnauthorized, ErrorBody{KindIncorrectCredentials, "Incorrect username or password."}}},
	{errs.ErrRateLimited, apiError{http.StatusTooManyRequests, ErrorBody{KindTooManyAttempts, "Too many failed login attempts, try again later."}}},
	{errs.ErrMissingSessionToken, apiError{http.StatusUnauthorized, ErrorBody{KindMissingSessionToken, "Session token is missing or not recognized."}}},
	{errs.ErrSessionInvalid, apiError{http.StatusUnauthorized, ErrorBody{KindInternalServerError, "Session is not valid."}}},
}

var internalError = apiError{http.StatusInternalServerError, ErrorBody{KindInternalServerError, "Internal server error."}}

// classify maps a service error to its client-facing status and body.
// Anything unrecognized, ErrInternal included, is an internal error.
func classify(err error) apiError {
	for _, e := range apiErrors {
		if errors.Is(err, e.target) {
			return e.apiError
		}
	}
	return internalError
}
