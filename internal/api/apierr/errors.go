package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/brettonwoods/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidation         = "VALIDATION_FAILED"
	CodeInvalidChoice      = "INVALID_CHOICE"
	CodeInvalidPolicy      = "INVALID_POLICY"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeNotHost            = "NOT_HOST"
	CodeNotFound           = "NOT_FOUND"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeNotInRoom          = "NOT_IN_ROOM"
	CodeNotSeated          = "NOT_SEATED"
	CodeConflict           = "CONFLICT"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeCountryTaken       = "COUNTRY_TAKEN"
	CodeRoomFull           = "ROOM_FULL"
	CodeGameStarted        = "GAME_STARTED"
	CodeWrongPhase         = "WRONG_PHASE"
	CodeQuorumNotMet       = "QUORUM_NOT_MET"
	CodePersistence        = "PERSISTENCE_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// specific errors that get their own code; everything else is coded by kind
var specificCodes = []struct {
	err  error
	code string
}{
	{model.ErrRoomNotFound, CodeRoomNotFound},
	{model.ErrNotInRoom, CodeNotInRoom},
	{model.ErrNotSeated, CodeNotSeated},
	{model.ErrInvalidCredentials, CodeInvalidCredentials},
	{model.ErrNotHost, CodeNotHost},
	{model.ErrForbidden, CodeForbidden},
	{model.ErrUsernameTaken, CodeUsernameExists},
	{model.ErrCountryTaken, CodeCountryTaken},
	{model.ErrRoomFull, CodeRoomFull},
	{model.ErrGameStarted, CodeGameStarted},
	{model.ErrWrongPhase, CodeWrongPhase},
	{model.ErrInvalidChoice, CodeInvalidChoice},
	{model.ErrInvalidPolicy, CodeInvalidPolicy},
}

var kindStatus = map[model.ErrorKind]struct {
	status int
	code   string
}{
	model.KindValidation:   {http.StatusBadRequest, CodeValidation},
	model.KindNotFound:     {http.StatusNotFound, CodeNotFound},
	model.KindUnauthorized: {http.StatusUnauthorized, CodeUnauthorized},
	model.KindConflict:     {http.StatusConflict, CodeConflict},
	model.KindQuorum:       {http.StatusConflict, CodeQuorumNotMet},
	model.KindPersistence:  {http.StatusServiceUnavailable, CodePersistence},
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// StatusOf returns the HTTP status an error maps to
func StatusOf(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError by its kind
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	kind := model.KindOf(err)
	mapped, ok := kindStatus[kind]
	if !ok {
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}

	status, code := mapped.status, mapped.code
	for _, sc := range specificCodes {
		if errors.Is(err, sc.err) {
			code = sc.code
			break
		}
	}
	// a valid identity without the right role
	if errors.Is(err, model.ErrNotHost) || errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
	}
	return &httpError{status, APIError{code, err.Error()}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
