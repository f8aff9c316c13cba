package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/louisbranch/confide.space/internal/platform/errors/i18n"
)

// DefaultLocale is the default locale for error messages.
const DefaultLocale = "en-US"

// Payload is the JSON error envelope returned to API clients. The code is a
// stable machine-readable tag; the message is display text and must never be
// pattern-matched by callers.
type Payload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WriteHTTP renders err as a JSON error response for the given locale. The
// user-facing message is formatted from the i18n catalog; unknown errors are
// reported as a generic internal failure.
func WriteHTTP(w http.ResponseWriter, err error, locale string) {
	if err == nil {
		return
	}
	if locale == "" {
		locale = DefaultLocale
	}
	catalog := i18n.GetCatalog(locale)

	code := CodeUnknown
	var appErr *Error
	if errors.As(err, &appErr) {
		code = appErr.Code
	}

	var payload Payload
	payload.Error.Code = string(code)
	if appErr != nil {
		payload.Error.Message = catalog.Format(string(appErr.Code), appErr.Metadata)
	} else {
		payload.Error.Message = "An unexpected error occurred"
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code.HTTPStatus())
	_ = json.NewEncoder(w).Encode(payload)
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}
