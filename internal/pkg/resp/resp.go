/*
Package resp writes the standardized JSON response envelope.

Every response carries a business code (0 on success), a message, and either data or,
for errors, the error category and offending field so clients can branch without parsing text.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"noticehub/internal/pkg/errs"
	"noticehub/internal/pkg/logx"
)

// JSONResponse is the envelope returned to clients.
type JSONResponse struct {
	// Code is the business status code (0 for success, see errs for the rest).
	Code int `json:"code"`

	// Message is the client-facing status description.
	Message string `json:"message"`

	// Kind is the error category, omitted on success.
	Kind errs.Kind `json:"kind,omitempty"`

	// Field names the offending input field, if any.
	Field string `json:"field,omitempty"`

	// Data is the optional response payload.
	Data any `json:"data,omitempty"`
}

// RespondJSON sets the content headers and writes payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus, "path", r.URL.Path)
		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	if _, err := w.Write(response); err != nil {
		logx.Warn("Failed to write response body", "error", err.Error())
	}
}

// RespondSuccess sends an HTTP 200 response with data.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondStatus(w, r, http.StatusOK, data)
}

// RespondStatus sends a success envelope with a non-default status such as 201.
func RespondStatus(w http.ResponseWriter, r *http.Request, status int, data any) {
	RespondJSON(w, r, status, JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// RespondError renders err. Errors that are not *errs.CustomError are reported as ErrUnknown.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	customErr := errs.From(err)
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
		Kind:    customErr.Kind,
		Field:   customErr.Field,
	})
}
