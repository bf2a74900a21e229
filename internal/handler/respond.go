package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vaultpass/ecomkit-go/internal/crypto"
	"github.com/vaultpass/ecomkit-go/internal/middleware"
	"github.com/vaultpass/ecomkit-go/internal/model"
	"github.com/vaultpass/ecomkit-go/internal/qrcode"
	"github.com/vaultpass/ecomkit-go/internal/service"
)

var (
	errBodyTooLarge = errors.New("request body too large")
	errInvalidJSON  = errors.New("request body is not valid JSON")
)

// responder holds what every handler needs to read requests and write the
// response envelope.
type responder struct {
	bodyLimit int64
	debug     bool
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func (rs responder) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, rs.bodyLimit)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errBodyTooLarge
		case errors.Is(err, io.EOF):
			return nil
		}
		return fmt.Errorf("%w: %w", errInvalidJSON, err)
	}
	return nil
}

func (rs responder) ok(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, model.Envelope{Success: true, Message: message, Data: data})
}

// fail maps err onto a status code and error code.
func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verrs model.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, model.Envelope{
			Message: "validation failed",
			Error:   model.CodeValidation,
			Details: verrs,
		})
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, model.CodeBodyTooLarge, err.Error())
	case errors.Is(err, errInvalidJSON):
		writeError(w, http.StatusBadRequest, model.CodeInvalidJSON, errInvalidJSON.Error())
	case errors.Is(err, crypto.ErrEmptyAlphabet):
		writeError(w, http.StatusBadRequest, model.CodeEmptyAlphabet, "at least one character type must be included")
	case errors.Is(err, service.ErrBatchSizeExceeded):
		writeError(w, http.StatusBadRequest, model.CodeBatchSizeExceeded, err.Error())
	case errors.Is(err, service.ErrInvalidItems):
		writeError(w, http.StatusBadRequest, model.CodeInvalidItems, err.Error())
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, model.CodeMissingFields, err.Error())
	case errors.Is(err, qrcode.ErrEmptyContent), errors.Is(err, qrcode.ErrContentTooLong),
		errors.Is(err, qrcode.ErrInvalidColor), errors.Is(err, qrcode.ErrInvalidLevel):
		writeError(w, http.StatusBadRequest, model.CodeValidation, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg := "internal server error"
		if rs.debug {
			msg += ": " + err.Error()
		}
		writeError(w, http.StatusInternalServerError, model.CodeInternal, msg)
	}
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, model.CodeNotFound, fmt.Sprintf("route %s %s not found", r.Method, r.URL.Path))
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, model.CodeMethodNotAllowed, fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path))
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, model.Envelope{Message: msg, Error: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// tokenSubject returns the bearer token subject, or "" on routes served
// without authentication.
func tokenSubject(r *http.Request) string {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return claims.Subject
	}
	return ""
}
