package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/driveguard/driveguard/internal/drive"
	"github.com/driveguard/driveguard/internal/google"
	"github.com/driveguard/driveguard/internal/logging"
	"github.com/driveguard/driveguard/internal/scope"
)

// Error codes returned in the JSON error envelope.
const (
	codeInvalidRequest      = "invalid_request"
	codeScopeViolation      = "folder_out_of_scope"
	codeNotFound            = "not_found"
	codeUnauthorized        = "unauthorized"
	codeNotFolder           = "not_a_folder"
	codeSearchFailed        = "search_failed"
	codeUpstreamUnavailable = "upstream_unavailable"
	codeExchangeFailed      = "exchange_failed"
	codeInternal            = "internal"
)

// ErrorBody is the inner error object of the JSON error envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON error envelope returned by every endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error envelope with the given status and code.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// writeMappedError translates a domain error into an HTTP error response.
//
// The mapping checks scope.ErrSearchFailed before the Drive sentinels: a
// failed overwrite search wraps the underlying Drive error, and it must
// surface as a search failure rather than as whatever provider condition
// caused it.
func writeMappedError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, scope.ErrSearchFailed):
		status, code = http.StatusBadGateway, codeSearchFailed
	case errors.Is(err, drive.ErrNotFound):
		status, code = http.StatusNotFound, codeNotFound
	case errors.Is(err, drive.ErrUnauthorized), errors.Is(err, google.ErrNoToken):
		status, code = http.StatusUnauthorized, codeUnauthorized
	case errors.Is(err, drive.ErrNotFolder):
		status, code = http.StatusBadRequest, codeNotFolder
	case errors.Is(err, drive.ErrUnavailable):
		status, code = http.StatusBadGateway, codeUpstreamUnavailable
	default:
		status, code = http.StatusInternalServerError, codeInternal
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", logging.Err(err))
	}

	writeError(w, status, code, err.Error())
}
