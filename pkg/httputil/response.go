// Package httputil provides HTTP handler utilities for consistent error
// handling, JSON encoding/decoding, and request parsing.
package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the standardized error body: a stable machine-readable
// kind plus a human-readable message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteErrorKind writes a structured error response with an error kind and message
func WriteErrorKind(w http.ResponseWriter, status int, kind, message string) {
	WriteJSON(w, status, ErrorResponse{Error: kind, Message: message})
}

// WriteBadRequest writes a bad request error (400)
func WriteBadRequest(w http.ResponseWriter, kind, message string) {
	WriteErrorKind(w, http.StatusBadRequest, kind, message)
}

// WriteNotFound writes a not found error (404)
func WriteNotFound(w http.ResponseWriter, kind, message string) {
	WriteErrorKind(w, http.StatusNotFound, kind, message)
}

// WriteBadGateway writes a bad gateway error (502)
func WriteBadGateway(w http.ResponseWriter, kind, message string) {
	WriteErrorKind(w, http.StatusBadGateway, kind, message)
}

// WriteGatewayTimeout writes a gateway timeout error (504)
func WriteGatewayTimeout(w http.ResponseWriter, kind, message string) {
	WriteErrorKind(w, http.StatusGatewayTimeout, kind, message)
}

// WriteInternalError writes an internal server error response (500)
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteErrorKind(w, http.StatusInternalServerError, "internal", message)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}
