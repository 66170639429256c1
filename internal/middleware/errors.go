package middleware

import (
	"encoding/json"
	"net/http"
)

// Error codes written by middleware. Handlers share the same body shape.
const (
	codeUnauthorized    = "UNAUTHORIZED"
	codeRateLimited     = "RATE_LIMITED"
	codeInternalError   = "INTERNAL_ERROR"
	codePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError writes {"error": message, "code": code} with the given status.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}
