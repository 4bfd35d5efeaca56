package utils

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the {"error": msg} envelope clients surface verbatim.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// ErrorDetails adds a details object next to the message, e.g. per-field
// validation messages.
func ErrorDetails(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, map[string]any{"error": msg, "details": details})
}
