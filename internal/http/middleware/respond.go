package middleware

import (
	"encoding/json"
	"net/http"
)

// errorResponse mirrors the envelope the lead form and tracking endpoints
// answer with, so middleware rejections look the same to the landing page.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Success: false, Message: message})
}
