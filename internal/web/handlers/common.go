// Package handlers contains the HTTP handlers of the face-gate API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Response status values used by the register/identify contract.
const (
	StatusSuccess    = "success"
	StatusMatchFound = "match_found"
	StatusNoMatch    = "no_match_found"
	StatusError      = "error"
)

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStatusError sends a failure response in the register/identify
// status-payload contract.
func respondStatusError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"status":  StatusError,
		"message": message,
	})
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Root handles GET / and reports that the service is up.
func Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "face-gate is running",
	})
}
