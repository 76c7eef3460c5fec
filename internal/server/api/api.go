// Package api provides the HTTP handlers for inspecting and overriding the
// running controller.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/control"
)

// Origin tags commands submitted over HTTP.
const Origin = "http"

// Controller is the part of the application the handlers drive.
type Controller interface {
	Status() app.Status
	Submit(cmd control.Command) error
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// submit queues cmd and reports queue overflow as 503.
func submit(w http.ResponseWriter, c Controller, cmd control.Command) bool {
	if err := c.Submit(cmd); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Controller busy, try again")
		return false
	}
	return true
}
