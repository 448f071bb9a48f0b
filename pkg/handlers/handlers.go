// Package handlers provides HTTP response utilities for JSON APIs.
// Every response carries a {success, message, data} envelope so clients
// can branch on a single shape.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the wire shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// RespondData writes a successful JSON response carrying data.
func RespondData(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data})
}

// RespondCreated writes a 201 response carrying data and a message.
func RespondCreated(w http.ResponseWriter, message string, data any) {
	write(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// RespondMessage writes a successful JSON response with a message only.
func RespondMessage(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: true, Message: message})
}

// RespondError logs the underlying error and writes a failure envelope.
// Only message reaches the client; err stays in the logs so internal
// error detail (cipher text, SQL state) never leaks into responses.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string, err error) {
	if err != nil {
		logger.Error("handler error", "error", err, "status", status)
	}
	write(w, status, Envelope{Success: false, Message: message})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}
