package handlers

import (
	"encoding/json"
	"net/http"
)

// Response is the common envelope. Endpoint payloads embed it so the
// success flag always comes first.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeSuccess(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message})
}

// writeFailure reports a logical failure. These travel as HTTP 200 so the
// dashboard can display the message; only transport-level problems use
// 4xx/5xx status codes.
func writeFailure(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Response{Success: false, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Message: message})
}

// MethodNotAllowed is installed as the router's fallback for wrong-method
// requests.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// NotFound answers unmatched paths with the envelope instead of the
// default plain-text body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}
