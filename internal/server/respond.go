package server

import (
	"encoding/json"
	"net/http"
)

// Envelope is the shape of every JSON response body.
type Envelope struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

type errorData struct {
	Message string `json:"message"`
}

// writeJSON writes data wrapped in an [Envelope]; ok is derived from the status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{OK: status < http.StatusBadRequest, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorData{Message: message})
}
