package handlers

import (
	"encoding/json"
	"net/http"

	"gopkg.in/yaml.v3"
)

// ApiResponse is the envelope for JSON API responses.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteYAML writes a YAML document and returns any encoding error.
func WriteYAML(w http.ResponseWriter, statusCode int, data any) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/yaml")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	_, err = w.Write(out)
	return err
}
