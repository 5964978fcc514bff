// Package response provides helpers for writing JSON responses.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// encodeFailure is written when the payload itself cannot be encoded.
var encodeFailure = []byte(`{"code":"INTERNAL_ERROR","message":"Failed to encode response"}`)

// JSON writes a JSON response with the given status code and data.
// A nil data writes the status with an empty body.
func JSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")

	if data == nil {
		w.WriteHeader(status)
		return nil
	}

	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		if _, writeErr := w.Write(encodeFailure); writeErr != nil {
			return writeErr
		}
		return err
	}

	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// Error writes a JSON error response with code and message.
func Error(w http.ResponseWriter, status int, code, message string) error {
	return JSON(w, status, ErrorBody{Code: code, Message: message})
}
