package api

import (
	"encoding/json"
	"fmt"
)

// envelope is the uniform response shape every backend endpoint returns.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
}

// APIError carries an application-level failure reported by the backend
// envelope. Transport failures and malformed responses are plain errors,
// not APIErrors.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (%d)", e.Status)
}
