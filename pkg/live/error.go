package live

import "fmt"

// Error represents a failure reported by the live endpoint or the
// connection layer.
type Error struct {
	// Code is a short machine-readable code (e.g. "connection_failed").
	Code string `json:"code,omitzero"`

	// Message is the human-readable error message.
	Message string `json:"message,omitzero"`

	// HTTPStatus is the handshake HTTP status code, if applicable.
	HTTPStatus int `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("live: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("live: %s", e.Message)
}
