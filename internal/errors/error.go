// Package errors provides classified error types for product API operations.
// A classified error carries the HTTP status it maps to; the REST layer is
// the single place that translates errors into responses.
package errors

import "net/http"

// Error is a classified API error.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound creates a classified error that maps to 404.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Validation creates a classified error that maps to 400.
func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

var (
	// ErrProductNotFound is returned when no product matches the requested ID.
	ErrProductNotFound = NotFound("Product not found")

	// ErrInvalidProduct is returned when a create/update payload is missing
	// required fields or carries wrongly typed ones.
	ErrInvalidProduct = Validation("Invalid product data")

	// ErrMissingSearchTerm is returned when the search endpoint is called
	// without the name query parameter.
	ErrMissingSearchTerm = Validation(`Missing "name" query parameter`)
)
