package forms

import (
	"sort"
	"strings"
)

// ErrorKind classifies a validation failure on one field.
type ErrorKind string

const (
	RequiredField ErrorKind = "required"
	InvalidFormat ErrorKind = "invalid_format"
	TooLong       ErrorKind = "too_long"
)

type FieldError struct {
	Code    ErrorKind `json:"code"`
	Message string    `json:"message"`
}

// Errors maps a form field name to its validation failures. A non-empty
// Errors is returned as an error by the Validate methods.
type Errors map[string][]FieldError

func (e Errors) Add(field string, kind ErrorKind, message string) {
	e[field] = append(e[field], FieldError{Code: kind, Message: message})
}

// Has reports whether field failed with the given kind.
func (e Errors) Has(field string, kind ErrorKind) bool {
	for _, fe := range e[field] {
		if fe.Code == kind {
			return true
		}
	}
	return false
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, fe := range e[field] {
			parts = append(parts, field+": "+fe.Message)
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
