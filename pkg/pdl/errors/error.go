// Package errors provides rich, accumulating lint errors for PDL parsing
// and validation. A lint run collects every error it finds instead of
// stopping at the first, so authors fix a document in one pass.
package errors

import (
	"fmt"
	"strings"

	"truthcore-hq/atlas/pkg/pdl/ast"
)

// ErrorType categorizes a lint error.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // YAML syntax error
	ErrorTypeStructural ErrorType = "structural" // missing/invalid fields
	ErrorTypeSemantic   ErrorType = "semantic"   // unknown field/comparison/size references
	ErrorTypeIO         ErrorType = "io"         // file access error
)

// Error is a single lint error with location and optional suggestion.
type Error struct {
	Type       ErrorType
	Message    string
	Location   ast.Location
	Suggestion string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))
	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("\n  --> %s", e.Location.String()))
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n  = suggestion: %s", e.Suggestion))
	}
	return sb.String()
}

// ErrorList accumulates lint errors across a parse/validate run.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates an empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*Error, 0)}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and appends a new error.
func (el *ErrorList) AddError(errType ErrorType, message string, location ast.Location) {
	el.Add(&Error{Type: errType, Message: message, Location: location})
}

// AddErrorWithSuggestion creates and appends a new error with a fix hint.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, location ast.Location, suggestion string) {
	el.Add(&Error{Type: errType, Message: message, Location: location, Suggestion: suggestion})
}

// HasErrors reports whether the list is non-empty.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of accumulated errors.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface, formatting every accumulated error.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d lint error(s):\n", el.Count()))
	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("\nerror %d:\n%s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ToError returns nil when empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// Messages returns the plain message strings, one per error, for callers
// that persist or transmit lint results without the formatting.
func (el *ErrorList) Messages() []string {
	msgs := make([]string, 0, len(el.Errors))
	for _, err := range el.Errors {
		if err.Location.IsValid() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", err.Location.String(), err.Message))
		} else {
			msgs = append(msgs, err.Message)
		}
	}
	return msgs
}
