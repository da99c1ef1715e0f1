package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMetadataRequired = errors.New("itinerary: metadata object is required")
	ErrNoDocument       = errors.New("itinerary: no document loaded")
	ErrNotFound         = errors.New("itinerary: not found")
	ErrLoginRequired    = errors.New("itinerary: login required to save")
	ErrDayOutOfRange    = errors.New("itinerary: day index out of range")
	ErrItemOutOfRange   = errors.New("itinerary: item index out of range")
	ErrUnknownCategory  = errors.New("itinerary: unknown budget category")
	ErrMissingID        = errors.New("itinerary: backend returned no identifier")
)

// ParseError reports text that is not valid JSON for a document.
type ParseError struct {
	Offset int64
	Err    error
}

func newParseError(err error) *ParseError {
	pe := &ParseError{Err: err}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		pe.Offset = syn.Offset
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		pe.Offset = typ.Offset
	}
	return pe
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("invalid itinerary JSON at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("invalid itinerary JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError lists every schema problem found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid itinerary: " + strings.Join(e.Problems, "; ")
}
