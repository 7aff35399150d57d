// Package apperrors defines the recognition pipeline's error taxonomy.
//
// Configuration and annotation errors are fatal for a request. Search query
// errors are soft: they are logged and the aggregation continues.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a pipeline error.
type ErrorCode string

const (
	ErrorConfiguration     ErrorCode = "CONFIGURATION"
	ErrorAnnotationService ErrorCode = "ANNOTATION_SERVICE"
	ErrorSearchQuery       ErrorCode = "SEARCH_QUERY"
)

// Error is a classified pipeline error.
type Error struct {
	Code  ErrorCode
	Op    string // what was being attempted
	Query string // only set for search query errors
	Err   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Op
	if e.Query != "" {
		msg += fmt.Sprintf(" (query %q)", e.Query)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError reports missing credentials or engine configuration.
func NewConfigurationError(op string, err error) *Error {
	return &Error{Code: ErrorConfiguration, Op: op, Err: err}
}

// NewAnnotationError reports an unreachable or malformed annotation service.
func NewAnnotationError(op string, err error) *Error {
	return &Error{Code: ErrorAnnotationService, Op: op, Err: err}
}

// NewSearchQueryError reports one failed search query.
func NewSearchQueryError(query string, err error) *Error {
	return &Error{Code: ErrorSearchQuery, Op: "search", Query: query, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsConfiguration(err error) bool { return CodeOf(err) == ErrorConfiguration }

func IsAnnotation(err error) bool { return CodeOf(err) == ErrorAnnotationService }

func IsSearchQuery(err error) bool { return CodeOf(err) == ErrorSearchQuery }
