package engine

import (
	"errors"
	"fmt"
)

// QueryError represents a problem found while executing a query.
//
// Query errors do not abort execution; their text is recorded in
// QueryResult.Errors. The typed form keeps the code available to callers
// that wrap the engine.
type QueryError struct {
	// Code identifies the error category.
	Code QueryErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string
}

// QueryErrorCode categorizes query errors.
type QueryErrorCode string

const (
	// ErrCodeUnreachable indicates the endpoint could not be reached.
	ErrCodeUnreachable QueryErrorCode = "ENDPOINT_UNREACHABLE"

	// ErrCodeIncomplete indicates the endpoint returned a partial answer.
	ErrCodeIncomplete QueryErrorCode = "RESULT_INCOMPLETE"

	// ErrCodeMalformed indicates the endpoint response could not be decoded.
	ErrCodeMalformed QueryErrorCode = "MALFORMED_RESPONSE"

	// ErrCodeUnresolved indicates a result row did not map to a wiki entity.
	ErrCodeUnresolved QueryErrorCode = "UNRESOLVED_RESULT"

	// ErrCodeBadCount indicates a COUNT answer that is not a number.
	ErrCodeBadCount QueryErrorCode = "BAD_COUNT"

	// ErrCodeNoConnection indicates the engine has no endpoint to query.
	ErrCodeNoConnection QueryErrorCode = "NO_CONNECTION"
)

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsQueryError reports whether err is a QueryError with the given code.
// Uses errors.As to handle wrapped errors.
func IsQueryError(err error, code QueryErrorCode) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}

// NewUnreachableError creates a QueryError for an endpoint that could not
// be reached.
func NewUnreachableError(comments ...string) *QueryError {
	e := &QueryError{
		Code:    ErrCodeUnreachable,
		Message: "the SPARQL endpoint could not be reached",
	}
	if len(comments) > 0 {
		e.Details = map[string]string{"endpoint": comments[0]}
		e.Message += " (" + comments[0] + ")"
	}
	return e
}

// NewIncompleteError creates a QueryError for a partial endpoint answer.
func NewIncompleteError() *QueryError {
	return &QueryError{
		Code:    ErrCodeIncomplete,
		Message: "the SPARQL endpoint returned an incomplete result, possibly because the query timed out",
	}
}

// NewMalformedError creates a QueryError for an undecodable response.
func NewMalformedError(cause error) *QueryError {
	return &QueryError{
		Code:    ErrCodeMalformed,
		Message: cause.Error(),
	}
}

// NewUnresolvedError creates a QueryError for a result cell that does not
// map to a wiki entity.
func NewUnresolvedError(cell string, cause error) *QueryError {
	e := &QueryError{
		Code:    ErrCodeUnresolved,
		Message: fmt.Sprintf("result %s does not identify a wiki page", cell),
		Details: map[string]string{"cell": cell},
	}
	if cause != nil {
		e.Message = fmt.Sprintf("result %s could not be resolved: %v", cell, cause)
	}
	return e
}

// NewBadCountError creates a QueryError for a non-numeric COUNT answer.
func NewBadCountError(cell string) *QueryError {
	return &QueryError{
		Code:    ErrCodeBadCount,
		Message: fmt.Sprintf("unexpected count value %s", cell),
		Details: map[string]string{"cell": cell},
	}
}
