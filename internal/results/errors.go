package results

import (
	"errors"
	"fmt"
)

// MalformedResponseError reports a response body that cannot be decoded.
type MalformedResponseError struct {
	Format string // "xml" or "json"
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("malformed %s response: %s", e.Format, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsMalformed checks if an error is a MalformedResponseError.
func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}

func malformed(format, reason string, err error) error {
	return &MalformedResponseError{Format: format, Reason: reason, Err: err}
}
