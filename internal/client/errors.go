package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport marks failures to reach the service or non-success statuses.
	ErrTransport = errors.New("analysis service transport failure")
	// ErrDecode marks response bodies that do not match the AnalysisResult schema.
	ErrDecode = errors.New("analysis result decode failure")
)

type TransportError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		msg := fmt.Sprintf("analysis service %s returned status %d", e.URL, e.StatusCode)
		if e.Body != "" {
			msg += ": " + e.Body
		}
		return msg
	}
	return fmt.Sprintf("analysis service %s unreachable: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

type DecodeError struct {
	Violations []string
	Err        error
}

func (e *DecodeError) Error() string {
	if len(e.Violations) > 0 {
		return "analysis result schema invalid: " + strings.Join(e.Violations, "; ")
	}
	return fmt.Sprintf("decode analysis result: %v", e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecode}
	}
	return []error{ErrDecode, e.Err}
}
