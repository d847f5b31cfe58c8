package workflow

import (
	"errors"
	"strings"

	"github.com/claimshield/claimshield/internal/evidence"
)

var (
	// ErrValidation marks a run attempted with incomplete evidence.
	ErrValidation = errors.New("evidence incomplete")
	// ErrBusy marks a run attempted while another submission is in flight.
	ErrBusy = errors.New("submission already in flight")
)

type ValidationError struct {
	Missing []evidence.Slot
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, s := range e.Missing {
		names = append(names, string(s))
	}
	return "evidence incomplete: missing " + strings.Join(names, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
