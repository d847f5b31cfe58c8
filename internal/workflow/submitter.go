package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/claimshield/claimshield/internal/client"
	"github.com/claimshield/claimshield/internal/evidence"
	"github.com/claimshield/claimshield/internal/logging"
	"github.com/claimshield/claimshield/pkg/types"
)

// Analyzer performs one request/response cycle against the analysis service.
type Analyzer interface {
	Analyze(ctx context.Context, req client.Request) (types.AnalysisResult, error)
}

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
)

// Submission is one request attempt. Result is set only when it succeeded.
type Submission struct {
	ID       string
	Result   types.AnalysisResult
	Duration time.Duration
}

// Submitter guards the analysis service so at most one request is in
// flight. Requests are never queued or retried.
type Submitter struct {
	analyzer Analyzer
	newID    func() string
	inFlight atomic.Bool
	log      *slog.Logger
}

func NewSubmitter(analyzer Analyzer) *Submitter {
	return &Submitter{
		analyzer: analyzer,
		newID:    uuid.NewString,
		log:      logging.New("submitter"),
	}
}

// Submit validates bundle and, if complete, sends it with narrative.
// Incomplete bundles return *ValidationError without touching the network;
// a call made while another is in flight returns ErrBusy. For a submission
// that owns the in-flight slot, started runs before the request is sent and
// finished runs with the outcome before the slot is released; either may be
// nil. Service failures always match client.ErrTransport or client.ErrDecode.
func (s *Submitter) Submit(ctx context.Context, bundle evidence.Bundle, narrative string,
	started func(id string), finished func(Submission, error)) (Submission, error) {
	if missing := bundle.Missing(); len(missing) > 0 {
		s.log.Warn("submission rejected", slog.Any("missing", missing))
		return Submission{}, &ValidationError{Missing: missing}
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Warn("submission rejected", slog.String("reason", "busy"))
		return Submission{}, ErrBusy
	}
	defer s.inFlight.Store(false)

	id := s.newID()
	if started != nil {
		started(id)
	}
	s.log.Info("submission started", slog.String("submission_id", id), slog.String("phase", string(PhaseSubmitting)))

	begin := time.Now()
	result, err := s.analyzer.Analyze(ctx, client.Request{ID: id, Bundle: bundle, Narrative: narrative})
	sub := Submission{ID: id, Duration: time.Since(begin)}
	if err != nil {
		err = classify(err)
		s.log.Warn("submission failed",
			slog.String("submission_id", id),
			slog.Duration("duration", sub.Duration),
			slog.String("error", err.Error()))
	} else {
		sub.Result = result
		s.log.Info("submission succeeded",
			slog.String("submission_id", id),
			slog.Duration("duration", sub.Duration),
			slog.Float64("fraud_score", result.FraudScore))
	}
	if finished != nil {
		finished(sub, err)
	}
	return sub, err
}

// classify maps analyzer errors outside the client taxonomy to transport
// failures.
func classify(err error) error {
	if errors.Is(err, client.ErrTransport) || errors.Is(err, client.ErrDecode) {
		return err
	}
	return fmt.Errorf("%w: %w", client.ErrTransport, err)
}
