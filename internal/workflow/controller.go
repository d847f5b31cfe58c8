package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/claimshield/claimshield/internal/evidence"
	"github.com/claimshield/claimshield/internal/logging"
	"github.com/claimshield/claimshield/pkg/types"
)

// DefaultNarrative is the claim description attached to every submission.
const DefaultNarrative = "I honestly believe this accident was not my fault. Honestly, the other car came out of nowhere truthsfully and honestly I guarantee it happened quickly."

type Outcome string

const (
	OutcomeNone      Outcome = "none"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeRejected  Outcome = "rejected"
)

type NoticeKind string

const (
	NoticeMissingEvidence NoticeKind = "missing_evidence"
	NoticeServiceFailure  NoticeKind = "service_failure"
)

// Notice is a blocking, dismissible message for the operator.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	Detail  string     `json:"detail,omitempty"`
}

// Snapshot is an immutable view of controller state. Version increases with
// every published change.
type Snapshot struct {
	Version      uint64
	Bundle       evidence.Bundle
	Phase        Phase
	SubmissionID string
	Outcome      Outcome
	Result       *types.AnalysisResult
	ResultDigest string

	// ResultSubmissionID names the submission that produced Result. It
	// differs from SubmissionID once a later attempt fails.
	ResultSubmissionID string
	View         View
	Notice       *Notice
}

func (s Snapshot) HasResult() bool { return s.Result != nil }

// Option configures a Controller.
type Option func(*Controller)

// WithNarrative replaces DefaultNarrative.
func WithNarrative(narrative string) Option {
	return func(c *Controller) { c.narrative = narrative }
}

// WithServiceURL names the service in failure notices.
func WithServiceURL(url string) Option {
	return func(c *Controller) { c.serviceURL = url }
}

// WithIDGenerator overrides submission ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.submitter.newID = fn }
}

// Controller composes the evidence bundle, submitter, result store and
// navigator behind the commands a UI issues. Commands are safe for
// concurrent use; RunInvestigation blocks for the network round trip while
// the other commands keep working.
type Controller struct {
	mu           sync.Mutex
	bundle       evidence.Bundle
	submitter    *Submitter
	store        *ResultStore
	nav          *Navigator
	notice       *Notice
	phase        Phase
	outcome      Outcome
	submissionID string
	narrative    string
	serviceURL   string
	version      uint64

	// pubMu orders snapshot delivery. Subscribers must not call back into
	// the controller from inside the callback.
	pubMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	log *slog.Logger
}

func New(analyzer Analyzer, opts ...Option) *Controller {
	nav := NewNavigator()
	c := &Controller{
		submitter: NewSubmitter(analyzer),
		store:     NewResultStore(nav),
		nav:       nav,
		phase:     PhaseIdle,
		outcome:   OutcomeNone,
		narrative: DefaultNarrative,
		subs:      make(map[int]func(Snapshot)),
		log:       logging.New("workflow"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers fn for every published snapshot and returns a
// function that removes it.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.pubMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.pubMu.Unlock()
	return func() {
		c.pubMu.Lock()
		delete(c.subs, id)
		c.pubMu.Unlock()
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// AttachEvidence fills slot with ref. Attachments made during an in-flight
// submission apply to the next run only.
func (c *Controller) AttachEvidence(slot evidence.Slot, ref evidence.Ref) Snapshot {
	c.mu.Lock()
	c.bundle = c.bundle.Attach(slot, ref)
	c.log.Debug("evidence attached", slog.String("slot", string(slot)), slog.String("name", ref.Name))
	return c.publishLocked()
}

// SwitchView activates v. It is ignored until a result exists.
func (c *Controller) SwitchView(v View) Snapshot {
	c.mu.Lock()
	if !c.nav.Select(v) {
		c.log.Debug("view switch ignored", slog.String("view", string(v)))
		defer c.mu.Unlock()
		return c.snapshotLocked()
	}
	return c.publishLocked()
}

func (c *Controller) DismissNotice() Snapshot {
	c.mu.Lock()
	if c.notice == nil {
		defer c.mu.Unlock()
		return c.snapshotLocked()
	}
	c.notice = nil
	return c.publishLocked()
}

// RunInvestigation submits the bundle as it stands when called. The
// returned error is a *ValidationError, ErrBusy, or a failure matching
// client.ErrTransport or client.ErrDecode; in every case the controller
// is idle again and the previously held result, if any, is untouched.
// The outcome is published before another submission can start.
func (c *Controller) RunInvestigation(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	bundle := c.bundle
	narrative := c.narrative
	c.mu.Unlock()

	var (
		done bool
		snap Snapshot
	)
	_, err := c.submitter.Submit(ctx, bundle, narrative,
		func(id string) {
			c.mu.Lock()
			c.submissionID = id
			c.phase = PhaseSubmitting
			c.notice = nil
			c.publishLocked()
		},
		func(sub Submission, err error) {
			c.mu.Lock()
			c.phase = PhaseIdle
			if err == nil {
				c.store.Set(sub.Result, sub.ID)
				c.outcome = OutcomeSucceeded
			} else {
				c.outcome = OutcomeFailed
				c.notice = c.failureNotice(err)
			}
			snap = c.publishLocked()
			done = true
		})
	if done {
		return snap, err
	}

	c.mu.Lock()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		// Busy: the in-flight submission owns the state.
		defer c.mu.Unlock()
		return c.snapshotLocked(), err
	}
	c.outcome = OutcomeRejected
	c.notice = missingNotice(ve.Missing)
	return c.publishLocked(), err
}

func missingNotice(missing []evidence.Slot) *Notice {
	labels := make([]string, 0, len(missing))
	for _, s := range missing {
		labels = append(labels, s.Label())
	}
	return &Notice{
		Kind:    NoticeMissingEvidence,
		Message: "Please upload all required evidence (Scene, Damage, and Invoice).",
		Detail:  "Missing: " + strings.Join(labels, ", "),
	}
}

func (c *Controller) failureNotice(err error) *Notice {
	where := "the configured address"
	if c.serviceURL != "" {
		where = c.serviceURL
	}
	return &Notice{
		Kind:    NoticeServiceFailure,
		Message: fmt.Sprintf("Backend not reachable. Ensure the analysis service is running at %s.", where),
		Detail:  err.Error(),
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Version:      c.version,
		Bundle:       c.bundle,
		Phase:        c.phase,
		SubmissionID: c.submissionID,
		Outcome:      c.outcome,
		ResultDigest: c.store.Digest(),
		View:         c.nav.Active(),

		ResultSubmissionID: c.store.SubmissionID(),
	}
	if r, ok := c.store.Current(); ok {
		s.Result = &r
	}
	if c.notice != nil {
		n := *c.notice
		s.Notice = &n
	}
	return s
}

// publishLocked bumps the version, releases c.mu and delivers the new
// snapshot to subscribers in version order.
func (c *Controller) publishLocked() Snapshot {
	c.version++
	snap := c.snapshotLocked()
	c.pubMu.Lock()
	c.mu.Unlock()
	defer c.pubMu.Unlock()
	for _, fn := range c.subs {
		fn(snap)
	}
	return snap
}
