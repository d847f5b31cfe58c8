package workflow

import (
	"github.com/claimshield/claimshield/internal/hash"
	"github.com/claimshield/claimshield/pkg/types"
)

// ResultStore holds the most recent successfully decoded result. Held
// values are never mutated; Set installs a fresh copy.
type ResultStore struct {
	current *types.AnalysisResult
	digest  string
	source  string
	nav     *Navigator
}

// NewResultStore returns an empty store that unlocks nav on its first result.
func NewResultStore(nav *Navigator) *ResultStore {
	return &ResultStore{nav: nav}
}

// Set replaces the held result with r, produced by submission id. The first
// result ever installed resets the navigator to the summary view; later
// results leave the view alone.
func (s *ResultStore) Set(r types.AnalysisResult, id string) {
	first := s.current == nil
	held := r.Clone()
	s.current = &held
	s.source = id
	s.digest, _ = hash.DigestJSON(held)
	if first && s.nav != nil {
		s.nav.unlock()
	}
}

// Current returns a copy of the held result.
func (s *ResultStore) Current() (types.AnalysisResult, bool) {
	if s.current == nil {
		return types.AnalysisResult{}, false
	}
	return s.current.Clone(), true
}

func (s *ResultStore) Has() bool { return s.current != nil }

// SubmissionID names the submission that produced the held result.
func (s *ResultStore) SubmissionID() string { return s.source }

// Digest fingerprints the held result, empty when none is held.
func (s *ResultStore) Digest() string { return s.digest }
