package countries

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"task-tracker/pkg/logger"
)

// Lookup resolves a partial name to matching country names.
type Lookup interface {
	ByName(ctx context.Context, query string) ([]string, error)
}

// Result is the outcome of one Fetch. Stale is set when a newer Fetch or
// Select superseded this one; its lookup result was discarded.
type Result struct {
	Query       string   `json:"query"`
	Seq         uint64   `json:"seq"`
	Suggestions []string `json:"suggestions"`
	Stale       bool     `json:"stale"`
}

// Suggester holds the suggestion list for one typing session. Every
// Fetch takes the next sequence number and cancels the lookup it
// replaces, so only the newest query can change the list.
type Suggester struct {
	lookup  Lookup
	timeout time.Duration

	mu          sync.Mutex
	seq         uint64
	cancel      context.CancelFunc
	suggestions []string
}

func NewSuggester(lookup Lookup, timeout time.Duration) *Suggester {
	return &Suggester{lookup: lookup, timeout: timeout}
}

// Fetch updates the list for query. An empty query clears the list
// without a lookup. Lookup failures clear the list and are only logged.
func (s *Suggester) Fetch(ctx context.Context, query string) Result {
	q := strings.TrimSpace(query)

	s.mu.Lock()
	seq := s.supersede()
	if q == "" {
		s.suggestions = nil
		s.mu.Unlock()
		return Result{Query: query, Seq: seq, Suggestions: []string{}}
	}
	var (
		lctx   context.Context
		cancel context.CancelFunc
	)
	if s.timeout > 0 {
		lctx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		lctx, cancel = context.WithCancel(ctx)
	}
	s.cancel = cancel
	s.mu.Unlock()

	names, err := s.lookup.ByName(lctx, q)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return Result{Query: query, Seq: seq, Suggestions: []string{}, Stale: true}
	}
	s.cancel = nil
	if err != nil {
		logger.Warn(ctx, "Country suggestion lookup failed", "error", err, "query", q)
		s.suggestions = nil
	} else {
		s.suggestions = names
	}
	return Result{Query: query, Seq: seq, Suggestions: s.snapshot()}
}

// Select records that the user picked name: the list is cleared and any
// lookup still in flight is discarded.
func (s *Suggester) Select(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersede()
	s.suggestions = nil
	return name
}

// Suggestions returns the current list.
func (s *Suggester) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// supersede cancels the in-flight lookup and returns the new sequence
// number. Caller holds s.mu.
func (s *Suggester) supersede() uint64 {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	return s.seq
}

func (s *Suggester) snapshot() []string {
	out := slices.Clone(s.suggestions)
	if out == nil {
		out = []string{}
	}
	return out
}
