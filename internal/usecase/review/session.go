package review

import "sync/atomic"

// Session carries the run-wide mutable state: the language-model invocation
// budget. It is passed explicitly rather than held in package state, and
// the counter is atomic so file passes may safely run in parallel.
type Session struct {
	remaining atomic.Int64
	unlimited bool
	used      atomic.Int64
}

// NewSession creates a session allowing at most maxCalls model invocations.
// A non-positive maxCalls means unlimited.
func NewSession(maxCalls int) *Session {
	s := &Session{}
	if maxCalls <= 0 {
		s.unlimited = true
		return s
	}
	s.remaining.Store(int64(maxCalls))
	return s
}

// Acquire consumes one model invocation from the budget, reporting whether
// the call may proceed.
func (s *Session) Acquire() bool {
	if s.unlimited {
		s.used.Add(1)
		return true
	}
	for {
		cur := s.remaining.Load()
		if cur <= 0 {
			return false
		}
		if s.remaining.CompareAndSwap(cur, cur-1) {
			s.used.Add(1)
			return true
		}
	}
}

// Used returns how many invocations have been acquired so far.
func (s *Session) Used() int {
	return int(s.used.Load())
}
