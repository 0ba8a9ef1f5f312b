package webapi

import (
	"context"
	"sync"

	"github.com/DominicRaj03/Gen-AI---QA/internal/pipeline"
)

// Session serializes access to one pipeline Runner. The Runner and its store
// are not safe for concurrent use, so every handler goes through Do.
type Session struct {
	mu     sync.Mutex
	runner *pipeline.Runner
	closed bool
}

// NewSession wraps runner.
func NewSession(runner *pipeline.Runner) *Session {
	return &Session{runner: runner}
}

// Do runs fn while holding the session lock.
func (s *Session) Do(fn func(r *pipeline.Runner)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.runner)
}

// Close ends the session once. It waits for an operation in progress, so
// the session_complete event is always the last one logged.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.runner.Close(ctx)
}
