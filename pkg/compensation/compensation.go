// Package compensation runs multi-step operations whose completed steps must be
// undone, newest first, when a later step fails.
package compensation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// undoTimeout bounds every undo call. Undo runs on a context detached from the
// caller so a cancelled request still unwinds what it created.
const undoTimeout = 10 * time.Second

type step struct {
	name string
	undo func(ctx context.Context) error
}

// Stack records undo actions for completed steps
type Stack struct {
	steps []step
}

// Push registers the undo action of a step that has just succeeded
func (s *Stack) Push(name string, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, step{name: name, undo: undo})
}

// Len reports how many undo actions are pending
func (s *Stack) Len() int {
	return len(s.steps)
}

// Discard forgets all undo actions once the operation has fully succeeded
func (s *Stack) Discard() {
	s.steps = nil
}

// Unwind runs every undo action newest first, keeps going past failures and
// returns cause joined with any undo errors.
func (s *Stack) Unwind(ctx context.Context, cause error) error {
	errs := []error{cause}
	base := context.WithoutCancel(ctx)
	for i := len(s.steps) - 1; i >= 0; i-- {
		st := s.steps[i]
		undoCtx, cancel := context.WithTimeout(base, undoTimeout)
		if err := st.undo(undoCtx); err != nil {
			errs = append(errs, fmt.Errorf("undo %s: %w", st.name, err))
		}
		cancel()
	}
	s.steps = nil
	return errors.Join(errs...)
}

// Run executes steps in order. Each step may push its own undo action. When a
// step fails the stack is unwound and the joined error returned.
func Run(ctx context.Context, steps ...func(ctx context.Context, s *Stack) error) error {
	var s Stack
	for _, fn := range steps {
		if err := fn(ctx, &s); err != nil {
			return s.Unwind(ctx, err)
		}
	}
	s.Discard()
	return nil
}
