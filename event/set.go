package event

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Set tracks active registrations, at most one per triple.
type Set struct {
	regs []*Registration
	mu   sync.Mutex
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{}
}

// Find returns the registration matching the triple.
func (s *Set) Find(source any, event string, cb *Callback) *Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(source, event, cb)
}

func (s *Set) find(source any, event string, cb *Callback) *Registration {
	for _, r := range s.regs {
		if r.Matches(source, event, cb) {
			return r
		}
	}
	return nil
}

// Insert adds r unless a registration for the same triple exists, which is
// returned instead.
func (s *Set) Insert(r *Registration) (*Registration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.find(r.Source, r.Event, r.Callback); existing != nil {
		return existing, false
	}
	s.regs = append(s.regs, r)
	return r, true
}

// Take removes and returns the registration matching the triple.
func (s *Set) Take(source any, event string, cb *Callback) *Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.regs {
		if r.Matches(source, event, cb) {
			s.regs = append(s.regs[:i], s.regs[i+1:]...)
			return r
		}
	}
	return nil
}

// Holds reports whether any registration delivers to cb.
func (s *Set) Holds(cb *Callback) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regs {
		if r.Callback == cb {
			return true
		}
	}
	return false
}

// Len returns the number of registrations.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.regs)
}

// Detach removes every registration from its source and empties the set.
func (s *Set) Detach(ctx context.Context) error {
	s.mu.Lock()
	regs := s.regs
	s.regs = nil
	s.mu.Unlock()

	var err error
	for _, r := range regs {
		if rerr := r.Remove(ctx); rerr != nil {
			Logger().Warn("failed to detach event listener",
				zap.String("type", r.typeName),
				zap.String("event", r.Event),
				zap.Error(rerr))
			err = multierr.Append(err, rerr)
		}
	}
	return err
}
