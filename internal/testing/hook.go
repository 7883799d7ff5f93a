package testing

import (
	"sync"

	"github.com/Alia5/vinject/hook"
)

// FakeSource is a hook.Source driven by the test through Emit.
type FakeSource struct {
	mu     sync.Mutex
	emit   func(hook.Event)
	starts int
	stops  int

	// StartErr, when set, fails every Start.
	StartErr error
	// StopErr, when set, is returned by stop. The source stays running,
	// like a system loop that never saw its quit message.
	StopErr error
	// Started receives a value each time the source starts, if non-nil.
	Started chan struct{}
}

func (s *FakeSource) Start(emit func(hook.Event)) (func() error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StartErr != nil {
		return nil, s.StartErr
	}
	if s.emit != nil {
		return nil, hook.ErrAlreadyActive
	}
	s.starts++
	s.emit = emit
	if s.Started != nil {
		select {
		case s.Started <- struct{}{}:
		default:
		}
	}
	return func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.stops++
		if s.StopErr != nil {
			return s.StopErr
		}
		s.emit = nil
		return nil
	}, nil
}

// Emit delivers e as if the OS had reported it. It returns false when the
// source is not running.
func (s *FakeSource) Emit(e hook.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emit == nil {
		return false
	}
	s.emit(e)
	return true
}

// Running reports whether the source is started.
func (s *FakeSource) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emit != nil
}

// Counts returns how often the source was started and stopped.
func (s *FakeSource) Counts() (starts, stops int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts, s.stops
}
