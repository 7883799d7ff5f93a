// Package hook observes system-wide keyboard and mouse input.
//
// A Hook installs the OS low-level hooks when the first handler subscribes
// and removes them when the last one leaves. Events are read on the hook
// thread, queued, and delivered to every handler from a single dispatch
// goroutine, so a slow handler delays other handlers but never the OS.
package hook

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	// ErrAlreadyActive is returned when another hook loop is running in
	// this process.
	ErrAlreadyActive = errors.New("input hook is already active")
	// ErrUnsupported is returned on platforms without low-level hooks.
	ErrUnsupported = errors.New("input hooks are not supported on this platform")
	// ErrUnknownHandler is returned when unsubscribing an id twice.
	ErrUnknownHandler = errors.New("unknown handler")
)

// DefaultQueueSize is the number of events buffered between the hook
// thread and the dispatch goroutine.
const DefaultQueueSize = 1024

// Source produces events until stopped. Start must not return until the
// source is ready; emit may be called from any goroutine and must not block.
type Source interface {
	Start(emit func(Event)) (stop func() error, err error)
}

// Handler receives observed events.
type Handler interface {
	HandleEvent(Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(Event)

func (f HandlerFunc) HandleEvent(e Event) { f(e) }

// HandlerID identifies a subscription.
type HandlerID uint64

type subscription struct {
	id HandlerID
	h  Handler
}

// Hook fans out events from a Source to subscribed handlers.
type Hook struct {
	src       Source
	logger    *slog.Logger
	queueSize int

	mu       sync.Mutex
	handlers []subscription
	next     HandlerID
	stop     func() error

	snapshot atomic.Pointer[[]subscription]
	dropped  atomic.Uint64
}

// New returns a Hook reading from src. A nil logger uses slog.Default.
func New(src Source, logger *slog.Logger) *Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hook{src: src, logger: logger, queueSize: DefaultQueueSize}
}

// NewSystem returns a Hook on the OS low-level keyboard and mouse hooks.
func NewSystem(logger *slog.Logger) *Hook {
	return New(SystemSource(), logger)
}

// SetQueueSize changes the event buffer used the next time the source starts.
func (h *Hook) SetQueueSize(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n > 0 {
		h.queueSize = n
	}
}

// Subscribe registers handler and starts the source if it is the first one.
func (h *Hook) Subscribe(handler Handler) (HandlerID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	id := h.next
	h.handlers = append(h.handlers, subscription{id: id, h: handler})
	h.publishLocked()
	if h.stop == nil {
		if err := h.startLocked(); err != nil {
			h.handlers = h.handlers[:len(h.handlers)-1]
			h.publishLocked()
			return 0, err
		}
	}
	h.logger.Debug("hook handler subscribed", "id", id, "handlers", len(h.handlers))
	return id, nil
}

// Unsubscribe removes a handler. Removing the last handler stops the
// source; events still queued at that point are delivered to nobody. The
// hook is inactive afterwards even when the source reports a stop error.
func (h *Hook) Unsubscribe(id HandlerID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := -1
	for i, s := range h.handlers {
		if s.id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownHandler
	}
	h.handlers = append(h.handlers[:idx:idx], h.handlers[idx+1:]...)
	h.publishLocked()
	h.logger.Debug("hook handler unsubscribed", "id", id, "handlers", len(h.handlers))

	if len(h.handlers) == 0 {
		return h.stopLocked()
	}
	return nil
}

// Active reports whether the source is running.
func (h *Hook) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stop != nil
}

// Dropped returns how many events were discarded because the queue was full.
func (h *Hook) Dropped() uint64 { return h.dropped.Load() }

// Close removes every handler and stops the source.
func (h *Hook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = nil
	h.publishLocked()
	return h.stopLocked()
}

func (h *Hook) publishLocked() {
	snap := append([]subscription(nil), h.handlers...)
	h.snapshot.Store(&snap)
}

func (h *Hook) startLocked() error {
	events := make(chan Event, h.queueSize)
	emit := func(e Event) {
		select {
		case events <- e:
		default:
			if n := h.dropped.Add(1); n == 1 || n%1000 == 0 {
				h.logger.Warn("hook queue full, dropping events", "dropped", n)
			}
		}
	}
	stop, err := h.src.Start(emit)
	if err != nil {
		return err
	}
	quit := make(chan struct{})
	go h.dispatch(events, quit)
	h.stop = func() error {
		err := stop()
		close(quit)
		return err
	}
	h.logger.Debug("hook started")
	return nil
}

func (h *Hook) stopLocked() error {
	if h.stop == nil {
		return nil
	}
	stop := h.stop
	h.stop = nil
	err := stop()
	h.logger.Debug("hook stopped", "error", err)
	return err
}

// dispatch runs until quit is closed. events is never closed because a
// source that failed to stop may still call emit.
func (h *Hook) dispatch(events <-chan Event, quit <-chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case e := <-events:
			snap := h.snapshot.Load()
			if snap == nil {
				continue
			}
			for _, s := range *snap {
				s.h.HandleEvent(e)
			}
		}
	}
}
