package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync/atomic"

	"github.com/Alia5/vinject/hook"
	"github.com/Alia5/vinject/internal/server/api"
	apierror "github.com/Alia5/vinject/internal/server/api/error"
)

// eventBuffer bounds the events queued for one slow stream client.
const eventBuffer = 256

// Events returns a stream handler that subscribes to h and writes every
// observed event as one JSON line until the client disconnects or the
// server shuts down. An optional payload restricts the stream to a comma
// separated list of event kinds ("keyboard,button").
func Events(h *hook.Hook) api.StreamHandlerFunc {
	return func(conn net.Conn, req *api.Request, logger *slog.Logger) error {
		filter, err := parseKinds(req.Payload)
		if err != nil {
			writeStreamError(conn, apierror.ErrBadRequest(err.Error()))
			return err
		}

		events := make(chan hook.Event, eventBuffer)
		var dropped atomic.Uint64
		id, err := h.Subscribe(hook.HandlerFunc(func(e hook.Event) {
			if filter != nil && !filter[e.Kind] {
				return
			}
			select {
			case events <- e:
			default:
				dropped.Add(1)
			}
		}))
		if err != nil {
			writeStreamError(conn, err)
			return err
		}
		defer func() {
			if err := h.Unsubscribe(id); err != nil {
				logger.Warn("events unsubscribe failed", "error", err)
			}
			if n := dropped.Load(); n > 0 {
				logger.Warn("events dropped for slow client", "count", n)
			}
		}()

		// The client never sends after the request; a read returning means
		// it went away.
		gone := make(chan struct{})
		go func() {
			_, _ = io.Copy(io.Discard, conn)
			close(gone)
		}()

		enc := json.NewEncoder(conn)
		for {
			select {
			case <-req.Ctx.Done():
				return nil
			case <-gone:
				logger.Debug("events client disconnected")
				return nil
			case e := <-events:
				if err := enc.Encode(e); err != nil {
					return fmt.Errorf("write event: %w", err)
				}
			}
		}
	}
}

func parseKinds(payload string) (map[hook.EventKind]bool, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, nil
	}
	filter := map[hook.EventKind]bool{}
	for _, name := range strings.Split(payload, ",") {
		var k hook.EventKind
		if err := k.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
			return nil, err
		}
		filter[k] = true
	}
	return filter, nil
}

func writeStreamError(w io.Writer, err error) {
	b, _ := json.Marshal(apierror.WrapError(err))
	fmt.Fprintf(w, "%s\n", b)
}
