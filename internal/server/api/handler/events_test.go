package handler_test

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/vinject/hook"
	"github.com/Alia5/vinject/input"
	"github.com/Alia5/vinject/internal/server/api"
	"github.com/Alia5/vinject/internal/server/api/handler"
	th "github.com/Alia5/vinject/internal/testing"
)

func startEvents(t *testing.T) (*th.FakeSource, *hook.Hook, string, func()) {
	t.Helper()
	src := &th.FakeSource{Started: make(chan struct{}, 1)}
	h := hook.New(src, nil)
	addr, done := th.StartAPIServer(t, func(r *api.Router) {
		r.RegisterStream("events", handler.Events(h))
	})
	return src, h, addr, func() {
		done()
		_ = h.Close()
	}
}

func openEvents(t *testing.T, addr, filter string) (net.Conn, *bufio.Reader) {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	req := "events"
	if filter != "" {
		req += " " + filter
	}
	_, err = fmt.Fprintf(c, "%s\x00", req)
	require.NoError(t, err)
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	return c, bufio.NewReader(c)
}

func waitStarted(t *testing.T, src *th.FakeSource) {
	t.Helper()
	select {
	case <-src.Started:
	case <-time.After(2 * time.Second):
		t.Fatal("hook source was not started")
	}
}

func readEvent(t *testing.T, r *bufio.Reader) hook.Event {
	t.Helper()
	line, err := r.ReadBytes('\n')
	require.NoError(t, err)
	var e hook.Event
	require.NoError(t, json.Unmarshal(line, &e), "line %q", line)
	return e
}

func TestEventsStream(t *testing.T) {
	src, h, addr, done := startEvents(t)
	defer done()

	c, r := openEvents(t, addr, "")
	waitStarted(t, src)

	sent := []hook.Event{
		{Kind: hook.KeyboardEvent, Key: input.VkA, ScanCode: 0x1e, Action: input.Press},
		{Kind: hook.MouseMoveEvent, X: 10, Y: 20, Injected: true},
		{Kind: hook.MouseWheelEvent, Delta: -1},
	}
	for _, e := range sent {
		require.True(t, src.Emit(e))
	}
	for _, want := range sent {
		assert.Equal(t, want, readEvent(t, r))
	}

	require.NoError(t, c.Close())
	assert.Eventually(t, func() bool { return !h.Active() }, 2*time.Second, 10*time.Millisecond,
		"hook should stop once the only client disconnects")
	_, stops := src.Counts()
	assert.Equal(t, 1, stops)
}

func TestEventsStreamFilter(t *testing.T) {
	src, _, addr, done := startEvents(t)
	defer done()

	c, r := openEvents(t, addr, "button,wheel")
	defer c.Close()
	waitStarted(t, src)

	require.True(t, src.Emit(hook.Event{Kind: hook.KeyboardEvent, Key: input.VkB}))
	require.True(t, src.Emit(hook.Event{Kind: hook.MouseMoveEvent, X: 1}))
	btn := hook.Event{Kind: hook.MouseButtonEvent, Button: input.ButtonLeft, Action: input.Press}
	require.True(t, src.Emit(btn))

	assert.Equal(t, btn, readEvent(t, r))
}

func TestEventsStreamErrors(t *testing.T) {
	t.Run("unknown kind", func(t *testing.T) {
		_, _, addr, done := startEvents(t)
		defer done()

		c, r := openEvents(t, addr, "keyboard,joystick")
		defer c.Close()
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, 400, problemStatus(t, line))
	})

	t.Run("hook unavailable", func(t *testing.T) {
		h := hook.New(&th.FakeSource{StartErr: hook.ErrUnsupported}, nil)
		addr, done := th.StartAPIServer(t, func(r *api.Router) {
			r.RegisterStream("events", handler.Events(h))
		})
		defer done()

		c, r := openEvents(t, addr, "")
		defer c.Close()
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, 501, problemStatus(t, line))
	})
}

func TestEventsStreamServerShutdown(t *testing.T) {
	src, h, addr, done := startEvents(t)

	c, r := openEvents(t, addr, "")
	defer c.Close()
	waitStarted(t, src)

	finished := make(chan struct{})
	go func() {
		done()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop with an open stream")
	}
	assert.False(t, h.Active())
	_, err := r.ReadByte()
	assert.Error(t, err)
}
