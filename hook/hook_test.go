package hook_test

import (
	"encoding/json"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/vinject/hook"
	"github.com/Alia5/vinject/input"
	th "github.com/Alia5/vinject/internal/testing"
)

func collector() (hook.Handler, <-chan hook.Event) {
	ch := make(chan hook.Event, 16)
	return hook.HandlerFunc(func(e hook.Event) { ch <- e }), ch
}

func receive(t *testing.T, ch <-chan hook.Event) hook.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return hook.Event{}
	}
}

func TestSubscribeLifecycle(t *testing.T) {
	src := &th.FakeSource{}
	h := hook.New(src, nil)
	assert.False(t, h.Active())

	h1, ch1 := collector()
	id1, err := h.Subscribe(h1)
	require.NoError(t, err)
	assert.True(t, h.Active())

	h2, ch2 := collector()
	id2, err := h.Subscribe(h2)
	require.NoError(t, err)

	starts, _ := src.Counts()
	assert.Equal(t, 1, starts, "source starts once for many handlers")

	ev := hook.Event{Kind: hook.KeyboardEvent, Key: input.VkA, ScanCode: 0x1e, Action: input.Release}
	require.True(t, src.Emit(ev))
	assert.Equal(t, ev, receive(t, ch1))
	assert.Equal(t, ev, receive(t, ch2))

	require.NoError(t, h.Unsubscribe(id1))
	assert.True(t, h.Active())

	ev2 := hook.Event{Kind: hook.MouseMoveEvent, X: 3, Y: 4}
	require.True(t, src.Emit(ev2))
	assert.Equal(t, ev2, receive(t, ch2))
	select {
	case e := <-ch1:
		t.Fatalf("unsubscribed handler got %v", e)
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, h.Unsubscribe(id2))
	assert.False(t, h.Active())
	_, stops := src.Counts()
	assert.Equal(t, 1, stops)

	assert.ErrorIs(t, h.Unsubscribe(id2), hook.ErrUnknownHandler)
}

func TestRestartAfterStop(t *testing.T) {
	src := &th.FakeSource{}
	h := hook.New(src, nil)

	hd, _ := collector()
	id, err := h.Subscribe(hd)
	require.NoError(t, err)
	require.NoError(t, h.Unsubscribe(id))

	hd2, ch := collector()
	_, err = h.Subscribe(hd2)
	require.NoError(t, err)

	ev := hook.Event{Kind: hook.MouseWheelEvent, Delta: -1}
	require.True(t, src.Emit(ev))
	assert.Equal(t, ev, receive(t, ch))

	starts, _ := src.Counts()
	assert.Equal(t, 2, starts)
	require.NoError(t, h.Close())
	assert.False(t, h.Active())
}

func TestSubscribeStartError(t *testing.T) {
	cause := errors.New("hook refused")
	h := hook.New(&th.FakeSource{StartErr: cause}, nil)

	hd, _ := collector()
	_, err := h.Subscribe(hd)
	assert.ErrorIs(t, err, cause)
	assert.False(t, h.Active())
}

func TestStopErrorEndsDispatch(t *testing.T) {
	cause := errors.New("quit message not posted")
	src := &th.FakeSource{StopErr: cause}
	h := hook.New(src, nil)
	base := runtime.NumGoroutine()

	hd, ch := collector()
	id, err := h.Subscribe(hd)
	require.NoError(t, err)
	assert.ErrorIs(t, h.Unsubscribe(id), cause)
	assert.False(t, h.Active())
	assert.Eventually(t, func() bool { return runtime.NumGoroutine() <= base }, time.Second, 10*time.Millisecond,
		"dispatch goroutine outlives a failed stop")

	require.True(t, src.Running())
	assert.NotPanics(t, func() { src.Emit(hook.Event{Kind: hook.MouseWheelEvent, Delta: 1}) })
	select {
	case e := <-ch:
		t.Fatalf("handler got %v after stop", e)
	case <-time.After(20 * time.Millisecond):
	}

	_, err = h.Subscribe(hd)
	assert.ErrorIs(t, err, hook.ErrAlreadyActive)
	assert.NoError(t, h.Close())
}

func TestUnsubscribeFromHandler(t *testing.T) {
	src := &th.FakeSource{}
	h := hook.New(src, nil)

	done := make(chan struct{})
	var id hook.HandlerID
	var once sync.Once
	var err error
	id, err = h.Subscribe(hook.HandlerFunc(func(hook.Event) {
		once.Do(func() {
			assert.NoError(t, h.Unsubscribe(id))
			close(done)
		})
	}))
	require.NoError(t, err)

	require.True(t, src.Emit(hook.Event{Kind: hook.MouseMoveEvent}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not unsubscribe")
	}
	assert.False(t, h.Active())
}

func TestQueueOverflowDrops(t *testing.T) {
	src := &th.FakeSource{}
	h := hook.New(src, nil)
	h.SetQueueSize(1)

	release := make(chan struct{})
	_, err := h.Subscribe(hook.HandlerFunc(func(hook.Event) { <-release }))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		src.Emit(hook.Event{Kind: hook.MouseMoveEvent, X: int32(i)})
	}
	assert.Positive(t, h.Dropped())
	close(release)
	require.NoError(t, h.Close())
}

func TestEventJSON(t *testing.T) {
	tests := []struct {
		name string
		ev   hook.Event
		want string
	}{
		{
			name: "keyboard",
			ev:   hook.Event{Kind: hook.KeyboardEvent, Key: input.VkEnter, ScanCode: 0x1c, Action: input.Press},
			want: `{"kind":"keyboard","key":"Enter","scanCode":28,"action":"press"}`,
		},
		{
			name: "button",
			ev:   hook.Event{Kind: hook.MouseButtonEvent, Button: input.ButtonRight, Action: input.Release, X: 10, Y: 20, Injected: true},
			want: `{"kind":"button","action":"release","button":"right","x":10,"y":20,"injected":true}`,
		},
		{
			name: "wheel at origin",
			ev:   hook.Event{Kind: hook.MouseWheelEvent, Delta: 1, Direction: input.Horizontal},
			want: `{"kind":"wheel","x":0,"y":0,"delta":1,"direction":"horizontal"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.ev)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))

			var back hook.Event
			require.NoError(t, json.Unmarshal(b, &back))
			assert.Equal(t, tt.ev, back)
		})
	}
}
