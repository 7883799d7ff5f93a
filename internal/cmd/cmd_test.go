package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/vinject/hook"
	"github.com/Alia5/vinject/input"
	"github.com/Alia5/vinject/internal/server/api"
	th "github.com/Alia5/vinject/internal/testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// isolateConfig points the config dir at an empty temp dir so no real key
// file is picked up.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("AppData", dir)
	return dir
}

type remoteEnv struct {
	fb     *th.FakeBackend
	src    *th.FakeSource
	remote *Remote
}

func startRemote(t *testing.T) *remoteEnv {
	t.Helper()
	isolateConfig(t)
	fb := th.NewFakeBackend()
	src := &th.FakeSource{Started: make(chan struct{}, 1)}
	h := hook.New(src, nil)
	addr, done := th.StartAPIServer(t, func(r *api.Router) {
		RegisterRoutes(r, input.NewDispatcher(fb, nil), h, "test")
	})
	t.Cleanup(func() {
		done()
		_ = h.Close()
	})
	return &remoteEnv{fb: fb, src: src, remote: &Remote{Addr: addr}}
}

type runner interface {
	Run(logger *slog.Logger, remote *Remote) error
}

func TestCommandsRemote(t *testing.T) {
	env := startRemote(t)

	tests := []struct {
		name        string
		cmd         runner
		wantRecords int
		wantErr     string
		check       func(t *testing.T, fb *th.FakeBackend)
	}{
		{name: "type", cmd: &Type{Text: "hi"}, wantRecords: 4},
		{name: "tap", cmd: &Tap{Keys: []string{"a", "enter"}}, wantRecords: 4},
		{name: "press", cmd: &Press{Keys: []string{"a", "mouse.left"}}, wantRecords: 2},
		{name: "release", cmd: &Release{Keys: []string{"a"}}, wantRecords: 1},
		{name: "bad key", cmd: &Tap{Keys: []string{"nokey"}}, wantErr: "400"},
		{name: "unmappable text", cmd: &Type{Text: "a€"}, wantErr: "422"},
		{name: "move", cmd: &MouseMove{X: 0.5, Y: 0.5, Virtual: true}, wantRecords: 1},
		{name: "moverel", cmd: &MouseMoveRel{DX: -3, DY: 4}, wantRecords: 1},
		{name: "moveto", cmd: &MouseMoveTo{X: 10, Y: 20}, wantRecords: 1},
		{name: "click", cmd: &MouseClick{Button: "right"}, wantRecords: 2},
		{name: "scroll", cmd: &MouseScroll{Delta: -1, Horizontal: true}, wantRecords: 1},
		{
			name: "set",
			cmd:  &MouseSet{X: 7, Y: 8},
			check: func(t *testing.T, fb *th.FakeBackend) {
				x, y, err := fb.CursorPos()
				require.NoError(t, err)
				assert.Equal(t, [2]int32{7, 8}, [2]int32{x, y})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.fb.Reset()
			err := tt.cmd.Run(quietLogger(), env.remote)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, env.fb.Records(), tt.wantRecords)
			if tt.check != nil {
				tt.check(t, env.fb)
			}
		})
	}
}

func TestCommandsPartialInjectionIsNotAnError(t *testing.T) {
	env := startRemote(t)
	env.fb.Accept = func(int) uint32 { return 0 }

	assert.NoError(t, (&Tap{Keys: []string{"a"}}).Run(quietLogger(), env.remote))
	assert.NoError(t, (&MouseClick{Button: "left"}).Run(quietLogger(), env.remote))
}

func TestRemoteTextKeepsCountOnFailure(t *testing.T) {
	env := startRemote(t)
	ctl, err := env.remote.Controller(quietLogger())
	require.NoError(t, err)

	n, err := ctl.Text("a€")
	assert.ErrorContains(t, err, "422")
	assert.Equal(t, uint32(2), n)
	assert.Len(t, env.fb.Records(), 2)
}

func TestMousePos(t *testing.T) {
	env := startRemote(t)
	require.NoError(t, env.fb.SetCursorPos(100, -5))

	var out bytes.Buffer
	require.NoError(t, (&MousePos{out: &out}).Run(quietLogger(), env.remote))
	assert.Equal(t, "100 -5\n", out.String())
}

func TestListenRemote(t *testing.T) {
	env := startRemote(t)

	var out bytes.Buffer
	l := &Listen{Kinds: []string{"keyboard"}, Count: 1, out: &out}
	errCh := make(chan error, 1)
	go func() { errCh <- l.listen(context.Background(), quietLogger(), env.remote) }()

	select {
	case <-env.src.Started:
	case <-time.After(2 * time.Second):
		t.Fatal("hook not started")
	}
	want := hook.Event{Kind: hook.KeyboardEvent, Key: input.VkEnter, Action: input.Release}
	require.True(t, env.src.Emit(hook.Event{Kind: hook.MouseWheelEvent, Delta: 1}))
	require.True(t, env.src.Emit(want))

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listen did not stop after the requested count")
	}
	var got hook.Event
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, want, got)
}

func TestLocalController(t *testing.T) {
	fb := th.NewFakeBackend()
	src := &th.FakeSource{Started: make(chan struct{}, 1)}
	l := &localController{
		d:       input.NewDispatcher(fb, nil),
		logger:  quietLogger(),
		newHook: func(logger *slog.Logger) *hook.Hook { return hook.New(src, logger) },
	}

	n, err := l.Press("a", "b")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), n)

	_, err = l.Release("a", "bogus-key")
	assert.ErrorContains(t, err, `key "bogus-key"`)

	n, err = l.Click("Mouse.Middle")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), n)

	_, err = l.Click("thumb")
	assert.Error(t, err)

	fb.Reset()
	n, err = l.MoveAbsolute(1, 1, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)
	require.Len(t, fb.Records(), 1)

	t.Run("events", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var got []hook.Event
		errCh := make(chan error, 1)
		go func() {
			errCh <- l.Events(ctx, []string{"button"}, func(e hook.Event) error {
				got = append(got, e)
				cancel()
				return nil
			})
		}()

		select {
		case <-src.Started:
		case <-time.After(2 * time.Second):
			t.Fatal("hook not started")
		}
		btn := hook.Event{Kind: hook.MouseButtonEvent, Button: input.ButtonX1, Action: input.Press}
		require.True(t, src.Emit(hook.Event{Kind: hook.KeyboardEvent, Key: input.VkA}))
		require.True(t, src.Emit(btn))

		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("events did not return after cancel")
		}
		assert.Equal(t, []hook.Event{btn}, got)
		assert.Eventually(t, func() bool { return !src.Running() }, time.Second, 10*time.Millisecond)
	})

	t.Run("unknown kind", func(t *testing.T) {
		err := l.Events(context.Background(), []string{"joystick"}, func(hook.Event) error { return nil })
		assert.Error(t, err)
	})
}

func TestRemotePassword(t *testing.T) {
	dir := isolateConfig(t)

	r := &Remote{}
	pwd, err := r.password()
	require.NoError(t, err)
	assert.Empty(t, pwd)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vinject"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vinject", "vinject.key.txt"), []byte("fromfile\n"), 0o600))
	pwd, err = r.password()
	require.NoError(t, err)
	assert.Equal(t, "fromfile", pwd)

	r.Password = "flag"
	pwd, err = r.password()
	require.NoError(t, err)
	assert.Equal(t, "flag", pwd)

	r.AskPassword = true
	r.prompt = func() (string, error) { return "typed", nil }
	pwd, err = r.password()
	require.NoError(t, err)
	assert.Equal(t, "typed", pwd)
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "vinject.key.txt")

	first, err := loadOrCreateKey(path, quietLogger())
	require.NoError(t, err)
	assert.Len(t, first, 16)

	second, err := loadOrCreateKey(path, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestRegisterRoutes(t *testing.T) {
	r := api.NewRouter()
	RegisterRoutes(r, input.NewDispatcher(th.NewFakeBackend(), nil), hook.New(&th.FakeSource{}, nil), "v")

	assert.Equal(t, []string{
		"ping", "input/send",
		"key/press", "key/release", "key/send", "keys/send", "text",
		"mouse/position", "mouse/set", "mouse/move", "mouse/moverel", "mouse/moveto", "mouse/scroll", "mouse/click",
		"events",
	}, r.Routes())
}
