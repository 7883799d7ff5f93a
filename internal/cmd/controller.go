package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Alia5/vinject/apiclient"
	"github.com/Alia5/vinject/apitypes"
	"github.com/Alia5/vinject/hook"
	"github.com/Alia5/vinject/input"
	"github.com/Alia5/vinject/internal/configpaths"
)

// Controller is what the input commands drive: the local machine or a
// remote vinject server.
type Controller interface {
	Press(keys ...string) (uint32, error)
	Release(keys ...string) (uint32, error)
	Tap(keys ...string) (uint32, error)
	Text(s string) (uint32, error)
	Position() (x, y int32, err error)
	SetPosition(x, y int32) error
	MoveAbsolute(x, y float32, virtualDesk bool) (uint32, error)
	MoveRelative(dx, dy int32) (uint32, error)
	MoveTo(x, y int32) (uint32, error)
	Click(button string) (uint32, error)
	Scroll(delta float32, horizontal bool) (uint32, error)
	// Events calls fn for every observed event until ctx ends or fn fails.
	Events(ctx context.Context, kinds []string, fn func(hook.Event) error) error
}

// Remote holds the global flags that select where input commands run.
type Remote struct {
	Addr        string `name:"remote" help:"Send commands to a vinject server at host:port instead of injecting locally" env:"VINJECT_REMOTE"`
	Password    string `help:"API password for --remote; defaults to the local key file" env:"VINJECT_PASSWORD"`
	AskPassword bool   `help:"Prompt for the API password without echo"`

	prompt func() (string, error)
}

// Controller returns the controller selected by the flags.
func (r *Remote) Controller(logger *slog.Logger) (Controller, error) {
	if r.Addr == "" {
		return &localController{d: input.NewSystem(logger), logger: logger}, nil
	}
	pwd, err := r.password()
	if err != nil {
		return nil, err
	}
	return &remoteController{c: apiclient.NewWithPassword(r.Addr, pwd)}, nil
}

func (r *Remote) password() (string, error) {
	if r.AskPassword {
		prompt := r.prompt
		if prompt == nil {
			prompt = promptPassword
		}
		return prompt()
	}
	if r.Password != "" {
		return r.Password, nil
	}
	if keyFile, err := configpaths.KeyFile(); err == nil {
		if b, err := os.ReadFile(keyFile); err == nil {
			return strings.TrimSpace(string(b)), nil
		}
	}
	return "", nil
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--ask-password needs an interactive terminal")
	}
	fmt.Fprint(os.Stderr, "API password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func parseKeys(specs []string) ([]input.Keylike, error) {
	keys := make([]input.Keylike, 0, len(specs))
	for _, s := range specs {
		k, err := input.ParseKeylike(s)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", s, err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

type localController struct {
	d      *input.Dispatcher
	logger *slog.Logger
	// newHook is replaced in tests.
	newHook func(*slog.Logger) *hook.Hook
}

func (l *localController) each(specs []string, op func(input.Keylike) (uint32, error)) (uint32, error) {
	keys, err := parseKeys(specs)
	if err != nil {
		return 0, err
	}
	var total uint32
	for _, k := range keys {
		n, err := op(k)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (l *localController) Press(keys ...string) (uint32, error)   { return l.each(keys, l.d.Press) }
func (l *localController) Release(keys ...string) (uint32, error) { return l.each(keys, l.d.Release) }

func (l *localController) Tap(specs ...string) (uint32, error) {
	keys, err := parseKeys(specs)
	if err != nil {
		return 0, err
	}
	return l.d.SendKeys(keys...)
}

func (l *localController) Text(s string) (uint32, error)     { return l.d.SendStr(s) }
func (l *localController) Position() (int32, int32, error)   { return l.d.Position() }
func (l *localController) SetPosition(x, y int32) error      { return l.d.SetPosition(x, y) }
func (l *localController) MoveTo(x, y int32) (uint32, error) { return l.d.MoveTo(x, y) }

func (l *localController) MoveRelative(dx, dy int32) (uint32, error) {
	return l.d.MoveRelative(dx, dy), nil
}

func (l *localController) MoveAbsolute(x, y float32, virtualDesk bool) (uint32, error) {
	m := input.Absolute(x, y)
	if virtualDesk {
		m = input.AbsoluteVirtual(x, y)
	}
	return l.d.SendInputs([]input.Input{input.FromMotion(m)}), nil
}

func (l *localController) Click(button string) (uint32, error) {
	b, err := input.ParseButton(strings.TrimPrefix(strings.ToLower(button), "mouse."))
	if err != nil {
		return 0, err
	}
	return l.d.Click(b)
}

func (l *localController) Scroll(delta float32, horizontal bool) (uint32, error) {
	if horizontal {
		return l.d.ScrollH(delta), nil
	}
	return l.d.Scroll(delta), nil
}

func (l *localController) Events(ctx context.Context, kinds []string, fn func(hook.Event) error) error {
	filter := map[hook.EventKind]bool{}
	for _, name := range kinds {
		var k hook.EventKind
		if err := k.UnmarshalText([]byte(name)); err != nil {
			return err
		}
		filter[k] = true
	}
	newHook := l.newHook
	if newHook == nil {
		newHook = hook.NewSystem
	}
	h := newHook(l.logger)
	defer h.Close()

	events := make(chan hook.Event, hook.DefaultQueueSize)
	id, err := h.Subscribe(hook.HandlerFunc(func(e hook.Event) {
		if len(filter) > 0 && !filter[e.Kind] {
			return
		}
		select {
		case events <- e:
		default:
		}
	}))
	if err != nil {
		return err
	}
	defer func() { _ = h.Unsubscribe(id) }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			if err := fn(e); err != nil {
				return err
			}
		}
	}
}

type remoteController struct {
	c *apiclient.Client
}

func sent(res *apitypes.SendResponse, err error) (uint32, error) {
	if res == nil {
		return 0, err
	}
	return res.Accepted, err
}

func (r *remoteController) each(keys []string, op func(string) (*apitypes.SendResponse, error)) (uint32, error) {
	var total uint32
	for _, k := range keys {
		n, err := sent(op(k))
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (r *remoteController) Press(keys ...string) (uint32, error)   { return r.each(keys, r.c.Press) }
func (r *remoteController) Release(keys ...string) (uint32, error) { return r.each(keys, r.c.Release) }
func (r *remoteController) Tap(keys ...string) (uint32, error)     { return sent(r.c.SendKeys(keys...)) }
func (r *remoteController) Text(s string) (uint32, error)          { return sent(r.c.Text(s)) }

func (r *remoteController) Position() (int32, int32, error) {
	p, err := r.c.Position()
	if err != nil {
		return 0, 0, err
	}
	return p.X, p.Y, nil
}

func (r *remoteController) SetPosition(x, y int32) error {
	_, err := r.c.SetPosition(x, y)
	return err
}

func (r *remoteController) MoveAbsolute(x, y float32, virtualDesk bool) (uint32, error) {
	return sent(r.c.MoveAbsolute(x, y, virtualDesk))
}

func (r *remoteController) MoveRelative(dx, dy int32) (uint32, error) {
	return sent(r.c.MoveRelative(dx, dy))
}

func (r *remoteController) MoveTo(x, y int32) (uint32, error) { return sent(r.c.MoveTo(x, y)) }

func (r *remoteController) Click(button string) (uint32, error) {
	return sent(r.c.Click(button))
}

func (r *remoteController) Scroll(delta float32, horizontal bool) (uint32, error) {
	return sent(r.c.Scroll(delta, horizontal))
}

func (r *remoteController) Events(ctx context.Context, kinds []string, fn func(hook.Event) error) error {
	stream, err := r.c.Events(ctx, kinds...)
	if err != nil {
		return err
	}
	defer stream.Close()
	for {
		e, err := stream.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}
