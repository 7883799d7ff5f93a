package apiclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	apitypes "github.com/Alia5/vinject/apitypes"
	"github.com/Alia5/vinject/hook"
	"github.com/Alia5/vinject/input"
)

// Client provides a high-level interface to the vinject API, handling request
// formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the vinject API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing or when advanced transport configuration is needed.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the vinject server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	const path = "ping"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](raw)
}

// SendInputs injects inputs on the server as one ordered batch.
func (c *Client) SendInputs(inputs []input.Input) (*apitypes.SendResponse, error) {
	return c.SendInputsCtx(context.Background(), inputs)
}

func (c *Client) SendInputsCtx(ctx context.Context, inputs []input.Input) (*apitypes.SendResponse, error) {
	if inputs == nil {
		inputs = []input.Input{}
	}
	payload, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("marshal inputs: %w", err)
	}
	return c.send(ctx, "input/send", payload)
}

// Press presses a key spec: a single character, a virtual key name such as
// "enter" or "0x41", or a mouse button such as "mouse.left".
func (c *Client) Press(key string) (*apitypes.SendResponse, error) {
	return c.PressCtx(context.Background(), key)
}

func (c *Client) PressCtx(ctx context.Context, key string) (*apitypes.SendResponse, error) {
	return c.send(ctx, "key/press", key)
}

// Release releases a key spec. See Press.
func (c *Client) Release(key string) (*apitypes.SendResponse, error) {
	return c.ReleaseCtx(context.Background(), key)
}

func (c *Client) ReleaseCtx(ctx context.Context, key string) (*apitypes.SendResponse, error) {
	return c.send(ctx, "key/release", key)
}

// Send presses and releases a key spec. See Press.
func (c *Client) Send(key string) (*apitypes.SendResponse, error) {
	return c.SendCtx(context.Background(), key)
}

func (c *Client) SendCtx(ctx context.Context, key string) (*apitypes.SendResponse, error) {
	return c.send(ctx, "key/send", key)
}

// SendKeys taps every key spec in order as one batch.
func (c *Client) SendKeys(keys ...string) (*apitypes.SendResponse, error) {
	return c.SendKeysCtx(context.Background(), keys...)
}

func (c *Client) SendKeysCtx(ctx context.Context, keys ...string) (*apitypes.SendResponse, error) {
	if keys == nil {
		keys = []string{}
	}
	return c.send(ctx, "keys/send", apitypes.KeysRequest{Keys: keys})
}

// Text types s on the server. An error with status 422 means a character
// could not be produced; the characters before it were typed and the
// returned response counts their records.
func (c *Client) Text(s string) (*apitypes.SendResponse, error) {
	return c.TextCtx(context.Background(), s)
}

func (c *Client) TextCtx(ctx context.Context, s string) (*apitypes.SendResponse, error) {
	if s == "" {
		return &apitypes.SendResponse{}, nil
	}
	return c.send(ctx, "text", s)
}

// Position returns the server's cursor position in pixels.
func (c *Client) Position() (*apitypes.PositionResponse, error) {
	return c.PositionCtx(context.Background())
}

func (c *Client) PositionCtx(ctx context.Context) (*apitypes.PositionResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "mouse/position", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PositionResponse](raw)
}

// SetPosition places the cursor without injecting a move.
func (c *Client) SetPosition(x, y int32) (*apitypes.PositionResponse, error) {
	return c.SetPositionCtx(context.Background(), x, y)
}

func (c *Client) SetPositionCtx(ctx context.Context, x, y int32) (*apitypes.PositionResponse, error) {
	raw, err := c.transport.DoCtx(ctx, "mouse/set", apitypes.PointRequest{X: x, Y: y}, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PositionResponse](raw)
}

// MoveAbsolute moves to a normalized position in [0, 1]; virtualDesk maps
// it across all monitors instead of the primary one.
func (c *Client) MoveAbsolute(x, y float32, virtualDesk bool) (*apitypes.SendResponse, error) {
	return c.MoveAbsoluteCtx(context.Background(), x, y, virtualDesk)
}

func (c *Client) MoveAbsoluteCtx(ctx context.Context, x, y float32, virtualDesk bool) (*apitypes.SendResponse, error) {
	return c.send(ctx, "mouse/move", apitypes.MoveRequest{X: x, Y: y, VirtualDesk: virtualDesk})
}

// MoveRelative moves the pointer by (dx, dy).
func (c *Client) MoveRelative(dx, dy int32) (*apitypes.SendResponse, error) {
	return c.MoveRelativeCtx(context.Background(), dx, dy)
}

func (c *Client) MoveRelativeCtx(ctx context.Context, dx, dy int32) (*apitypes.SendResponse, error) {
	return c.send(ctx, "mouse/moverel", apitypes.MoveRelativeRequest{DX: dx, DY: dy})
}

// MoveTo moves the pointer to a pixel on the virtual desktop.
func (c *Client) MoveTo(x, y int32) (*apitypes.SendResponse, error) {
	return c.MoveToCtx(context.Background(), x, y)
}

func (c *Client) MoveToCtx(ctx context.Context, x, y int32) (*apitypes.SendResponse, error) {
	return c.send(ctx, "mouse/moveto", apitypes.PointRequest{X: x, Y: y})
}

// Scroll rotates the wheel by delta notches.
func (c *Client) Scroll(delta float32, horizontal bool) (*apitypes.SendResponse, error) {
	return c.ScrollCtx(context.Background(), delta, horizontal)
}

func (c *Client) ScrollCtx(ctx context.Context, delta float32, horizontal bool) (*apitypes.SendResponse, error) {
	return c.send(ctx, "mouse/scroll", apitypes.ScrollRequest{Delta: delta, Horizontal: horizontal})
}

// Click clicks a mouse button by name ("left", "x1", ...).
func (c *Client) Click(button string) (*apitypes.SendResponse, error) {
	return c.ClickCtx(context.Background(), button)
}

func (c *Client) ClickCtx(ctx context.Context, button string) (*apitypes.SendResponse, error) {
	return c.send(ctx, "mouse/click", button)
}

// send posts an injection request. When the server answers with a problem
// the response still reports what was injected before the failure.
func (c *Client) send(ctx context.Context, path string, payload any) (*apitypes.SendResponse, error) {
	raw, err := c.transport.DoCtx(ctx, path, payload, nil)
	if err != nil {
		return nil, err
	}
	res, err := parse[apitypes.SendResponse](raw)
	var problem *apitypes.ApiError
	if errors.As(err, &problem) {
		return &apitypes.SendResponse{Accepted: problem.Accepted}, err
	}
	return res, err
}

// EventStream reads hook events from an open events stream.
type EventStream struct {
	conn net.Conn
	r    *bufio.Reader
	stop func() bool
}

// Events subscribes to the server's input hook. kinds optionally limits the
// stream to the named event kinds ("keyboard", "move", "button", "wheel").
// The caller must Close the stream.
func (c *Client) Events(ctx context.Context, kinds ...string) (*EventStream, error) {
	conn, err := c.transport.OpenStream(ctx, "events", strings.Join(kinds, ","), nil)
	if err != nil {
		return nil, err
	}
	return &EventStream{
		conn: conn,
		r:    bufio.NewReader(conn),
		stop: context.AfterFunc(ctx, func() { _ = conn.Close() }),
	}, nil
}

// Next blocks until the next event arrives. An error response from the
// server is returned as *apitypes.ApiError.
func (s *EventStream) Next() (hook.Event, error) {
	line, err := s.r.ReadBytes('\n')
	if err != nil {
		return hook.Event{}, err
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal(line, &problem); err == nil && problem.Status != 0 {
		return hook.Event{}, &problem
	}
	var e hook.Event
	if err := json.Unmarshal(line, &e); err != nil {
		return hook.Event{}, fmt.Errorf("decode event: %w", err)
	}
	return e, nil
}

// Close ends the subscription.
func (s *EventStream) Close() error {
	s.stop()
	return s.conn.Close()
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
