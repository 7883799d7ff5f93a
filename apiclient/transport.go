package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/Alia5/vinject/internal/server/api/auth"
	apierror "github.com/Alia5/vinject/internal/server/api/error"
)

// Config controls dialing, timeouts and authentication of a Transport.
type Config struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Password enables the encrypted handshake when set.
	Password string
}

func defaultConfig() Config {
	return Config{
		DialTimeout:  3 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Responder answers requests of a mock Transport.
type Responder func(path string, payload any, pathParams map[string]string) (string, error)

// Transport speaks the raw API protocol. A request is `<path>[ <payload>]`
// followed by a NUL, so payloads may contain newlines. The server answers
// with one line (JSON or empty) and closes the connection; stream routes
// keep writing JSON lines instead.
type Transport struct {
	addr string
	cfg  Config
	mock Responder
}

// NewTransport returns a transport for addr with default timeouts.
func NewTransport(addr string) *Transport { return NewTransportWithConfig(addr, nil) }

// NewTransportWithPassword is NewTransport with authentication enabled.
func NewTransportWithPassword(addr, password string) *Transport {
	cfg := defaultConfig()
	cfg.Password = password
	return NewTransportWithConfig(addr, &cfg)
}

// NewTransportWithConfig returns a transport using cfg, or the defaults when cfg is nil.
func NewTransportWithConfig(addr string, cfg *Config) *Transport {
	t := &Transport{addr: addr, cfg: defaultConfig()}
	if cfg != nil {
		t.cfg = *cfg
	}
	return t
}

// NewMockTransport returns a transport that never touches the network and
// answers every request with respond.
func NewMockTransport(respond Responder) *Transport {
	return &Transport{addr: "mock", cfg: defaultConfig(), mock: respond}
}

// Do sends one request and returns the response line without its newline.
// payload may be nil, a string, []byte or any value encodable as JSON.
func (t *Transport) Do(path string, payload any, pathParams map[string]string) (string, error) {
	return t.DoCtx(context.Background(), path, payload, pathParams)
}

// DoCtx is Do with a context for dialing.
func (t *Transport) DoCtx(ctx context.Context, path string, payload any, pathParams map[string]string) (string, error) {
	if t.mock != nil {
		return t.mock(path, payload, pathParams)
	}
	conn, err := t.open(ctx, path, payload, pathParams)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if t.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(t.cfg.ReadTimeout))
	}
	resp, err := io.ReadAll(conn)
	if err != nil && len(resp) == 0 {
		return "", fmt.Errorf("read: %w", err)
	}
	return strings.TrimSuffix(string(resp), "\n"), nil
}

// OpenStream sends a request to a stream route and returns the open
// connection without deadlines. The caller must close it.
func (t *Transport) OpenStream(ctx context.Context, path string, payload any, pathParams map[string]string) (net.Conn, error) {
	if t.mock != nil {
		return nil, errors.New("streaming is not supported with mock transport")
	}
	conn, err := t.open(ctx, path, payload, pathParams)
	if err != nil {
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return conn, nil
}

func (t *Transport) open(ctx context.Context, path string, payload any, pathParams map[string]string) (net.Conn, error) {
	req, err := encodeRequest(path, payload, pathParams)
	if err != nil {
		return nil, err
	}
	conn, err := t.dial(ctx)
	if err != nil {
		return nil, err
	}
	if t.cfg.Password != "" {
		sec, err := t.secure(conn)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		conn = sec
	}
	if _, err := conn.Write(req); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("write: %w", err)
	}
	return conn, nil
}

func (t *Transport) dial(ctx context.Context) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	d := net.Dialer{Timeout: t.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetNoDelay(true); err != nil {
			slog.Warn("failed to set TCP_NODELAY", "error", err)
		}
	}
	if t.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout))
	}
	return conn, nil
}

// secure runs the client handshake and wraps conn in the session cipher.
// A server that drops the connection mid-handshake rejected the password.
func (t *Transport) secure(conn net.Conn) (net.Conn, error) {
	key, err := auth.DeriveKey(t.cfg.Password)
	if err != nil {
		return nil, err
	}
	if t.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(t.cfg.ReadTimeout))
	}
	nonces, err := auth.ClientHandshake(conn, conn, key)
	if errors.Is(err, io.EOF) {
		return nil, apierror.ErrUnauthorized("invalid password")
	}
	if err != nil {
		return nil, err
	}
	sec, err := auth.WrapConn(conn, nonces.SessionKey(key), auth.RoleClient)
	if err != nil {
		return nil, err
	}
	return sec, nil
}

// encodeRequest builds the NUL-terminated request line. The path is
// lower-cased after {name} placeholders are filled from params.
func encodeRequest(path string, payload any, params map[string]string) ([]byte, error) {
	for name, v := range params {
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(v))
	}
	req := []byte(strings.ToLower(path))

	var body []byte
	switch p := payload.(type) {
	case nil:
	case []byte:
		body = p
	case string:
		body = []byte(p)
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = b
	}
	if len(body) > 0 {
		req = append(append(req, ' '), body...)
	}
	return append(req, 0), nil
}
