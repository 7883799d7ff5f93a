package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/vinject/internal/log"
	"github.com/Alia5/vinject/internal/server/api/auth"
	apierror "github.com/Alia5/vinject/internal/server/api/error"
)

var (
	errRequestTooLarge = errors.New("request too large")
	wsRegex            = regexp.MustCompile(`\s`)
)

// Server implements a small TCP API that drives input injection and hook
// subscriptions.
type Server struct {
	addr      string
	ln        net.Listener
	logger    *slog.Logger
	rawLogger log.RawLogger
	router    *Router
	config    ServerConfig
	key       []byte

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new API server. rawLogger may be nil.
func New(config ServerConfig, logger *slog.Logger, rawLogger log.RawLogger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      config.Addr,
		logger:    logger,
		rawLogger: rawLogger,
		router:    NewRouter(),
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Router returns the router used by the API server so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound listen address, or nil before Start.
func (a *Server) Addr() net.Addr {
	if a.ln == nil {
		return nil
	}
	return a.ln.Addr()
}

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	if a.config.Password != "" {
		key, err := auth.DeriveKey(a.config.Password)
		if err != nil {
			return fmt.Errorf("derive API key: %w", err)
		}
		a.key = key
	} else if a.config.RequireAuth {
		return errors.New("API authentication required but no password configured")
	}
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", ln.Addr().String(), "auth", a.key != nil)
	go a.serve()
	return nil
}

// Close stops the API server and waits for open connections to finish.
// Stream handlers observe the cancellation through Request.Ctx.
func (a *Server) Close() {
	a.cancel()
	if a.ln != nil {
		_ = a.ln.Close()
	}
	a.wg.Wait()
}

func (a *Server) serve() {
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.handleConn(c)
		}()
	}
}

func (a *Server) writeError(w io.Writer, err error) {
	problemJSON, _ := json.Marshal(apierror.WrapError(err))
	fmt.Fprintf(w, "%s\n", string(problemJSON))
}

func (a *Server) writeOK(w io.Writer, rest string) {
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

// authenticate runs the server side of the handshake when the client starts
// with the handshake magic and returns the connection to use from then on.
func (a *Server) authenticate(conn net.Conn, r *bufio.Reader) (net.Conn, *bufio.Reader, error) {
	isAuth, err := auth.IsHandshake(r)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case isAuth && a.key == nil:
		return nil, nil, apierror.ErrBadRequest("authentication is not enabled on this server")
	case !isAuth && a.key != nil && a.config.RequireAuth:
		return nil, nil, apierror.ErrUnauthorized("authentication required")
	case !isAuth:
		return conn, r, nil
	}

	nonces, err := auth.ServerHandshake(r, conn, a.key)
	if err != nil {
		return nil, nil, err
	}
	sec, err := auth.WrapConn(&bufferedConn{Conn: conn, r: r}, nonces.SessionKey(a.key), auth.RoleServer)
	if err != nil {
		return nil, nil, err
	}
	return sec, bufio.NewReader(sec), nil
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connCtx, connCancel := context.WithCancel(a.ctx)
	defer connCancel()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	if a.config.ConnectionTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(a.config.ConnectionTimeout))
	}

	w, r, err := a.authenticate(conn, bufio.NewReader(conn))
	if err != nil {
		if errors.Is(err, io.EOF) {
			connLogger.Debug("api connection closed before request")
			return
		}
		connLogger.Warn("api auth failed", "error", err)
		a.writeError(conn, err)
		return
	}
	if a.rawLogger != nil {
		w = &rawConn{Conn: &bufferedConn{Conn: w, r: r}, raw: a.rawLogger, peer: conn.RemoteAddr().String()}
		r = bufio.NewReader(w)
	}

	reqData, err := readRequest(r, a.config.MaxRequest)
	if err != nil {
		switch {
		case errors.Is(err, errRequestTooLarge):
			connLogger.Error("api request too large", "limit", a.config.MaxRequest)
			a.writeError(w, apierror.ErrBadRequest(err.Error()))
		case errors.Is(err, io.EOF):
			connLogger.Error("api incomplete request (no null terminator)")
		default:
			connLogger.Error("read api data", "error", err)
		}
		return
	}

	if reqData == "" {
		connLogger.Error("api empty command")
		a.writeError(w, apierror.ErrBadRequest("empty request"))
		return
	}

	var path, payload string
	if loc := wsRegex.FindStringIndex(reqData); loc != nil {
		path = reqData[:loc[0]]
		payload = reqData[loc[1]:]
	} else {
		path = reqData
	}

	if path == "" {
		connLogger.Error("api empty path")
		a.writeError(w, apierror.ErrBadRequest("empty path"))
		return
	}

	path = strings.ToLower(path)
	connLogger.Info("api cmd", "path", path)

	if h, params := a.router.Match(path); h != nil {
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Error("api handler error", "path", path, "error", err)
			a.writeError(w, err)
			return
		}
		connLogger.Debug("api handler success", "path", path)
		a.writeOK(w, res.JSON)
		return
	}
	if sh, params := a.router.MatchStream(path); sh != nil {
		connLogger.Info("api stream begin", "path", path)
		_ = conn.SetDeadline(time.Time{})
		req := &Request{Ctx: connCtx, Params: params, Payload: payload}
		if err := sh(w, req, connLogger); err != nil {
			connLogger.Error("api stream handler error", "path", path, "error", err)
		}
		connLogger.Info("api stream end", "path", path)
		return
	}
	connLogger.Error("api unknown path", "path", path)
	a.writeError(w, apierror.ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}

// readRequest reads up to the null terminator. A limit of 0 disables the size check.
func readRequest(r *bufio.Reader, limit int) (string, error) {
	var sb strings.Builder
	for {
		chunk, err := r.ReadSlice('\x00')
		sb.Write(chunk)
		if limit > 0 && sb.Len() > limit+1 {
			return "", errRequestTooLarge
		}
		switch {
		case err == nil:
			return strings.TrimSuffix(sb.String(), "\x00"), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return "", err
		}
	}
}

// bufferedConn drains bytes already buffered during the handshake before
// reading from the socket again.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) { return c.r.Read(p) }

// rawConn mirrors plaintext API traffic into a RawLogger.
type rawConn struct {
	net.Conn
	raw  log.RawLogger
	peer string
}

func (c *rawConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 {
		c.raw.Log(log.Inbound, c.peer, p[:n])
	}
	return n, err
}

func (c *rawConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if n > 0 {
		c.raw.Log(log.Outbound, c.peer, p[:n])
	}
	return n, err
}
