package testing

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/Alia5/vinject/internal/server/api"
)

// StartAPIServer starts an API server on a free loopback port without
// authentication and calls register so the test can add the handlers it
// needs. Returns the address and a function to call when done.
func StartAPIServer(t *testing.T, register func(r *api.Router)) (addr string, done func()) {
	t.Helper()
	return StartAPIServerWithConfig(t, api.ServerConfig{}, register)
}

// StartAPIServerWithConfig is like StartAPIServer but uses cfg. The listen
// address is always replaced with a free loopback port.
func StartAPIServerWithConfig(t *testing.T, cfg api.ServerConfig, register func(r *api.Router)) (addr string, done func()) {
	t.Helper()
	cfg.Addr = "127.0.0.1:0"
	apiSrv := api.New(cfg, slog.Default(), nil)
	if register != nil {
		register(apiSrv.Router())
	}
	if err := apiSrv.Start(); err != nil {
		t.Fatalf("api start failed: %v", err)
	}
	return apiSrv.Addr().String(), apiSrv.Close
}

// ExecCmd dials the API server, sends cmd and reads the first response line.
// The command should not include the null terminator. Returns the response
// without the trailing newline.
func ExecCmd(t *testing.T, addr string, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()

	_, _ = fmt.Fprintf(c, "%s\x00", cmd)

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("read failed: %v", err)
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
}
