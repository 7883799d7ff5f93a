package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Alia5/vinject/hook"
	"github.com/Alia5/vinject/input"
	"github.com/Alia5/vinject/internal/configpaths"
	"github.com/Alia5/vinject/internal/log"
	"github.com/Alia5/vinject/internal/server/api"
	"github.com/Alia5/vinject/internal/server/api/auth"
	"github.com/Alia5/vinject/internal/server/api/handler"
	"github.com/Alia5/vinject/internal/util"
	"github.com/Alia5/vinject/internal/version"
)

type Server struct {
	ApiServerConfig   api.ServerConfig `embed:"" prefix:"api."`
	ConnectionTimeout time.Duration    `help:"Idle timeout for a single API request" default:"30s" env:"VINJECT_CONNECTION_TIMEOUT"`
	HookQueue         int              `help:"Events buffered between the input hook and its subscribers" default:"1024" env:"VINJECT_HOOK_QUEUE"`
}

// Run is called by Kong when the server command is executed.
func (s *Server) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, rawLogger)
}

func (s *Server) StartServer(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	s.ApiServerConfig.ConnectionTimeout = s.ConnectionTimeout

	if s.ApiServerConfig.Addr == "" {
		return fmt.Errorf("API server address must be set (default localhost:3243)")
	}

	if s.ApiServerConfig.Password == "" {
		keyFile, err := configpaths.KeyFile()
		if err != nil {
			return fmt.Errorf("failed to resolve key file path: %w", err)
		}
		pwd, err := loadOrCreateKey(keyFile, logger)
		if err != nil {
			return err
		}
		s.ApiServerConfig.Password = pwd
	}

	d := input.NewSystem(logger)
	h := hook.NewSystem(logger)
	h.SetQueueSize(s.HookQueue)
	defer func() { _ = h.Close() }()

	apiSrv := api.New(s.ApiServerConfig, logger, rawLogger)
	RegisterRoutes(apiSrv.Router(), d, h, version.Get())

	if err := apiSrv.Start(); err != nil {
		logger.Error("failed to start API server", "error", err)
		if util.IsRunFromGUI() {
			fmt.Println("Press any key to exit...")
			b := make([]byte, 1)
			_, _ = os.Stdin.Read(b)
		}
		return err
	}
	logger.Info("vinject API server listening", "addr", apiSrv.Addr().String(), "requireAuth", s.ApiServerConfig.RequireAuth)

	if util.IsRunFromGUI() {
		go (func() {
			time.Sleep(250 * time.Millisecond)
			util.HideConsoleWindow()
		})()
	}

	<-ctx.Done()
	apiSrv.Close()
	if n := h.Dropped(); n > 0 {
		logger.Warn("hook events dropped because subscribers were too slow", "count", n)
	}
	return nil
}

// RegisterRoutes mounts every API route on r.
func RegisterRoutes(r *api.Router, d *input.Dispatcher, h *hook.Hook, version string) {
	r.Register("ping", handler.Ping(version))
	r.Register("input/send", handler.InputSend(d))
	r.Register("key/press", handler.KeyPress(d))
	r.Register("key/release", handler.KeyRelease(d))
	r.Register("key/send", handler.KeySend(d))
	r.Register("keys/send", handler.KeysSend(d))
	r.Register("text", handler.Text(d))
	r.Register("mouse/position", handler.MousePosition(d))
	r.Register("mouse/set", handler.MouseSet(d))
	r.Register("mouse/move", handler.MouseMove(d))
	r.Register("mouse/moverel", handler.MouseMoveRelative(d))
	r.Register("mouse/moveto", handler.MouseMoveTo(d))
	r.Register("mouse/scroll", handler.MouseScroll(d))
	r.Register("mouse/click", handler.MouseClick(d))
	r.RegisterStream("events", handler.Events(h))
}

// loadOrCreateKey reads the API password from path, generating and storing
// a new one when the file does not exist.
func loadOrCreateKey(path string, logger *slog.Logger) (string, error) {
	if pwd, err := os.ReadFile(path); err == nil {
		if p := strings.TrimSpace(string(pwd)); p != "" {
			return p, nil
		}
	}
	newPwd, err := auth.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate new API password: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(path, []byte(newPwd), 0o600); err != nil {
		return "", fmt.Errorf("failed to write new API password to file: %w", err)
	}
	logger.Info("Generated API server password", "path", path)
	logger.Info("-------------------------------------")
	logger.Info("Your vinject API server password is:")
	logger.Info("-------------------------------------")
	logger.Info(newPwd)
	logger.Info("-------------------------------------")
	logger.Info("You can change this password at any time by editing the file")
	return newPwd, nil
}
