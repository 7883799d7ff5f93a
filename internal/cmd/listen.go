package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/vinject/hook"
)

var errListenDone = errors.New("listen: count reached")

// Listen prints observed input events as JSON lines until interrupted.
type Listen struct {
	Kinds []string `help:"Only print these event kinds" enum:"keyboard,move,button,wheel" sep:","`
	Count int      `short:"n" help:"Exit after this many events; 0 runs until interrupted"`

	out io.Writer
}

func (c *Listen) Run(logger *slog.Logger, remote *Remote) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.listen(ctx, logger, remote)
}

func (c *Listen) listen(ctx context.Context, logger *slog.Logger, remote *Remote) error {
	ctl, err := remote.Controller(logger)
	if err != nil {
		return err
	}
	w := c.out
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	seen := 0
	logger.Info("Listening for input events", "kinds", c.Kinds)
	err = ctl.Events(ctx, c.Kinds, func(e hook.Event) error {
		if err := enc.Encode(e); err != nil {
			return err
		}
		seen++
		if c.Count > 0 && seen >= c.Count {
			return errListenDone
		}
		return nil
	})
	if errors.Is(err, errListenDone) {
		return nil
	}
	return err
}
