package cmd

import (
	"log/slog"
)

// Type types text on the target machine.
type Type struct {
	Text string `arg:"" help:"Text to type"`
}

func (c *Type) Run(logger *slog.Logger, remote *Remote) error {
	ctl, err := remote.Controller(logger)
	if err != nil {
		return err
	}
	n, err := ctl.Text(c.Text)
	if err != nil {
		logger.Error("typing stopped", "accepted", n, "error", err)
		return err
	}
	logger.Debug("typed text", "chars", len([]rune(c.Text)), "accepted", n)
	return nil
}

// Press holds keys down until a matching release.
type Press struct {
	Keys []string `arg:"" help:"Key specs: a character, a key name such as enter or f5, 0x41, or mouse.left"`
}

func (c *Press) Run(logger *slog.Logger, remote *Remote) error {
	ctl, err := remote.Controller(logger)
	if err != nil {
		return err
	}
	n, err := ctl.Press(c.Keys...)
	return report(logger, "press", len(c.Keys), n, err)
}

// Release lets go of keys.
type Release struct {
	Keys []string `arg:"" help:"Key specs to release"`
}

func (c *Release) Run(logger *slog.Logger, remote *Remote) error {
	ctl, err := remote.Controller(logger)
	if err != nil {
		return err
	}
	n, err := ctl.Release(c.Keys...)
	return report(logger, "release", len(c.Keys), n, err)
}

// Tap presses and releases each key in order.
type Tap struct {
	Keys []string `arg:"" help:"Key specs to tap in order"`
}

func (c *Tap) Run(logger *slog.Logger, remote *Remote) error {
	ctl, err := remote.Controller(logger)
	if err != nil {
		return err
	}
	n, err := ctl.Tap(c.Keys...)
	return report(logger, "tap", 2*len(c.Keys), n, err)
}

// report logs the outcome of an injection. want is the fewest records the
// operation can produce; falling short of it is a warning, not a failure.
func report(logger *slog.Logger, op string, want int, accepted uint32, err error) error {
	if err != nil {
		logger.Error(op+" failed", "accepted", accepted, "error", err)
		return err
	}
	if want > 0 && int(accepted) < want {
		logger.Warn(op+" partially blocked", "requested", want, "accepted", accepted)
		return nil
	}
	logger.Debug(op, "accepted", accepted)
	return nil
}
