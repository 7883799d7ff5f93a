package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Mouse groups the pointer subcommands.
type Mouse struct {
	Pos     MousePos     `cmd:"" help:"Print the cursor position in pixels"`
	Set     MouseSet     `cmd:"" help:"Place the cursor without injecting a move"`
	Move    MouseMove    `cmd:"" help:"Move to a normalized position, 0 to 1 on each axis"`
	Moverel MouseMoveRel `cmd:"" name:"moverel" help:"Move by a pixel delta"`
	Moveto  MouseMoveTo  `cmd:"" name:"moveto" help:"Move to a pixel on the virtual desktop"`
	Click   MouseClick   `cmd:"" help:"Click a mouse button"`
	Scroll  MouseScroll  `cmd:"" help:"Rotate the wheel by notches"`
}

type MousePos struct {
	out io.Writer
}

func (c *MousePos) Run(logger *slog.Logger, remote *Remote) error {
	ctl, err := remote.Controller(logger)
	if err != nil {
		return err
	}
	x, y, err := ctl.Position()
	if err != nil {
		return err
	}
	w := c.out
	if w == nil {
		w = os.Stdout
	}
	_, err = fmt.Fprintf(w, "%d %d\n", x, y)
	return err
}

type MouseSet struct {
	X int32 `arg:""`
	Y int32 `arg:""`
}

func (c *MouseSet) Run(logger *slog.Logger, remote *Remote) error {
	ctl, err := remote.Controller(logger)
	if err != nil {
		return err
	}
	return ctl.SetPosition(c.X, c.Y)
}

type MouseMove struct {
	X       float32 `arg:"" help:"Horizontal position, 0 is the left edge and 1 the right"`
	Y       float32 `arg:"" help:"Vertical position, 0 is the top edge and 1 the bottom"`
	Virtual bool    `help:"Map across all monitors instead of the primary one"`
}

func (c *MouseMove) Run(logger *slog.Logger, remote *Remote) error {
	ctl, err := remote.Controller(logger)
	if err != nil {
		return err
	}
	n, err := ctl.MoveAbsolute(c.X, c.Y, c.Virtual)
	return report(logger, "move", 1, n, err)
}

type MouseMoveRel struct {
	DX int32 `arg:"" name:"dx"`
	DY int32 `arg:"" name:"dy"`
}

func (c *MouseMoveRel) Run(logger *slog.Logger, remote *Remote) error {
	ctl, err := remote.Controller(logger)
	if err != nil {
		return err
	}
	n, err := ctl.MoveRelative(c.DX, c.DY)
	return report(logger, "moverel", 1, n, err)
}

type MouseMoveTo struct {
	X int32 `arg:""`
	Y int32 `arg:""`
}

func (c *MouseMoveTo) Run(logger *slog.Logger, remote *Remote) error {
	ctl, err := remote.Controller(logger)
	if err != nil {
		return err
	}
	n, err := ctl.MoveTo(c.X, c.Y)
	return report(logger, "moveto", 1, n, err)
}

type MouseClick struct {
	Button string `arg:"" optional:"" default:"left" enum:"left,right,middle,x1,x2" help:"Button to click"`
}

func (c *MouseClick) Run(logger *slog.Logger, remote *Remote) error {
	ctl, err := remote.Controller(logger)
	if err != nil {
		return err
	}
	n, err := ctl.Click(c.Button)
	return report(logger, "click", 2, n, err)
}

type MouseScroll struct {
	Delta      float32 `arg:"" help:"Notches to rotate; positive scrolls up or right"`
	Horizontal bool    `short:"H" help:"Use the horizontal wheel"`
}

func (c *MouseScroll) Run(logger *slog.Logger, remote *Remote) error {
	ctl, err := remote.Controller(logger)
	if err != nil {
		return err
	}
	n, err := ctl.Scroll(c.Delta, c.Horizontal)
	return report(logger, "scroll", 1, n, err)
}
