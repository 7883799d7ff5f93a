package handler

import (
	"log/slog"
	"strings"

	"github.com/Alia5/vinject/apitypes"
	"github.com/Alia5/vinject/input"
	"github.com/Alia5/vinject/internal/server/api"
	apierror "github.com/Alia5/vinject/internal/server/api/error"
)

// MousePosition returns a handler that reports the cursor position in pixels.
func MousePosition(d *input.Dispatcher) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		x, y, err := d.Position()
		if err != nil {
			return err
		}
		return writeJSON(res, apitypes.PositionResponse{X: x, Y: y})
	}
}

// MouseSet returns a handler that warps the cursor without generating input.
func MouseSet(d *input.Dispatcher) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var p apitypes.PointRequest
		if err := decodePayload(req, &p); err != nil {
			return err
		}
		if err := d.SetPosition(p.X, p.Y); err != nil {
			return err
		}
		return writeJSON(res, apitypes.PositionResponse(p))
	}
}

// MouseMove returns a handler for normalized absolute moves.
func MouseMove(d *input.Dispatcher) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var m apitypes.MoveRequest
		if err := decodePayload(req, &m); err != nil {
			return err
		}
		motion := input.Absolute(m.X, m.Y)
		if m.VirtualDesk {
			motion = input.AbsoluteVirtual(m.X, m.Y)
		}
		n := d.SendInputs([]input.Input{input.FromMotion(motion)})
		return writeJSON(res, apitypes.SendResponse{Requested: 1, Accepted: n})
	}
}

// MouseMoveRelative returns a handler for relative moves in mickeys.
func MouseMoveRelative(d *input.Dispatcher) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var m apitypes.MoveRelativeRequest
		if err := decodePayload(req, &m); err != nil {
			return err
		}
		return writeJSON(res, apitypes.SendResponse{Requested: 1, Accepted: d.MoveRelative(m.DX, m.DY)})
	}
}

// MouseMoveTo returns a handler that moves to a pixel on the virtual desktop.
func MouseMoveTo(d *input.Dispatcher) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var p apitypes.PointRequest
		if err := decodePayload(req, &p); err != nil {
			return err
		}
		n, err := d.MoveTo(p.X, p.Y)
		if err != nil {
			return err
		}
		return writeJSON(res, apitypes.SendResponse{Requested: 1, Accepted: n})
	}
}

// MouseScroll returns a handler that rotates the vertical or horizontal wheel.
func MouseScroll(d *input.Dispatcher) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var s apitypes.ScrollRequest
		if err := decodePayload(req, &s); err != nil {
			return err
		}
		var n uint32
		if s.Horizontal {
			n = d.ScrollH(s.Delta)
		} else {
			n = d.Scroll(s.Delta)
		}
		return writeJSON(res, apitypes.SendResponse{Requested: 1, Accepted: n})
	}
}

// MouseClick returns a handler that clicks the button named by the payload,
// or the left button for an empty payload.
func MouseClick(d *input.Dispatcher) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b := input.ButtonLeft
		if name := strings.TrimSpace(req.Payload); name != "" {
			var err error
			if b, err = input.ParseButton(strings.TrimPrefix(strings.ToLower(name), "mouse.")); err != nil {
				return apierror.ErrBadRequest(err.Error())
			}
		}
		n, err := d.Click(b)
		if err != nil {
			return err
		}
		return writeJSON(res, apitypes.SendResponse{Requested: 2, Accepted: n})
	}
}
