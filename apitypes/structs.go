package apitypes

import (
	"fmt"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
	// Accepted counts input records injected before the failure, e.g.
	// the characters typed ahead of an unmappable one.
	Accepted uint32 `json:"accepted,omitempty"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// SendResponse reports how many input records the OS accepted. Accepted
// may be lower than Requested when input is blocked; that is not an error.
// Requested is only set when the record count is known before injecting.
type SendResponse struct {
	Requested int    `json:"requested,omitempty"`
	Accepted  uint32 `json:"accepted"`
}

// KeysRequest lists key specs for keys/send: single characters, virtual
// key names ("enter", "0x41") or mouse buttons ("mouse.left").
type KeysRequest struct {
	Keys []string `json:"keys"`
}

type PositionResponse struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// PointRequest is a pixel position for mouse/set and mouse/moveto.
type PointRequest struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// MoveRequest is a normalized position in [0, 1] for mouse/move.
type MoveRequest struct {
	X           float32 `json:"x"`
	Y           float32 `json:"y"`
	VirtualDesk bool    `json:"virtualDesk,omitempty"`
}

// MoveRelativeRequest is a pixel delta for mouse/moverel.
type MoveRelativeRequest struct {
	DX int32 `json:"dx"`
	DY int32 `json:"dy"`
}

// ScrollRequest rotates a wheel by Delta notches.
type ScrollRequest struct {
	Delta      float32 `json:"delta"`
	Horizontal bool    `json:"horizontal,omitempty"`
}
