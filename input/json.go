package input

import (
	"encoding/json"
	"fmt"
)

// inputJSON is the tagged wire form of Input. Only the fields of the
// active kind are emitted.
type inputJSON struct {
	Kind      Kind            `json:"kind"`
	Key       *Vk             `json:"key,omitempty"`
	Scan      *uint16         `json:"scan,omitempty"`
	Extended  bool            `json:"extended,omitempty"`
	Action    *Action         `json:"action,omitempty"`
	Button    *Button         `json:"button,omitempty"`
	Motion    *MouseMotion    `json:"motion,omitempty"`
	Delta     *float32        `json:"delta,omitempty"`
	Direction *WheelDirection `json:"direction,omitempty"`
}

func (in Input) MarshalJSON() ([]byte, error) {
	w := inputJSON{Kind: in.Kind}
	switch in.Kind {
	case KindKeyboard:
		if in.ScanCode {
			w.Scan = &in.Scan
		} else {
			w.Key = &in.Key
		}
		w.Extended = in.Extended
		w.Action = &in.Action
	case KindMouseButton:
		w.Button = &in.Button
		w.Action = &in.Action
	case KindMouseMotion:
		w.Motion = &in.Motion
	case KindMouseWheel:
		w.Delta = &in.Delta
		w.Direction = &in.Direction
	default:
		return nil, fmt.Errorf("unknown input kind %d", in.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the tagged form. A keyboard input given by key
// name gets its extended flag from the key table unless "extended" is set
// explicitly.
func (in *Input) UnmarshalJSON(b []byte) error {
	var w inputJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	var action Action
	if w.Action != nil {
		action = *w.Action
	}
	switch w.Kind {
	case KindKeyboard:
		switch {
		case w.Scan != nil:
			*in = FromScanCode(*w.Scan, w.Extended, action)
		case w.Key != nil:
			*in = FromVk(*w.Key, action)
			in.Extended = in.Extended || w.Extended
		default:
			return fmt.Errorf("keyboard input needs key or scan")
		}
	case KindMouseButton:
		if w.Button == nil {
			return fmt.Errorf("button input needs button")
		}
		*in = FromButton(*w.Button, action)
	case KindMouseMotion:
		if w.Motion == nil {
			return fmt.Errorf("motion input needs motion")
		}
		m := *w.Motion
		if m.Absolute {
			m.X = clampAbsolute(m.X)
			m.Y = clampAbsolute(m.Y)
		}
		*in = FromMotion(m)
	case KindMouseWheel:
		var delta float32
		var dir WheelDirection
		if w.Delta != nil {
			delta = *w.Delta
		}
		if w.Direction != nil {
			dir = *w.Direction
		}
		*in = FromWheel(delta, dir)
	}
	return nil
}

func clampAbsolute(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > AbsoluteMax {
		return AbsoluteMax
	}
	return v
}
