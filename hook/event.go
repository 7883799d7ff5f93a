package hook

import (
	"encoding/json"
	"fmt"

	"github.com/Alia5/vinject/input"
)

// EventKind tags the variant held by an Event.
type EventKind uint8

const (
	KeyboardEvent EventKind = iota
	MouseMoveEvent
	MouseButtonEvent
	MouseWheelEvent
)

var eventKindNames = [...]string{"keyboard", "move", "button", "wheel"}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EventKind) UnmarshalText(b []byte) error {
	for i, n := range eventKindNames {
		if n == string(b) {
			*k = EventKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", b)
}

// Event is one observed keyboard or mouse action. Mouse events carry the
// cursor position in screen pixels at the time of the event.
type Event struct {
	Kind EventKind

	// Keyboard
	Key      input.Vk
	ScanCode uint32

	// Keyboard and mouse button
	Action input.Action
	Button input.Button

	// Mouse
	X, Y int32

	// Wheel, in notches
	Delta     float32
	Direction input.WheelDirection

	// Injected is set for events produced by SendInput rather than hardware.
	Injected bool
	// Time is the OS tick count in milliseconds.
	Time uint32
}

type eventJSON struct {
	Kind      EventKind             `json:"kind"`
	Key       *input.Vk             `json:"key,omitempty"`
	ScanCode  uint32                `json:"scanCode,omitempty"`
	Action    *input.Action         `json:"action,omitempty"`
	Button    *input.Button         `json:"button,omitempty"`
	X         *int32                `json:"x,omitempty"`
	Y         *int32                `json:"y,omitempty"`
	Delta     *float32              `json:"delta,omitempty"`
	Direction *input.WheelDirection `json:"direction,omitempty"`
	Injected  bool                  `json:"injected,omitempty"`
	Time      uint32                `json:"time,omitempty"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	w := eventJSON{Kind: e.Kind, Injected: e.Injected, Time: e.Time}
	switch e.Kind {
	case KeyboardEvent:
		w.Key, w.ScanCode, w.Action = &e.Key, e.ScanCode, &e.Action
	case MouseMoveEvent:
		w.X, w.Y = &e.X, &e.Y
	case MouseButtonEvent:
		w.X, w.Y, w.Button, w.Action = &e.X, &e.Y, &e.Button, &e.Action
	case MouseWheelEvent:
		w.X, w.Y, w.Delta, w.Direction = &e.X, &e.Y, &e.Delta, &e.Direction
	}
	return json.Marshal(w)
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var w eventJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*e = Event{Kind: w.Kind, ScanCode: w.ScanCode, Injected: w.Injected, Time: w.Time}
	if w.Key != nil {
		e.Key = *w.Key
	}
	if w.Action != nil {
		e.Action = *w.Action
	}
	if w.Button != nil {
		e.Button = *w.Button
	}
	if w.X != nil {
		e.X = *w.X
	}
	if w.Y != nil {
		e.Y = *w.Y
	}
	if w.Delta != nil {
		e.Delta = *w.Delta
	}
	if w.Direction != nil {
		e.Direction = *w.Direction
	}
	return nil
}

func (e Event) String() string {
	var s string
	switch e.Kind {
	case KeyboardEvent:
		s = fmt.Sprintf("key %s %s (scan 0x%02x)", e.Key, e.Action, e.ScanCode)
	case MouseMoveEvent:
		s = fmt.Sprintf("move %d,%d", e.X, e.Y)
	case MouseButtonEvent:
		s = fmt.Sprintf("button %s %s at %d,%d", e.Button, e.Action, e.X, e.Y)
	case MouseWheelEvent:
		s = fmt.Sprintf("wheel %s %g at %d,%d", e.Direction, e.Delta, e.X, e.Y)
	default:
		s = e.Kind.String()
	}
	if e.Injected {
		s += " [injected]"
	}
	return s
}
