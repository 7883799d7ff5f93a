package input

import (
	"context"
	"log/slog"

	"github.com/Alia5/vinject/internal/log"
)

// Dispatcher resolves keys against a layout and injects inputs through a
// Backend. It holds no state between calls and is safe for concurrent use
// as long as the backend is.
type Dispatcher struct {
	backend Backend
	logger  *slog.Logger
}

// NewDispatcher returns a Dispatcher over b. A nil logger uses slog.Default.
func NewDispatcher(b Backend, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{backend: b, logger: logger}
}

// Layout exposes the layout used for character resolution.
func (d *Dispatcher) Layout() Layout { return d.backend }

// SendInputs injects inputs as one batch, preserving their order, and
// returns the number of records the OS accepted. A count lower than
// len(inputs) is not an error: input may be blocked by another thread or
// by UIPI. An empty batch returns 0 without calling the OS, and so does a
// batch holding any input that fails Validate.
func (d *Dispatcher) SendInputs(inputs []Input) uint32 {
	if len(inputs) == 0 {
		return 0
	}
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			d.logger.Error("batch not injected", "index", i, "error", err)
			return 0
		}
	}
	records := Records(inputs)
	if d.logger.Enabled(context.Background(), log.LevelTrace) {
		for i, in := range inputs {
			d.logger.Log(context.Background(), log.LevelTrace, "inject",
				"index", i, "input", in.String(), "flags", records[i].Flags)
		}
	}
	n, err := d.backend.SendInput(records)
	if n < uint32(len(records)) {
		d.logger.Warn("input partially accepted", "requested", len(records), "accepted", n, "error", err)
	}
	return n
}

// Press resolves k and injects its press events.
func (d *Dispatcher) Press(k Keylike) (uint32, error) {
	return d.action(k, Press)
}

// Release resolves k and injects its release events.
func (d *Dispatcher) Release(k Keylike) (uint32, error) {
	return d.action(k, Release)
}

func (d *Dispatcher) action(k Keylike, a Action) (uint32, error) {
	inputs, err := k.Inputs(d.backend, a)
	if err != nil {
		return 0, err
	}
	return d.SendInputs(inputs), nil
}

// Send presses then releases k as two separate batches. It returns the
// combined count, or only the press count when the press batch was not
// fully accepted. The release batch is sent either way so a modifier that
// did go down is lifted again.
func (d *Dispatcher) Send(k Keylike) (uint32, error) {
	press, err := k.Inputs(d.backend, Press)
	if err != nil {
		return 0, err
	}
	release, err := k.Inputs(d.backend, Release)
	if err != nil {
		return 0, err
	}
	n := d.SendInputs(press)
	released := d.SendInputs(release)
	if n < uint32(len(press)) {
		return n, nil
	}
	return n + released, nil
}

// SendKeys presses and releases every key in order within one batch. All
// keys are resolved before anything is injected.
func (d *Dispatcher) SendKeys(keys ...Keylike) (uint32, error) {
	var batch []Input
	for _, k := range keys {
		press, err := k.Inputs(d.backend, Press)
		if err != nil {
			return 0, err
		}
		release, err := k.Inputs(d.backend, Release)
		if err != nil {
			return 0, err
		}
		batch = append(batch, press...)
		batch = append(batch, release...)
	}
	return d.SendInputs(batch), nil
}

// SendStr types s one character at a time. It stops at the first
// character the layout cannot produce and returns the events accepted up
// to that point together with the error.
func (d *Dispatcher) SendStr(s string) (uint32, error) {
	var total uint32
	for _, r := range s {
		n, err := d.Send(Char(r))
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
