package handler

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/vinject/apitypes"
	"github.com/Alia5/vinject/input"
	"github.com/Alia5/vinject/internal/server/api"
	apierror "github.com/Alia5/vinject/internal/server/api/error"
)

// InputSend returns a handler that injects a JSON array of inputs as one batch.
func InputSend(d *input.Dispatcher) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var inputs []input.Input
		if err := decodePayload(req, &inputs); err != nil {
			return err
		}
		n := d.SendInputs(inputs)
		return writeJSON(res, apitypes.SendResponse{Requested: len(inputs), Accepted: n})
	}
}

// KeyPress returns a handler that presses the key named by the payload.
func KeyPress(d *input.Dispatcher) api.HandlerFunc { return keyHandler(d.Press) }

// KeyRelease returns a handler that releases the key named by the payload.
func KeyRelease(d *input.Dispatcher) api.HandlerFunc { return keyHandler(d.Release) }

// KeySend returns a handler that presses and releases the key named by the payload.
func KeySend(d *input.Dispatcher) api.HandlerFunc { return keyHandler(d.Send) }

func keyHandler(op func(input.Keylike) (uint32, error)) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		k, err := input.ParseKeylike(req.Payload)
		if err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid key: %v", err))
		}
		n, err := op(k)
		if err != nil {
			return err
		}
		return writeJSON(res, apitypes.SendResponse{Accepted: n})
	}
}

// KeysSend returns a handler that taps every key of a KeysRequest in order
// within a single batch.
func KeysSend(d *input.Dispatcher) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var kr apitypes.KeysRequest
		if err := decodePayload(req, &kr); err != nil {
			return err
		}
		keys := make([]input.Keylike, 0, len(kr.Keys))
		for i, s := range kr.Keys {
			k, err := input.ParseKeylike(s)
			if err != nil {
				return apierror.ErrBadRequest(fmt.Sprintf("invalid key %d: %v", i, err))
			}
			keys = append(keys, k)
		}
		n, err := d.SendKeys(keys...)
		if err != nil {
			return err
		}
		return writeJSON(res, apitypes.SendResponse{Accepted: n})
	}
}

// Text returns a handler that types the payload verbatim. On an
// unmappable character the problem response carries the failure and the
// count of records already typed before it.
func Text(d *input.Dispatcher) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		n, err := d.SendStr(req.Payload)
		if err != nil {
			logger.Warn("text partially typed", "accepted", n, "error", err)
			problem := apierror.WrapError(err)
			problem.Accepted = n
			return problem
		}
		return writeJSON(res, apitypes.SendResponse{Accepted: n})
	}
}
