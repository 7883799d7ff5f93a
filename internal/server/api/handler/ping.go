package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Alia5/vinject/apitypes"
	"github.com/Alia5/vinject/internal/server/api"
	apierror "github.com/Alia5/vinject/internal/server/api/error"
)

// Ping returns a handler that reports the server identity and version.
func Ping(version string) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		out, err := json.Marshal(apitypes.PingResponse{Server: "vinject", Version: version})
		if err != nil {
			return apierror.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
		}
		res.JSON = string(out)
		return nil
	}
}

func writeJSON(res *api.Response, v any) error {
	out, err := json.Marshal(v)
	if err != nil {
		return apierror.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
	}
	res.JSON = string(out)
	return nil
}

func decodePayload(req *api.Request, v any) error {
	if req.Payload == "" {
		return apierror.ErrBadRequest("missing payload")
	}
	if err := json.Unmarshal([]byte(req.Payload), v); err != nil {
		return apierror.ErrBadRequest(fmt.Sprintf("invalid payload: %v", err))
	}
	return nil
}
