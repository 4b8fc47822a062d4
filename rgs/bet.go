package rgs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// --- EndEvent ---

// EndEventRequest contains the parameters for acknowledging a round event.
type EndEventRequest struct {
	CallOptions

	// Event is the index of the event the client has finished presenting.
	Event int
}

// EndEvent acknowledges that the client has finished presenting the given
// event of the active round.
func (c *Client) EndEvent(ctx context.Context, req EndEventRequest) (*EventResult, error) {
	oc, err := c.resolve("end-event", req.CallOptions, needsSessionAndServer)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"sessionID": oc.sessionID,
		"event":     req.Event,
	}

	var result EventResult
	if err := c.post(ctx, oc.serverHost, "bet/event", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- FetchReplay ---

// ReplayRequest identifies a historical round to replay. All four fields are
// path segments and must be non-empty.
type ReplayRequest struct {
	CallOptions

	Game    string
	Version string
	Mode    string
	Event   string
}

// FetchReplay fetches the recorded state of a historical round. Replay is a
// read-only lookup: it needs a server host but no session. The body is
// returned raw because its shape is game-specific.
func (c *Client) FetchReplay(ctx context.Context, req ReplayRequest) (json.RawMessage, error) {
	segments := []struct {
		name, value string
	}{
		{"game", req.Game},
		{"version", req.Version},
		{"mode", req.Mode},
		{"event", req.Event},
	}
	for _, s := range segments {
		if s.value == "" {
			return nil, fmt.Errorf("rgs: replay %s is required", s.name)
		}
		if strings.Contains(s.value, "/") {
			return nil, fmt.Errorf("rgs: replay %s %q must not contain '/'", s.name, s.value)
		}
	}

	oc, err := c.resolve("replay", req.CallOptions, needsServerOnly)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("bet/replay/%s/%s/%s/%s", req.Game, req.Version, req.Mode, req.Event)

	var raw json.RawMessage
	if err := c.get(ctx, oc.serverHost, path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
