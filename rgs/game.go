package rgs

import "context"

// SearchForResultRequest contains the parameters for searching recorded
// rounds by outcome.
type SearchForResultRequest struct {
	CallOptions

	// Mode restricts the search to one game mode.
	Mode string

	// BookID restricts the search to a specific book record, when non-zero.
	BookID int64
}

// SearchForResult queries the server for recorded rounds matching the given
// criteria. It is primarily a development aid for forcing specific outcomes.
func (c *Client) SearchForResult(ctx context.Context, req SearchForResultRequest) (*SearchResult, error) {
	oc, err := c.resolve("search", req.CallOptions, needsSessionAndServer)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"sessionID": oc.sessionID,
	}
	if req.Mode != "" {
		body["mode"] = req.Mode
	}
	if req.BookID != 0 {
		body["bookID"] = req.BookID
	}

	var result SearchResult
	if err := c.post(ctx, oc.serverHost, "game/search", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
