package rgs

import "context"

// Older integrations used different operation names. The aliases below are
// kept so those callers keep compiling; each one is a plain call into the
// current method with no extra behavior.

// PlaceBetRequest is the former name of PlayRequest.
//
// Deprecated: use PlayRequest.
type PlaceBetRequest = PlayRequest

// PlaceBet places a bet.
//
// Deprecated: use Play.
func (c *Client) PlaceBet(ctx context.Context, req PlaceBetRequest) (*PlayResult, error) {
	return c.Play(ctx, req)
}

// GetBalance returns the player's current balance.
//
// Deprecated: use FetchBalance.
func (c *Client) GetBalance(ctx context.Context, req BalanceRequest) (*BalanceResult, error) {
	return c.FetchBalance(ctx, req)
}

// ForceResult queries the server for recorded rounds matching the given
// criteria.
//
// Deprecated: use SearchForResult.
func (c *Client) ForceResult(ctx context.Context, req SearchForResultRequest) (*SearchResult, error) {
	return c.SearchForResult(ctx, req)
}

// CloseRound settles the player's active round.
//
// Deprecated: use EndRound.
func (c *Client) CloseRound(ctx context.Context, req EndRoundRequest) (*BalanceResult, error) {
	return c.EndRound(ctx, req)
}
