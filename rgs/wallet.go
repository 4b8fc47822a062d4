package rgs

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// --- Authenticate ---

// AuthenticateRequest contains the parameters for authenticating a session.
type AuthenticateRequest struct {
	CallOptions
}

// Authenticate validates the session with the RGS and returns the player
// balance, game configuration, and any unfinished round.
func (c *Client) Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthenticateResult, error) {
	oc, err := c.resolve("authenticate", req.CallOptions, needsSessionAndServer)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"sessionID": oc.sessionID,
		"language":  oc.language,
	}

	var result AuthenticateResult
	if err := c.post(ctx, oc.serverHost, "wallet/authenticate", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Play ---

// PlayRequest contains the parameters for placing a bet.
type PlayRequest struct {
	CallOptions

	// Amount is the stake in display units (e.g. 1.00 for one currency
	// unit); it is converted to API minor units before sending.
	Amount decimal.Decimal

	// Mode is the game mode to play (e.g. "base", "bonus").
	Mode string
}

// Play places a bet. The amount is converted via ToAPIAmount; amounts that
// do not convert exactly are rejected before any network call.
func (c *Client) Play(ctx context.Context, req PlayRequest) (*PlayResult, error) {
	if req.Mode == "" {
		return nil, fmt.Errorf("rgs: play mode is required")
	}
	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("rgs: play amount must be > 0, got %s", req.Amount)
	}
	apiAmount, err := ToAPIAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	oc, err := c.resolve("play", req.CallOptions, needsSessionAndServer)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"sessionID": oc.sessionID,
		"currency":  oc.currency,
		"mode":      req.Mode,
		"amount":    apiAmount,
	}

	var result PlayResult
	if err := c.post(ctx, oc.serverHost, "wallet/play", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- EndRound ---

// EndRoundRequest contains the parameters for settling the active round.
type EndRoundRequest struct {
	CallOptions
}

// EndRound settles the player's active round and returns the updated
// balance.
func (c *Client) EndRound(ctx context.Context, req EndRoundRequest) (*BalanceResult, error) {
	oc, err := c.resolve("end-round", req.CallOptions, needsSessionAndServer)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"sessionID": oc.sessionID,
	}

	var result BalanceResult
	if err := c.post(ctx, oc.serverHost, "wallet/end-round", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Balance ---

// BalanceRequest contains the parameters for fetching the player balance.
type BalanceRequest struct {
	CallOptions
}

// FetchBalance returns the player's current balance.
func (c *Client) FetchBalance(ctx context.Context, req BalanceRequest) (*BalanceResult, error) {
	oc, err := c.resolve("balance", req.CallOptions, needsSessionAndServer)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"sessionID": oc.sessionID,
	}

	var result BalanceResult
	if err := c.post(ctx, oc.serverHost, "wallet/balance", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
