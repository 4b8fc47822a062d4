package rgs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAuthenticate(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/wallet/authenticate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["sessionID"] != "s1" {
			t.Errorf("expected sessionID s1, got %v", body["sessionID"])
		}
		if body["language"] != "en" {
			t.Errorf("expected default language en, got %v", body["language"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"balance": map[string]any{"amount": 100_000_000, "currency": "USD"},
			"config": map[string]any{
				"minBet":    1_000_000,
				"maxBet":    1_000_000_000,
				"betLevels": []int64{1_000_000, 2_000_000, 5_000_000},
			},
			"round": map[string]any{
				"active": true,
				"amount": 1_000_000,
				"mode":   "base",
			},
			"statusCode": "SUCCESS",
		})
	}))
	defer server.Close()

	c := testClient(server, serverProvider(server))
	result, err := c.Authenticate(context.Background(), AuthenticateRequest{
		CallOptions: CallOptions{SessionID: "s1"},
	})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	if result.Balance.Amount != 100_000_000 {
		t.Errorf("balance: expected 100000000, got %d", result.Balance.Amount)
	}
	if result.Round == nil || !result.Round.Active {
		t.Error("expected an active unfinished round")
	}
	if !result.StatusCode.IsSuccess() {
		t.Errorf("expected SUCCESS, got %s", result.StatusCode)
	}
}

func TestPlay(t *testing.T) {
	requests := 0
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/wallet/play" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["sessionID"] != "s1" {
			t.Errorf("expected sessionID s1, got %v", body["sessionID"])
		}
		if body["currency"] != "USD" {
			t.Errorf("expected currency USD, got %v", body["currency"])
		}
		if body["mode"] != "base" {
			t.Errorf("expected mode base, got %v", body["mode"])
		}
		if body["amount"] != float64(1_000_000) {
			t.Errorf("expected amount 1000000, got %v", body["amount"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"balance": map[string]any{"amount": 99_000_000, "currency": "USD"},
			"round": map[string]any{
				"roundID":          "r1",
				"active":           true,
				"amount":           1_000_000,
				"payout":           2_000_000,
				"payoutMultiplier": 2.0,
			},
			"statusCode": "SUCCESS",
		})
	}))
	defer server.Close()

	c := testClient(server, &StaticProvider{
		ServerHost: "https://" + server.Listener.Addr().String(),
	})
	result, err := c.Play(context.Background(), PlayRequest{
		CallOptions: CallOptions{SessionID: "s1"},
		Amount:      decimal.RequireFromString("1.00"),
		Mode:        "base",
	})
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if requests != 1 {
		t.Errorf("expected exactly 1 request, got %d", requests)
	}
	if result.Round == nil || !result.Round.IsWin() {
		t.Error("expected winning round")
	}
	if result.Balance.Amount != 99_000_000 {
		t.Errorf("balance: expected 99000000, got %d", result.Balance.Amount)
	}
}

func TestPlayValidation(t *testing.T) {
	c := noNetworkClient(t, &StaticProvider{SessionID: "s1", ServerHost: "rgs.example.com"})
	ctx := context.Background()

	_, err := c.Play(ctx, PlayRequest{Amount: decimal.RequireFromString("1.00")})
	if err == nil {
		t.Fatal("expected missing mode error")
	}

	_, err = c.Play(ctx, PlayRequest{Mode: "base"})
	if err == nil {
		t.Fatal("expected zero amount error")
	}

	_, err = c.Play(ctx, PlayRequest{Mode: "base", Amount: decimal.RequireFromString("0.0000001")})
	if err == nil {
		t.Fatal("expected inexact amount error")
	}
}

func TestEndRound(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wallet/end-round" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"balance":    map[string]any{"amount": 101_000_000, "currency": "USD"},
			"statusCode": "SUCCESS",
		})
	}))
	defer server.Close()

	c := testClient(server, serverProvider(server))
	result, err := c.EndRound(context.Background(), EndRoundRequest{})
	if err != nil {
		t.Fatalf("EndRound failed: %v", err)
	}
	if result.Balance.Amount != 101_000_000 {
		t.Errorf("balance: expected 101000000, got %d", result.Balance.Amount)
	}
}

func TestFetchBalance(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wallet/balance" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["sessionID"] != "test-session" {
			t.Errorf("expected ambient sessionID, got %v", body["sessionID"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"balance": map[string]any{"amount": 42, "currency": "USD"},
		})
	}))
	defer server.Close()

	c := testClient(server, serverProvider(server))
	result, err := c.FetchBalance(context.Background(), BalanceRequest{})
	if err != nil {
		t.Fatalf("FetchBalance failed: %v", err)
	}
	if result.Balance.Amount != 42 {
		t.Errorf("balance: expected 42, got %d", result.Balance.Amount)
	}
}

func TestDeprecatedAliases(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The aliases hit the same endpoints as the current names.
		switch r.URL.Path {
		case "/wallet/play", "/wallet/balance", "/wallet/end-round", "/game/search":
		default:
			t.Errorf("alias hit unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"statusCode": "SUCCESS"})
	}))
	defer server.Close()

	c := testClient(server, serverProvider(server))
	ctx := context.Background()

	if _, err := c.PlaceBet(ctx, PlaceBetRequest{Amount: decimal.RequireFromString("1"), Mode: "base"}); err != nil {
		t.Errorf("PlaceBet failed: %v", err)
	}
	if _, err := c.GetBalance(ctx, BalanceRequest{}); err != nil {
		t.Errorf("GetBalance failed: %v", err)
	}
	if _, err := c.CloseRound(ctx, EndRoundRequest{}); err != nil {
		t.Errorf("CloseRound failed: %v", err)
	}
	if _, err := c.ForceResult(ctx, SearchForResultRequest{Mode: "base"}); err != nil {
		t.Errorf("ForceResult failed: %v", err)
	}
}
