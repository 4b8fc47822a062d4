package rgs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchForResult(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/game/search" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["mode"] != "bonus" {
			t.Errorf("expected mode bonus, got %v", body["mode"])
		}
		if body["bookID"] != float64(77) {
			t.Errorf("expected bookID 77, got %v", body["bookID"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"bookID": 77, "mode": "bonus", "payout": 50_000_000, "payoutMultiplier": 50.0},
			},
			"statusCode": "SUCCESS",
		})
	}))
	defer server.Close()

	c := testClient(server, serverProvider(server))
	result, err := c.SearchForResult(context.Background(), SearchForResultRequest{
		Mode:   "bonus",
		BookID: 77,
	})
	if err != nil {
		t.Fatalf("SearchForResult failed: %v", err)
	}
	if len(result.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(result.Results))
	}
	if result.Results[0].BookID != 77 {
		t.Errorf("expected bookID 77, got %d", result.Results[0].BookID)
	}
}

func TestSearchOmitsEmptyCriteria(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["mode"]; ok {
			t.Error("mode should be omitted when empty")
		}
		if _, ok := body["bookID"]; ok {
			t.Error("bookID should be omitted when zero")
		}
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}, "statusCode": "SUCCESS"})
	}))
	defer server.Close()

	c := testClient(server, serverProvider(server))
	if _, err := c.SearchForResult(context.Background(), SearchForResultRequest{}); err != nil {
		t.Fatalf("SearchForResult failed: %v", err)
	}
}
