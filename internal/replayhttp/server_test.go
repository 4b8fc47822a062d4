package replayhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/rgs-client-go/internal/replaystore"
	"github.com/MJE43/rgs-client-go/rgs"
)

type stubFetcher struct {
	body  json.RawMessage
	err   error
	calls int
}

func (f *stubFetcher) FetchReplay(ctx context.Context, req rgs.ReplayRequest) (json.RawMessage, error) {
	f.calls++
	return f.body, f.err
}

func newTestServer(t *testing.T, fetcher ReplayFetcher) (*Server, *replaystore.Store) {
	t.Helper()
	store, err := replaystore.New(filepath.Join(t.TempDir(), "replays.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, fetcher, zerolog.Nop(), 0, ""), store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestFetchArchivesReplay(t *testing.T) {
	fetcher := &stubFetcher{body: json.RawMessage(`{"board":[[1]]}`)}
	srv, store := newTestServer(t, fetcher)
	h := srv.Routes()

	rec := doJSON(t, h, "POST", "/replays/fetch", map[string]string{
		"game": "lines", "version": "1.0.0", "mode": "base", "event": "12345",
		"serverHost": "rgs.example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ID      string `json:"id"`
		Fetched bool   `json:"fetched"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Fetched)
	assert.Equal(t, 1, fetcher.calls)

	saved, err := store.Find(context.Background(), "lines", "1.0.0", "base", "12345")
	require.NoError(t, err)
	assert.JSONEq(t, `{"board":[[1]]}`, string(saved.Body))
}

func TestFetchHitsArchiveBeforeNetwork(t *testing.T) {
	fetcher := &stubFetcher{body: json.RawMessage(`{}`)}
	srv, _ := newTestServer(t, fetcher)
	h := srv.Routes()

	body := map[string]string{"game": "lines", "version": "1.0.0", "mode": "base", "event": "1"}
	rec := doJSON(t, h, "POST", "/replays/fetch", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, "POST", "/replays/fetch", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Fetched bool `json:"fetched"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Fetched)
	assert.Equal(t, 1, fetcher.calls, "second fetch must be served from the archive")
}

func TestFetchValidation(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})
	h := srv.Routes()

	rec := doJSON(t, h, "POST", "/replays/fetch", map[string]string{"game": "lines"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFetchUpstreamNotFound(t *testing.T) {
	fetcher := &stubFetcher{err: &rgs.HTTPError{StatusCode: 404, Message: "replay not found"}}
	srv, _ := newTestServer(t, fetcher)
	h := srv.Routes()

	rec := doJSON(t, h, "POST", "/replays/fetch", map[string]string{
		"game": "lines", "version": "1.0.0", "mode": "base", "event": "404",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFetchUpstreamFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	srv, _ := newTestServer(t, fetcher)
	h := srv.Routes()

	rec := doJSON(t, h, "POST", "/replays/fetch", map[string]string{
		"game": "lines", "version": "1.0.0", "mode": "base", "event": "1",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestListGetDelete(t *testing.T) {
	srv, store := newTestServer(t, &stubFetcher{})
	h := srv.Routes()

	res, err := store.Save(context.Background(), replaystore.Replay{
		Game: "lines", Version: "1.0.0", Mode: "base", Event: "1", Body: []byte(`{"x":1}`),
	})
	require.NoError(t, err)

	rec := doJSON(t, h, "GET", "/replays/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	rec = doJSON(t, h, "GET", "/replays/"+res.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got replaystore.Replay
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "lines", got.Game)

	rec = doJSON(t, h, "DELETE", "/replays/"+res.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, "GET", "/replays/"+res.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInvalidID(t *testing.T) {
	srv, _ := newTestServer(t, &stubFetcher{})
	rec := doJSON(t, srv.Routes(), "GET", "/replays/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenCheck(t *testing.T) {
	store, err := replaystore.New(filepath.Join(t.TempDir(), "replays.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	srv := New(store, &stubFetcher{}, zerolog.Nop(), 0, "secret")
	h := srv.Routes()

	rec := doJSON(t, h, "GET", "/replays/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest("GET", "/replays/", nil)
	req.Header.Set("X-Api-Token", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportCSV(t *testing.T) {
	srv, store := newTestServer(t, &stubFetcher{})
	_, err := store.Save(context.Background(), replaystore.Replay{
		Game: "lines", Version: "1.0.0", Mode: "base", Event: "1", Body: []byte(`{}`),
	})
	require.NoError(t, err)

	rec := doJSON(t, srv.Routes(), "GET", "/replays/export.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "id,game,version,mode,event")
}
