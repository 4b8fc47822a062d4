// Package replayhttp runs a local HTTP API over the replay archive. It binds
// to loopback only: the service exists so desktop tooling and scripts can
// fetch, browse and export archived replays without talking to the RGS
// directly.
package replayhttp

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MJE43/rgs-client-go/internal/replaystore"
	"github.com/MJE43/rgs-client-go/rgs"
)

// ReplayFetcher fetches a replay body from a remote server. *rgs.Client
// satisfies it; tests substitute a stub.
type ReplayFetcher interface {
	FetchReplay(ctx context.Context, req rgs.ReplayRequest) (json.RawMessage, error)
}

// Server runs the local replay archive API.
type Server struct {
	store      *replaystore.Store
	fetcher    ReplayFetcher
	log        zerolog.Logger
	token      string
	addr       string // e.g. "127.0.0.1:8090"
	httpServer *http.Server
}

// New creates a server bound to loopback at the given port. token may be
// empty to disable token checks.
func New(store *replaystore.Store, fetcher ReplayFetcher, log zerolog.Logger, port int, token string) *Server {
	if port <= 0 {
		port = 8090
	}
	return &Server{
		store:   store,
		fetcher: fetcher,
		log:     log,
		token:   token,
		addr:    fmt.Sprintf("127.0.0.1:%d", port),
	}
}

// Routes builds the chi router. Exposed separately so tests can drive the
// handlers through httptest without binding a socket.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if s.token != "" {
		r.Use(s.checkToken)
	}

	r.Get("/health", s.handleHealth)

	r.Route("/replays", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/fetch", s.handleFetch)
		r.Get("/export.csv", s.handleExport)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})

	return r
}

// Start begins listening in a goroutine. It returns when the socket is bound.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.log.Info().Str("addr", s.addr).Msg("replay archive API listening")
	go func() {
		_ = s.httpServer.Serve(ln)
	}()
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// ========== Handlers ==========

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /replays/fetch
//
// Fetches a replay from the RGS and archives it. Re-fetching an archived
// round returns the existing record without a network call.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var p struct {
		Game       string `json:"game"`
		Version    string `json:"version"`
		Mode       string `json:"mode"`
		Event      string `json:"event"`
		ServerHost string `json:"serverHost,omitempty"`
		Notes      string `json:"notes,omitempty"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errObj("VALIDATION_ERROR", "invalid JSON", ""))
		return
	}
	if p.Game == "" || p.Version == "" || p.Mode == "" || p.Event == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errObj("VALIDATION_ERROR", "game, version, mode and event are required", ""))
		return
	}

	ctx := r.Context()

	// Archive hit short-circuits the fetch.
	if existing, err := s.store.Find(ctx, p.Game, p.Version, p.Mode, p.Event); err == nil {
		writeJSON(w, http.StatusOK, map[string]any{"id": existing.ID.String(), "fetched": false})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusInternalServerError, errObj("SERVER_ERROR", "archive lookup failed", ""))
		return
	}

	body, err := s.fetcher.FetchReplay(ctx, rgs.ReplayRequest{
		CallOptions: rgs.CallOptions{ServerHost: p.ServerHost},
		Game:        p.Game,
		Version:     p.Version,
		Mode:        p.Mode,
		Event:       p.Event,
	})
	if err != nil {
		status := http.StatusBadGateway
		var httpErr *rgs.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		}
		writeJSON(w, status, errObj("FETCH_FAILED", err.Error(), ""))
		return
	}

	res, err := s.store.Save(ctx, replaystore.Replay{
		Game:       p.Game,
		Version:    p.Version,
		Mode:       p.Mode,
		Event:      p.Event,
		ServerHost: p.ServerHost,
		Notes:      p.Notes,
		Body:       body,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errObj("SERVER_ERROR", "failed to archive replay", ""))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": res.ID.String(), "fetched": true})
}

// GET /replays?game=&limit=&offset=
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := clampInt(qInt(r, "limit", 100), 1, 500)
	offset := clampInt(qInt(r, "offset", 0), 0, 1_000_000)

	items, err := s.store.List(r.Context(), r.URL.Query().Get("game"), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errObj("SERVER_ERROR", "failed to list replays", ""))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"replays": items,
		"count":   len(items),
	})
}

// GET /replays/{id}
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := s.store.Get(r.Context(), id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeJSON(w, http.StatusNotFound, errObj("NOT_FOUND", "replay not found", "id"))
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errObj("SERVER_ERROR", "failed to fetch replay", ""))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// PUT /replays/{id}
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Notes string `json:"notes"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errObj("VALIDATION_ERROR", "invalid JSON", ""))
		return
	}
	if err := s.store.UpdateNotes(r.Context(), id, body.Notes); err != nil {
		writeJSON(w, http.StatusInternalServerError, errObj("SERVER_ERROR", "failed to update notes", ""))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DELETE /replays/{id}
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errObj("SERVER_ERROR", "failed to delete replay", ""))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /replays/export.csv
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="replays.csv"`)
	if err := s.store.ExportCSV(r.Context(), w); err != nil {
		s.log.Error().Err(err).Msg("csv export failed")
	}
}

// ========== Middleware & helpers ==========

func (s *Server) checkToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Token") != s.token {
			writeJSON(w, http.StatusUnauthorized, errObj("UNAUTHORIZED", "missing or invalid X-Api-Token", ""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errObj("VALIDATION_ERROR", "invalid replay id", "id"))
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errObj(code, msg, field string) map[string]any {
	e := map[string]any{
		"code":    code,
		"message": msg,
	}
	if field != "" {
		e["field"] = field
	}
	return map[string]any{"error": e}
}

func qInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
