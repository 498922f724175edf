// internal/httpserver/server.go
//
// HTTP server wiring for the math games backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Subtraction-game endpoints (optional auth): /nim/*.
//   - Euclid's Game endpoints (optional auth): /euclid/*, /daily/euclid*.
//   - Auth + scoreboard endpoints: /auth/*, /stats/*.
//   - WebSocket paced play: /ws/nim/{id}, /ws/euclid/{id}.
//
// Notes:
//   - Live rounds and boards are held in memory only.
//   - Each session carries its own mutex so HTTP and WebSocket callers never
//     mutate one game at the same time.
//   - Outcomes are written to the scoreboard once, and only for signed-in
//     players.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mathgames/internal/game"
	"github.com/robalobadob/mathgames/internal/stats"
	"github.com/robalobadob/mathgames/internal/store"
)

// Config carries everything the server reads from the environment.
type Config struct {
	JWTSecret     string
	JWTExpiry     time.Duration
	CookieName    string
	ClientOrigin  string
	SecureCookies bool          // NODE_ENV=production
	DailySalt     string
	ComputerDelay time.Duration // pause before the opponent replies over WebSocket
	FinishedTTL   time.Duration // how long a finished round or board stays readable
	IdleTTL       time.Duration // untouched sessions older than this are swept
	Now           func() time.Time // clock for the daily challenge
}

// DefaultConfig returns development defaults.
func DefaultConfig() Config {
	return Config{
		JWTSecret:     "dev_secret_change_me",
		JWTExpiry:     14 * 24 * time.Hour,
		CookieName:    "mathgames_token",
		ClientOrigin:  "http://localhost:5173",
		DailySalt:     "local_dev_salt",
		ComputerDelay: time.Second,
		FinishedTTL:   5 * time.Minute,
		IdleTTL:       30 * time.Minute,
		Now:           time.Now,
	}
}

// Server bundles router, in-memory session stores, scoreboard and DB handle.
type Server struct {
	r      *chi.Mux
	cfg    Config
	db     *sql.DB
	stats  *stats.Store
	rounds store.Store[*nimSession]
	boards store.Store[*euclidSession]
	src    game.Source
}

// New constructs a Server, installs middleware, and registers routes.
// src feeds every computer opponent; pass game.DefaultSource in production.
func New(cfg Config, db *sql.DB, src game.Source) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if src == nil {
		src = game.DefaultSource
	}
	s := &Server{
		r:      chi.NewRouter(),
		cfg:    cfg,
		db:     db,
		stats:  stats.NewStore(db),
		rounds: store.NewMemoryStore[*nimSession](),
		boards: store.NewMemoryStore[*euclidSession](),
		src:    src,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS

	// WebSocket routes stay outside the timeout group; they outlive a request.
	s.r.With(s.withOptionalAuth()).Get("/ws/nim/{id}", s.handleNimWS)
	s.r.With(s.withOptionalAuth()).Get("/ws/euclid/{id}", s.handleEuclidWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"mathgames-go","endpoints":["/health","POST /nim/new","POST /nim/move","POST /euclid/new","POST /euclid/move","/daily/euclid","/auth/*","/stats/*","/ws/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rounds": s.rounds.Len(), "boards": s.boards.Len()})
		})

		// Games: OPTIONAL AUTH (guests can play; signed-in players are scored)
		opt := r.With(s.withOptionalAuth())
		s.mountNim(opt)
		s.mountEuclid(opt)
		s.mountDaily(opt)

		// Auth + profile/stats
		s.mountAuthRoutes(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start begins serving HTTP on addr and sweeps idle sessions in the
// background for the life of the process.
func (s *Server) Start(addr string) error {
	go s.sweepLoop(context.Background())
	return http.ListenAndServe(addr, s.r)
}

// sweepLoop runs sweepIdle every IdleTTL/2 until ctx is done.
func (s *Server) sweepLoop(ctx context.Context) {
	if s.cfg.IdleTTL <= 0 {
		return
	}
	t := time.NewTicker(s.cfg.IdleTTL / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweepIdle(ctx, now)
		}
	}
}

// sweepIdle forgets rounds and boards nobody has touched for IdleTTL.
func (s *Server) sweepIdle(ctx context.Context, now time.Time) {
	cutoff := now.Add(-s.cfg.IdleTTL)
	rounds := s.rounds.Sweep(ctx, cutoff)
	boards := s.boards.Sweep(ctx, cutoff)
	if rounds+boards > 0 {
		log.Debug().Int("rounds", rounds).Int("boards", boards).Msg("swept idle sessions")
	}
}

// forget drops a finished session once FinishedTTL has passed, so clients
// can still read the final state for a while.
func forget[T store.Session](st store.Store[T], id string, after time.Duration) {
	time.AfterFunc(after, func() {
		_ = st.Delete(context.Background(), id)
		log.Debug().Str("gameId", id).Msg("finished session evicted")
	})
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the single configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- responses ---------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// gameErrorStatus maps engine errors to an HTTP status and error code.
func gameErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidMove):
		return http.StatusBadRequest, "invalid_move"
	case errors.Is(err, game.ErrConfiguration):
		return http.StatusBadRequest, "invalid_configuration"
	case errors.Is(err, game.ErrOutOfTurn):
		return http.StatusConflict, "out_of_turn"
	case errors.Is(err, game.ErrGameOver):
		return http.StatusConflict, "game_over"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeGameError(w http.ResponseWriter, err error) {
	status, code := gameErrorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("game request failed")
	}
	writeError(w, status, code)
}

// recordOutcome writes a finished game to the scoreboard for signed-in owners.
func (s *Server) recordOutcome(ctx context.Context, ownerID, kind, id string, winner game.Player) {
	log.Info().Str("game", kind).Str("gameId", id).Str("winner", string(winner)).Msg("game finished")
	if ownerID == "" {
		return
	}
	if err := s.stats.Record(ctx, ownerID, kind, winner); err != nil {
		log.Warn().Err(err).Str("player", ownerID).Str("gameId", id).Msg("record outcome")
	}
}

// canPlay reports whether the request may move in a session owned by ownerID.
// Guest sessions are open to anyone holding the ID.
func canPlay(r *http.Request, ownerID string) bool {
	if ownerID == "" {
		return true
	}
	me := currentPlayer(r)
	return me != nil && me.ID == ownerID
}
