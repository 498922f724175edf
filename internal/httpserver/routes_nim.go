// internal/httpserver/routes_nim.go
//
// HTTP routes for the subtraction games (sum to target, countdown, chip):
//   - POST /nim/new   → start a round
//   - GET  /nim/{id}  → current round state
//   - POST /nim/move  → human move, then the computer's reply

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mathgames/internal/game"
	"github.com/robalobadob/mathgames/internal/nim"
	"github.com/robalobadob/mathgames/internal/stats"
)

// nimSession wraps a live round with its lock and owner.
type nimSession struct {
	mu       sync.Mutex
	round    *nim.Round
	ownerID  string // player ID when started by a signed-in player
	recorded bool
}

func (n *nimSession) SessionID() string { return n.round.ID }

// roundView is the JSON shape of a round.
type roundView struct {
	ID            string      `json:"id"`
	Mode          nim.Mode    `json:"mode"`
	Difficulty    string      `json:"difficulty"`
	Target        int         `json:"target"`
	Current       int         `json:"current"`
	Remaining     int         `json:"remaining"`
	HumanMoves    int         `json:"humanMoves"`
	ComputerMoves int         `json:"computerMoves"`
	Turn          game.Player `json:"turn,omitempty"`
	LastMover     game.Player `json:"lastMover,omitempty"`
	Phase         game.Phase  `json:"phase"`
	LegalMoves    []int       `json:"legalMoves"`
	Over          bool        `json:"over"`
	Winner        game.Player `json:"winner,omitempty"`
}

func viewRound(r *nim.Round) roundView {
	legal := r.LegalMoves()
	if legal == nil {
		legal = []int{}
	}
	return roundView{
		ID:            r.ID,
		Mode:          r.Mode,
		Difficulty:    string(r.Difficulty),
		Target:        r.Target,
		Current:       r.Current,
		Remaining:     r.Remaining(),
		HumanMoves:    r.HumanMoves,
		ComputerMoves: r.ComputerMoves,
		Turn:          r.Turn(),
		LastMover:     r.LastMover,
		Phase:         r.Phase(),
		LegalMoves:    legal,
		Over:          r.Over,
		Winner:        r.Winner(),
	}
}

func (s *Server) mountNim(r chi.Router) {
	r.Route("/nim", func(r chi.Router) {
		r.Post("/new", s.handleNimNew)
		r.Post("/move", s.handleNimMove)
		r.Get("/{id}", s.handleNimGet)
	})
}

// nimNewReq is the payload for POST /nim/new.
type nimNewReq struct {
	Mode       string `json:"mode"`       // "sum" | "countdown" | "chip"
	Difficulty string `json:"difficulty"` // "easy" | "normal" | "hard"
	ChipStart  int    `json:"chipStart"`  // optional, chip mode only
}

func (s *Server) handleNimNew(w http.ResponseWriter, r *http.Request) {
	var req nimNewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	mode, err := nim.ParseMode(req.Mode)
	if err != nil {
		writeGameError(w, err)
		return
	}
	diff, err := game.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeGameError(w, err)
		return
	}
	var opts []nim.Option
	if req.ChipStart != 0 {
		opts = append(opts, nim.WithChipStart(req.ChipStart))
	}
	round, err := nim.New(mode, diff, opts...)
	if err != nil {
		writeGameError(w, err)
		return
	}

	sess := &nimSession{round: round}
	if me := currentPlayer(r); me != nil {
		sess.ownerID = me.ID
	}
	if err := s.rounds.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save round")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Debug().Str("roundId", round.ID).Str("mode", string(mode)).Str("difficulty", string(diff)).Int("live", s.rounds.Len()).Msg("round started")
	writeJSON(w, http.StatusCreated, viewRound(round))
}

func (s *Server) handleNimGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.rounds.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	sess.mu.Lock()
	v := viewRound(sess.round)
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, v)
}

// nimMoveReq/Res payloads for POST /nim/move.
type nimMoveReq struct {
	RoundID string `json:"roundId"`
	Move    int    `json:"move"`
}
type nimMoveRes struct {
	HumanMove    int       `json:"humanMove"`
	ComputerMove int       `json:"computerMove,omitempty"`
	Round        roundView `json:"round"`
}

// handleNimMove applies the human move and the computer's reply under the
// session lock, then scores the round if it ended.
func (s *Server) handleNimMove(w http.ResponseWriter, r *http.Request) {
	var req nimMoveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := s.rounds.Get(r.Context(), req.RoundID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	if !canPlay(r, sess.ownerID) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	reply, err := sess.round.PlayTurn(req.Move, s.src)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.finishRound(r, sess)
	writeJSON(w, http.StatusOK, nimMoveRes{HumanMove: req.Move, ComputerMove: reply, Round: viewRound(sess.round)})
}

// finishRound records a finished round once. Callers hold sess.mu.
func (s *Server) finishRound(r *http.Request, sess *nimSession) {
	if !sess.round.Over || sess.recorded {
		return
	}
	sess.recorded = true
	s.recordOutcome(r.Context(), sess.ownerID, stats.GameNim, sess.round.ID, sess.round.Winner())
	forget(s.rounds, sess.round.ID, s.cfg.FinishedTTL)
}
