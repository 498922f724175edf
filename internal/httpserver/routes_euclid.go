// internal/httpserver/routes_euclid.go
//
// HTTP routes for Euclid's Game:
//   - POST /euclid/new   → start a board with random seeds
//   - GET  /euclid/{id}  → current board state
//   - POST /euclid/move  → human pair, then the bot's reply

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mathgames/internal/euclid"
	"github.com/robalobadob/mathgames/internal/game"
	"github.com/robalobadob/mathgames/internal/stats"
)

// euclidSession wraps a live board with its lock and owner.
type euclidSession struct {
	mu       sync.Mutex
	board    *euclid.Board
	ownerID  string
	recorded bool
}

func (e *euclidSession) SessionID() string { return e.board.ID }

// boardView is the JSON shape of a board. Only the count of legal pairs is
// exposed so the API does not hand out moves.
type boardView struct {
	ID          string      `json:"id"`
	Numbers     []int       `json:"numbers"`
	Seeds       [2]int      `json:"seeds"`
	PlayerMoves int         `json:"playerMoves"`
	BotMoves    int         `json:"botMoves"`
	Turn        game.Player `json:"turn,omitempty"`
	Phase       game.Phase  `json:"phase"`
	LegalPairs  int         `json:"legalPairs"`
	Over        bool        `json:"over"`
	Winner      game.Player `json:"winner,omitempty"`
}

func viewBoard(b *euclid.Board) boardView {
	return boardView{
		ID:          b.ID,
		Numbers:     b.Numbers(),
		Seeds:       b.Seeds,
		PlayerMoves: b.PlayerMoves,
		BotMoves:    b.BotMoves,
		Turn:        b.Turn(),
		Phase:       b.Phase(),
		LegalPairs:  len(b.LegalPairs()),
		Over:        b.Over,
		Winner:      b.Winner(),
	}
}

func (s *Server) mountEuclid(r chi.Router) {
	r.Route("/euclid", func(r chi.Router) {
		r.Post("/new", s.handleEuclidNew)
		r.Post("/move", s.handleEuclidMove)
		r.Get("/{id}", s.handleEuclidGet)
	})
}

func (s *Server) handleEuclidNew(w http.ResponseWriter, r *http.Request) {
	b, err := euclid.NewBoard(euclid.DefaultLow, euclid.DefaultHigh, s.src)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.startBoard(w, r, b)
}

// startBoard saves a new board session and writes its view.
func (s *Server) startBoard(w http.ResponseWriter, r *http.Request, b *euclid.Board) {
	sess := &euclidSession{board: b}
	if me := currentPlayer(r); me != nil {
		sess.ownerID = me.ID
	}
	if err := s.boards.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save board")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Debug().Str("boardId", b.ID).Ints("seeds", b.Seeds[:]).Int("live", s.boards.Len()).Msg("board started")
	writeJSON(w, http.StatusCreated, viewBoard(b))
}

func (s *Server) handleEuclidGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.boards.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	sess.mu.Lock()
	v := viewBoard(sess.board)
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, v)
}

// euclidMoveReq/Res payloads for POST /euclid/move.
type euclidMoveReq struct {
	BoardID string `json:"boardId"`
	A       int    `json:"a"`
	B       int    `json:"b"`
}
type euclidMoveRes struct {
	Difference    int          `json:"difference"`
	BotPair       *euclid.Pair `json:"botPair,omitempty"`
	BotDifference int          `json:"botDifference,omitempty"`
	Board         boardView    `json:"board"`
}

func (s *Server) handleEuclidMove(w http.ResponseWriter, r *http.Request) {
	var req euclidMoveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := s.boards.Get(r.Context(), req.BoardID)
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
	d, bot, err := sess.board.PlayTurn(req.A, req.B, s.src)
	if err != nil {
		writeGameError(w, err)
		return
	}
	res := euclidMoveRes{Difference: d, BotPair: bot}
	if bot != nil {
		res.BotDifference = bot.Difference()
	}
	s.finishBoard(r, sess)
	res.Board = viewBoard(sess.board)
	writeJSON(w, http.StatusOK, res)
}

// finishBoard records a finished board once. Callers hold sess.mu.
func (s *Server) finishBoard(r *http.Request, sess *euclidSession) {
	if !sess.board.Over || sess.recorded {
		return
	}
	sess.recorded = true
	s.recordOutcome(r.Context(), sess.ownerID, stats.GameEuclid, sess.board.ID, sess.board.Winner())
	forget(s.boards, sess.board.ID, s.cfg.FinishedTTL)
}
