// internal/httpserver/ws.go
//
// WebSocket paced play. The client sends one move at a time; the server
// answers with the state after the human move and then, after
// Config.ComputerDelay, with the state after the opponent's reply.
//
// Messages (both directions are JSON objects with an "action" field):
//   client → {"action":"move","move":2}        (nim)
//            {"action":"move","a":10,"b":70}   (euclid)
//            {"action":"state"}
//   server → {"action":"state","actor":...,"round"|"board":...}
//            {"action":"error","error":"..."}
//
// Errors never close the connection. The session lock is released during
// the pause; an HTTP move arriving then is rejected as out of turn.

package httpserver

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mathgames/internal/euclid"
	"github.com/robalobadob/mathgames/internal/game"
)

// wsIn is a client → server message.
type wsIn struct {
	Action string `json:"action"`
	Move   int    `json:"move,omitempty"`
	A      int    `json:"a,omitempty"`
	B      int    `json:"b,omitempty"`
}

// wsOut is a server → client message.
type wsOut struct {
	Action     string       `json:"action"`
	Actor      game.Player  `json:"actor,omitempty"`
	Move       int          `json:"move,omitempty"`
	Pair       *euclid.Pair `json:"pair,omitempty"`
	Difference int          `json:"difference,omitempty"`
	Round      *roundView   `json:"round,omitempty"`
	Board      *boardView   `json:"board,omitempty"`
	Error      string       `json:"error,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{CheckOrigin: s.checkOrigin}
}

// checkOrigin accepts the configured client origin, same-host pages, and
// non-browser clients that send no Origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == s.cfg.ClientOrigin {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

func (s *Server) pause() {
	if s.cfg.ComputerDelay > 0 {
		time.Sleep(s.cfg.ComputerDelay)
	}
}

func sendWSError(conn *websocket.Conn, err error) error {
	_, code := gameErrorStatus(err)
	return conn.WriteJSON(wsOut{Action: "error", Error: code})
}

// readLoop reads messages until the peer goes away, handing each to fn.
// fn returns a write error to stop the loop.
func readLoop(conn *websocket.Conn, id string, fn func(in wsIn) error) {
	for {
		var in wsIn
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("gameId", id).Msg("websocket read")
			}
			return
		}
		if err := fn(in); err != nil {
			log.Debug().Err(err).Str("gameId", id).Msg("websocket write")
			return
		}
	}
}

// -------------------------------- nim --------------------------------------

func (s *Server) handleNimWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.rounds.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	if !canPlay(r, sess.ownerID) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()
	log.Debug().Str("roundId", sess.round.ID).Msg("websocket opened")

	readLoop(conn, sess.round.ID, func(in wsIn) error {
		_, _ = s.rounds.Get(r.Context(), sess.round.ID) // refresh for the idle sweep
		switch in.Action {
		case "state":
			sess.mu.Lock()
			v := viewRound(sess.round)
			sess.mu.Unlock()
			return conn.WriteJSON(wsOut{Action: "state", Round: &v})
		case "move":
			sess.mu.Lock()
			err := sess.round.ApplyHumanMove(in.Move)
			s.finishRound(r, sess)
			v := viewRound(sess.round)
			sess.mu.Unlock()
			if err != nil {
				return sendWSError(conn, err)
			}
			if err := conn.WriteJSON(wsOut{Action: "state", Actor: game.PlayerHuman, Move: in.Move, Round: &v}); err != nil {
				return err
			}
			if v.Over {
				return nil
			}

			s.pause()
			sess.mu.Lock()
			m, err := sess.round.ApplyComputerMove(s.src)
			s.finishRound(r, sess)
			v = viewRound(sess.round)
			sess.mu.Unlock()
			if err != nil {
				return sendWSError(conn, err)
			}
			return conn.WriteJSON(wsOut{Action: "state", Actor: game.PlayerComputer, Move: m, Round: &v})
		default:
			return conn.WriteJSON(wsOut{Action: "error", Error: "unknown_action"})
		}
	})
}

// ------------------------------- euclid ------------------------------------

func (s *Server) handleEuclidWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.boards.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	if !canPlay(r, sess.ownerID) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()
	log.Debug().Str("boardId", sess.board.ID).Msg("websocket opened")

	readLoop(conn, sess.board.ID, func(in wsIn) error {
		_, _ = s.boards.Get(r.Context(), sess.board.ID) // refresh for the idle sweep
		switch in.Action {
		case "state":
			sess.mu.Lock()
			v := viewBoard(sess.board)
			sess.mu.Unlock()
			return conn.WriteJSON(wsOut{Action: "state", Board: &v})
		case "move":
			sess.mu.Lock()
			d, err := sess.board.Apply(in.A, in.B, game.PlayerHuman)
			s.finishBoard(r, sess)
			v := viewBoard(sess.board)
			sess.mu.Unlock()
			if err != nil {
				return sendWSError(conn, err)
			}
			p := euclid.NewPair(in.A, in.B)
			if err := conn.WriteJSON(wsOut{Action: "state", Actor: game.PlayerHuman, Pair: &p, Difference: d, Board: &v}); err != nil {
				return err
			}
			if v.Over {
				return nil
			}

			s.pause()
			sess.mu.Lock()
			bp, err := sess.board.ApplyBotMove(s.src)
			s.finishBoard(r, sess)
			v = viewBoard(sess.board)
			sess.mu.Unlock()
			if err != nil {
				return sendWSError(conn, err)
			}
			return conn.WriteJSON(wsOut{Action: "state", Actor: game.PlayerBot, Pair: &bp, Difference: bp.Difference(), Board: &v})
		default:
			return conn.WriteJSON(wsOut{Action: "error", Error: "unknown_action"})
		}
	})
}
