// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily Euclid challenge:
//   - GET  /daily/euclid      → today's date and seed pair
//   - POST /daily/euclid/new  → start a board seeded with today's pair
//
// Seeds are derived from date + salt, so every player sees the same opening
// on a given UTC day. Moves go through the regular /euclid/move route.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/mathgames/internal/daily"
)

// dailyRes is returned by GET /daily/euclid.
type dailyRes struct {
	Date  string `json:"date"`
	Seeds [2]int `json:"seeds"`
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily/euclid", func(r chi.Router) {
		r.Get("/", s.handleDailyInfo)
		r.Post("/new", s.handleDailyNew)
	})
}

func (s *Server) handleDailyInfo(w http.ResponseWriter, r *http.Request) {
	now := s.cfg.Now()
	low, high := daily.Seeds(now, s.cfg.DailySalt)
	writeJSON(w, http.StatusOK, dailyRes{Date: daily.DateKey(now), Seeds: [2]int{low, high}})
}

func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	b, err := daily.Board(s.cfg.Now(), s.cfg.DailySalt)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.startBoard(w, r, b)
}
