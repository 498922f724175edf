package httpserver

import (
	"bytes"
	"context"
	"errors"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/robalobadob/mathgames/internal/daily"
	"github.com/robalobadob/mathgames/internal/db"
	"github.com/robalobadob/mathgames/internal/euclid"
	"github.com/robalobadob/mathgames/internal/game"
)

// zeroSource always draws the first option and always "succeeds" coin flips.
type zeroSource struct{}

func (zeroSource) IntN(int) int     { return 0 }
func (zeroSource) Float64() float64 { return 0 }

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, name string, opts ...func(*Config)) *Server {
	t.Helper()
	conn, err := db.OpenMemory(name)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.Migrate(conn); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.ComputerDelay = 0
	cfg.Now = func() time.Time { return fixedNow }
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg, conn, zeroSource{})
}

func do(t *testing.T, s *Server, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status=%d want %d body=%s", rec.Code, status, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "http_health")
	rec := do(t, s, http.MethodGet, "/health", nil)
	wantStatus(t, rec, http.StatusOK)
	if h := decode[map[string]any](t, rec); h["ok"] != true || h["rounds"] != float64(0) || h["boards"] != float64(0) {
		t.Fatalf("health=%v", h)
	}
	wantStatus(t, do(t, s, http.MethodGet, "/nope", nil), http.StatusNotFound)
}

func TestNimRound_HardSumToTarget(t *testing.T) {
	s := newTestServer(t, "http_nim")

	rec := do(t, s, http.MethodPost, "/nim/new", map[string]any{"mode": "sum", "difficulty": "hard"})
	wantStatus(t, rec, http.StatusCreated)
	round := decode[roundView](t, rec)
	if round.Target != 21 || round.Current != 0 || round.Phase != game.PhaseNotStarted || len(round.LegalMoves) != 3 {
		t.Fatalf("new round=%+v", round)
	}

	wantStatus(t, do(t, s, http.MethodPost, "/nim/move", map[string]any{"roundId": round.ID, "move": 4}), http.StatusBadRequest)

	trace := []struct{ human, reply, after int }{
		{3, 2, 5}, {1, 3, 9}, {2, 2, 13}, {3, 1, 17}, {1, 3, 21},
	}
	var res nimMoveRes
	for i, step := range trace {
		rec = do(t, s, http.MethodPost, "/nim/move", map[string]any{"roundId": round.ID, "move": step.human})
		wantStatus(t, rec, http.StatusOK)
		res = decode[nimMoveRes](t, rec)
		if res.ComputerMove != step.reply || res.Round.Current != step.after {
			t.Fatalf("step %d: %+v", i, res)
		}
	}
	if !res.Round.Over || res.Round.Winner != game.PlayerComputer || len(res.Round.LegalMoves) != 0 {
		t.Fatalf("final round=%+v", res.Round)
	}

	rec = do(t, s, http.MethodPost, "/nim/move", map[string]any{"roundId": round.ID, "move": 1})
	wantStatus(t, rec, http.StatusConflict)
	if body := decode[map[string]string](t, rec); body["error"] != "game_over" {
		t.Fatalf("error=%v", body)
	}

	rec = do(t, s, http.MethodGet, "/nim/"+round.ID, nil)
	wantStatus(t, rec, http.StatusOK)
	if got := decode[roundView](t, rec); got.Phase != game.PhaseOver || got.HumanMoves != 5 {
		t.Fatalf("GET round=%+v", got)
	}
}

func TestNimNew_Validation(t *testing.T) {
	s := newTestServer(t, "http_nim_validation")
	cases := []map[string]any{
		{"mode": "triangle", "difficulty": "easy"},
		{"mode": "sum", "difficulty": "legendary"},
		{"mode": "chip", "difficulty": "easy", "chipStart": 1},
	}
	for _, body := range cases {
		rec := do(t, s, http.MethodPost, "/nim/new", body)
		wantStatus(t, rec, http.StatusBadRequest)
		if got := decode[map[string]string](t, rec); got["error"] != "invalid_configuration" {
			t.Fatalf("%v: error=%v", body, got)
		}
	}
	wantStatus(t, do(t, s, http.MethodGet, "/nim/does-not-exist", nil), http.StatusNotFound)
	wantStatus(t, do(t, s, http.MethodPost, "/nim/move", map[string]any{"roundId": "nope", "move": 1}), http.StatusNotFound)
}

func TestEuclidBoard(t *testing.T) {
	s := newTestServer(t, "http_euclid")

	rec := do(t, s, http.MethodPost, "/euclid/new", nil)
	wantStatus(t, rec, http.StatusCreated)
	board := decode[boardView](t, rec)
	if board.Seeds != [2]int{10, 60} || board.LegalPairs != 1 {
		t.Fatalf("new board=%+v", board)
	}

	wantStatus(t, do(t, s, http.MethodPost, "/euclid/move", map[string]any{"boardId": board.ID, "a": 10, "b": 11}), http.StatusBadRequest)

	rec = do(t, s, http.MethodPost, "/euclid/move", map[string]any{"boardId": board.ID, "a": 60, "b": 10})
	wantStatus(t, rec, http.StatusOK)
	res := decode[euclidMoveRes](t, rec)
	if res.Difference != 50 || res.BotPair == nil || *res.BotPair != (euclid.Pair{A: 10, B: 50}) || res.BotDifference != 40 {
		t.Fatalf("move res=%+v", res)
	}
	want := []int{10, 40, 50, 60}
	if len(res.Board.Numbers) != len(want) {
		t.Fatalf("numbers=%v", res.Board.Numbers)
	}
	for i := range want {
		if res.Board.Numbers[i] != want[i] {
			t.Fatalf("numbers=%v", res.Board.Numbers)
		}
	}

	// play it out: the board always ends on multiples of gcd(10,60)=10
	for !res.Board.Over {
		nums := res.Board.Numbers
		moved := false
		for i := 0; i < len(nums) && !moved; i++ {
			for j := i + 1; j < len(nums) && !moved; j++ {
				rec = do(t, s, http.MethodPost, "/euclid/move", map[string]any{"boardId": board.ID, "a": nums[i], "b": nums[j]})
				if rec.Code == http.StatusOK {
					res = decode[euclidMoveRes](t, rec)
					moved = true
				}
			}
		}
		if !moved {
			t.Fatalf("no legal pair found on %v", nums)
		}
	}
	if len(res.Board.Numbers) != 6 || res.Board.Winner != game.PlayerTie {
		t.Fatalf("final board=%+v", res.Board)
	}
}

func TestDailyEuclid(t *testing.T) {
	s := newTestServer(t, "http_daily")
	rec := do(t, s, http.MethodGet, "/daily/euclid", nil)
	wantStatus(t, rec, http.StatusOK)
	info := decode[dailyRes](t, rec)
	low, high := daily.Seeds(fixedNow, DefaultConfig().DailySalt)
	if info.Date != "2026-10-19" || info.Seeds != [2]int{low, high} {
		t.Fatalf("daily=%+v", info)
	}

	rec = do(t, s, http.MethodPost, "/daily/euclid/new", nil)
	wantStatus(t, rec, http.StatusCreated)
	if b := decode[boardView](t, rec); b.Seeds != info.Seeds {
		t.Fatalf("daily board seeds=%v want %v", b.Seeds, info.Seeds)
	}
}

func authCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == DefaultConfig().CookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no auth cookie in %v", rec.Result().Cookies())
	return nil
}

func TestAuthAndScoreboard(t *testing.T) {
	s := newTestServer(t, "http_auth")
	creds := map[string]string{"username": "euclid_fan", "password": "difference"}

	rec := do(t, s, http.MethodPost, "/auth/signup", creds)
	wantStatus(t, rec, http.StatusOK)
	cookie := authCookie(t, rec)
	wantStatus(t, do(t, s, http.MethodPost, "/auth/signup", creds), http.StatusConflict)
	wantStatus(t, do(t, s, http.MethodPost, "/auth/signup", map[string]string{"username": "x", "password": "short"}), http.StatusBadRequest)

	wantStatus(t, do(t, s, http.MethodGet, "/auth/me", nil), http.StatusUnauthorized)
	rec = do(t, s, http.MethodGet, "/auth/me", nil, cookie)
	wantStatus(t, rec, http.StatusOK)
	if me := decode[authPlayer](t, rec); me.Username != "euclid_fan" {
		t.Fatalf("me=%+v", me)
	}

	wantStatus(t, do(t, s, http.MethodPost, "/auth/login", map[string]string{"username": "euclid_fan", "password": "wrong-password"}), http.StatusUnauthorized)
	rec = do(t, s, http.MethodPost, "/auth/login", map[string]string{"username": "EUCLID_FAN", "password": "difference"})
	wantStatus(t, rec, http.StatusOK)
	cookie = authCookie(t, rec)

	// chip from 3: human takes 2 and finishes with an odd count, so loses
	rec = do(t, s, http.MethodPost, "/nim/new", map[string]any{"mode": "chip", "difficulty": "hard", "chipStart": 3}, cookie)
	wantStatus(t, rec, http.StatusCreated)
	round := decode[roundView](t, rec)

	wantStatus(t, do(t, s, http.MethodPost, "/nim/move", map[string]any{"roundId": round.ID, "move": 2}), http.StatusForbidden)
	rec = do(t, s, http.MethodPost, "/nim/move", map[string]any{"roundId": round.ID, "move": 2}, cookie)
	wantStatus(t, rec, http.StatusOK)
	if res := decode[nimMoveRes](t, rec); !res.Round.Over || res.Round.Winner != game.PlayerComputer {
		t.Fatalf("chip round=%+v", res.Round)
	}

	rec = do(t, s, http.MethodGet, "/stats/me", nil, cookie)
	wantStatus(t, rec, http.StatusOK)
	rows := decode[[]map[string]any](t, rec)
	if len(rows) != 1 || rows[0]["game"] != "nim" || rows[0]["played"] != float64(1) || rows[0]["losses"] != float64(1) {
		t.Fatalf("stats=%v", rows)
	}

	rec = do(t, s, http.MethodGet, "/stats/leaderboard?game=nim", nil)
	wantStatus(t, rec, http.StatusOK)
	lb := decode[map[string]any](t, rec)
	if top, _ := lb["top"].([]any); len(top) != 1 {
		t.Fatalf("leaderboard=%v", lb)
	}
	wantStatus(t, do(t, s, http.MethodGet, "/stats/leaderboard?game=chess", nil), http.StatusBadRequest)

	rec = do(t, s, http.MethodPost, "/auth/logout", nil, cookie)
	wantStatus(t, rec, http.StatusOK)
}

func signup(t *testing.T, s *Server, username string) *http.Cookie {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/auth/signup", map[string]string{"username": username, "password": "difference"})
	wantStatus(t, rec, http.StatusOK)
	return authCookie(t, rec)
}

func TestNimMove_OwnershipAndTurn(t *testing.T) {
	s := newTestServer(t, "http_owner")
	alice := signup(t, s, "alice")
	bob := signup(t, s, "bob")

	rec := do(t, s, http.MethodPost, "/nim/new", map[string]any{"mode": "sum", "difficulty": "hard"}, alice)
	wantStatus(t, rec, http.StatusCreated)
	round := decode[roundView](t, rec)

	for name, cookies := range map[string][]*http.Cookie{"other player": {bob}, "guest": nil} {
		rec = do(t, s, http.MethodPost, "/nim/move", map[string]any{"roundId": round.ID, "move": 1}, cookies...)
		wantStatus(t, rec, http.StatusForbidden)
		if body := decode[map[string]string](t, rec); body["error"] != "forbidden" {
			t.Fatalf("%s: error=%v", name, body)
		}
	}

	// a human move already applied (as during a WebSocket pause) leaves the
	// computer to move, so another human move is out of turn
	sess, err := s.rounds.Get(context.Background(), round.ID)
	if err != nil {
		t.Fatal(err)
	}
	sess.mu.Lock()
	err = sess.round.ApplyHumanMove(3)
	sess.mu.Unlock()
	if err != nil {
		t.Fatal(err)
	}

	rec = do(t, s, http.MethodPost, "/nim/move", map[string]any{"roundId": round.ID, "move": 1}, alice)
	wantStatus(t, rec, http.StatusConflict)
	if body := decode[map[string]string](t, rec); body["error"] != "out_of_turn" {
		t.Fatalf("error=%v", body)
	}
	rec = do(t, s, http.MethodGet, "/nim/"+round.ID, nil)
	if got := decode[roundView](t, rec); got.Current != 3 || got.HumanMoves != 1 || got.Turn != game.PlayerComputer || got.LastMover != game.PlayerHuman {
		t.Fatalf("round changed by rejected move: %+v", got)
	}
}

func TestSignup_InternalFailureIs500(t *testing.T) {
	s := newTestServer(t, "http_signup_closed")
	_ = s.db.Close()

	rec := do(t, s, http.MethodPost, "/auth/signup", map[string]string{"username": "closed_db", "password": "difference"})
	wantStatus(t, rec, http.StatusInternalServerError)
	if body := decode[map[string]string](t, rec); body["error"] != "signup_failed" {
		t.Fatalf("error=%v", body)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	s := newTestServer(t, "http_unique")
	insert := `INSERT INTO players (id, username, password_hash, created_at) VALUES (?,?,?,?)`
	if _, err := s.db.Exec(insert, "p1", "racer", "x", "2026-01-01T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	_, err := s.db.Exec(insert, "p2", "RACER", "x", "2026-01-01T00:00:00Z")
	if !isUniqueViolation(err) {
		t.Fatalf("duplicate username not detected: %v", err)
	}
	if isUniqueViolation(errors.New("disk full")) {
		t.Fatal("plain error reported as unique violation")
	}
}

func TestFinishedSessionsAreEvicted(t *testing.T) {
	s := newTestServer(t, "http_evict", func(c *Config) { c.FinishedTTL = 10 * time.Millisecond })

	rec := do(t, s, http.MethodPost, "/nim/new", map[string]any{"mode": "chip", "difficulty": "hard", "chipStart": 3})
	wantStatus(t, rec, http.StatusCreated)
	round := decode[roundView](t, rec)
	wantStatus(t, do(t, s, http.MethodPost, "/nim/move", map[string]any{"roundId": round.ID, "move": 2}), http.StatusOK)

	deadline := time.Now().Add(2 * time.Second)
	for s.rounds.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("finished round was never evicted")
		}
		time.Sleep(5 * time.Millisecond)
	}
	wantStatus(t, do(t, s, http.MethodGet, "/nim/"+round.ID, nil), http.StatusNotFound)
}

func TestSweepIdleDropsUntouchedSessions(t *testing.T) {
	s := newTestServer(t, "http_sweep")
	wantStatus(t, do(t, s, http.MethodPost, "/nim/new", map[string]any{"mode": "sum", "difficulty": "easy"}), http.StatusCreated)
	wantStatus(t, do(t, s, http.MethodPost, "/euclid/new", nil), http.StatusCreated)

	s.sweepIdle(context.Background(), time.Now())
	if s.rounds.Len() != 1 || s.boards.Len() != 1 {
		t.Fatalf("fresh sessions swept: rounds=%d boards=%d", s.rounds.Len(), s.boards.Len())
	}

	s.sweepIdle(context.Background(), time.Now().Add(time.Hour))
	if s.rounds.Len() != 0 || s.boards.Len() != 0 {
		t.Fatalf("idle sessions kept: rounds=%d boards=%d", s.rounds.Len(), s.boards.Len())
	}
}
