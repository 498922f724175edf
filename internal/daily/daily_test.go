package daily

import (
	"testing"
	"time"
)

func TestSeedsDeterministicPerDate(t *testing.T) {
	morning := time.Date(2026, 3, 14, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)

	l1, h1 := Seeds(morning, "salt")
	l2, h2 := Seeds(evening, "salt")
	if l1 != l2 || h1 != h2 {
		t.Fatalf("same date gave %d,%d and %d,%d", l1, h1, l2, h2)
	}
	if l1 < 10 || l1 > 50 || h1 < 60 || h1 > 100 {
		t.Fatalf("seeds %d,%d out of range", l1, h1)
	}
}

func TestSeedsVaryAcrossDaysAndSalts(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seen := map[[2]int]bool{}
	for i := 0; i < 30; i++ {
		l, h := Seeds(start.AddDate(0, 0, i), "salt")
		seen[[2]int{l, h}] = true
	}
	for pair := range seen {
		if pair[1] == 2*pair[0] {
			t.Fatalf("unplayable daily seeds %v", pair)
		}
	}
	if len(seen) < 20 {
		t.Fatalf("only %d distinct seed pairs over 30 days", len(seen))
	}

	l1, h1 := Seeds(start, "a")
	l2, h2 := Seeds(start, "b")
	if l1 == l2 && h1 == h2 {
		t.Fatalf("different salts gave identical seeds %d,%d", l1, h1)
	}
}

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	if got := DateKey(time.Date(2026, 5, 2, 8, 0, 0, 0, loc)); got != "2026-05-01" {
		t.Fatalf("DateKey=%s", got)
	}
}

func TestBoardUsesDailySeeds(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	bd, err := Board(now, "salt")
	if err != nil {
		t.Fatal(err)
	}
	l, h := Seeds(now, "salt")
	if bd.Seeds != [2]int{l, h} {
		t.Fatalf("board seeds %v want %d,%d", bd.Seeds, l, h)
	}
}
