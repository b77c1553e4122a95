package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(start time.Time, scores ...int) Run {
	run := Run{
		StartedAt: start,
		EndedAt:   start.Add(30 * time.Second),
		Ticks:     1800,
		Seed:      7,
		AIDir:     "ais",
		Mode:      "parallel",
	}
	names := []string{"player", "alpha", "bravo"}
	for i, score := range scores {
		run.Players = append(run.Players, RunPlayer{
			PlayerID:    i,
			Username:    names[i%len(names)],
			IsAI:        i != 0,
			Score:       score,
			Deaths:      1,
			FinalLength: 4 + score,
		})
	}
	return run
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieveRun(t *testing.T) {
	store := openTestStore(t)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := sampleRun(start, 3, 5, 0)
	run.Players[2].Failure = "controller bravo: protocol violation"

	id, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if id == "" {
		t.Fatal("SaveRun() returned an empty id")
	}

	got, err := store.RunByID(id)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("RunByID() found nothing")
	}
	if got.Ticks != 1800 || got.Seed != 7 || got.Mode != "parallel" || got.AIDir != "ais" {
		t.Errorf("run = %+v", got)
	}
	if !got.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, expected %v", got.StartedAt, start)
	}
	if got.Duration() != 30*time.Second {
		t.Errorf("Duration() = %v, expected 30s", got.Duration())
	}

	if len(got.Players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(got.Players))
	}
	if got.Players[0].Username != "player" || got.Players[0].IsAI {
		t.Errorf("player 0 = %+v", got.Players[0])
	}
	if got.Players[1].Score != 5 || !got.Players[1].IsAI || got.Players[1].FinalLength != 9 {
		t.Errorf("player 1 = %+v", got.Players[1])
	}
	if got.Players[2].Failure == "" {
		t.Error("failure not stored")
	}
}

func TestStoreRunByIDMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.RunByID("does-not-exist")
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("RunByID() = %+v, expected nil", got)
	}
}

func TestStoreRecentRunsOrder(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := store.SaveRun(sampleRun(base.Add(time.Duration(i)*time.Hour), i)); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	runs, err := store.RecentRuns(3)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs with limit, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if !runs[i-1].StartedAt.After(runs[i].StartedAt) {
			t.Errorf("runs not newest first: %v then %v", runs[i-1].StartedAt, runs[i].StartedAt)
		}
	}
}

func TestStoreLeaderboard(t *testing.T) {
	store := openTestStore(t)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	store.SaveRun(sampleRun(start, 1, 9, 4))
	store.SaveRun(sampleRun(start.Add(time.Minute), 12, 2, 6))

	board, err := store.Leaderboard(10)
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	if len(board) != 3 {
		t.Fatalf("Expected 3 usernames, got %d", len(board))
	}

	// player best 12, alpha best 9, bravo best 6
	want := []string{"player", "alpha", "bravo"}
	for i, name := range want {
		if board[i].Username != name {
			t.Errorf("rank %d = %s, expected %s", i+1, board[i].Username, name)
		}
	}
	if board[0].Runs != 2 || board[0].TotalScore != 13 || board[0].IsAI {
		t.Errorf("player entry = %+v", board[0])
	}
	if !board[1].IsAI || board[1].BestScore != 9 {
		t.Errorf("alpha entry = %+v", board[1])
	}
}

func TestStoreSummaryAndClear(t *testing.T) {
	store := openTestStore(t)

	sum, err := store.GetSummary()
	if err != nil {
		t.Fatalf("GetSummary() failed: %v", err)
	}
	if sum.Runs != 0 || !sum.LastPlayed.IsZero() {
		t.Errorf("empty summary = %+v", sum)
	}

	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	store.SaveRun(sampleRun(start, 1))
	store.SaveRun(sampleRun(start.Add(time.Hour), 2))

	sum, err = store.GetSummary()
	if err != nil {
		t.Fatalf("GetSummary() failed: %v", err)
	}
	if sum.Runs != 2 || sum.TotalTicks != 3600 {
		t.Errorf("summary = %+v", sum)
	}
	if !sum.LastPlayed.Equal(start.Add(time.Hour)) {
		t.Errorf("LastPlayed = %v", sum.LastPlayed)
	}

	if err := store.ClearRuns(); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}
	runs, _ := store.RecentRuns(10)
	board, _ := store.Leaderboard(10)
	if len(runs) != 0 || len(board) != 0 {
		t.Errorf("data left after ClearRuns(): %d runs, %d leaders", len(runs), len(board))
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	for _, v := range []any{want, "2026-05-06 07:08:09", "2026-05-06 07:08:09.000", "2026-05-06T07:08:09Z"} {
		if got := parseTime(v); !got.Equal(want) {
			t.Errorf("parseTime(%v) = %v", v, got)
		}
	}
	if !parseTime(nil).IsZero() {
		t.Error("parseTime(nil) should be zero")
	}
}
