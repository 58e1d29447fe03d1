package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/soccer-rsvp/app/internal/models"
)

func setupTestDBForRSVPs(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	db, err := InitDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	teardown := func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	}
	return db, teardown
}

func createTestPlayer(t *testing.T, db *sql.DB, name string) *models.Player {
	t.Helper()
	player, err := ResolvePlayer(db, name)
	if err != nil {
		t.Fatalf("Failed to create test player %s: %v", name, err)
	}
	return player
}

func createTestGame(t *testing.T, db *sql.DB, uid string, start time.Time) *models.Game {
	t.Helper()
	game := testGame(uid, start)
	if err := UpsertGames(db, []*models.Game{game}); err != nil {
		t.Fatalf("Failed to create test game %s: %v", uid, err)
	}
	stored, err := GetGameByUID(db, uid)
	if err != nil {
		t.Fatalf("Failed to reload test game %s: %v", uid, err)
	}
	return stored
}

func TestSetAndGetRSVP(t *testing.T) {
	db, teardown := setupTestDBForRSVPs(t)
	defer teardown()

	player := createTestPlayer(t, db, "Jo")
	game := createTestGame(t, db, "game-1", time.Now().Add(24*time.Hour))

	if err := SetRSVP(db, player.ID, game.ID, models.RSVPStatusIn); err != nil {
		t.Fatalf("SetRSVP() error = %v", err)
	}

	rsvp, err := GetRSVP(db, player.ID, game.ID)
	if err != nil {
		t.Fatalf("GetRSVP() error = %v", err)
	}
	if rsvp.Status != models.RSVPStatusIn {
		t.Errorf("RSVP status got = %v, want %v", rsvp.Status, models.RSVPStatusIn)
	}
	if rsvp.PlayerName != player.Name {
		t.Errorf("RSVP PlayerName got = %v, want %v", rsvp.PlayerName, player.Name)
	}
	if rsvp.CreatedAt.IsZero() || rsvp.UpdatedAt.IsZero() {
		t.Errorf("RSVP CreatedAt or UpdatedAt is zero")
	}
}

func TestLastWriteWins(t *testing.T) {
	db, teardown := setupTestDBForRSVPs(t)
	defer teardown()

	player := createTestPlayer(t, db, "Jo")
	game := createTestGame(t, db, "game-1", time.Now().Add(24*time.Hour))

	if err := SetRSVP(db, player.ID, game.ID, models.RSVPStatusIn); err != nil {
		t.Fatalf("SetRSVP(In) error = %v", err)
	}
	if err := SetRSVP(db, player.ID, game.ID, models.RSVPStatusOut); err != nil {
		t.Fatalf("SetRSVP(Out) error = %v", err)
	}

	rsvp, err := GetRSVP(db, player.ID, game.ID)
	if err != nil {
		t.Fatalf("GetRSVP() error = %v", err)
	}
	if rsvp.Status != models.RSVPStatusOut {
		t.Errorf("RSVP status after overwrite = %v, want %v", rsvp.Status, models.RSVPStatusOut)
	}

	// Exactly one row per (player, game) pair.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM rsvps WHERE player_id = ? AND game_id = ?", player.ID, game.ID).Scan(&count); err != nil {
		t.Fatalf("counting rsvps: %v", err)
	}
	if count != 1 {
		t.Errorf("rsvp rows for pair = %d, want 1", count)
	}

	// The flipped player no longer counts as In.
	in, out, err := CountRSVPs(db, game.ID)
	if err != nil {
		t.Fatalf("CountRSVPs() error = %v", err)
	}
	if in != 0 || out != 1 {
		t.Errorf("CountRSVPs() = (%d, %d), want (0, 1)", in, out)
	}
}

func TestCountRSVPsMatchesStoredState(t *testing.T) {
	db, teardown := setupTestDBForRSVPs(t)
	defer teardown()

	game := createTestGame(t, db, "game-1", time.Now().Add(24*time.Hour))
	other := createTestGame(t, db, "game-2", time.Now().Add(48*time.Hour))

	names := []string{"A", "B", "C", "D"}
	statuses := []string{models.RSVPStatusIn, models.RSVPStatusIn, models.RSVPStatusOut, models.RSVPStatusIn}
	for i, name := range names {
		player := createTestPlayer(t, db, name)
		if err := SetRSVP(db, player.ID, game.ID, statuses[i]); err != nil {
			t.Fatalf("SetRSVP() error = %v", err)
		}
	}

	in, out, err := CountRSVPs(db, game.ID)
	if err != nil {
		t.Fatalf("CountRSVPs() error = %v", err)
	}
	if in != 3 || out != 1 {
		t.Errorf("CountRSVPs() = (%d, %d), want (3, 1)", in, out)
	}

	// Another game's count is independent.
	in, out, err = CountRSVPs(db, other.ID)
	if err != nil {
		t.Fatalf("CountRSVPs() error = %v", err)
	}
	if in != 0 || out != 0 {
		t.Errorf("CountRSVPs() for untouched game = (%d, %d), want (0, 0)", in, out)
	}
}

func TestSetRSVPUnknownReference(t *testing.T) {
	db, teardown := setupTestDBForRSVPs(t)
	defer teardown()

	player := createTestPlayer(t, db, "Jo")
	game := createTestGame(t, db, "game-1", time.Now().Add(24*time.Hour))

	if err := SetRSVP(db, player.ID, 99999, models.RSVPStatusIn); err != ErrUnknownReference {
		t.Errorf("SetRSVP() with unknown game, got err = %v, want ErrUnknownReference", err)
	}
	if err := SetRSVP(db, 99999, game.ID, models.RSVPStatusIn); err != ErrUnknownReference {
		t.Errorf("SetRSVP() with unknown player, got err = %v, want ErrUnknownReference", err)
	}
}

func TestSetRSVPUnknownReferenceOnFreshConnection(t *testing.T) {
	// A file-backed database gives the pool real extra connections;
	// enforcement must hold on all of them, not just the first.
	db, err := InitDB(filepath.Join(t.TempDir(), "rsvp.db"))
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	defer db.Close()

	// Hold the warm connection so SetRSVP runs on a fresh one.
	conn, err := db.Conn(context.Background())
	if err != nil {
		t.Fatalf("Failed to check out a connection: %v", err)
	}
	defer conn.Close()

	if err := SetRSVP(db, 99999, 99999, models.RSVPStatusIn); err != ErrUnknownReference {
		t.Errorf("SetRSVP() on a fresh connection, got err = %v, want ErrUnknownReference", err)
	}
}

func TestGetRSVPUnset(t *testing.T) {
	db, teardown := setupTestDBForRSVPs(t)
	defer teardown()

	player := createTestPlayer(t, db, "Jo")
	game := createTestGame(t, db, "game-1", time.Now().Add(24*time.Hour))

	if _, err := GetRSVP(db, player.ID, game.ID); err != sql.ErrNoRows {
		t.Errorf("GetRSVP() with no RSVP, got err = %v, want sql.ErrNoRows", err)
	}
}

func TestGetRSVPsForGame(t *testing.T) {
	db, teardown := setupTestDBForRSVPs(t)
	defer teardown()

	game := createTestGame(t, db, "game-1", time.Now().Add(24*time.Hour))

	expected := map[string]string{
		"Ana": models.RSVPStatusIn,
		"Ben": models.RSVPStatusOut,
		"Cal": models.RSVPStatusIn,
	}
	for name, status := range expected {
		player := createTestPlayer(t, db, name)
		if err := SetRSVP(db, player.ID, game.ID, status); err != nil {
			t.Fatalf("SetRSVP() error = %v", err)
		}
	}

	rsvps, err := GetRSVPsForGame(db, game.ID)
	if err != nil {
		t.Fatalf("GetRSVPsForGame() error = %v", err)
	}
	if len(rsvps) != len(expected) {
		t.Fatalf("GetRSVPsForGame() count = %d, want %d", len(rsvps), len(expected))
	}
	for _, rsvp := range rsvps {
		want, ok := expected[rsvp.PlayerName]
		if !ok {
			t.Errorf("GetRSVPsForGame() unexpected player %q", rsvp.PlayerName)
			continue
		}
		if rsvp.Status != want {
			t.Errorf("GetRSVPsForGame() status for %q = %s, want %s", rsvp.PlayerName, rsvp.Status, want)
		}
	}
}

func TestGetRSVPsForPlayer(t *testing.T) {
	db, teardown := setupTestDBForRSVPs(t)
	defer teardown()

	player := createTestPlayer(t, db, "Jo")
	past := createTestGame(t, db, "past-game", time.Now().Add(-24*time.Hour))
	future := createTestGame(t, db, "future-game", time.Now().Add(24*time.Hour))

	if err := SetRSVP(db, player.ID, past.ID, models.RSVPStatusIn); err != nil {
		t.Fatalf("SetRSVP() error = %v", err)
	}
	if err := SetRSVP(db, player.ID, future.ID, models.RSVPStatusOut); err != nil {
		t.Fatalf("SetRSVP() error = %v", err)
	}

	entries, err := GetRSVPsForPlayer(db, player.ID)
	if err != nil {
		t.Fatalf("GetRSVPsForPlayer() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("GetRSVPsForPlayer() count = %d, want 2", len(entries))
	}
	// Ordered by game date, soonest first.
	if entries[0].Game.UID != "past-game" || entries[1].Game.UID != "future-game" {
		t.Errorf("GetRSVPsForPlayer() order = [%s, %s], want game-date order", entries[0].Game.UID, entries[1].Game.UID)
	}
	if entries[0].RSVP.Status != models.RSVPStatusIn || entries[1].RSVP.Status != models.RSVPStatusOut {
		t.Errorf("GetRSVPsForPlayer() statuses = [%s, %s], want [In, Out]", entries[0].RSVP.Status, entries[1].RSVP.Status)
	}
}
