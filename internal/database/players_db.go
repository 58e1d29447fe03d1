package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/soccer-rsvp/app/internal/models"
)

// CanonicalName normalizes a display name into the case-insensitive key
// used for player identity: lower-cased, with leading/trailing and
// repeated inner whitespace removed.
func CanonicalName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ResolvePlayer returns the player for the given display name, creating
// one if no player matches the canonical key. Repeated calls with
// different casing or spacing of the same name return the same player.
func ResolvePlayer(db *sql.DB, name string) (*models.Player, error) {
	display := strings.TrimSpace(name)
	if display == "" {
		return nil, errors.New("player name is empty")
	}
	canonical := CanonicalName(display)

	player, err := GetPlayerByCanonicalName(db, canonical)
	if err == nil {
		return player, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	stmt, err := db.Prepare("INSERT INTO players(name, canonical_name) VALUES(?, ?)")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	res, err := stmt.Exec(display, canonical)
	if err != nil {
		// Two requests can race on first login for the same name; the
		// UNIQUE index makes exactly one insert win, so re-read.
		if existing, lookupErr := GetPlayerByCanonicalName(db, canonical); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return GetPlayerByID(db, id)
}

// GetPlayerByCanonicalName retrieves a player by canonical key.
func GetPlayerByCanonicalName(db *sql.DB, canonical string) (*models.Player, error) {
	player := &models.Player{}
	row := db.QueryRow("SELECT id, name, canonical_name, created_at FROM players WHERE canonical_name = ?", canonical)
	err := row.Scan(&player.ID, &player.Name, &player.CanonicalName, &player.CreatedAt)
	if err != nil {
		return nil, err // This will include sql.ErrNoRows if not found
	}
	return player, nil
}

// GetPlayerByID retrieves a player by their ID.
func GetPlayerByID(db *sql.DB, id int64) (*models.Player, error) {
	player := &models.Player{}
	row := db.QueryRow("SELECT id, name, canonical_name, created_at FROM players WHERE id = ?", id)
	err := row.Scan(&player.ID, &player.Name, &player.CanonicalName, &player.CreatedAt)
	if err != nil {
		return nil, err // This will include sql.ErrNoRows if not found
	}
	return player, nil
}
