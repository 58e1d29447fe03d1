package database

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/soccer-rsvp/app/internal/models"
)

// ErrUnknownReference is returned when an RSVP write names a player or
// game that does not exist. Callers resolve the player first and make
// sure the game has been imported.
var ErrUnknownReference = errors.New("unknown player or game reference")

// SetRSVP inserts a new RSVP or overwrites an existing one for the
// (player, game) pair. Exactly one RSVP exists per pair at any time;
// the last write wins.
func SetRSVP(db *sql.DB, playerID, gameID int64, status string) error {
	stmt, err := db.Prepare(`
		INSERT INTO rsvps (player_id, game_id, status, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(player_id, game_id) DO UPDATE SET
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(playerID, gameID, status)
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return ErrUnknownReference
		}
		return err
	}
	return nil
}

// GetRSVP retrieves a player's RSVP for a game. sql.ErrNoRows means the
// player has not RSVP'd yet.
func GetRSVP(db *sql.DB, playerID, gameID int64) (*models.RSVP, error) {
	rsvp := &models.RSVP{}
	row := db.QueryRow(`
		SELECT r.id, r.player_id, r.game_id, r.status, r.created_at, r.updated_at, p.name
		FROM rsvps r
		JOIN players p ON r.player_id = p.id
		WHERE r.player_id = ? AND r.game_id = ?
	`, playerID, gameID)

	err := row.Scan(&rsvp.ID, &rsvp.PlayerID, &rsvp.GameID, &rsvp.Status, &rsvp.CreatedAt, &rsvp.UpdatedAt, &rsvp.PlayerName)
	if err != nil {
		return nil, err // This will include sql.ErrNoRows if not found
	}
	return rsvp, nil
}

// CountRSVPs returns how many players are currently In and Out for a
// game. The counts are recomputed from stored rows on every call.
func CountRSVPs(db *sql.DB, gameID int64) (in int, out int, err error) {
	row := db.QueryRow("SELECT COUNT(*) FROM rsvps WHERE game_id = ? AND status = ?", gameID, models.RSVPStatusIn)
	if err = row.Scan(&in); err != nil {
		return 0, 0, err
	}
	row = db.QueryRow("SELECT COUNT(*) FROM rsvps WHERE game_id = ? AND status = ?", gameID, models.RSVPStatusOut)
	if err = row.Scan(&out); err != nil {
		return 0, 0, err
	}
	return in, out, nil
}

// GetRSVPsForGame retrieves all RSVPs for a game with player names,
// earliest responders first.
func GetRSVPsForGame(db *sql.DB, gameID int64) ([]*models.RSVP, error) {
	rows, err := db.Query(`
		SELECT r.id, r.player_id, r.game_id, r.status, r.created_at, r.updated_at, p.name
		FROM rsvps r
		JOIN players p ON r.player_id = p.id
		WHERE r.game_id = ?
		ORDER BY r.updated_at ASC, r.id ASC
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rsvps []*models.RSVP
	for rows.Next() {
		rsvp := &models.RSVP{}
		err := rows.Scan(&rsvp.ID, &rsvp.PlayerID, &rsvp.GameID, &rsvp.Status, &rsvp.CreatedAt, &rsvp.UpdatedAt, &rsvp.PlayerName)
		if err != nil {
			return nil, err
		}
		rsvps = append(rsvps, rsvp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rsvps, nil
}

// GetRSVPsForPlayer retrieves a player's RSVPs joined with their games,
// soonest game first. Powers the per-player history view.
func GetRSVPsForPlayer(db *sql.DB, playerID int64) ([]*models.PlayerGameRSVP, error) {
	rows, err := db.Query(`
		SELECT r.id, r.player_id, r.game_id, r.status, r.created_at, r.updated_at,
			g.id, g.uid, g.title, g.opponent, g.result, g.location, g.game_datetime, g.created_at, g.updated_at
		FROM rsvps r
		JOIN games g ON r.game_id = g.id
		WHERE r.player_id = ?
		ORDER BY g.game_datetime ASC
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PlayerGameRSVP
	for rows.Next() {
		entry := &models.PlayerGameRSVP{}
		err := rows.Scan(
			&entry.RSVP.ID, &entry.RSVP.PlayerID, &entry.RSVP.GameID, &entry.RSVP.Status, &entry.RSVP.CreatedAt, &entry.RSVP.UpdatedAt,
			&entry.Game.ID, &entry.Game.UID, &entry.Game.Title, &entry.Game.Opponent, &entry.Game.Result, &entry.Game.Location,
			&entry.Game.GameDateTime, &entry.Game.CreatedAt, &entry.Game.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
