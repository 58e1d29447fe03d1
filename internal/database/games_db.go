package database

import (
	"database/sql"
	"time"

	"github.com/soccer-rsvp/app/internal/models"
)

// upsertGameSQL is idempotent on the calendar UID: re-importing an
// identical feed matches the WHERE clause on no row and changes nothing.
const upsertGameSQL = `
	INSERT INTO games (uid, title, opponent, result, location, game_datetime)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(uid) DO UPDATE SET
		title = excluded.title,
		opponent = excluded.opponent,
		result = excluded.result,
		location = excluded.location,
		game_datetime = excluded.game_datetime,
		updated_at = CURRENT_TIMESTAMP
	WHERE title <> excluded.title
		OR opponent <> excluded.opponent
		OR result <> excluded.result
		OR location <> excluded.location
		OR game_datetime <> excluded.game_datetime
`

// UpsertGames applies a batch of imported games in a single transaction
// so a failed import never partially applies.
func UpsertGames(db *sql.DB, games []*models.Game) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertGameSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, game := range games {
		_, err := stmt.Exec(game.UID, game.Title, game.Opponent, game.Result, game.Location, game.GameDateTime.UTC())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetGameByID retrieves a game by its ID.
func GetGameByID(db *sql.DB, id int64) (*models.Game, error) {
	game := &models.Game{}
	row := db.QueryRow("SELECT id, uid, title, opponent, result, location, game_datetime, created_at, updated_at FROM games WHERE id = ?", id)
	err := row.Scan(&game.ID, &game.UID, &game.Title, &game.Opponent, &game.Result, &game.Location, &game.GameDateTime, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return nil, err // This will include sql.ErrNoRows if not found
	}
	return game, nil
}

// GetGameByUID retrieves a game by its calendar event UID.
func GetGameByUID(db *sql.DB, uid string) (*models.Game, error) {
	game := &models.Game{}
	row := db.QueryRow("SELECT id, uid, title, opponent, result, location, game_datetime, created_at, updated_at FROM games WHERE uid = ?", uid)
	err := row.Scan(&game.ID, &game.UID, &game.Title, &game.Opponent, &game.Result, &game.Location, &game.GameDateTime, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return game, nil
}

// GetUpcomingGames retrieves games starting at or after now, soonest first.
func GetUpcomingGames(db *sql.DB, now time.Time) ([]*models.Game, error) {
	return queryGames(db,
		"SELECT id, uid, title, opponent, result, location, game_datetime, created_at, updated_at FROM games WHERE game_datetime >= ? ORDER BY game_datetime ASC",
		now.UTC())
}

// GetPastGames retrieves games that have already started, most recent first.
func GetPastGames(db *sql.DB, now time.Time) ([]*models.Game, error) {
	return queryGames(db,
		"SELECT id, uid, title, opponent, result, location, game_datetime, created_at, updated_at FROM games WHERE game_datetime < ? ORDER BY game_datetime DESC",
		now.UTC())
}

// GetAllGames retrieves all games, ordered by game_datetime descending.
func GetAllGames(db *sql.DB) ([]*models.Game, error) {
	return queryGames(db,
		"SELECT id, uid, title, opponent, result, location, game_datetime, created_at, updated_at FROM games ORDER BY game_datetime DESC")
}

func queryGames(db *sql.DB, query string, args ...any) ([]*models.Game, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game := &models.Game{}
		err := rows.Scan(&game.ID, &game.UID, &game.Title, &game.Opponent, &game.Result, &game.Location, &game.GameDateTime, &game.CreatedAt, &game.UpdatedAt)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return games, nil
}
