package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/soccer-rsvp/app/internal/database"
	appLog "github.com/soccer-rsvp/app/internal/log"
	"github.com/soccer-rsvp/app/internal/models"
	"github.com/soccer-rsvp/app/internal/threshold"
)

// GameView is a game decorated with its current attendance for list and
// detail templates.
type GameView struct {
	Game     *models.Game
	InCount  int
	OutCount int
	Status   threshold.Status
	Needed   int
}

func newGameView(db *sql.DB, game *models.Game, minimum, ideal int) (*GameView, error) {
	in, out, err := database.CountRSVPs(db, game.ID)
	if err != nil {
		return nil, err
	}
	return &GameView{
		Game:     game,
		InCount:  in,
		OutCount: out,
		Status:   threshold.Classify(in, minimum, ideal),
		Needed:   threshold.Needed(in, minimum, ideal),
	}, nil
}

// GamesListPage renders the upcoming games with their attendance status.
func GamesListPage(db *sql.DB, minimum, ideal int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			RenderErrorPage(w, r, db, http.StatusMethodNotAllowed, "Method Not Allowed", "Only GET is allowed for the games list.")
			return
		}

		games, err := database.GetUpcomingGames(db, time.Now())
		if err != nil {
			RenderErrorPage(w, r, db, http.StatusInternalServerError, "Database Error", "Could not load upcoming games.")
			return
		}

		views := make([]*GameView, 0, len(games))
		for _, game := range games {
			view, err := newGameView(db, game, minimum, ideal)
			if err != nil {
				RenderErrorPage(w, r, db, http.StatusInternalServerError, "Database Error", "Could not load RSVP counts.")
				return
			}
			views = append(views, view)
		}

		currentPlayer, _ := GetCurrentPlayer(r, db)

		data := map[string]interface{}{
			"Title":  "Upcoming Games",
			"Player": currentPlayer,
			"Games":  views,
		}
		RenderTemplate(w, "games/index.html", data)
	}
}

// GameDetailPage renders one game with counts, the threshold status,
// who's in and out, and the RSVP controls.
func GameDetailPage(db *sql.DB, minimum, ideal int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := gameIDFromPath(r.URL.Path)
		if err != nil {
			RenderErrorPage(w, r, db, http.StatusBadRequest, "Bad Request", "Invalid Game ID format.")
			return
		}

		game, err := database.GetGameByID(db, gameID)
		if err == sql.ErrNoRows {
			RenderErrorPage(w, r, db, http.StatusNotFound, "Game Not Found", "No game with that ID exists.")
			return
		}
		if err != nil {
			RenderErrorPage(w, r, db, http.StatusInternalServerError, "Database Error", "Could not load the game.")
			return
		}

		view, err := newGameView(db, game, minimum, ideal)
		if err != nil {
			RenderErrorPage(w, r, db, http.StatusInternalServerError, "Database Error", "Could not load RSVP counts.")
			return
		}

		rsvps, err := database.GetRSVPsForGame(db, gameID)
		if err != nil {
			RenderErrorPage(w, r, db, http.StatusInternalServerError, "Database Error", "Could not load the RSVP list.")
			return
		}
		var inPlayers, outPlayers []*models.RSVP
		for _, rsvp := range rsvps {
			if rsvp.Status == models.RSVPStatusIn {
				inPlayers = append(inPlayers, rsvp)
			} else {
				outPlayers = append(outPlayers, rsvp)
			}
		}

		currentPlayer, _ := GetCurrentPlayer(r, db)

		currentStatus := ""
		if currentPlayer != nil {
			if rsvp, err := database.GetRSVP(db, currentPlayer.ID, gameID); err == nil {
				currentStatus = rsvp.Status
			} else if err != sql.ErrNoRows {
				appLog.Error("could not load current player's RSVP", err, "game_id", gameID)
			}
		}

		data := map[string]interface{}{
			"Title":         game.Title,
			"Player":        currentPlayer,
			"View":          view,
			"Game":          game,
			"InPlayers":     inPlayers,
			"OutPlayers":    outPlayers,
			"CurrentStatus": currentStatus,
			"CanRSVP":       game.Upcoming(time.Now()),
		}
		RenderTemplate(w, "games/show.html", data)
	}
}

// HistoryPage renders past games, most recent first, with the parsed
// result and final attendance.
func HistoryPage(db *sql.DB, minimum, ideal int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			RenderErrorPage(w, r, db, http.StatusMethodNotAllowed, "Method Not Allowed", "Only GET is allowed for history.")
			return
		}

		games, err := database.GetPastGames(db, time.Now())
		if err != nil {
			RenderErrorPage(w, r, db, http.StatusInternalServerError, "Database Error", "Could not load past games.")
			return
		}

		views := make([]*GameView, 0, len(games))
		for _, game := range games {
			view, err := newGameView(db, game, minimum, ideal)
			if err != nil {
				RenderErrorPage(w, r, db, http.StatusInternalServerError, "Database Error", "Could not load RSVP counts.")
				return
			}
			views = append(views, view)
		}

		currentPlayer, _ := GetCurrentPlayer(r, db)

		data := map[string]interface{}{
			"Title":  "Past Games",
			"Player": currentPlayer,
			"Games":  views,
		}
		RenderTemplate(w, "games/history.html", data)
	}
}

// MyRSVPsPage renders the logged-in player's RSVPs, split into upcoming
// and past games. Wrap with AuthMiddleware.
func MyRSVPsPage(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentPlayer, err := GetCurrentPlayer(r, db)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		entries, err := database.GetRSVPsForPlayer(db, currentPlayer.ID)
		if err != nil {
			RenderErrorPage(w, r, db, http.StatusInternalServerError, "Database Error", "Could not load your RSVPs.")
			return
		}

		now := time.Now()
		var upcoming, past []*models.PlayerGameRSVP
		for _, entry := range entries {
			if entry.Game.Upcoming(now) {
				upcoming = append(upcoming, entry)
			} else {
				past = append(past, entry)
			}
		}
		// Past games read best most recent first.
		for i, j := 0, len(past)-1; i < j; i, j = i+1, j-1 {
			past[i], past[j] = past[j], past[i]
		}

		data := map[string]interface{}{
			"Title":    "My RSVPs",
			"Player":   currentPlayer,
			"Upcoming": upcoming,
			"Past":     past,
		}
		RenderTemplate(w, "games/my.html", data)
	}
}

// gameIDFromPath extracts the numeric game ID from paths like
// /games/{id} and /games/{id}/rsvp.
func gameIDFromPath(path string) (int64, error) {
	trimmed := strings.TrimPrefix(path, "/games/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return strconv.ParseInt(trimmed, 10, 64)
}
