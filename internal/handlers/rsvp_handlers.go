package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/soccer-rsvp/app/internal/database"
	appLog "github.com/soccer-rsvp/app/internal/log"
	"github.com/soccer-rsvp/app/internal/models"
)

// SubmitRSVP handles an RSVP submission for a game. It expects a POST
// with a 'status' field of In or Out, and refuses writes once the game
// has started. Wrap with AuthMiddleware.
func SubmitRSVP(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)
			return
		}

		currentPlayer, err := GetCurrentPlayer(r, db)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		gameID, err := gameIDFromPath(r.URL.Path)
		if err != nil {
			http.Error(w, "Invalid Game ID format", http.StatusBadRequest)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form data", http.StatusBadRequest)
			return
		}
		status := r.FormValue("status")
		if !models.ValidRSVPStatus(status) {
			http.Error(w, "Invalid RSVP status value", http.StatusBadRequest)
			return
		}

		game, err := database.GetGameByID(db, gameID)
		if err == sql.ErrNoRows {
			RenderErrorPage(w, r, db, http.StatusNotFound, "Game Not Found", "You can only RSVP for games on the calendar.")
			return
		}
		if err != nil {
			RenderErrorPage(w, r, db, http.StatusInternalServerError, "Database Error", "Could not load the game.")
			return
		}
		if !game.Upcoming(time.Now()) {
			RenderErrorPage(w, r, db, http.StatusForbidden, "Game Already Played", "RSVPs close once the game has started.")
			return
		}

		err = database.SetRSVP(db, currentPlayer.ID, game.ID, status)
		if errors.Is(err, database.ErrUnknownReference) {
			RenderErrorPage(w, r, db, http.StatusNotFound, "Unknown Reference", "That player or game no longer exists.")
			return
		}
		if err != nil {
			appLog.Error("RSVP update failed", err, "player_id", currentPlayer.ID, "game_id", game.ID)
			http.Error(w, "Failed to update RSVP status. Please try again.", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, fmt.Sprintf("/games/%d", game.ID), http.StatusSeeOther)
	}
}
