package handlers

import (
	"database/sql"
	"net/http"

	"github.com/soccer-rsvp/app/internal/importer"
	appLog "github.com/soccer-rsvp/app/internal/log"
)

// RefreshCalendar triggers a manual calendar import. A failed import
// reports the error and leaves stored games untouched.
func RefreshCalendar(db *sql.DB, imp *importer.Importer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)
			return
		}

		count, err := imp.Run(r.Context())
		if err != nil {
			appLog.Error("manual calendar refresh failed", err)
			RenderErrorPage(w, r, db, http.StatusBadGateway, "Calendar Refresh Failed",
				"The calendar feed could not be imported. Previously imported games are unaffected.")
			return
		}

		appLog.Info("manual calendar refresh completed", "games", count)
		http.Redirect(w, r, "/games", http.StatusSeeOther)
	}
}
