// Package importer syncs the game calendar from an external iCalendar
// feed into the games table. Imports are all-or-nothing: a fetch or
// parse failure leaves previously imported games untouched.
package importer

import (
	"context"
	"database/sql"
	"time"

	"github.com/soccer-rsvp/app/internal/database"
	appLog "github.com/soccer-rsvp/app/internal/log"
	"github.com/soccer-rsvp/app/internal/models"
)

// defaultHorizon bounds recurrence expansion either side of now. A year
// back keeps the history view populated; a year ahead covers any
// schedule a rec league publishes.
const defaultHorizon = 365 * 24 * time.Hour

type Importer struct {
	db      *sql.DB
	fetcher *Fetcher
	horizon time.Duration
}

func New(db *sql.DB, fetcher *Fetcher) *Importer {
	return &Importer{
		db:      db,
		fetcher: fetcher,
		horizon: defaultHorizon,
	}
}

// Run fetches, parses and upserts the feed, returning how many games
// the feed currently describes. Re-running against an identical feed
// changes nothing.
func (im *Importer) Run(ctx context.Context) (int, error) {
	body, fromCache, err := im.fetcher.Fetch(ctx)
	if err != nil {
		return 0, err
	}

	events, err := Parse(body)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	events = Expand(events, now.Add(-im.horizon), now.Add(im.horizon))

	games := make([]*models.Game, 0, len(events))
	for _, ev := range events {
		opponent, result := ParseGameMeta(ev.Summary)
		games = append(games, &models.Game{
			UID:          ev.UID,
			Title:        ev.Summary,
			Opponent:     opponent,
			Result:       result,
			Location:     ev.Location,
			GameDateTime: ev.Start,
		})
	}

	if err := database.UpsertGames(im.db, games); err != nil {
		return 0, err
	}

	appLog.Info("calendar import completed", "games", len(games), "from_cache", fromCache)
	return len(games), nil
}
