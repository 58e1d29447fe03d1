package models

import "time"

type Game struct {
	ID           int64
	UID          string // iCalendar event UID (suffixed per occurrence for recurring games)
	Title        string
	Opponent     string // parsed from the event summary, "" if unknown
	Result       string // e.g. "Win 3-2", "" until the feed carries a score
	Location     string
	GameDateTime time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Upcoming reports whether the game has not started yet. RSVPs are only
// accepted for upcoming games.
func (g *Game) Upcoming(now time.Time) bool {
	return g.GameDateTime.After(now)
}
