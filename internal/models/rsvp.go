package models

import "time"

const (
	RSVPStatusIn  = "In"
	RSVPStatusOut = "Out"
)

// ValidRSVPStatus reports whether s is one of the accepted statuses.
func ValidRSVPStatus(s string) bool {
	return s == RSVPStatusIn || s == RSVPStatusOut
}

type RSVP struct {
	ID         int64
	PlayerID   int64
	GameID     int64
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	PlayerName string // For display
}

// PlayerGameRSVP is an RSVP joined with its game, used by history views.
type PlayerGameRSVP struct {
	RSVP RSVP
	Game Game
}
