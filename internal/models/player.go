package models

import "time"

// Player is a roster member. Players are created implicitly the first
// time a name logs in or RSVPs and are never deleted, since historical
// RSVPs reference them.
type Player struct {
	ID            int64
	Name          string // display name, original casing
	CanonicalName string // lower-cased, whitespace-normalized key
	CreatedAt     time.Time
}
