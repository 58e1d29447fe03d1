// Package threshold classifies a game's viability from its count of
// "In" RSVPs against the team's minimum and ideal player counts.
package threshold

// Status is the viability classification of a game.
type Status string

const (
	// BelowMinimum means the game cannot start as things stand.
	BelowMinimum Status = "below_minimum"
	// BelowIdeal means the game can start but has no subs to spare.
	BelowIdeal Status = "below_ideal"
	// Sufficient means a full roster, subs included.
	Sufficient Status = "sufficient"
)

// Default player-count thresholds, overridable via config.
const (
	DefaultMinimum = 8
	DefaultIdeal   = 12
)

// Classify maps an In-count to a Status:
// count < minimum yields BelowMinimum, minimum <= count < ideal yields
// BelowIdeal, count >= ideal yields Sufficient.
func Classify(count, minimum, ideal int) Status {
	switch {
	case count < minimum:
		return BelowMinimum
	case count < ideal:
		return BelowIdeal
	default:
		return Sufficient
	}
}

// Needed returns how many more players are needed to reach the next
// threshold: up to minimum while below it, then up to ideal, then zero.
func Needed(count, minimum, ideal int) int {
	switch Classify(count, minimum, ideal) {
	case BelowMinimum:
		return minimum - count
	case BelowIdeal:
		return ideal - count
	default:
		return 0
	}
}
