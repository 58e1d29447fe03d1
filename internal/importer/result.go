package importer

import (
	"strings"
	"unicode"
)

// ParseGameMeta recovers the opponent and final result from an event
// summary. League feeds title games like "STL City 3 vs Galaxy" before
// they are played and "W 3-2 vs Galaxy" or "L 1-4 vs Galaxy" after.
// Both return values are "" when the summary carries no "vs".
func ParseGameMeta(summary string) (opponent, result string) {
	head, tail, found := strings.Cut(summary, "vs")
	if !found {
		return "", ""
	}

	opponent = strings.TrimSpace(tail)
	head = strings.TrimSpace(head)

	if score, ok := cutScore(head, "W"); ok {
		return opponent, "Win " + score
	}
	if score, ok := cutScore(head, "L"); ok {
		return opponent, "Loss " + score
	}
	return opponent, ""
}

// cutScore strips the W/L marker and accepts the remainder only when it
// looks like a score ("3-2"), so team names starting with W or L are
// not misread as results.
func cutScore(head, marker string) (string, bool) {
	rest, found := strings.CutPrefix(head, marker)
	if !found {
		return "", false
	}
	score := strings.TrimSpace(rest)
	if score == "" || !strings.Contains(score, "-") {
		return "", false
	}
	if !unicode.IsDigit(rune(score[0])) {
		return "", false
	}
	return score, true
}
