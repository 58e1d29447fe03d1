package importer

import (
	"bytes"
	"errors"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "github.com/soccer-rsvp/app/internal/log"
)

// Event is a normalized VEVENT as produced by Parse. Recurring events
// carry their raw RRULE and are expanded by Expand.
type Event struct {
	UID      string
	Summary  string
	Location string
	Start    time.Time
	RawRRule string
}

// occurrenceKeyLayout stamps expanded occurrences so each instance of a
// recurring game gets its own stable identity.
const occurrenceKeyLayout = "20060102T150405Z"

// Parse extracts events from an iCalendar payload. VEVENTs missing a
// UID or start time are logged and skipped; the rest of the feed is
// still imported.
func Parse(body []byte) ([]Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty calendar body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve)
		if perr != nil {
			appLog.Error("calendar event skipped", perr)
			continue
		}
		events = append(events, ev)
	}

	return events, nil
}

func parseVEvent(ve *ical.VEvent) (Event, error) {
	var out Event

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	start, err := ve.GetStartAt()
	if err != nil {
		return out, errors.New("missing or invalid DTSTART")
	}
	out.Start = start

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	return out, nil
}

// Expand replaces recurring events with their concrete occurrences
// inside [from, to]. Each occurrence gets a UID suffixed with its start
// time so re-imports stay idempotent. Non-recurring events pass through
// unchanged; an unparseable RRULE degrades to the base event.
func Expand(events []Event, from, to time.Time) []Event {
	out := make([]Event, 0, len(events))

	for _, ev := range events {
		if ev.RawRRule == "" {
			out = append(out, ev)
			continue
		}

		rule, err := rrule.StrToRRule(ev.RawRRule)
		if err != nil {
			appLog.Error("rrule parse failed, keeping base event", err, "uid", ev.UID)
			out = append(out, ev)
			continue
		}
		rule.DTStart(ev.Start)

		for _, start := range rule.Between(from, to, true) {
			occ := ev
			occ.UID = ev.UID + "#" + start.UTC().Format(occurrenceKeyLayout)
			occ.Start = start
			occ.RawRRule = ""
			out = append(out, occ)
		}
	}

	return out
}
