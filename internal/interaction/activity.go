package interaction

import (
	"strconv"
	"strings"
	"time"
)

// ActivityPeriod is a cron-like activity window: two four-field strings,
// start and duration, each field either a non-negative integer or '*'.
// Fields, in order, are minute, hour, day-of-month, day-of-week. For start,
// '*' means "unconstrained"; for duration, '*' means zero.
type ActivityPeriod struct {
	Start    string
	Duration string
}

// periodFields is a parsed cron-like field set. A value of -1 means
// wildcard/unconstrained (used for Start fields); duration fields never
// carry -1, since '*' resolves to 0 there.
type periodFields struct {
	Minute, Hour, Day, DayOfWeek int
}

// parsePeriod splits a four-field period string on whitespace. For
// isDuration=false (start fields), '*' parses to -1 (any). For
// isDuration=true, '*' parses to 0. A missing trailing field is treated the
// same as an explicit '*' for that field.
func parsePeriod(period string, isDuration bool) periodFields {
	wildcard := -1
	if isDuration {
		wildcard = 0
	}
	fields := periodFields{Minute: wildcard, Hour: wildcard, Day: wildcard, DayOfWeek: wildcard}

	tokens := strings.Fields(period)
	parse := func(i int) int {
		if i >= len(tokens) || tokens[i] == "*" {
			return wildcard
		}
		v, err := strconv.Atoi(tokens[i])
		if err != nil {
			return wildcard
		}
		return v
	}
	fields.Minute = parse(0)
	fields.Hour = parse(1)
	fields.Day = parse(2)
	fields.DayOfWeek = parse(3)
	return fields
}

// maxBackwardSearch bounds how far previousTrigger will walk back looking
// for a matching minute, guarding against unsatisfiable field combinations
// (e.g. a day-of-month that never falls on the required day-of-week).
const maxBackwardSearch = 366 * 24 * 60

// previousTrigger finds the latest minute-aligned instant at or before
// current that satisfies every fixed (non-wildcard) field of fields. This
// is a deterministic greatest-lower-bound search, not a port of the
// original's ad hoc backward field-decrement walk, whose exact tie-break
// intent across simultaneously-fixed fields is not specified by the source.
func previousTrigger(fields periodFields, current time.Time) (time.Time, bool) {
	candidate := current.Truncate(time.Minute)
	for i := 0; i <= maxBackwardSearch; i++ {
		if matchesFields(fields, candidate) {
			return candidate, true
		}
		candidate = candidate.Add(-time.Minute)
	}
	return time.Time{}, false
}

func matchesFields(fields periodFields, t time.Time) bool {
	if fields.Minute != -1 && t.Minute() != fields.Minute {
		return false
	}
	if fields.Hour != -1 && t.Hour() != fields.Hour {
		return false
	}
	if fields.Day != -1 && t.Day() != fields.Day {
		return false
	}
	if fields.DayOfWeek != -1 && int(t.Weekday()) != fields.DayOfWeek {
		return false
	}
	return true
}

// IsInActivityPeriod reports whether current falls within [start, start +
// duration), where start is the most recent trigger of ap.Start at or
// before current, and duration is derived from ap.Duration's minute, hour,
// and day fields (the duration's day-of-week field is parsed but, as in the
// original, never contributes to the window length).
func IsInActivityPeriod(ap *ActivityPeriod, current time.Time) bool {
	if ap == nil {
		return true
	}
	startFields := parsePeriod(ap.Start, false)
	start, ok := previousTrigger(startFields, current)
	if !ok {
		return false
	}

	durFields := parsePeriod(ap.Duration, true)
	duration := time.Duration(durFields.Minute)*time.Minute +
		time.Duration(durFields.Hour)*time.Hour +
		time.Duration(durFields.Day)*24*time.Hour
	end := start.Add(duration)

	return !current.Before(start) && current.Before(end)
}
