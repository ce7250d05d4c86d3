package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reIn = regexp.MustCompile(`\bin\s+(\d+)\s+(second|minute|hour)s?\b`)
	reAt = regexp.MustCompile(`\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
)

// parseWhen extracts a time expression from text and resolves it to an
// absolute due time against now. It returns the due time and the text with
// the time clause removed. ok is false when no expression parses; the caller
// treats that as a rule non-match, not an error.
//
// Rollover rules: "at H[:MM]" that is not strictly in the future resolves to
// the same clock time tomorrow. Relative forms are now + duration.
func parseWhen(text string, now time.Time) (due time.Time, rest string, ok bool) {
	if loc := reIn.FindStringSubmatchIndex(text); loc != nil {
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil || n <= 0 {
			return time.Time{}, "", false
		}
		var unit time.Duration
		switch text[loc[4]:loc[5]] {
		case "second":
			unit = time.Second
		case "minute":
			unit = time.Minute
		case "hour":
			unit = time.Hour
		}
		return now.Add(time.Duration(n) * unit), cutClause(text, loc[0], loc[1]), true
	}

	if loc := reAt.FindStringSubmatchIndex(text); loc != nil {
		hour, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			return time.Time{}, "", false
		}
		minute := 0
		if loc[4] >= 0 {
			minute, err = strconv.Atoi(text[loc[4]:loc[5]])
			if err != nil || minute > 59 {
				return time.Time{}, "", false
			}
		}

		meridiem := ""
		if loc[6] >= 0 {
			meridiem = text[loc[6]:loc[7]]
		}
		switch meridiem {
		case "pm":
			if hour < 1 || hour > 12 {
				return time.Time{}, "", false
			}
			if hour < 12 {
				hour += 12
			}
		case "am":
			if hour < 1 || hour > 12 {
				return time.Time{}, "", false
			}
			if hour == 12 {
				hour = 0
			}
		default:
			if hour > 23 {
				return time.Time{}, "", false
			}
		}

		due = time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !due.After(now) {
			due = due.Add(24 * time.Hour)
		}
		return due, cutClause(text, loc[0], loc[1]), true
	}

	return time.Time{}, "", false
}

// cutClause removes text[start:end] and tidies the remainder.
func cutClause(text string, start, end int) string {
	rest := strings.TrimSpace(text[:start] + " " + text[end:])
	return strings.Join(strings.Fields(rest), " ")
}
