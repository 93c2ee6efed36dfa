package tasks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amirbrooks/atlas/internal/config"
)

// UpdateDueDate advances the due date of a periodic task by its recurrence.
// A recurrence word carrying the tag prefix (+rec:3d) counts from the stored
// due date; a plain one (rec:3d) counts from now.
func UpdateDueDate(cfg *config.Config, raw string, now time.Time) (string, error) {
	l := Parse(cfg, raw)
	dueWord, ok := l.Prop(cfg.Properties.Due)
	if !ok {
		return "", fmt.Errorf("%w: no %s property in %q", ErrMalformedProperty, cfg.Properties.Due, raw)
	}
	recWord, ok := l.Prop(cfg.Properties.Rec)
	if !ok {
		return "", fmt.Errorf("%w: no %s property in %q", ErrMalformedProperty, cfg.Properties.Rec, raw)
	}

	count, unit, err := parseRecurrence(cfg, recWord)
	if err != nil {
		return "", err
	}

	var base time.Time
	if strings.Contains(recWord, cfg.Symbols.TagPrefix) {
		value := dueWord[strings.Index(dueWord, cfg.Properties.Due)+len(cfg.Properties.Due):]
		base, err = ParseDate(cfg, value)
		if err != nil {
			return "", err
		}
	} else {
		base = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	var next time.Time
	switch unit {
	case cfg.Symbols.Day:
		next = base.AddDate(0, 0, count)
	case cfg.Symbols.Month:
		next = addMonths(base, count)
	case cfg.Symbols.Year:
		next = addMonths(base, 12*count)
	default:
		return "", fmt.Errorf("%w: unknown recurrence unit %q in %q", ErrMalformedProperty, unit, recWord)
	}

	ds := regexp.QuoteMeta(cfg.Symbols.DateSeparator)
	re := regexp.MustCompile(regexp.QuoteMeta(cfg.Properties.Due) + `\d{4}` + ds + `\d{2}` + ds + `\d{2}`)
	if !re.MatchString(raw) {
		return "", fmt.Errorf("%w: malformed due date in %q", ErrMalformedProperty, raw)
	}
	return re.ReplaceAllLiteralString(raw, cfg.Properties.Due+FormatDate(cfg, next)), nil
}

// parseRecurrence splits the value of a recurrence word into its count (the
// digits) and unit (the last character).
func parseRecurrence(cfg *config.Config, word string) (int, string, error) {
	value := word[strings.Index(word, cfg.Properties.Rec)+len(cfg.Properties.Rec):]
	var digits strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, "", fmt.Errorf("%w: no recurrence count in %q", ErrMalformedProperty, word)
	}
	count, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, "", fmt.Errorf("%w %q: %w", ErrMalformedProperty, word, err)
	}
	unit, _ := utf8.DecodeLastRuneInString(value)
	return count, string(unit), nil
}

// addMonths adds n calendar months, clamping the day to the end of the
// target month (Jan 31 + 1 month is the last day of February).
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}
