// Package tasks implements the task line grammar and the operations that
// rewrite task files. Every function takes the configuration and the clock
// explicitly; nothing here touches the file system.
package tasks

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amirbrooks/atlas/internal/config"
)

// Document is the full text of one file as ordered lines.
type Document struct {
	Path  string
	Lines []string
}

// Label is the file name up to its first dot ("home" for home.txt).
func (d Document) Label() string {
	base := filepath.Base(d.Path)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// SplitLines splits decoded text on "\n".
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// JoinLines joins lines with "\n" without a trailing terminator.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// trimTrailingBlank returns a copy of lines without trailing empty lines.
func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	out := make([]string, end)
	copy(out, lines[:end])
	return out
}

var dailyFileName = regexp.MustCompile(`^\d{8}`)

// IsDailyFile reports whether path names a daily tasks file: its base name
// starts with an 8-digit date.
func IsDailyFile(path string) bool {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return dailyFileName.MatchString(base)
}

// Line is the parsed view of one line of text. The raw text stays the only
// persisted representation.
type Line struct {
	Raw    string
	Marker string
	Active bool
	// Stamp is the HH:MM schedule stamp, empty when the line is unscheduled.
	Stamp string
	// Body is the text after the marker, its separator and the stamp.
	Body  string
	Words []string

	cfg *config.Config
}

// Parse builds the structured view of raw under cfg.
func Parse(cfg *config.Config, raw string) Line {
	l := Line{Raw: raw, cfg: cfg}
	if raw == "" {
		return l
	}
	_, size := utf8.DecodeRuneInString(raw)
	l.Marker = raw[:size]
	l.Active = containsString(cfg.ActiveMarkers(), l.Marker)

	rest := strings.TrimPrefix(raw[size:], cfg.Symbols.Separator)
	if stamp, after, ok := parseStamp(cfg, rest); ok {
		l.Stamp = stamp
		rest = after
	}
	l.Body = rest
	for _, w := range strings.Split(rest, cfg.Symbols.Separator) {
		if w != "" {
			l.Words = append(l.Words, w)
		}
	}
	return l
}

// parseStamp reads a leading "HH<time sep>MM<sep>" from s. The stamp has the
// fixed width of two digits, the time separator and two digits.
func parseStamp(cfg *config.Config, s string) (stamp string, rest string, ok bool) {
	ts := cfg.Symbols.TimeSeparator
	width := 4 + len(ts)
	if len(s) < width+len(cfg.Symbols.Separator) {
		return "", s, false
	}
	if !isDigits(s[0:2]) || s[2:2+len(ts)] != ts || !isDigits(s[2+len(ts):width]) {
		return "", s, false
	}
	if !strings.HasPrefix(s[width:], cfg.Symbols.Separator) {
		return "", s, false
	}
	return s[:width], s[width+len(cfg.Symbols.Separator):], true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// StripStamp removes the schedule stamp of raw, if any.
func StripStamp(cfg *config.Config, raw string) string {
	l := Parse(cfg, raw)
	if l.Stamp == "" {
		return raw
	}
	return l.Marker + cfg.Symbols.Separator + l.Body
}

// WithStamp sets the schedule stamp of raw to stamp, replacing an existing one.
func WithStamp(cfg *config.Config, raw, stamp string) string {
	l := Parse(cfg, raw)
	sep := cfg.Symbols.Separator
	return l.Marker + sep + stamp + sep + l.Body
}

// isProperty reports whether word carries one of the inline properties.
// Properties are recognized by substring containment, not strict key:value
// syntax.
func isProperty(cfg *config.Config, word string) bool {
	p := cfg.Properties
	return strings.Contains(word, p.Due) || strings.Contains(word, p.Dur) || strings.Contains(word, p.Rec)
}

// Prop returns the last word containing prefix.
func (l Line) Prop(prefix string) (string, bool) {
	found := ""
	for _, w := range l.Words {
		if strings.Contains(w, prefix) {
			found = w
		}
	}
	return found, found != ""
}

// HasProp reports whether any word contains prefix.
func (l Line) HasProp(prefix string) bool {
	_, ok := l.Prop(prefix)
	return ok
}

// HasWord reports whether word appears as a whole word.
func (l Line) HasWord(word string) bool {
	for _, w := range l.Words {
		if w == word {
			return true
		}
	}
	return false
}

// Tags returns the words starting with the tag prefix, properties excluded.
func (l Line) Tags() []string {
	return l.prefixed(l.cfg.Symbols.TagPrefix)
}

// Categories returns the words starting with the category prefix.
func (l Line) Categories() []string {
	return l.prefixed(l.cfg.Symbols.CatPrefix)
}

func (l Line) prefixed(prefix string) []string {
	var out []string
	for _, w := range l.Words {
		if strings.HasPrefix(w, prefix) && !isProperty(l.cfg, w) {
			out = append(out, w)
		}
	}
	return out
}

// TaskText returns the normalized body: single-character active markers,
// property words, tags and categories removed, the rest re-joined with the
// separator. Empty words between repeated separators are kept, so the text
// of "call  mom" still occurs in a verbatim copy of its line.
func TaskText(cfg *config.Config, raw string) string {
	l := Parse(cfg, raw)
	var kept []string
	for _, w := range strings.Split(l.Body, cfg.Symbols.Separator) {
		switch {
		case containsString(cfg.ActiveMarkers(), w):
		case isProperty(cfg, w):
		case strings.HasPrefix(w, cfg.Symbols.TagPrefix), strings.HasPrefix(w, cfg.Symbols.CatPrefix):
		default:
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, cfg.Symbols.Separator)
}

// Duration returns the value of the last duration property of l in minutes.
func Duration(cfg *config.Config, l Line) (int, error) {
	word, ok := l.Prop(cfg.Properties.Dur)
	if !ok {
		return 0, &MissingDurationError{Line: l.Raw}
	}
	value := word[strings.Index(word, cfg.Properties.Dur)+len(cfg.Properties.Dur):]
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrMalformedProperty, word, err)
	}
	return n, nil
}

// FormatDate renders t as YYYY-MM-DD with the configured date separator.
func FormatDate(cfg *config.Config, t time.Time) string {
	ds := cfg.Symbols.DateSeparator
	return fmt.Sprintf("%04d%s%02d%s%02d", t.Year(), ds, int(t.Month()), ds, t.Day())
}

// ParseDate parses a YYYY-MM-DD date written with the configured separator.
func ParseDate(cfg *config.Config, s string) (time.Time, error) {
	ds := cfg.Symbols.DateSeparator
	parts := strings.Split(s, ds)
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrMalformedProperty, s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: date %q: %w", ErrMalformedProperty, s, err)
		}
		nums[i] = n
	}
	t := time.Date(nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(nums[1]) || t.Day() != nums[2] {
		return time.Time{}, fmt.Errorf("%w: date %q out of range", ErrMalformedProperty, s)
	}
	return t, nil
}

// FormatClock renders minutes as HH:MM with the configured time separator.
func FormatClock(cfg *config.Config, minutes int) string {
	return fmt.Sprintf("%02d%s%02d", minutes/60, cfg.Symbols.TimeSeparator, minutes%60)
}
