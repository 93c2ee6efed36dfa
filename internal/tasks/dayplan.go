package tasks

import (
	"sort"
	"strings"
	"time"

	"github.com/amirbrooks/atlas/internal/config"
)

// GenerateTTL rebuilds the Top Tasks List block at the top of a portfolio
// file: a TTL heading, a blank line, every top-marked line found after the
// first regular heading, a blank line, then the file from that heading on.
func GenerateTTL(cfg *config.Config, lines []string) ([]string, error) {
	start := -1
	var top []string
	for i, raw := range lines {
		if raw == "" {
			continue
		}
		l := Parse(cfg, raw)
		if start > -1 {
			if l.Marker == cfg.Symbols.Top {
				top = append(top, raw)
			}
			continue
		}
		if l.Marker == cfg.Symbols.Heading && !strings.Contains(raw, cfg.Headings.TTL) {
			start = i
		}
	}
	if start < 0 {
		return nil, preconditionf("no heading outside the %q section", cfg.Headings.TTL)
	}
	out := []string{cfg.Symbols.Heading + cfg.Symbols.Separator + cfg.Headings.TTL, ""}
	out = append(out, top...)
	out = append(out, "")
	out = append(out, lines[start:]...)
	return trimTrailingBlank(out), nil
}

// TTLLines returns the non-heading lines inside Top Tasks List sections.
func TTLLines(cfg *config.Config, lines []string) []string {
	var out []string
	walkSections(cfg, lines, func(_ int, l Line, inTTL bool) bool {
		if inTTL && l.Marker != cfg.Symbols.Heading {
			out = append(out, l.Raw)
		}
		return true
	})
	return out
}

// SortLines returns the non-blank lines in lexical order.
func SortLines(lines []string) []string {
	var out []string
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

// DueColumnDate returns the 10-character date following the due property.
// The property is expected as the first word after the marker and one
// separator, so the date starts at a fixed column; lines written otherwise
// fall back to their due word.
func DueColumnDate(cfg *config.Config, raw string) (string, bool) {
	const width = 10
	l := Parse(cfg, raw)
	if l.Marker == "" {
		return "", false
	}
	col := len(l.Marker) + len(cfg.Symbols.Separator)
	if strings.HasPrefix(raw[min(col, len(raw)):], cfg.Properties.Due) {
		off := col + len(cfg.Properties.Due)
		if off+width <= len(raw) {
			return raw[off : off+width], true
		}
		return "", false
	}
	word, ok := l.Prop(cfg.Properties.Due)
	if !ok {
		return "", false
	}
	value := word[strings.Index(word, cfg.Properties.Due)+len(cfg.Properties.Due):]
	if len(value) < width {
		return "", false
	}
	return value[:width], true
}

// DayPlanInput gathers the sources of a day plan.
type DayPlanInput struct {
	// Daily holds the daily-recurring lines, copied verbatim.
	Daily     []string
	Portfolio []Document
	Booked    []string
	Periodic  []string
}

// BuildDayPlan assembles the task list proposed for date: daily-recurring
// lines, Top Tasks List lines of every portfolio file, and booked and
// periodic lines due on or before date. The lines are ordered by the sort
// tokens and framed by a proposed heading and a done heading.
func BuildDayPlan(cfg *config.Config, in DayPlanInput, date time.Time) []string {
	target := FormatDate(cfg, date)

	var collected []string
	for _, raw := range in.Daily {
		if raw != "" {
			collected = append(collected, raw)
		}
	}
	for _, doc := range in.Portfolio {
		collected = append(collected, TTLLines(cfg, doc.Lines)...)
	}
	for _, src := range [][]string{in.Booked, in.Periodic} {
		for _, raw := range src {
			if raw == "" || Parse(cfg, raw).Marker == cfg.Symbols.Done {
				continue
			}
			if due, ok := DueColumnDate(cfg, raw); ok && due <= target {
				collected = append(collected, raw)
			}
		}
	}

	sep := cfg.Symbols.Separator
	h := cfg.Symbols.Heading
	out := []string{h + sep + cfg.Headings.TasksProposed + sep + target}
	out = append(out, SortByTokens(cfg, collected, cfg.SortTokens)...)
	return append(out, h+sep+cfg.Headings.TasksDone+sep+target)
}

// SortByTokens orders lines by tokens: for each token in turn it takes every
// remaining line containing it. Category tokens must appear as a whole word;
// other tokens match by substring and only on lines without a category.
// Lines matching no token are dropped and duplicates are kept once.
func SortByTokens(cfg *config.Config, lines []string, tokens []string) []string {
	placed := make(map[string]bool, len(lines))
	var out []string
	for _, token := range tokens {
		if token == "" {
			continue
		}
		isCategory := strings.HasPrefix(token, cfg.Symbols.CatPrefix)
		for _, raw := range lines {
			if placed[raw] {
				continue
			}
			l := Parse(cfg, raw)
			var hit bool
			if isCategory {
				hit = l.HasWord(token)
			} else {
				hit = strings.Contains(raw, token) && len(l.Categories()) == 0
			}
			if hit {
				placed[raw] = true
				out = append(out, raw)
			}
		}
	}
	return out
}
