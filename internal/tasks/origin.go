package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirbrooks/atlas/internal/config"
)

// Candidate is one portfolio line offered to the matcher.
type Candidate struct {
	Line  Line
	InTTL bool
	// Text is the normalized task text of the line.
	Text string
}

// Predicate is one named test of a matching strategy.
type Predicate struct {
	Name  string
	Match func(task string, c Candidate) bool
}

// Matcher finds the origin of a task by testing candidates against an
// ordered list of predicates. The first candidate passing all of them wins,
// scanning documents in order and lines top to bottom. Matching is a
// substring heuristic: two origins whose texts both occur in the task
// resolve to whichever comes first.
type Matcher struct {
	cfg        *config.Config
	Predicates []Predicate
}

// NewMatcher returns the default origin matching strategy.
func NewMatcher(cfg *config.Config) *Matcher {
	return &Matcher{
		cfg: cfg,
		Predicates: []Predicate{
			{Name: "active", Match: func(_ string, c Candidate) bool { return c.Line.Active }},
			{Name: "outside-ttl", Match: func(_ string, c Candidate) bool { return !c.InTTL }},
			{Name: "has-text", Match: func(_ string, c Candidate) bool { return c.Text != "" }},
			{Name: "text-in-task", Match: func(task string, c Candidate) bool { return strings.Contains(task, c.Text) }},
		},
	}
}

// Position locates a line within a list of documents.
type Position struct {
	Doc int
	Row int
}

// Find returns the position of the first candidate matching task.
func (m *Matcher) Find(task string, docs []Document) (Position, bool) {
	for i, doc := range docs {
		var found Position
		ok := false
		walkSections(m.cfg, doc.Lines, func(row int, l Line, inTTL bool) bool {
			c := Candidate{Line: l, InTTL: inTTL, Text: TaskText(m.cfg, l.Raw)}
			for _, p := range m.Predicates {
				if !p.Match(task, c) {
					return true
				}
			}
			found, ok = Position{Doc: i, Row: row}, true
			return false
		})
		if ok {
			return found, true
		}
	}
	return Position{}, false
}

// walkSections calls fn for every non-blank line, tracking whether the line
// sits in the Top Tasks List section. A heading containing the TTL heading
// text enters the section and any other heading leaves it. fn returns false
// to stop the walk.
func walkSections(cfg *config.Config, lines []string, fn func(row int, l Line, inTTL bool) bool) {
	inTTL := false
	for row, raw := range lines {
		if raw == "" {
			continue
		}
		l := Parse(cfg, raw)
		if l.Marker == cfg.Symbols.Heading {
			inTTL = strings.Contains(raw, cfg.Headings.TTL)
		}
		if !fn(row, l, inTTL) {
			return
		}
	}
}

// MarkDoneAtOrigin resolves task at its origin in the portfolio documents.
// A recurring origin gets its due date advanced, any other origin is marked
// done. It returns the rewritten owning document, or nil when the task is
// not reconcilable or has no origin.
func MarkDoneAtOrigin(cfg *config.Config, task string, docs []Document, now time.Time) (*Document, error) {
	if task == "" || !Parse(cfg, task).Active || strings.Contains(task, cfg.Properties.DailyRecValue) {
		return nil, nil
	}
	pos, ok := NewMatcher(cfg).Find(task, docs)
	if !ok {
		return nil, nil
	}
	doc := docs[pos.Doc]
	lines := make([]string, len(doc.Lines))
	copy(lines, doc.Lines)

	l := Parse(cfg, lines[pos.Row])
	if l.HasProp(cfg.Properties.Rec) {
		updated, err := UpdateDueDate(cfg, l.Raw, now)
		if err != nil {
			return nil, fmt.Errorf("origin %s row %d: %w", doc.Path, pos.Row+1, err)
		}
		lines[pos.Row] = updated
	} else {
		rest := strings.TrimPrefix(l.Raw[len(l.Marker):], cfg.Symbols.Separator)
		lines[pos.Row] = cfg.Symbols.Done + cfg.Symbols.Separator + rest
	}
	return &Document{Path: doc.Path, Lines: trimTrailingBlank(lines)}, nil
}

// ExtractKind names one of the auxiliary projections of the portfolio.
type ExtractKind string

const (
	ExtractDaily    ExtractKind = "daily"
	ExtractBooked   ExtractKind = "booked"
	ExtractPeriodic ExtractKind = "periodic"
	ExtractShlist   ExtractKind = "shlist"
)

// ExtractKinds lists every projection in the order they are regenerated.
var ExtractKinds = []ExtractKind{ExtractBooked, ExtractDaily, ExtractPeriodic, ExtractShlist}

// ParseExtractKind validates a projection name.
func ParseExtractKind(s string) (ExtractKind, error) {
	for _, k := range ExtractKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown extraction %q", ErrInvalid, s)
}

func extractPredicate(cfg *config.Config, kind ExtractKind) func(Line) bool {
	p := cfg.Properties
	switch kind {
	case ExtractDaily:
		return func(l Line) bool { return strings.Contains(l.Raw, p.DailyRecValue) }
	case ExtractBooked:
		return func(l Line) bool { return l.HasProp(p.Due) && !l.HasProp(p.Rec) }
	case ExtractPeriodic:
		return func(l Line) bool { return l.HasProp(p.Rec) && !strings.Contains(l.Raw, p.DailyRecValue) }
	case ExtractShlist:
		return func(l Line) bool { return l.HasWord(cfg.Tags.ShlistCat) }
	}
	return nil
}

// Extract collects every active line of the portfolio matching kind, in
// file-then-line order. Top Tasks List sections hold copies and are skipped.
func Extract(cfg *config.Config, kind ExtractKind, docs []Document) ([]string, error) {
	match := extractPredicate(cfg, kind)
	if match == nil {
		return nil, fmt.Errorf("%w: unknown extraction %q", ErrInvalid, kind)
	}
	var out []string
	for _, doc := range docs {
		walkSections(cfg, doc.Lines, func(_ int, l Line, inTTL bool) bool {
			if l.Active && !inTTL && match(l) {
				out = append(out, l.Raw)
			}
			return true
		})
	}
	return out, nil
}
