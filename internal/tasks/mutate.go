package tasks

import (
	"strconv"
	"strings"
	"time"

	"github.com/amirbrooks/atlas/internal/config"
)

// Mutators work on the full line list of one document. They return the
// rewritten lines and leave doc untouched; on error nothing is returned.
// Rows are 0-based.

func requireDaily(doc Document) error {
	if !IsDailyFile(doc.Path) {
		return preconditionf("this command can only be run from a daily tasks file, not %s", doc.Path)
	}
	return nil
}

func checkRow(lines []string, row int) error {
	if row < 0 || row >= len(lines) {
		return preconditionf("row %d is out of range (file has %d lines)", row+1, len(lines))
	}
	return nil
}

// removeRow returns lines without lines[row].
func removeRow(lines []string, row int) []string {
	out := make([]string, 0, len(lines)-1)
	out = append(out, lines[:row]...)
	return append(out, lines[row+1:]...)
}

// insertAt returns lines with line inserted before index i.
func insertAt(lines []string, i int, line string) []string {
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:i]...)
	out = append(out, line)
	return append(out, lines[i:]...)
}

// MarkTaskDone moves the active task at row to the end of a daily file,
// stamp stripped and prefixed with the done marker and today's date. It also
// returns the stripped task text, which identifies the task at its origin.
func MarkTaskDone(cfg *config.Config, doc Document, row int, now time.Time) ([]string, string, error) {
	if err := requireDaily(doc); err != nil {
		return nil, "", err
	}
	lines := trimTrailingBlank(doc.Lines)
	if err := checkRow(lines, row); err != nil {
		return nil, "", err
	}
	task := StripStamp(cfg, lines[row])
	if !Parse(cfg, task).Active {
		return nil, "", preconditionf("row %d is not an active task", row+1)
	}
	sep := cfg.Symbols.Separator
	done := cfg.Symbols.Done + sep + FormatDate(cfg, now) + sep + task
	out := append(removeRow(lines, row), done)
	return trimTrailingBlank(out), task, nil
}

// MarkTaskForRescheduling moves the line at row to the end of a daily file,
// prefixed with the for-rescheduling marker (or the rescheduled-periodic
// marker when periodic is set) and today's date.
func MarkTaskForRescheduling(cfg *config.Config, doc Document, row int, periodic bool, now time.Time) ([]string, error) {
	if err := requireDaily(doc); err != nil {
		return nil, err
	}
	lines := trimTrailingBlank(doc.Lines)
	if err := checkRow(lines, row); err != nil {
		return nil, err
	}
	if strings.TrimSpace(lines[row]) == "" {
		return nil, preconditionf("row %d is blank", row+1)
	}
	marker := cfg.Symbols.ForRescheduling
	if periodic {
		marker = cfg.Symbols.RescheduledPeriodic
	}
	sep := cfg.Symbols.Separator
	moved := marker + sep + FormatDate(cfg, now) + sep + lines[row]
	out := append(removeRow(lines, row), moved)
	return trimTrailingBlank(out), nil
}

// PeriodicTaskText validates the line at row for rescheduling a periodic
// task and returns its stamp-stripped text. The line must be active and
// recurring, but not recur daily.
func PeriodicTaskText(cfg *config.Config, doc Document, row int) (string, error) {
	if err := requireDaily(doc); err != nil {
		return "", err
	}
	if err := checkRow(doc.Lines, row); err != nil {
		return "", err
	}
	task := StripStamp(cfg, doc.Lines[row])
	l := Parse(cfg, task)
	switch {
	case !l.Active:
		return "", preconditionf("row %d is not an active task", row+1)
	case !l.HasProp(cfg.Properties.Rec):
		return "", preconditionf("row %d is not a periodic task", row+1)
	case strings.Contains(task, cfg.Properties.DailyRecValue):
		return "", preconditionf("row %d recurs daily and cannot be rescheduled", row+1)
	}
	return task, nil
}

// ToggleTop flips the marker of the active task at row between open and top.
// Lines carrying a due date or a recurrence are refused.
func ToggleTop(cfg *config.Config, doc Document, row int) ([]string, error) {
	lines := trimTrailingBlank(doc.Lines)
	if err := checkRow(lines, row); err != nil {
		return nil, err
	}
	l := Parse(cfg, lines[row])
	if !l.Active {
		return nil, preconditionf("row %d is not an active task", row+1)
	}
	if l.HasProp(cfg.Properties.Due) || l.HasProp(cfg.Properties.Rec) {
		return nil, preconditionf("row %d is scheduled or periodic; top status not changed", row+1)
	}
	marker := cfg.Symbols.Top
	if l.Marker == cfg.Symbols.Top {
		marker = cfg.Symbols.Open
	}
	lines[row] = marker + l.Raw[len(l.Marker):]
	return lines, nil
}

// TagLine appends the tag derived from the document's label to the active
// line at row. It reports false, with lines unchanged, when the line is not
// active or already carries the tag.
func TagLine(cfg *config.Config, doc Document, row int) ([]string, bool, error) {
	lines := trimTrailingBlank(doc.Lines)
	if err := checkRow(lines, row); err != nil {
		return nil, false, err
	}
	tag := cfg.Symbols.TagPrefix + doc.Label()
	l := Parse(cfg, lines[row])
	if !l.Active || strings.Contains(l.Raw, tag) {
		return lines, false, nil
	}
	lines[row] = l.Raw + cfg.Symbols.Separator + tag
	return lines, true, nil
}

// AdHocTask is a task entered outside of normal planning.
type AdHocTask struct {
	Description string
	Duration    int
	Tags        []string
	Finished    bool
	Work        bool
}

// Line renders the task with the open or done marker.
func (t AdHocTask) Line(cfg *config.Config) string {
	sep := cfg.Symbols.Separator
	marker := cfg.Symbols.Open
	if t.Finished {
		marker = cfg.Symbols.Done
	}
	parts := []string{marker, strings.TrimSpace(t.Description), cfg.Properties.Dur + strconv.Itoa(t.Duration)}
	for _, tag := range t.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			parts = append(parts, tag)
		}
	}
	if t.Work && !containsString(parts[3:], cfg.Tags.Work) {
		parts = append(parts, cfg.Tags.Work)
	}
	return strings.Join(parts, sep)
}

// AddAdHocTask inserts task into doc. In a portfolio file an open task goes
// right after the incoming heading; finished tasks are refused there. In a
// daily file a finished task is appended at the end and an open task goes
// before the tasks-done heading, or at the end of the content when the file
// has none.
func AddAdHocTask(cfg *config.Config, doc Document, task AdHocTask) ([]string, error) {
	if strings.TrimSpace(task.Description) == "" {
		return nil, preconditionf("ad hoc task needs a description")
	}
	if strings.ContainsAny(task.Description, "\r\n") {
		return nil, preconditionf("ad hoc task description must be a single line")
	}
	if task.Duration < 0 {
		return nil, preconditionf("ad hoc task duration must not be negative")
	}
	line := task.Line(cfg)
	lines := trimTrailingBlank(doc.Lines)

	switch {
	case cfg.IsPortfolio(doc.Path):
		if task.Finished {
			return nil, preconditionf("finished ad hoc tasks cannot be added to portfolio file %s", doc.Path)
		}
		for i, raw := range lines {
			l := Parse(cfg, raw)
			if l.Marker == cfg.Symbols.Heading && strings.Contains(raw, cfg.Headings.Incoming) {
				return insertAt(lines, i+1, line), nil
			}
		}
		return nil, preconditionf("%s has no %q heading", doc.Path, cfg.Headings.Incoming)
	case IsDailyFile(doc.Path):
		if task.Finished {
			return append(lines, line), nil
		}
		for i, raw := range lines {
			l := Parse(cfg, raw)
			if l.Marker == cfg.Symbols.Heading && cfg.Headings.TasksDone != "" && strings.Contains(raw, cfg.Headings.TasksDone) {
				return insertAt(lines, i, line), nil
			}
		}
		return append(lines, line), nil
	default:
		return nil, preconditionf("ad hoc tasks can only be added to a portfolio or daily tasks file, not %s", doc.Path)
	}
}

// MoveLine swaps the line at row with its neighbour delta rows away.
func MoveLine(lines []string, row, delta int) ([]string, error) {
	if err := checkRow(lines, row); err != nil {
		return nil, err
	}
	target := row + delta
	if err := checkRow(lines, target); err != nil {
		return nil, err
	}
	out := make([]string, len(lines))
	copy(out, lines)
	out[row], out[target] = out[target], out[row]
	return out, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
