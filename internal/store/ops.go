package store

import (
	"fmt"

	"github.com/amirbrooks/atlas/internal/tasks"
)

// Row-scoped operations take 0-based rows. Each returns the files it
// rewrote, in write order.

// MarkTaskDone marks the task at row of a daily file done, then resolves it
// at its origin in the portfolio. Both rewrites are computed before anything
// is written, so an origin that cannot be resolved leaves every file as it
// was. The daily file is written first; a task without an origin leaves the
// portfolio untouched.
func (w *Workspace) MarkTaskDone(path string, row int) ([]string, error) {
	now := timeNow()
	doc, err := w.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	lines, original, err := tasks.MarkTaskDone(w.cfg, doc, row, now)
	if err != nil {
		return nil, err
	}
	portfolio, err := w.Portfolio()
	if err != nil {
		return nil, err
	}
	origin, err := tasks.MarkDoneAtOrigin(w.cfg, original, portfolio, now)
	if err != nil {
		return nil, fmt.Errorf("resolve at origin: %w", err)
	}

	if err := w.replace(path, lines); err != nil {
		return nil, err
	}
	written := []string{path}
	w.log.Info().Str("file", path).Int("row", row+1).Msg("task marked done")

	if origin == nil {
		w.log.Debug().Str("task", original).Msg("no origin found")
	} else {
		if err := w.WriteDocument(*origin); err != nil {
			return written, err
		}
		written = append(written, origin.Path)
		w.log.Info().Str("file", origin.Path).Msg("task resolved at origin")
	}

	if w.cfg.Options.RefreshAfterDone {
		if _, err := w.refresh(path); err != nil {
			w.log.Warn().Err(err).Str("file", path).Msg("refresh after done skipped")
		}
	}
	return written, nil
}

// refresh analyses and schedules a daily file in one rewrite.
func (w *Workspace) refresh(path string) (tasks.Summary, error) {
	doc, err := w.ReadDocument(path)
	if err != nil {
		return tasks.Summary{}, err
	}
	analysed, sum, err := tasks.AnalyseTasks(w.cfg, doc.Lines)
	if err != nil {
		return tasks.Summary{}, err
	}
	scheduled, err := tasks.ScheduleTasks(w.cfg, analysed, timeNow())
	if err != nil {
		return tasks.Summary{}, err
	}
	return sum, w.replace(path, scheduled)
}

// MarkTaskForRescheduling moves the line at row to the end of a daily file
// with the for-rescheduling (or rescheduled-periodic) marker.
func (w *Workspace) MarkTaskForRescheduling(path string, row int, periodic bool) ([]string, error) {
	doc, err := w.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	lines, err := tasks.MarkTaskForRescheduling(w.cfg, doc, row, periodic, timeNow())
	if err != nil {
		return nil, err
	}
	if err := w.replace(path, lines); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// ReschedulePeriodicTask advances the periodic task at row at its origin,
// then marks it rescheduled in the daily file.
func (w *Workspace) ReschedulePeriodicTask(path string, row int) ([]string, error) {
	now := timeNow()
	doc, err := w.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	task, err := tasks.PeriodicTaskText(w.cfg, doc, row)
	if err != nil {
		return nil, err
	}
	lines, err := tasks.MarkTaskForRescheduling(w.cfg, doc, row, true, now)
	if err != nil {
		return nil, err
	}
	portfolio, err := w.Portfolio()
	if err != nil {
		return nil, err
	}
	origin, err := tasks.MarkDoneAtOrigin(w.cfg, task, portfolio, now)
	if err != nil {
		return nil, fmt.Errorf("resolve at origin: %w", err)
	}

	var written []string
	if origin != nil {
		if err := w.WriteDocument(*origin); err != nil {
			return nil, err
		}
		written = append(written, origin.Path)
	} else {
		w.log.Debug().Str("task", task).Msg("no origin found")
	}
	if err := w.replace(path, lines); err != nil {
		return written, err
	}
	return append(written, path), nil
}

// ToggleTop flips the line at row between open and top.
func (w *Workspace) ToggleTop(path string, row int) error {
	doc, err := w.ReadDocument(path)
	if err != nil {
		return err
	}
	lines, err := tasks.ToggleTop(w.cfg, doc, row)
	if err != nil {
		return err
	}
	return w.replace(path, lines)
}

// TagLine tags the line at row with the file's label. It reports whether
// the line changed; an unchanged file is not rewritten.
func (w *Workspace) TagLine(path string, row int) (bool, error) {
	doc, err := w.ReadDocument(path)
	if err != nil {
		return false, err
	}
	lines, changed, err := tasks.TagLine(w.cfg, doc, row)
	if err != nil || !changed {
		return false, err
	}
	return true, w.replace(path, lines)
}

// AddAdHocTask inserts task into the portfolio or daily file at path.
func (w *Workspace) AddAdHocTask(path string, task tasks.AdHocTask) error {
	doc, err := w.ReadDocument(path)
	if err != nil {
		return err
	}
	lines, err := tasks.AddAdHocTask(w.cfg, doc, task)
	if err != nil {
		return err
	}
	return w.replace(path, lines)
}

// ScheduleTasks stamps the active tasks of path starting now.
func (w *Workspace) ScheduleTasks(path string) error {
	doc, err := w.ReadDocument(path)
	if err != nil {
		return err
	}
	lines, err := tasks.ScheduleTasks(w.cfg, doc.Lines, timeNow())
	if err != nil {
		return err
	}
	return w.replace(path, lines)
}

// AnalyseTasks rewrites the duration header of path.
func (w *Workspace) AnalyseTasks(path string) (tasks.Summary, error) {
	doc, err := w.ReadDocument(path)
	if err != nil {
		return tasks.Summary{}, err
	}
	lines, sum, err := tasks.AnalyseTasks(w.cfg, doc.Lines)
	if err != nil {
		return tasks.Summary{}, err
	}
	return sum, w.replace(path, lines)
}

// SortFile sorts the lines of path, dropping blanks.
func (w *Workspace) SortFile(path string) error {
	doc, err := w.ReadDocument(path)
	if err != nil {
		return err
	}
	return w.replace(path, tasks.SortLines(doc.Lines))
}

// MoveLine swaps the line at row with its neighbour delta rows away.
func (w *Workspace) MoveLine(path string, row, delta int) error {
	doc, err := w.ReadDocument(path)
	if err != nil {
		return err
	}
	lines, err := tasks.MoveLine(doc.Lines, row, delta)
	if err != nil {
		return err
	}
	return w.replace(path, lines)
}
