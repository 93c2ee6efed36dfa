package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amirbrooks/atlas/internal/tasks"
)

// AuxPath returns the auxiliary file a projection is written to.
func (w *Workspace) AuxPath(kind tasks.ExtractKind) (string, error) {
	f := w.cfg.Files
	switch kind {
	case tasks.ExtractDaily:
		return w.cfg.Path(f.Daily), nil
	case tasks.ExtractBooked:
		return w.cfg.Path(f.Booked), nil
	case tasks.ExtractPeriodic:
		return w.cfg.Path(f.Periodic), nil
	case tasks.ExtractShlist:
		return w.cfg.Path(f.Shlist), nil
	}
	return "", fmt.Errorf("%w: unknown extraction %q", ErrInvalid, kind)
}

// Extract regenerates one auxiliary file from the portfolio, replacing its
// previous contents. It returns the file and the number of lines written.
func (w *Workspace) Extract(kind tasks.ExtractKind) (string, int, error) {
	path, err := w.AuxPath(kind)
	if err != nil {
		return "", 0, err
	}
	portfolio, err := w.Portfolio()
	if err != nil {
		return "", 0, err
	}
	return w.extract(kind, path, portfolio)
}

func (w *Workspace) extract(kind tasks.ExtractKind, path string, portfolio []tasks.Document) (string, int, error) {
	lines, err := tasks.Extract(w.cfg, kind, portfolio)
	if err != nil {
		return "", 0, err
	}
	if err := w.replace(path, lines); err != nil {
		return "", 0, err
	}
	w.log.Info().Str("kind", string(kind)).Str("file", path).Int("tasks", len(lines)).Msg("extracted")
	return path, len(lines), nil
}

// ExtractAll regenerates every auxiliary file from one read of the portfolio.
func (w *Workspace) ExtractAll() ([]string, error) {
	portfolio, err := w.Portfolio()
	if err != nil {
		return nil, err
	}
	var written []string
	for _, kind := range tasks.ExtractKinds {
		path, err := w.AuxPath(kind)
		if err != nil {
			return written, err
		}
		if _, _, err := w.extract(kind, path, portfolio); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// GenerateTTL rebuilds the Top Tasks List of the portfolio file at path.
func (w *Workspace) GenerateTTL(path string) error {
	if !w.cfg.IsPortfolio(path) {
		return &tasks.PreconditionError{Reason: path + " is not a portfolio file"}
	}
	doc, err := w.ReadDocument(path)
	if err != nil {
		return err
	}
	lines, err := tasks.GenerateTTL(w.cfg, doc.Lines)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return w.replace(path, lines)
}

// GenerateTTLs rebuilds the Top Tasks List of every portfolio file.
func (w *Workspace) GenerateTTLs() ([]string, error) {
	var written []string
	for _, path := range w.cfg.PortfolioPaths() {
		if err := w.GenerateTTL(path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// DailyFileName is the name of the daily tasks file for date.
func (w *Workspace) DailyFileName(date time.Time) string {
	return date.Format("20060102") + w.cfg.Files.Extension
}

// PrepareDayPlan regenerates the Top Tasks Lists and auxiliary files, builds
// the plan for date into the today file and copies it to the daily tasks
// file of that date. An existing daily tasks file is only replaced when
// overwrite is set.
func (w *Workspace) PrepareDayPlan(date time.Time, overwrite bool) (string, error) {
	dailyPath := w.cfg.Path(w.DailyFileName(date))
	if _, err := os.Stat(dailyPath); err == nil && !overwrite {
		return "", fmt.Errorf("%w: %s already exists", ErrConflict, dailyPath)
	}

	if _, err := w.GenerateTTLs(); err != nil {
		return "", err
	}
	if _, err := w.ExtractAll(); err != nil {
		return "", err
	}

	portfolio, err := w.Portfolio()
	if err != nil {
		return "", err
	}
	in := tasks.DayPlanInput{Portfolio: portfolio}
	for _, src := range []struct {
		name string
		dst  *[]string
	}{
		{w.cfg.Files.Daily, &in.Daily},
		{w.cfg.Files.Booked, &in.Booked},
		{w.cfg.Files.Periodic, &in.Periodic},
	} {
		doc, err := w.readOptional(w.cfg.Path(src.name))
		if err != nil {
			return "", err
		}
		*src.dst = doc.Lines
	}

	plan := tasks.BuildDayPlan(w.cfg, in, date)
	todayPath := w.cfg.Path(w.cfg.Files.Today)
	if err := w.replace(todayPath, plan); err != nil {
		return "", err
	}
	if err := w.replace(dailyPath, plan); err != nil {
		return "", err
	}
	w.log.Info().Str("file", dailyPath).Int("tasks", len(plan)-2).Msg("day plan prepared")
	return dailyPath, nil
}

// ArchiveDailyFile moves a daily tasks file into the archive directory.
func (w *Workspace) ArchiveDailyFile(path string) (string, error) {
	if !tasks.IsDailyFile(path) {
		return "", &tasks.PreconditionError{Reason: "only daily tasks files can be archived, not " + path}
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", err
	}
	dir := w.cfg.Path(w.cfg.Files.ArchiveDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("%w: %s already archived", ErrConflict, dest)
	}
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("archive %s: %w", path, err)
	}
	w.log.Info().Str("file", path).Str("dest", dest).Msg("archived")
	return dest, nil
}
