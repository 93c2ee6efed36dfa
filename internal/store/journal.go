package store

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amirbrooks/atlas/internal/tasks"
)

// BackUp copies the portfolio directory recursively into a new timestamped
// directory under the backup directory and returns it.
func (w *Workspace) BackUp() (string, error) {
	src := filepath.Clean(w.cfg.Files.BaseDir)
	dest := filepath.Join(w.cfg.Path(w.cfg.Files.BackupDir), timeNow().Format("20060102150405"))
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("%w: %s already exists", ErrConflict, dest)
	}

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// A backup directory inside the portfolio is not copied into itself.
		if d.IsDir() && path == filepath.Dir(dest) {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
	if err != nil {
		return "", fmt.Errorf("back up %s: %w", src, err)
	}
	w.log.Info().Str("src", src).Str("dest", dest).Msg("backed up")
	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ExtractEarnedTime appends the earned time header of a daily file, prefixed
// with the file's date, to the earned times log.
func (w *Workspace) ExtractEarnedTime(path string) (string, error) {
	if !tasks.IsDailyFile(path) {
		return "", &tasks.PreconditionError{Reason: "this command can only be run from a daily tasks file, not " + path}
	}
	doc, err := w.ReadDocument(path)
	if err != nil {
		return "", err
	}
	found := ""
	for _, line := range doc.Lines {
		if strings.Contains(line, w.cfg.Forms.EarnedTimeBalance) {
			found = line
		}
	}
	if found == "" {
		return "", &tasks.PreconditionError{Reason: path + " has no earned time line; analyse it first"}
	}
	entry := doc.Label() + w.cfg.Symbols.Separator + found

	logPath := w.cfg.Path(w.cfg.Files.EarnedTimes)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", logPath, err)
	}
	if _, err := f.WriteString(entry + "\n"); err != nil {
		f.Close()
		return "", fmt.Errorf("append %s: %w", logPath, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return entry, nil
}

// LogProgress prepends a timestamped entry to the progress log. The entry
// header records the time elapsed since the previous entry and the text is
// wrapped at the configured line length.
func (w *Workspace) LogProgress(entry string) (string, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return "", fmt.Errorf("%w: empty log entry", ErrInvalid)
	}
	path := w.cfg.Path(w.cfg.Files.ProgressLog)
	doc, err := w.readOptional(path)
	if err != nil {
		return "", err
	}

	now := timeNow()
	sep := w.cfg.Symbols.Separator
	id := newULID()
	lines := []string{w.cfg.Symbols.LogEntryPrefix + w.formatLogStamp(now) + sep + id}

	elapsed := "first entry"
	if prev, ok := w.previousLogStamp(doc.Lines, now.Location()); ok {
		elapsed = w.formatElapsed(now.Sub(prev)) + " from previous entry"
	}
	lines = append(lines, elapsed)
	lines = append(lines, wrap(entry, w.cfg.Options.LogLineLength)...)

	prev := doc.Lines
	for len(prev) > 0 && prev[len(prev)-1] == "" {
		prev = prev[:len(prev)-1]
	}
	if len(prev) > 0 {
		lines = append(lines, "")
		lines = append(lines, prev...)
	}

	if err := w.replace(path, lines); err != nil {
		return "", err
	}
	return id, nil
}

// formatLogStamp renders t as YYYY-MM-DD-HH-MM-SS with the date separator.
func (w *Workspace) formatLogStamp(t time.Time) string {
	ds := w.cfg.Symbols.DateSeparator
	return fmt.Sprintf("%04d%s%02d%s%02d%s%02d%s%02d%s%02d",
		t.Year(), ds, int(t.Month()), ds, t.Day(), ds, t.Hour(), ds, t.Minute(), ds, t.Second())
}

// previousLogStamp finds the stamp of the newest entry, which is the first
// entry header in the file.
func (w *Workspace) previousLogStamp(lines []string, loc *time.Location) (time.Time, bool) {
	prefix := w.cfg.Symbols.LogEntryPrefix
	for _, line := range lines {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		stamp, _, _ := strings.Cut(strings.TrimPrefix(line, prefix), w.cfg.Symbols.Separator)
		parts := strings.Split(stamp, w.cfg.Symbols.DateSeparator)
		if len(parts) != 6 {
			return time.Time{}, false
		}
		var n [6]int
		for i, p := range parts {
			v, err := strconv.Atoi(p)
			if err != nil {
				return time.Time{}, false
			}
			n[i] = v
		}
		return time.Date(n[0], time.Month(n[1]), n[2], n[3], n[4], n[5], 0, loc), true
	}
	return time.Time{}, false
}

// formatElapsed renders d as "N days, H:MM:SS".
func (w *Workspace) formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	days := secs / 86400
	secs %= 86400
	ts := w.cfg.Symbols.TimeSeparator
	return fmt.Sprintf("%d days, %d%s%02d%s%02d", days, secs/3600, ts, (secs%3600)/60, ts, secs%60)
}

// wrap splits s into chunks of at most width characters.
func wrap(s string, width int) []string {
	if width < 1 || utf8.RuneCountInString(s) <= width {
		return []string{s}
	}
	var out []string
	runes := []rune(s)
	for len(runes) > width {
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
