package tasks

import (
	"time"

	"github.com/amirbrooks/atlas/internal/config"
)

// ScheduleTasks stamps every active line with a running clock that starts at
// now and advances by each task's duration. Existing stamps are replaced.
// Any duration error aborts the pass with no output.
func ScheduleTasks(cfg *config.Config, lines []string, now time.Time) ([]string, error) {
	clock := now.Hour()*60 + now.Minute()
	out := make([]string, 0, len(lines))
	for _, raw := range lines {
		l := Parse(cfg, raw)
		if raw == "" || !l.Active {
			out = append(out, raw)
			continue
		}
		d, err := Duration(cfg, l)
		if err != nil {
			return nil, err
		}
		out = append(out, WithStamp(cfg, raw, FormatClock(cfg, clock%(24*60))))
		clock += d
	}
	return out, nil
}
