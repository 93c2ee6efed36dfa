package tasks

import (
	"github.com/amirbrooks/atlas/internal/config"
)

// Summary holds the duration totals of one file, in minutes.
type Summary struct {
	Remaining     int
	WorkRemaining int
	Earned        int
	WorkEarned    int
}

// AnalyseTasks sums remaining (active) and earned (done) durations, overall
// and for work-tagged lines, drops previous info lines and prepends a fresh
// two-line header: remaining first, earned second.
func AnalyseTasks(cfg *config.Config, lines []string) ([]string, Summary, error) {
	var sum Summary
	for _, raw := range lines {
		if raw == "" {
			continue
		}
		l := Parse(cfg, raw)
		switch {
		case l.Active:
			d, err := Duration(cfg, l)
			if err != nil {
				return nil, Summary{}, err
			}
			sum.Remaining += d
			if l.HasWord(cfg.Tags.Work) {
				sum.WorkRemaining += d
			}
		case l.Marker == cfg.Symbols.Done:
			d, err := Duration(cfg, l)
			if err != nil {
				return nil, Summary{}, err
			}
			sum.Earned += d
			if l.HasWord(cfg.Tags.Work) {
				sum.WorkEarned += d
			}
		}
	}

	sep := cfg.Symbols.Separator
	out := []string{
		cfg.Symbols.Info + sep + cfg.Forms.RemainingDuration +
			FormatClock(cfg, sum.Remaining) + " (" + FormatClock(cfg, sum.WorkRemaining) + ")",
		cfg.Symbols.Info + sep + cfg.Forms.EarnedTimeBalance +
			FormatClock(cfg, sum.Earned) + " (" + FormatClock(cfg, sum.WorkEarned) + ")",
	}
	for _, raw := range lines {
		if Parse(cfg, raw).Marker == cfg.Symbols.Info {
			continue
		}
		out = append(out, raw)
	}
	return out, sum, nil
}
