package synth

import (
	"math"
	"time"
)

type SummaryView struct {
	Total     int     `json:"total"`
	Count     int     `json:"count"`
	AvgHourly float64 `json:"avg_hourly"`
	Hours     float64 `json:"hours"`
	Goal      int     `json:"goal"`
	Progress  int     `json:"progress"`
}

// DailySummary synthesizes the day's earnings summary against the caller's
// goal. Progress is round(100 * total / goal) capped at 100; a non-positive
// goal yields progress 0 rather than a division error, with the goal echoed
// back unchanged so the caller can see what was applied.
func DailySummary(identityID int64, goal int, day time.Time) SummaryView {
	rng := source(identityID, TopicSummary, day)

	total := intIn(rng, 6000, 16000)
	hours := roundTo(floatIn(rng, 2.0, 8.0), 1)
	count := intIn(rng, 8, 28)

	avgHourly := 0.0
	if hours > 0 {
		avgHourly = roundTo(float64(total)/hours, 1)
	}

	progress := 0
	if goal > 0 {
		progress = int(math.Round(100 * float64(total) / float64(goal)))
		if progress > 100 {
			progress = 100
		}
	}

	return SummaryView{
		Total:     total,
		Count:     count,
		AvgHourly: avgHourly,
		Hours:     hours,
		Goal:      goal,
		Progress:  progress,
	}
}
