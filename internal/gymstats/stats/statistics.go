package stats

import (
	"math"
	"time"

	"github.com/2beens/gymdash/internal/gymstats/enrich"

	"github.com/shopspring/decimal"
)

// Statistics are the dashboard totals over one loaded set of exercises.
type Statistics struct {
	TodayCount  int     `json:"todayCount"`
	TotalSets   int     `json:"totalSets"`
	TotalReps   int     `json:"totalReps"`
	MaxWeight   float64 `json:"maxWeight"`
	TotalVolume float64 `json:"totalVolume"`
}

// ExerciseSummary holds the per-card figures of one enriched exercise.
type ExerciseSummary struct {
	Sets      int     `json:"sets"`
	Reps      int     `json:"reps"`
	MaxWeight float64 `json:"maxWeight"`
	Volume    float64 `json:"volume"`
}

// Summarize computes totals over items. TodayCount counts items whose date
// falls on now's calendar day, in now's location.
func Summarize(items []enrich.EnrichedExercise, now time.Time) Statistics {
	var (
		statistics Statistics
		volume     = decimal.Zero
	)

	for _, item := range items {
		if sameDay(item.Date, now) {
			statistics.TodayCount++
		}

		for _, set := range item.Sets {
			statistics.TotalSets++
			statistics.TotalReps += set.Reps
			if finite(set.Weight) && set.Weight > statistics.MaxWeight {
				statistics.MaxWeight = set.Weight
			}
			volume = volume.Add(setVolume(set.Reps, set.Weight))
		}
	}

	statistics.TotalVolume = volume.Round(1).InexactFloat64()
	return statistics
}

func SummarizeExercise(item enrich.EnrichedExercise) ExerciseSummary {
	summary := ExerciseSummary{Sets: len(item.Sets)}
	volume := decimal.Zero
	for _, set := range item.Sets {
		summary.Reps += set.Reps
		if finite(set.Weight) && set.Weight > summary.MaxWeight {
			summary.MaxWeight = set.Weight
		}
		volume = volume.Add(setVolume(set.Reps, set.Weight))
	}
	summary.Volume = volume.Round(1).InexactFloat64()
	return summary
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// setVolume is zero for a non-finite weight, which decimal cannot hold.
func setVolume(reps int, weight float64) decimal.Decimal {
	if !finite(weight) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(weight).Mul(decimal.NewFromInt(int64(reps)))
}

func sameDay(t, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
