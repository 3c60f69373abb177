package stats

import (
	"sort"
	"time"

	"github.com/2beens/gymdash/internal/gymstats/enrich"

	"github.com/shopspring/decimal"
)

// DayProgress represents progress statistics for one calendar day.
type DayProgress struct {
	Date          time.Time `json:"date"`
	ExerciseCount int       `json:"exerciseCount"`
	Sets          int       `json:"sets"`
	AvgWeight     float64   `json:"avgWeight"`
	MaxWeight     float64   `json:"maxWeight"`
	TotalVolume   float64   `json:"totalVolume"` // sum of (weight * reps) for the day
}

// History groups items per calendar day in loc, newest day first.
// Items without a date are left out.
func History(items []enrich.EnrichedExercise, loc *time.Location) []DayProgress {
	if loc == nil {
		loc = time.UTC
	}

	type dayTotals struct {
		progress DayProgress
		weights  decimal.Decimal
		volume   decimal.Decimal
	}

	day2totals := make(map[time.Time]*dayTotals)
	for _, item := range items {
		if item.Date.IsZero() {
			continue
		}
		y, m, d := item.Date.In(loc).Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)

		totals, ok := day2totals[day]
		if !ok {
			totals = &dayTotals{
				progress: DayProgress{Date: day},
				weights:  decimal.Zero,
				volume:   decimal.Zero,
			}
			day2totals[day] = totals
		}

		totals.progress.ExerciseCount++
		for _, set := range item.Sets {
			if !finite(set.Weight) {
				continue
			}
			totals.progress.Sets++
			if set.Weight > totals.progress.MaxWeight {
				totals.progress.MaxWeight = set.Weight
			}
			totals.weights = totals.weights.Add(decimal.NewFromFloat(set.Weight))
			totals.volume = totals.volume.Add(setVolume(set.Reps, set.Weight))
		}
	}

	history := make([]DayProgress, 0, len(day2totals))
	for _, totals := range day2totals {
		progress := totals.progress
		if progress.Sets > 0 {
			progress.AvgWeight = totals.weights.Div(decimal.NewFromInt(int64(progress.Sets))).Round(1).InexactFloat64()
		}
		progress.TotalVolume = totals.volume.Round(1).InexactFloat64()
		history = append(history, progress)
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})

	return history
}
