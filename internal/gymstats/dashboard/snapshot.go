package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/gymstats/enrich"
	"github.com/2beens/gymdash/internal/gymstats/stats"
)

const dateLayout = "2006-01-02"

// ErrStaleLoad is returned by a load that was superseded by a newer load
// of the same session. Its result is discarded.
var ErrStaleLoad = errors.New("load superseded by a newer load")

// ErrInvalidInput marks errors caused by the caller's input.
var ErrInvalidInput = errors.New("invalid input")

type LoadParams struct {
	// Date keeps only exercises logged on this UTC calendar day (YYYY-MM-DD).
	Date   string
	Scope  gymapi.Scope
	UserID gymapi.ID
	// RefreshCatalog bypasses the cached catalog.
	RefreshCatalog bool
}

func (p LoadParams) Validate() error {
	_, err := p.normalized()
	return err
}

// normalized returns p with a trimmed date, or the first validation error.
func (p LoadParams) normalized() (LoadParams, error) {
	date, err := ParseDate(p.Date)
	if err != nil {
		return p, err
	}
	if _, err := gymapi.ParseScope(string(p.Scope)); err != nil {
		return p, err
	}
	p.Date = date
	return p, nil
}

func (p LoadParams) keep(le gymapi.LoggedExercise) bool {
	if p.Date != "" {
		if le.Date.IsZero() || le.Date.UTC().Format(dateLayout) != p.Date {
			return false
		}
	}
	if !p.UserID.IsZero() && !le.UserID.Equal(p.UserID) {
		return false
	}
	return true
}

// ExerciseView is an enriched exercise with its per-card figures.
type ExerciseView struct {
	enrich.EnrichedExercise
	Summary stats.ExerciseSummary `json:"summary"`
}

// Snapshot is the committed result of one dashboard load.
type Snapshot struct {
	Generation   uint64           `json:"generation"`
	LoadedAt     time.Time        `json:"loadedAt"`
	Scope        gymapi.Scope     `json:"scope"`
	Date         string           `json:"date,omitempty"`
	UserID       gymapi.ID        `json:"userId,omitempty"`
	Exercises    []ExerciseView   `json:"exercises"`
	Statistics   stats.Statistics `json:"statistics"`
	CatalogSize  int              `json:"catalogSize"`
	CatalogError string           `json:"catalogError,omitempty"`
}

func (s *Snapshot) Enriched() []enrich.EnrichedExercise {
	enriched := make([]enrich.EnrichedExercise, 0, len(s.Exercises))
	for _, ex := range s.Exercises {
		enriched = append(enriched, ex.EnrichedExercise)
	}
	return enriched
}

// newExerciseViews orders a copy of enriched newest first, undated last.
func newExerciseViews(enriched []enrich.EnrichedExercise) []ExerciseView {
	ordered := make([]enrich.EnrichedExercise, len(enriched))
	copy(ordered, enriched)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := ordered[i].Date, ordered[j].Date
		if di.IsZero() != dj.IsZero() {
			return dj.IsZero()
		}
		return di.After(dj)
	})

	views := make([]ExerciseView, 0, len(ordered))
	for _, e := range ordered {
		views = append(views, ExerciseView{
			EnrichedExercise: e,
			Summary:          stats.SummarizeExercise(e),
		})
	}
	return views
}

// ParseDate validates a YYYY-MM-DD date query parameter.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date [%s], expected YYYY-MM-DD", s)
	}
	return s, nil
}
