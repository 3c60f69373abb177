package sets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/telemetry/metrics"
	"github.com/2beens/gymdash/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

// Outcome of looking up the sets of one logged exercise.
type Outcome string

const (
	OutcomeFound       Outcome = "found"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeLookupError Outcome = "lookup_error"
)

// Candidate is one URL shape the remote API may serve the sets of a logged
// exercise under. The remote API has no documented endpoint for it.
type Candidate struct {
	Name string
	Path func(id gymapi.ID) string
}

// DefaultCandidates are tried in order.
var DefaultCandidates = []Candidate{
	{
		Name: "path_exercise_id",
		Path: func(id gymapi.ID) string { return "/sets/exercise_id/" + url.PathEscape(id.String()) },
	},
	{
		Name: "query_exercise_id",
		Path: func(id gymapi.ID) string { return "/sets?exercise_id=" + url.QueryEscape(id.String()) },
	},
	{
		Name: "query_user_exercise_id",
		Path: func(id gymapi.ID) string { return "/sets?user_exercise_id=" + url.QueryEscape(id.String()) },
	},
	{
		Name: "nested",
		Path: func(id gymapi.ID) string { return "/sets/" + url.PathEscape(id.String()) + "/sets" },
	},
	{
		Name: "path_user_exercise",
		Path: func(id gymapi.ID) string { return "/sets/user_exercise/" + url.PathEscape(id.String()) },
	},
}

// Result of FetchSets. Sets is never nil.
type Result struct {
	Sets      []gymapi.Set
	Outcome   Outcome
	Candidate string
	Err       error
}

//go:generate mockgen -source=$GOFILE -destination=fetcher_mocks_test.go -package=sets_test

type gymGetter interface {
	Get(ctx context.Context, token, path string) ([]byte, error)
}

// Fetcher looks up the sets of a logged exercise by probing the candidate
// endpoints one after another, stopping at the first usable answer.
type Fetcher struct {
	api        gymGetter
	candidates []Candidate
	metrics    *metrics.Manager
}

func NewFetcher(api gymGetter, metricsManager *metrics.Manager) *Fetcher {
	return NewFetcherWithCandidates(api, DefaultCandidates, metricsManager)
}

func NewFetcherWithCandidates(api gymGetter, candidates []Candidate, metricsManager *metrics.Manager) *Fetcher {
	return &Fetcher{
		api:        api,
		candidates: candidates,
		metrics:    metricsManager,
	}
}

// FetchSets never fails; a lookup problem is reported through the Outcome.
func (f *Fetcher) FetchSets(ctx context.Context, token string, loggedExerciseID gymapi.ID) Result {
	ctx, span := tracing.GlobalTracer.Start(ctx, "setsFetcher.fetchSets")
	defer span.End()
	span.SetAttributes(attribute.String("logged_exercise.id", loggedExerciseID.String()))

	result := Result{
		Sets:    []gymapi.Set{},
		Outcome: OutcomeNotFound,
	}
	if loggedExerciseID.IsZero() {
		return result
	}

	var lookupErrs error
	for _, candidate := range f.candidates {
		if ctx.Err() != nil {
			lookupErrs = multierr.Append(lookupErrs, ctx.Err())
			break
		}

		sets, usable, err := f.probe(ctx, token, candidate, loggedExerciseID)
		if usable {
			f.count(candidate.Name, "found")
			span.SetAttributes(attribute.String("sets.candidate", candidate.Name))
			return Result{
				Sets:      sets,
				Outcome:   OutcomeFound,
				Candidate: candidate.Name,
			}
		}

		if err != nil && isLookupError(err) {
			f.count(candidate.Name, "error")
			lookupErrs = multierr.Append(lookupErrs, fmt.Errorf("%s: %w", candidate.Name, err))
			continue
		}
		f.count(candidate.Name, "miss")
	}

	if lookupErrs != nil {
		log.Debugf("sets fetcher: no sets for logged exercise %s: %s", loggedExerciseID, lookupErrs)
		result.Outcome = OutcomeLookupError
		result.Err = lookupErrs
		span.SetAttributes(attribute.String("sets.lookup_error", lookupErrs.Error()))
	}

	return result
}

// probe asks one candidate. usable is false when the next candidate should be tried.
func (f *Fetcher) probe(ctx context.Context, token string, candidate Candidate, id gymapi.ID) ([]gymapi.Set, bool, error) {
	respBytes, err := f.api.Get(ctx, token, candidate.Path(id))
	if err != nil {
		return nil, false, err
	}

	sets, err := decodeSets(respBytes)
	if err != nil {
		log.Tracef("sets fetcher: candidate %s for %s unusable: %s", candidate.Name, id, err)
		return nil, false, nil
	}
	if sets == nil {
		return nil, false, nil
	}
	return sets, true, nil
}

// decodeSets accepts an array, or a single object that becomes a one element
// slice. Anything else, null included, yields nil.
func decodeSets(respBytes []byte) ([]gymapi.Set, error) {
	trimmed := bytes.TrimSpace(respBytes)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		sets := []gymapi.Set{}
		if err := json.Unmarshal(trimmed, &sets); err != nil {
			return nil, err
		}
		return sets, nil
	case '{':
		var set gymapi.Set
		if err := json.Unmarshal(trimmed, &set); err != nil {
			return nil, err
		}
		return []gymapi.Set{set}, nil
	}

	return nil, nil
}

// isLookupError tells apart answers meaning "not here" (404, 405, 422 and
// other client errors) from failures that hide whether sets exist.
func isLookupError(err error) bool {
	var apiErr *gymapi.APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return true
	}
	return apiErr.StatusCode >= http.StatusInternalServerError
}

func (f *Fetcher) count(candidate, result string) {
	if f.metrics == nil {
		return
	}
	f.metrics.CounterSetsProbe.WithLabelValues(candidate, result).Inc()
}
