package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/gymdash/internal/auth"
	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/gymstats/catalog"
	"github.com/2beens/gymdash/internal/gymstats/enrich"
	"github.com/2beens/gymdash/internal/gymstats/sets"
	"github.com/2beens/gymdash/internal/gymstats/stats"
	"github.com/2beens/gymdash/internal/telemetry/metrics"
	"github.com/2beens/gymdash/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const maxParallelSetWrites = 4

type gymAPI interface {
	ListLoggedExercises(ctx context.Context, token string, scope gymapi.Scope) ([]gymapi.LoggedExercise, error)
	CreateLoggedExercise(ctx context.Context, token string, exerciseID gymapi.ID) (*gymapi.LoggedExercise, error)
	DeleteLoggedExercise(ctx context.Context, token string, id gymapi.ID) error
	CreateSet(ctx context.Context, token string, set gymapi.Set) (*gymapi.Set, error)
	DeleteSet(ctx context.Context, token string, id gymapi.ID) error
}

type catalogLoader interface {
	Load(ctx context.Context, token string, forceRefresh bool) (*catalog.Catalog, error)
}

type exercisesEnricher interface {
	EnrichAll(ctx context.Context, items []gymapi.LoggedExercise, c *catalog.Catalog, token string) []enrich.EnrichedExercise
}

type setsFetcher interface {
	FetchSets(ctx context.Context, token string, loggedExerciseID gymapi.ID) sets.Result
}

// Service runs dashboard loads and the logged exercise CRUD.
type Service struct {
	api      gymAPI
	catalog  catalogLoader
	enricher exercisesEnricher
	sets     setsFetcher
	sessions *SessionStore
	metrics  *metrics.Manager

	NowFunc func() time.Time
}

func NewService(
	api gymAPI,
	catalogLoader catalogLoader,
	enricher exercisesEnricher,
	setsFetcher setsFetcher,
	sessions *SessionStore,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		api:      api,
		catalog:  catalogLoader,
		enricher: enricher,
		sets:     setsFetcher,
		sessions: sessions,
		metrics:  metricsManager,
		NowFunc:  time.Now,
	}
}

// Load fetches, enriches and summarizes the logged exercises visible to
// creds. A newer load of the same session cancels this one, which then
// fails with ErrStaleLoad and leaves the newer state untouched.
func (s *Service) Load(ctx context.Context, creds *auth.Credentials, params LoadParams) (snapshot *Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	params, err = params.normalized()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if params.Scope == "" {
		params.Scope = gymapi.ScopeCurrent
	}
	span.SetAttributes(
		attribute.String("dashboard.scope", string(params.Scope)),
		attribute.String("dashboard.date", params.Date),
	)

	key := creds.Key()
	session := s.sessions.Get(key)
	session.touch(s.NowFunc())
	loadCtx, generation := session.begin(ctx)
	defer func() {
		session.finish(generation)
		if err != nil {
			s.sessions.dropIfEmpty(key, session)
		}
	}()
	span.SetAttributes(attribute.Int64("dashboard.generation", int64(generation)))

	token := creds.AccessToken

	var catalogErr error
	c, err := s.catalog.Load(loadCtx, token, params.RefreshCatalog)
	if err != nil {
		if fatal(err) {
			return nil, s.staleOr(session, generation, err)
		}
		log.Warnf("dashboard: catalog unavailable, continuing with an empty one: %s", err)
		catalogErr = err
		c = catalog.Empty()
	}

	items, err := s.api.ListLoggedExercises(loadCtx, token, params.Scope)
	if err != nil {
		return nil, s.staleOr(session, generation, fmt.Errorf("list logged exercises: %w", err))
	}

	filtered := make([]gymapi.LoggedExercise, 0, len(items))
	for _, le := range items {
		if params.keep(le) {
			filtered = append(filtered, le)
		}
	}

	enriched := s.enricher.EnrichAll(loadCtx, filtered, c, token)
	statistics := stats.Summarize(enriched, s.NowFunc())

	snapshot = &Snapshot{
		LoadedAt:    s.NowFunc(),
		Scope:       params.Scope,
		Date:        params.Date,
		UserID:      params.UserID,
		Exercises:   newExerciseViews(enriched),
		Statistics:  statistics,
		CatalogSize: c.Len(),
	}
	if catalogErr != nil {
		snapshot.CatalogError = catalogErr.Error()
	}

	if !session.commit(generation, snapshot) {
		s.countStale()
		return nil, ErrStaleLoad
	}

	log.Debugf("dashboard: load %d committed, %d of %d exercises", generation, len(filtered), len(items))
	return snapshot, nil
}

// Current returns the last committed snapshot of the session of creds.
func (s *Service) Current(creds *auth.Credentials) (*Snapshot, bool) {
	session, ok := s.sessions.Lookup(creds.Key())
	if !ok {
		return nil, false
	}
	session.touch(s.NowFunc())
	snapshot := session.Snapshot()
	return snapshot, snapshot != nil
}

// EvictIdle forgets the dashboard state of sessions unused for maxIdle.
func (s *Service) EvictIdle(maxIdle time.Duration) int {
	evicted := s.sessions.EvictIdle(s.NowFunc().Add(-maxIdle))
	if evicted > 0 {
		log.Debugf("dashboard: evicted %d idle sessions", evicted)
	}
	return evicted
}

// Forget drops the dashboard state of creds.
func (s *Service) Forget(creds *auth.Credentials) {
	s.sessions.Remove(creds.Key())
}

func (s *Service) Sets(ctx context.Context, token string, loggedExerciseID gymapi.ID) sets.Result {
	return s.sets.FetchSets(ctx, token, loggedExerciseID)
}

// CreatedExercise is a logged exercise together with the sets created for it.
type CreatedExercise struct {
	Exercise *gymapi.LoggedExercise `json:"exercise"`
	Sets     []gymapi.Set           `json:"sets"`
}

// CreateExerciseWithSets logs exerciseID and then creates its sets in
// parallel. Set failures are combined; the sets that were created are
// still returned.
func (s *Service) CreateExerciseWithSets(ctx context.Context, token string, exerciseID gymapi.ID, newSets []gymapi.Set) (created *CreatedExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.createExerciseWithSets")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if exerciseID.IsZero() {
		return nil, fmt.Errorf("%w: exercise id is required", ErrInvalidInput)
	}
	if err := validateSets(newSets); err != nil {
		return nil, err
	}

	le, err := s.api.CreateLoggedExercise(ctx, token, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("create logged exercise: %w", err)
	}

	createdSets, err := s.createSets(ctx, token, le.ID, newSets)
	return &CreatedExercise{
		Exercise: le,
		Sets:     createdSets,
	}, err
}

// AddSets creates sets for an existing logged exercise.
func (s *Service) AddSets(ctx context.Context, token string, loggedExerciseID gymapi.ID, newSets []gymapi.Set) (_ []gymapi.Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.addSets")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if loggedExerciseID.IsZero() {
		return nil, fmt.Errorf("%w: logged exercise id is required", ErrInvalidInput)
	}
	if err := validateSets(newSets); err != nil {
		return nil, err
	}

	return s.createSets(ctx, token, loggedExerciseID, newSets)
}

func (s *Service) createSets(ctx context.Context, token string, loggedExerciseID gymapi.ID, newSets []gymapi.Set) ([]gymapi.Set, error) {
	results := make([]*gymapi.Set, len(newSets))

	var (
		mu       sync.Mutex
		combined error
	)

	var g errgroup.Group
	g.SetLimit(maxParallelSetWrites)
	for i, set := range newSets {
		set.ExerciseID = loggedExerciseID
		g.Go(func() error {
			created, err := s.api.CreateSet(ctx, token, set)
			if err != nil {
				mu.Lock()
				combined = multierr.Append(combined, fmt.Errorf("set %d: %w", i+1, err))
				mu.Unlock()
				return nil
			}
			results[i] = created
			return nil
		})
	}
	// failures are collected in combined
	_ = g.Wait()

	createdSets := make([]gymapi.Set, 0, len(newSets))
	for _, created := range results {
		if created != nil {
			createdSets = append(createdSets, *created)
		}
	}

	if combined != nil {
		return createdSets, fmt.Errorf("create sets: %w", combined)
	}
	return createdSets, nil
}

// DeleteExercise deletes the known sets of a logged exercise and then the
// exercise itself. The exercise is kept if any set could not be deleted.
func (s *Service) DeleteExercise(ctx context.Context, token string, loggedExerciseID gymapi.ID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.deleteExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if loggedExerciseID.IsZero() {
		return fmt.Errorf("%w: logged exercise id is required", ErrInvalidInput)
	}

	setsResult := s.sets.FetchSets(ctx, token, loggedExerciseID)
	if setsResult.Outcome == sets.OutcomeLookupError {
		log.Warnf("dashboard: sets of %s unknown before delete: %s", loggedExerciseID, setsResult.Err)
	}

	var combined error
	for _, set := range setsResult.Sets {
		if set.ID.IsZero() {
			continue
		}
		if err := s.api.DeleteSet(ctx, token, set.ID); err != nil && !errors.Is(err, gymapi.ErrNotFound) {
			combined = multierr.Append(combined, fmt.Errorf("set %s: %w", set.ID, err))
		}
	}
	if combined != nil {
		return fmt.Errorf("delete sets: %w", combined)
	}

	if err := s.api.DeleteLoggedExercise(ctx, token, loggedExerciseID); err != nil {
		return fmt.Errorf("delete logged exercise: %w", err)
	}
	return nil
}

func (s *Service) DeleteSet(ctx context.Context, token string, setID gymapi.ID) error {
	if setID.IsZero() {
		return fmt.Errorf("%w: set id is required", ErrInvalidInput)
	}
	return s.api.DeleteSet(ctx, token, setID)
}

func validateSets(newSets []gymapi.Set) error {
	if len(newSets) == 0 {
		return fmt.Errorf("%w: at least one set is required", ErrInvalidInput)
	}
	for i, set := range newSets {
		if err := set.Validate(); err != nil {
			return fmt.Errorf("%w: set %d: %s", ErrInvalidInput, i+1, err)
		}
	}
	return nil
}

// fatal reports errors that must fail the whole load.
func fatal(err error) bool {
	return errors.Is(err, gymapi.ErrUnauthorized) || errors.Is(err, gymapi.ErrNoToken)
}

func (s *Service) staleOr(session *Session, generation uint64, err error) error {
	if !session.current(generation) {
		s.countStale()
		return ErrStaleLoad
	}
	return err
}

func (s *Service) countStale() {
	if s.metrics != nil {
		s.metrics.CounterStaleLoads.Inc()
	}
}
