package enrich

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/gymstats/catalog"
	"github.com/2beens/gymdash/internal/gymstats/sets"
	"github.com/2beens/gymdash/internal/telemetry/metrics"
	"github.com/2beens/gymdash/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 8

type setsFetcher interface {
	FetchSets(ctx context.Context, token string, loggedExerciseID gymapi.ID) sets.Result
}

type definitionGetter interface {
	GetDefinition(ctx context.Context, token string, id gymapi.ID) (*gymapi.ExerciseDefinition, error)
}

// Enricher joins logged exercises with their sets and catalog definitions.
type Enricher struct {
	sets        setsFetcher
	definitions definitionGetter
	concurrency int
	metrics     *metrics.Manager
}

func NewEnricher(
	setsFetcher setsFetcher,
	definitions definitionGetter,
	concurrency int,
	metricsManager *metrics.Manager,
) *Enricher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Enricher{
		sets:        setsFetcher,
		definitions: definitions,
		concurrency: concurrency,
		metrics:     metricsManager,
	}
}

// Enrich never fails: lookup misses fall back to placeholders and a panic
// degrades the result to the original fields with no sets.
func (e *Enricher) Enrich(ctx context.Context, le gymapi.LoggedExercise, c *catalog.Catalog, token string) (enriched EnrichedExercise) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "enricher.enrich")
	span.SetAttributes(attribute.String("logged_exercise.id", le.ID.String()))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("enricher: panic while enriching logged exercise %s: %v\n%s", le.ID, r, debug.Stack())
			enriched = degraded(le, fmt.Errorf("enrichment panicked: %v", r))
			if e.metrics != nil {
				e.metrics.CounterEnrichDegraded.Inc()
			}
		}
		span.SetAttributes(attribute.String("enrich.definition_source", string(enriched.DefinitionSource)))
		e.countSource(enriched.DefinitionSource)
	}()

	enriched = newEnriched(le)

	setsResult := e.sets.FetchSets(ctx, token, le.ID)
	if setsResult.Sets != nil {
		enriched.Sets = setsResult.Sets
	}
	enriched.SetsLookup = setsResult.Outcome
	if setsResult.Err != nil {
		enriched.SetsLookupError = setsResult.Err.Error()
	}

	ref := le.Exercise
	if ref.Embedded != nil {
		enriched.applyDefinition(*ref.Embedded, ref.ID, SourceEmbedded)
		return enriched
	}

	if ref.ID.IsZero() {
		enriched.applyPlaceholder("", SourceUnknown)
		return enriched
	}

	if def, ok := c.Lookup(ref.ID); ok {
		enriched.applyDefinition(def, ref.ID, SourceCache)
		return enriched
	}

	def, err := e.definitions.GetDefinition(ctx, token, ref.ID)
	if err != nil || def == nil {
		log.Debugf("enricher: definition %s of logged exercise %s unresolved: %v", ref.ID, le.ID, err)
		enriched.applyPlaceholder(ref.ID, SourceUnknown)
		return enriched
	}

	enriched.applyDefinition(*def, ref.ID, SourceRemote)
	return enriched
}

// EnrichAll enriches items concurrently, at most e.concurrency at a time.
// The result has one entry per item, in item order.
func (e *Enricher) EnrichAll(ctx context.Context, items []gymapi.LoggedExercise, c *catalog.Catalog, token string) []EnrichedExercise {
	ctx, span := tracing.GlobalTracer.Start(ctx, "enricher.enrichAll")
	span.SetAttributes(attribute.Int("enrich.items", len(items)))
	defer span.End()

	start := time.Now()
	enriched := make([]EnrichedExercise, len(items))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i := range items {
		g.Go(func() error {
			enriched[i] = e.Enrich(ctx, items[i], c, token)
			return nil
		})
	}
	// enrichment goroutines never return errors
	_ = g.Wait()

	if e.metrics != nil {
		e.metrics.HistEnrichBatchDuration.Observe(time.Since(start).Seconds())
	}
	log.Debugf("enricher: enriched %d logged exercises in %s", len(items), time.Since(start))

	return enriched
}

func degraded(le gymapi.LoggedExercise, err error) EnrichedExercise {
	enriched := newEnriched(le)
	enriched.applyPlaceholder(le.Exercise.ID, SourceDegraded)
	enriched.SetsLookup = sets.OutcomeLookupError
	enriched.SetsLookupError = err.Error()
	return enriched
}

func (e *Enricher) countSource(source DefinitionSource) {
	if e.metrics == nil || source == "" {
		return
	}
	e.metrics.CounterDefinitionSource.WithLabelValues(string(source)).Inc()
}
