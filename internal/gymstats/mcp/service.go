package mcp

import (
	"context"
	"fmt"

	"github.com/2beens/gymdash/internal/auth"
	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/gymstats/catalog"
	"github.com/2beens/gymdash/internal/gymstats/dashboard"
	"github.com/2beens/gymdash/internal/gymstats/sets"
	"github.com/2beens/gymdash/internal/gymstats/stats"
)

// dashboardLoader loads enriched dashboards (for dependency injection and testing).
type dashboardLoader interface {
	Load(ctx context.Context, creds *auth.Credentials, params dashboard.LoadParams) (*dashboard.Snapshot, error)
	Sets(ctx context.Context, token string, loggedExerciseID gymapi.ID) sets.Result
}

type catalogLoader interface {
	Load(ctx context.Context, token string, forceRefresh bool) (*catalog.Catalog, error)
}

// contextService provides gymdash data to the MCP tools.
// Used by Handler for testability.
type contextService interface {
	EnrichedExercises(ctx context.Context, params dashboard.LoadParams) ([]dashboard.ExerciseView, error)
	WorkoutStats(ctx context.Context, params dashboard.LoadParams) (*WorkoutStats, error)
	Catalog(ctx context.Context, refresh bool) ([]gymapi.ExerciseDefinition, error)
	ExerciseSets(ctx context.Context, loggedExerciseID gymapi.ID) sets.Result
}

// WorkoutStats is the get_workout_stats payload.
type WorkoutStats struct {
	Statistics stats.Statistics    `json:"statistics"`
	History    []stats.DayProgress `json:"history"`
	Exercises  int                 `json:"exercises"`
}

// ContextService holds dependencies and implements the MCP tools business logic.
// All calls are made with the credentials of a single API token.
type ContextService struct {
	dashboard dashboardLoader
	catalog   catalogLoader
	creds     *auth.Credentials
}

// NewContextService builds a ContextService acting with the given remote API token.
func NewContextService(dashboard dashboardLoader, catalog catalogLoader, token string) *ContextService {
	return &ContextService{
		dashboard: dashboard,
		catalog:   catalog,
		creds:     &auth.Credentials{AccessToken: token},
	}
}

// EnrichedExercises loads the logged exercises matching params, enriched.
func (s *ContextService) EnrichedExercises(ctx context.Context, params dashboard.LoadParams) ([]dashboard.ExerciseView, error) {
	snapshot, err := s.dashboard.Load(ctx, s.creds, params)
	if err != nil {
		return nil, err
	}
	return snapshot.Exercises, nil
}

// WorkoutStats returns the statistics and the per-day progression of the
// logged exercises matching params.
func (s *ContextService) WorkoutStats(ctx context.Context, params dashboard.LoadParams) (*WorkoutStats, error) {
	snapshot, err := s.dashboard.Load(ctx, s.creds, params)
	if err != nil {
		return nil, err
	}
	return &WorkoutStats{
		Statistics: snapshot.Statistics,
		History:    stats.History(snapshot.Enriched(), nil),
		Exercises:  len(snapshot.Exercises),
	}, nil
}

func (s *ContextService) Catalog(ctx context.Context, refresh bool) ([]gymapi.ExerciseDefinition, error) {
	c, err := s.catalog.Load(ctx, s.creds.AccessToken, refresh)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c.Definitions(), nil
}

func (s *ContextService) ExerciseSets(ctx context.Context, loggedExerciseID gymapi.ID) sets.Result {
	return s.dashboard.Sets(ctx, s.creds.AccessToken, loggedExerciseID)
}
