package mcp

import (
	"context"
	"encoding/json"

	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/gymstats/dashboard"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler handles MCP tool requests and responses: parses input, calls the service, formats MCP result.
type Handler struct {
	service contextService
}

func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

// DashboardInput is the input for get_enriched_exercises and get_workout_stats.
type DashboardInput struct {
	Date   string `json:"date,omitempty" jsonschema:"Only exercises logged on this day (YYYY-MM-DD, UTC)"`
	Scope  string `json:"scope,omitempty" jsonschema:"Which listing to load: current (default), admin or all"`
	UserID string `json:"user_id,omitempty" jsonschema:"Only exercises of this user id"`
}

func (in DashboardInput) params() (dashboard.LoadParams, error) {
	scope, err := gymapi.ParseScope(in.Scope)
	if err != nil {
		return dashboard.LoadParams{}, err
	}
	date, err := dashboard.ParseDate(in.Date)
	if err != nil {
		return dashboard.LoadParams{}, err
	}
	return dashboard.LoadParams{
		Date:   date,
		Scope:  scope,
		UserID: gymapi.ID(in.UserID),
	}, nil
}

// GetEnrichedExercisesTool returns the MCP tool handler for get_enriched_exercises.
func (h *Handler) GetEnrichedExercisesTool() func(context.Context, *mcp.CallToolRequest, DashboardInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DashboardInput) (*mcp.CallToolResult, any, error) {
		params, err := in.params()
		if err != nil {
			return errorResult("Invalid input: " + err.Error()), nil, nil
		}
		list, err := h.service.EnrichedExercises(ctx, params)
		if err != nil {
			return errorResult("Error loading exercises: " + err.Error()), nil, nil
		}
		return jsonResult(list), nil, nil
	}
}

// GetWorkoutStatsTool returns the MCP tool handler for get_workout_stats.
func (h *Handler) GetWorkoutStatsTool() func(context.Context, *mcp.CallToolRequest, DashboardInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DashboardInput) (*mcp.CallToolResult, any, error) {
		params, err := in.params()
		if err != nil {
			return errorResult("Invalid input: " + err.Error()), nil, nil
		}
		workoutStats, err := h.service.WorkoutStats(ctx, params)
		if err != nil {
			return errorResult("Error computing stats: " + err.Error()), nil, nil
		}
		return jsonResult(workoutStats), nil, nil
	}
}

// CatalogInput is the input for get_exercise_catalog.
type CatalogInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"Bypass the cached catalog"`
}

// GetExerciseCatalogTool returns the MCP tool handler for get_exercise_catalog.
func (h *Handler) GetExerciseCatalogTool() func(context.Context, *mcp.CallToolRequest, CatalogInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in CatalogInput) (*mcp.CallToolResult, any, error) {
		definitions, err := h.service.Catalog(ctx, in.Refresh)
		if err != nil {
			return errorResult("Error fetching catalog: " + err.Error()), nil, nil
		}
		return jsonResult(definitions), nil, nil
	}
}

// ExerciseSetsInput is the input for get_exercise_sets.
type ExerciseSetsInput struct {
	LoggedExerciseID string `json:"logged_exercise_id" jsonschema:"Id of the logged exercise (user exercise)"`
}

// GetExerciseSetsTool returns the MCP tool handler for get_exercise_sets.
func (h *Handler) GetExerciseSetsTool() func(context.Context, *mcp.CallToolRequest, ExerciseSetsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ExerciseSetsInput) (*mcp.CallToolResult, any, error) {
		id := gymapi.ID(in.LoggedExerciseID)
		if id.IsZero() {
			return errorResult("Invalid input: logged_exercise_id is required"), nil, nil
		}
		result := h.service.ExerciseSets(ctx, id)
		if result.Err != nil && len(result.Sets) == 0 {
			return errorResult("Error fetching sets (" + string(result.Outcome) + "): " + result.Err.Error()), nil, nil
		}
		return jsonResult(result.Sets), nil, nil
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
