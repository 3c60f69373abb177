package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with the gymdash tools: enriched exercises,
// workout stats, exercise catalog and exercise sets.
// Used by cmd/gymdash_mcp over stdio.
func NewServer(service contextService, version string) *mcp.Server {
	h := NewHandler(service)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "gymdash",
		Version: version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_enriched_exercises",
		Description: "Returns logged exercises joined with their sets and catalog definition (name, description, video url), newest first. Optional: date (YYYY-MM-DD), scope (current, admin, all), user_id. Use when you need to see what was trained.",
	}, h.GetEnrichedExercisesTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_workout_stats",
		Description: "Returns workout statistics (exercises today, total sets, total reps, max weight, total volume) and per-day progression (avg and max weight, volume). Optional: date (YYYY-MM-DD), scope (current, admin, all), user_id.",
	}, h.GetWorkoutStatsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_exercise_catalog",
		Description: "Returns the exercise catalog (id, name, description, video url). Optional: refresh to bypass the cache.",
	}, h.GetExerciseCatalogTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_exercise_sets",
		Description: "Returns the sets (reps, weight) of one logged exercise. Arg: logged_exercise_id.",
	}, h.GetExerciseSetsTool())

	return s
}
