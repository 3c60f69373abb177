package gymstats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/gymdash/internal/auth"
	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/gymstats/dashboard"
	"github.com/2beens/gymdash/internal/gymstats/sets"
	"github.com/2beens/gymdash/internal/gymstats/stats"
	"github.com/2beens/gymdash/internal/telemetry/tracing"
	"github.com/2beens/gymdash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=gymstats_test

type dashboardService interface {
	Load(ctx context.Context, creds *auth.Credentials, params dashboard.LoadParams) (*dashboard.Snapshot, error)
	Current(creds *auth.Credentials) (*dashboard.Snapshot, bool)
	Sets(ctx context.Context, token string, loggedExerciseID gymapi.ID) sets.Result
	CreateExerciseWithSets(ctx context.Context, token string, exerciseID gymapi.ID, newSets []gymapi.Set) (*dashboard.CreatedExercise, error)
	AddSets(ctx context.Context, token string, loggedExerciseID gymapi.ID, newSets []gymapi.Set) ([]gymapi.Set, error)
	DeleteExercise(ctx context.Context, token string, loggedExerciseID gymapi.ID) error
	DeleteSet(ctx context.Context, token string, setID gymapi.ID) error
}

type NewExerciseRequest struct {
	ExerciseID gymapi.ID    `json:"exercise_id"`
	Sets       []gymapi.Set `json:"sets"`
}

type AddSetsRequest struct {
	Sets []gymapi.Set `json:"sets"`
}

type SetsResponse struct {
	Sets      []gymapi.Set `json:"sets"`
	Outcome   sets.Outcome `json:"outcome"`
	Candidate string       `json:"candidate,omitempty"`
	Error     string       `json:"error,omitempty"`
}

type StatsResponse struct {
	Statistics stats.Statistics    `json:"statistics"`
	History    []stats.DayProgress `json:"history"`
}

type Handler struct {
	service dashboardService
}

func NewHandler(service dashboardService) *Handler {
	return &Handler{
		service: service,
	}
}

// HandleLoad runs a dashboard load. Query: date (YYYY-MM-DD), scope
// (current|admin|all), user_id, refresh=true to bypass the catalog cache.
func (handler *Handler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.load")
	defer span.End()

	creds, ok := auth.FromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	snapshot, err := handler.service.Load(ctx, creds, loadParams(r))
	if err != nil {
		writeError(w, "load exercises", err)
		return
	}

	pkg.WriteJSON(w, snapshot, http.StatusOK)
}

func (handler *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.current")
	defer span.End()

	creds, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	snapshot, ok := handler.service.Current(creds)
	if !ok {
		http.Error(w, "nothing loaded yet", http.StatusNotFound)
		return
	}

	pkg.WriteJSON(w, snapshot, http.StatusOK)
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.stats")
	defer span.End()

	creds, ok := auth.FromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	snapshot, err := handler.service.Load(ctx, creds, loadParams(r))
	if err != nil {
		writeError(w, "get stats", err)
		return
	}

	pkg.WriteJSON(w, StatsResponse{
		Statistics: snapshot.Statistics,
		History:    stats.History(snapshot.Enriched(), time.UTC),
	}, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.add")
	defer span.End()

	creds, ok := auth.FromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req NewExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debugf("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed: invalid json", http.StatusBadRequest)
		return
	}

	created, err := handler.service.CreateExerciseWithSets(ctx, creds.AccessToken, req.ExerciseID, req.Sets)
	if err != nil {
		if created != nil {
			log.Warnf("exercise %s created with %d of %d sets: %s", created.Exercise.ID, len(created.Sets), len(req.Sets), err)
		}
		writeError(w, "add exercise", err)
		return
	}

	log.Debugf("new exercise added: %s with %d sets", created.Exercise.ID, len(created.Sets))
	pkg.WriteJSON(w, created, http.StatusCreated)
}

func (handler *Handler) HandleGetSets(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.getSets")
	defer span.End()

	creds, ok := auth.FromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := gymapi.ID(mux.Vars(r)["id"])
	if id.IsZero() {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	result := handler.service.Sets(ctx, creds.AccessToken, id)
	resp := SetsResponse{
		Sets:      result.Sets,
		Outcome:   result.Outcome,
		Candidate: result.Candidate,
	}
	if resp.Sets == nil {
		resp.Sets = []gymapi.Set{}
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}

	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (handler *Handler) HandleAddSets(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.addSets")
	defer span.End()

	creds, ok := auth.FromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := gymapi.ID(mux.Vars(r)["id"])
	if id.IsZero() {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var req AddSetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "add sets failed: invalid json", http.StatusBadRequest)
		return
	}

	added, err := handler.service.AddSets(ctx, creds.AccessToken, id, req.Sets)
	if err != nil {
		writeError(w, "add sets", err)
		return
	}

	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.delete")
	defer span.End()

	creds, ok := auth.FromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := gymapi.ID(mux.Vars(r)["id"])
	if id.IsZero() {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.service.DeleteExercise(ctx, creds.AccessToken, id); err != nil {
		writeError(w, "delete exercise", err)
		return
	}

	log.Debugf("logged exercise %s deleted", id)
	pkg.WriteTextResponseOK(w, "deleted")
}

func (handler *Handler) HandleDeleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gymstats.deleteSet")
	defer span.End()

	creds, ok := auth.FromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := gymapi.ID(mux.Vars(r)["id"])
	if id.IsZero() {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.service.DeleteSet(ctx, creds.AccessToken, id); err != nil {
		writeError(w, "delete set", err)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func loadParams(r *http.Request) dashboard.LoadParams {
	query := r.URL.Query()
	return dashboard.LoadParams{
		Date:           query.Get("date"),
		Scope:          gymapi.Scope(query.Get("scope")),
		UserID:         gymapi.ID(query.Get("user_id")),
		RefreshCatalog: query.Get("refresh") == "true",
	}
}

func writeError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, dashboard.ErrInvalidInput):
		http.Error(w, action+" failed: "+err.Error(), http.StatusBadRequest)
	case errors.Is(err, dashboard.ErrStaleLoad):
		http.Error(w, action+" failed: "+err.Error(), http.StatusConflict)
	default:
		gymapi.WriteHTTPError(w, action, err)
	}
}
