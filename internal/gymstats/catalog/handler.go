package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/2beens/gymdash/internal/auth"
	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/telemetry/tracing"
	"github.com/2beens/gymdash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=catalog_test

type catalogService interface {
	Load(ctx context.Context, token string, forceRefresh bool) (*Catalog, error)
	Get(ctx context.Context, token string, id gymapi.ID) (*gymapi.ExerciseDefinition, error)
	Create(ctx context.Context, token string, in gymapi.DefinitionInput) (*gymapi.ExerciseDefinition, error)
	Update(ctx context.Context, token string, id gymapi.ID, in gymapi.DefinitionInput) (*gymapi.ExerciseDefinition, error)
	Delete(ctx context.Context, token string, id gymapi.ID) error
}

type Handler struct {
	service catalogService
}

func NewHandler(service catalogService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.list")
	defer span.End()

	creds, ok := auth.FromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	forceRefresh := r.URL.Query().Get("refresh") == "true"
	c, err := handler.service.Load(ctx, creds.AccessToken, forceRefresh)
	if err != nil {
		gymapi.WriteHTTPError(w, "get catalog", err)
		return
	}

	pkg.WriteJSON(w, c.Definitions(), http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.get")
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

	def, err := handler.service.Get(ctx, creds.AccessToken, id)
	if err != nil {
		gymapi.WriteHTTPError(w, "get exercise definition", err)
		return
	}

	pkg.WriteJSON(w, def, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.add")
	defer span.End()

	creds, ok := auth.FromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	in, ok := decodeDefinitionInput(w, r)
	if !ok {
		return
	}

	def, err := handler.service.Create(ctx, creds.AccessToken, in)
	if err != nil {
		gymapi.WriteHTTPError(w, "add exercise definition", err)
		return
	}

	log.Debugf("new exercise definition added: %s", def.Name)
	pkg.WriteJSON(w, def, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.update")
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

	in, ok := decodeDefinitionInput(w, r)
	if !ok {
		return
	}

	def, err := handler.service.Update(ctx, creds.AccessToken, id, in)
	if err != nil {
		gymapi.WriteHTTPError(w, "update exercise definition", err)
		return
	}

	pkg.WriteJSON(w, def, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.delete")
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

	if err := handler.service.Delete(ctx, creds.AccessToken, id); err != nil {
		gymapi.WriteHTTPError(w, "delete exercise definition", err)
		return
	}

	log.Debugf("exercise definition %s deleted", id)
	pkg.WriteTextResponseOK(w, "deleted")
}

func decodeDefinitionInput(w http.ResponseWriter, r *http.Request) (gymapi.DefinitionInput, bool) {
	var in gymapi.DefinitionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Errorf("exercise definition, unmarshal json params: %s", err)
		http.Error(w, "error, invalid exercise definition", http.StatusBadRequest)
		return in, false
	}
	if err := in.Validate(); err != nil {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return in, false
	}
	return in, true
}
