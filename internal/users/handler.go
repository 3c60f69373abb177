package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/2beens/gymdash/internal/auth"
	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/telemetry/tracing"
	"github.com/2beens/gymdash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=users_test

type usersAPI interface {
	ListUsers(ctx context.Context, token string) ([]gymapi.User, error)
	GetUser(ctx context.Context, token string, id gymapi.ID) (*gymapi.User, error)
	CreateUser(ctx context.Context, token string, user gymapi.User) (*gymapi.User, error)
	UpdateUser(ctx context.Context, token string, id gymapi.ID, user gymapi.User) (*gymapi.User, error)
	DeleteUser(ctx context.Context, token string, id gymapi.ID) error
}

// Handler proxies the user administration of the remote API. Whether the
// caller may do any of it is decided remotely.
type Handler struct {
	api usersAPI
}

func NewHandler(api usersAPI) *Handler {
	return &Handler{
		api: api,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.list")
	defer span.End()

	creds, ok := auth.FromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	users, err := handler.api.ListUsers(ctx, creds.AccessToken)
	if err != nil {
		gymapi.WriteHTTPError(w, "list users", err)
		return
	}
	for i := range users {
		users[i].Password = ""
	}

	pkg.WriteJSON(w, users, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.get")
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

	user, err := handler.api.GetUser(ctx, creds.AccessToken, id)
	if err != nil {
		gymapi.WriteHTTPError(w, "get user", err)
		return
	}
	user.Password = ""

	pkg.WriteJSON(w, user, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.add")
	defer span.End()

	creds, ok := auth.FromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, ok := decodeUser(w, r, true)
	if !ok {
		return
	}

	created, err := handler.api.CreateUser(ctx, creds.AccessToken, user)
	if err != nil {
		gymapi.WriteHTTPError(w, "add user", err)
		return
	}
	created.Password = ""

	log.Debugf("new user added: %s", created.ID)
	pkg.WriteJSON(w, created, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.update")
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

	user, ok := decodeUser(w, r, false)
	if !ok {
		return
	}

	updated, err := handler.api.UpdateUser(ctx, creds.AccessToken, id, user)
	if err != nil {
		gymapi.WriteHTTPError(w, "update user", err)
		return
	}
	updated.Password = ""

	pkg.WriteJSON(w, updated, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.delete")
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

	if err := handler.api.DeleteUser(ctx, creds.AccessToken, id); err != nil {
		gymapi.WriteHTTPError(w, "delete user", err)
		return
	}

	log.Debugf("user %s deleted", id)
	pkg.WriteTextResponseOK(w, "deleted")
}

func decodeUser(w http.ResponseWriter, r *http.Request, create bool) (gymapi.User, bool) {
	var user gymapi.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		log.Debugf("user, unmarshal json params: %s", err)
		http.Error(w, "error, invalid user", http.StatusBadRequest)
		return user, false
	}
	if err := validateUser(user, create); err != nil {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return user, false
	}
	return user, true
}

func validateUser(user gymapi.User, create bool) error {
	if strings.TrimSpace(user.FirstName) == "" || strings.TrimSpace(user.LastName) == "" {
		return errors.New("first and last name are required")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return errors.New("valid email is required")
	}
	if create && user.Password == "" {
		return errors.New("password is required")
	}
	switch user.Role {
	case "", auth.RoleAdmin, auth.RoleUser:
	default:
		return errors.New("role must be admin or user")
	}
	return nil
}
