package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

const (
	userToken  = "remote-user-token"
	adminToken = "remote-admin-token"
)

// fakeGymAPI is an in-memory stand-in for the remote gym API.
type fakeGymAPI struct {
	*httptest.Server

	mu               sync.Mutex
	nextID           int
	loggedExercises  map[string]map[string]any
	sets             map[string][]map[string]any
	definitionsCalls int
}

func newFakeGymAPI() *fakeGymAPI {
	api := &fakeGymAPI{
		nextID:          100,
		loggedExercises: make(map[string]map[string]any),
		sets:            make(map[string][]map[string]any),
	}

	r := mux.NewRouter()
	r.HandleFunc("/auth/login", api.handleLogin).Methods("POST")
	r.HandleFunc("/users/", api.authed(api.handleUsersProbe)).Methods("GET")
	r.HandleFunc("/all_exercises", api.authed(api.handleCatalog)).Methods("GET")
	r.HandleFunc("/user_exercises/user/current", api.authed(api.handleListLogged)).Methods("GET")
	r.HandleFunc("/user_exercises", api.authed(api.handleCreateLogged)).Methods("POST")
	r.HandleFunc("/user_exercises/{id}", api.authed(api.handleDeleteLogged)).Methods("DELETE")
	r.HandleFunc("/sets/exercise_id/{id}", api.authed(api.handleListSets)).Methods("GET")
	r.HandleFunc("/sets", api.authed(api.handleCreateSet)).Methods("POST")
	r.HandleFunc("/sets/{id}", api.authed(api.handleDeleteSet)).Methods("DELETE")

	api.Server = httptest.NewServer(r)
	return api
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (api *fakeGymAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token != userToken && token != adminToken {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next(w, r)
	}
}

func (api *fakeGymAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "bad form")
		return
	}
	switch {
	case r.Form.Get("username") == testUsername && r.Form.Get("password") == testPassword:
		writeJSON(w, http.StatusOK, map[string]string{"access_token": userToken, "token_type": "bearer"})
	case r.Form.Get("username") == testAdminUsername && r.Form.Get("password") == testPassword:
		writeJSON(w, http.StatusOK, map[string]string{"access_token": adminToken, "token_type": "bearer"})
	default:
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
	}
}

func (api *fakeGymAPI) handleUsersProbe(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+adminToken {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	writeJSON(w, http.StatusOK, []any{})
}

func (api *fakeGymAPI) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	api.mu.Lock()
	api.definitionsCalls++
	api.mu.Unlock()

	writeJSON(w, http.StatusOK, []map[string]any{
		{"id": 1, "name": "Back Squat", "description": "legs", "url": "https://video/squat"},
		{"id": 2, "name": "Bench Press", "description": "chest"},
	})
}

func (api *fakeGymAPI) handleListLogged(w http.ResponseWriter, _ *http.Request) {
	api.mu.Lock()
	defer api.mu.Unlock()

	list := make([]map[string]any, 0, len(api.loggedExercises))
	for _, le := range api.loggedExercises {
		list = append(list, le)
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *fakeGymAPI) handleCreateLogged(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	api.nextID++
	id := strconv.Itoa(api.nextID)
	le := map[string]any{
		"id":          api.nextID,
		"user_id":     5,
		"exercise_id": body["exercise_id"],
		"date":        "2024-05-01T10:00:00",
	}
	api.loggedExercises[id] = le
	writeJSON(w, http.StatusCreated, le)
}

func (api *fakeGymAPI) handleDeleteLogged(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	api.mu.Lock()
	defer api.mu.Unlock()

	if _, ok := api.loggedExercises[id]; !ok {
		writeDetail(w, http.StatusNotFound, "User exercise not found")
		return
	}
	delete(api.loggedExercises, id)
	delete(api.sets, id)
	writeJSON(w, http.StatusOK, map[string]string{"detail": "deleted"})
}

func (api *fakeGymAPI) handleListSets(w http.ResponseWriter, r *http.Request) {
	api.mu.Lock()
	defer api.mu.Unlock()

	list, ok := api.sets[mux.Vars(r)["id"]]
	if !ok {
		list = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *fakeGymAPI) handleCreateSet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reps       int             `json:"reps"`
		Weight     float64         `json:"weight"`
		ExerciseID json.RawMessage `json:"exercise_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	exerciseID := strings.Trim(string(body.ExerciseID), `"`)

	api.mu.Lock()
	defer api.mu.Unlock()

	api.nextID++
	set := map[string]any{
		"id":          api.nextID,
		"exercise_id": exerciseID,
		"reps":        body.Reps,
		"weight":      body.Weight,
	}
	api.sets[exerciseID] = append(api.sets[exerciseID], set)
	writeJSON(w, http.StatusCreated, set)
}

func (api *fakeGymAPI) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	api.mu.Lock()
	defer api.mu.Unlock()

	for exerciseID, list := range api.sets {
		for i, set := range list {
			if strconv.Itoa(set["id"].(int)) == id {
				api.sets[exerciseID] = append(list[:i], list[i+1:]...)
				writeJSON(w, http.StatusOK, map[string]string{"detail": "deleted"})
				return
			}
		}
	}
	writeDetail(w, http.StatusNotFound, "Set not found")
}

func (api *fakeGymAPI) catalogCalls() int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.definitionsCalls
}
