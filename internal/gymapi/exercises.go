package gymapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Scope selects which logged exercises a listing returns.
type Scope string

const (
	// ScopeCurrent is the logged in user's own exercises.
	ScopeCurrent Scope = "current"
	// ScopeAdmin is the per-user listing of the admin dashboard.
	ScopeAdmin Scope = "admin"
	// ScopeAll is every logged exercise.
	ScopeAll Scope = "all"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeCurrent:
		return ScopeCurrent, nil
	case ScopeAdmin:
		return ScopeAdmin, nil
	case ScopeAll:
		return ScopeAll, nil
	}
	return "", fmt.Errorf("unknown scope: %s", s)
}

func (s Scope) path() string {
	switch s {
	case ScopeAdmin:
		return "/user_exercises/user"
	case ScopeAll:
		return "/user_exercises"
	default:
		return "/user_exercises/user/current"
	}
}

// DefinitionInput is the writable part of a catalog entry.
type DefinitionInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	VideoURL    string `json:"url"`
}

func (in DefinitionInput) Validate() error {
	if in.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

const catalogPath = "/all_exercises"

// CatalogBytes returns the raw /all_exercises body, for callers that cache it.
func (c *Client) CatalogBytes(ctx context.Context, token string) ([]byte, error) {
	return c.Get(ctx, token, catalogPath)
}

func (c *Client) GetDefinition(ctx context.Context, token string, id ID) (*ExerciseDefinition, error) {
	var def ExerciseDefinition
	if err := c.getJSON(ctx, token, idPath(catalogPath, id), &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func (c *Client) CreateDefinition(ctx context.Context, token string, in DefinitionInput) (*ExerciseDefinition, error) {
	var def ExerciseDefinition
	if err := c.sendJSON(ctx, token, http.MethodPost, catalogPath, in, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// UpdateDefinition sends PUT and retries as PATCH when the remote API
// answers 405 Method Not Allowed.
func (c *Client) UpdateDefinition(ctx context.Context, token string, id ID, in DefinitionInput) (*ExerciseDefinition, error) {
	path := idPath(catalogPath, id)

	var def ExerciseDefinition
	err := c.sendJSON(ctx, token, http.MethodPut, path, in, &def)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusMethodNotAllowed {
		log.Debugf("gym api: PUT %s not allowed, retrying with PATCH", path)
		err = c.sendJSON(ctx, token, http.MethodPatch, path, in, &def)
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (c *Client) DeleteDefinition(ctx context.Context, token string, id ID) error {
	_, err := c.Do(ctx, token, http.MethodDelete, idPath(catalogPath, id), nil)
	return err
}

// ListLoggedExercises lists logged exercises of the given scope. A non-array
// body is an empty list; entries that are not objects are skipped.
func (c *Client) ListLoggedExercises(ctx context.Context, token string, scope Scope) ([]LoggedExercise, error) {
	respBytes, err := c.Get(ctx, token, scope.path())
	if err != nil {
		return nil, err
	}
	return decodeLoggedExercises(respBytes), nil
}

func decodeLoggedExercises(respBytes []byte) []LoggedExercise {
	items := []LoggedExercise{}
	trimmed := bytes.TrimSpace(respBytes)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return items
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		log.Warnf("gym api: decode logged exercises: %s", err)
		return items
	}

	for i, r := range raw {
		var le LoggedExercise
		if err := json.Unmarshal(r, &le); err != nil {
			log.Warnf("gym api: skipping logged exercise #%d: %s", i, err)
			continue
		}
		items = append(items, le)
	}
	return items
}

func (c *Client) GetLoggedExercise(ctx context.Context, token string, id ID) (*LoggedExercise, error) {
	var le LoggedExercise
	if err := c.getJSON(ctx, token, idPath("/user_exercises", id), &le); err != nil {
		return nil, err
	}
	return &le, nil
}

func (c *Client) CreateLoggedExercise(ctx context.Context, token string, exerciseID ID) (*LoggedExercise, error) {
	body := map[string]ID{"exercise_id": exerciseID}
	var le LoggedExercise
	if err := c.sendJSON(ctx, token, http.MethodPost, "/user_exercises", body, &le); err != nil {
		return nil, err
	}
	if le.ID.IsZero() {
		return nil, errors.New("created logged exercise has no id")
	}
	return &le, nil
}

func (c *Client) DeleteLoggedExercise(ctx context.Context, token string, id ID) error {
	_, err := c.Do(ctx, token, http.MethodDelete, idPath("/user_exercises", id), nil)
	return err
}

func (c *Client) CreateSet(ctx context.Context, token string, set Set) (*Set, error) {
	body := struct {
		Reps       int     `json:"reps"`
		Weight     float64 `json:"weight"`
		ExerciseID ID      `json:"exercise_id"`
	}{
		Reps:       set.Reps,
		Weight:     set.Weight,
		ExerciseID: set.ExerciseID,
	}

	var created Set
	if err := c.sendJSON(ctx, token, http.MethodPost, "/sets", body, &created); err != nil {
		return nil, err
	}
	if created.ExerciseID.IsZero() {
		created.ExerciseID = set.ExerciseID
	}
	return &created, nil
}

func (c *Client) DeleteSet(ctx context.Context, token string, id ID) error {
	_, err := c.Do(ctx, token, http.MethodDelete, idPath("/sets", id), nil)
	return err
}
