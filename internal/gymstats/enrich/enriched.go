package enrich

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/gymstats/sets"
)

// DefinitionSource tells where the name, description and video of an
// enriched exercise came from.
type DefinitionSource string

const (
	SourceEmbedded DefinitionSource = "embedded"
	SourceCache    DefinitionSource = "cache"
	SourceRemote   DefinitionSource = "remote"
	SourceUnknown  DefinitionSource = "unknown"
	SourceDegraded DefinitionSource = "degraded"
)

const unknownExerciseName = "Unknown Exercise"

// EnrichedExercise is a logged exercise joined with its sets and catalog
// definition. Built per load and never stored.
type EnrichedExercise struct {
	ID          gymapi.ID    `json:"id"`
	UserID      gymapi.ID    `json:"userId,omitempty"`
	ExerciseID  gymapi.ID    `json:"exerciseId,omitempty"`
	Date        time.Time    `json:"date,omitzero"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	VideoURL    string       `json:"videoUrl"`
	Category    string       `json:"category,omitempty"`
	Sets        []gymapi.Set `json:"sets"`

	DefinitionSource DefinitionSource           `json:"definitionSource"`
	SetsLookup       sets.Outcome               `json:"setsLookup"`
	SetsLookupError  string                     `json:"setsLookupError,omitempty"`
	Original         map[string]json.RawMessage `json:"original,omitempty"`
}

func newEnriched(le gymapi.LoggedExercise) EnrichedExercise {
	return EnrichedExercise{
		ID:         le.ID,
		UserID:     le.UserID,
		ExerciseID: le.Exercise.ID,
		Date:       le.Date,
		Sets:       []gymapi.Set{},
		SetsLookup: sets.OutcomeNotFound,
		Original:   le.Fields,
	}
}

func (e *EnrichedExercise) applyDefinition(def gymapi.ExerciseDefinition, id gymapi.ID, source DefinitionSource) {
	e.Name = def.Name
	if e.Name == "" && id.IsZero() {
		e.Name = unknownExerciseName
	} else if e.Name == "" {
		e.Name = fmt.Sprintf("Exercise %s", id)
	}
	e.Description = def.Description
	e.VideoURL = def.VideoURL
	e.Category = def.Category
	e.DefinitionSource = source
}

func (e *EnrichedExercise) applyPlaceholder(id gymapi.ID, source DefinitionSource) {
	e.Name = placeholderName(id)
	e.Description = ""
	e.VideoURL = ""
	e.Category = ""
	e.DefinitionSource = source
}

func placeholderName(id gymapi.ID) string {
	if id.IsZero() {
		return unknownExerciseName
	}
	return fmt.Sprintf("%s (ID %s)", unknownExerciseName, id)
}
