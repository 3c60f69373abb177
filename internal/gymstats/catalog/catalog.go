package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/2beens/gymdash/internal/gymapi"

	log "github.com/sirupsen/logrus"
)

// Catalog is the list of exercise definitions with an index by canonical id.
// It is read only once built and safe to share between goroutines.
type Catalog struct {
	definitions []gymapi.ExerciseDefinition
	byID        map[string]int
}

func New(definitions []gymapi.ExerciseDefinition) *Catalog {
	c := &Catalog{
		definitions: definitions,
		byID:        make(map[string]int, len(definitions)),
	}
	if c.definitions == nil {
		c.definitions = []gymapi.ExerciseDefinition{}
	}
	for i, def := range c.definitions {
		if def.ID.IsZero() {
			continue
		}
		// first definition wins on duplicate ids
		if _, ok := c.byID[def.ID.Key()]; !ok {
			c.byID[def.ID.Key()] = i
		}
	}
	return c
}

func Empty() *Catalog {
	return New(nil)
}

// Parse builds a catalog from a /all_exercises body. A body that is not an
// array is an empty catalog.
func Parse(respBytes []byte) (*Catalog, error) {
	trimmed := bytes.TrimSpace(respBytes)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return Empty(), nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	definitions := make([]gymapi.ExerciseDefinition, 0, len(raw))
	for i, r := range raw {
		var def gymapi.ExerciseDefinition
		if err := json.Unmarshal(r, &def); err != nil {
			log.Warnf("catalog: skipping definition #%d: %s", i, err)
			continue
		}
		definitions = append(definitions, def)
	}
	return New(definitions), nil
}

// Lookup finds a definition by loosely equal id.
func (c *Catalog) Lookup(id gymapi.ID) (gymapi.ExerciseDefinition, bool) {
	if c == nil || id.IsZero() {
		return gymapi.ExerciseDefinition{}, false
	}
	i, ok := c.byID[id.Key()]
	if !ok {
		return gymapi.ExerciseDefinition{}, false
	}
	return c.definitions[i], true
}

// Definitions returns a copy of the catalog entries in remote order.
func (c *Catalog) Definitions() []gymapi.ExerciseDefinition {
	if c == nil {
		return []gymapi.ExerciseDefinition{}
	}
	definitions := make([]gymapi.ExerciseDefinition, len(c.definitions))
	copy(definitions, c.definitions)
	return definitions
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.definitions)
}
