package gymapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ID is an identifier as sent by the remote API, which is not consistent
// about sending ids as JSON numbers or strings. Equality is loose: "1", 1
// and 1.0 are the same ID.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Key is the canonical form used for loose equality and map lookups.
func (id ID) Key() string {
	s := strings.TrimSpace(string(id))
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return s
}

func (id ID) Equal(other ID) bool {
	if id.IsZero() || other.IsZero() {
		return false
	}
	return id.Key() == other.Key()
}

func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id ID) String() string {
	return string(id)
}

// ExerciseDefinition is a catalog entry (/all_exercises).
type ExerciseDefinition struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	VideoURL    string `json:"url"`
	Category    string `json:"category,omitempty"`
}

func (d *ExerciseDefinition) UnmarshalJSON(b []byte) error {
	var ids struct {
		ID      ID `json:"id"`
		MongoID ID `json:"_id"`
	}
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	// text fields of the wrong JSON type are treated as missing
	videoURL := firstNonEmpty(
		rawString(fields["url"]),
		rawString(fields["video_url"]),
		rawString(fields["videoUrl"]),
		rawString(fields["video"]),
	)
	*d = ExerciseDefinition{
		ID:          firstID(ids.ID, ids.MongoID),
		Name:        firstNonEmpty(rawString(fields["name"]), rawString(fields["title"])),
		Description: firstNonEmpty(rawString(fields["description"]), rawString(fields["desc"])),
		VideoURL:    videoURL,
		Category:    rawString(fields["category"]),
	}
	return nil
}

// Set is one set of a logged exercise.
type Set struct {
	ID         ID      `json:"id,omitempty"`
	ExerciseID ID      `json:"exercise_id,omitempty"`
	Reps       int     `json:"reps"`
	Weight     float64 `json:"weight"`
}

// UnmarshalJSON accepts reps and weight sent either as numbers or as
// numeric strings.
func (s *Set) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID             ID              `json:"id"`
		MongoID        ID              `json:"_id"`
		ExerciseID     ID              `json:"exercise_id"`
		UserExerciseID ID              `json:"user_exercise_id"`
		Reps           json.RawMessage `json:"reps"`
		Weight         json.RawMessage `json:"weight"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	reps, err := looseNumber(raw.Reps)
	if err != nil {
		return fmt.Errorf("reps: %w", err)
	}
	weight, err := looseNumber(raw.Weight)
	if err != nil {
		return fmt.Errorf("weight: %w", err)
	}

	*s = Set{
		ID:         firstID(raw.ID, raw.MongoID),
		ExerciseID: firstID(raw.ExerciseID, raw.UserExerciseID),
		Reps:       int(reps),
		Weight:     weight,
	}
	return nil
}

func (s Set) Volume() float64 {
	return float64(s.Reps) * s.Weight
}

func (s Set) Validate() error {
	if s.Reps <= 0 {
		return fmt.Errorf("reps must be positive, got %d", s.Reps)
	}
	if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) {
		return fmt.Errorf("weight must be a finite number, got %v", s.Weight)
	}
	if s.Weight < 0 {
		return fmt.Errorf("weight must not be negative, got %v", s.Weight)
	}
	return nil
}

// exerciseRefFields are the scalar foreign key field names the remote
// system uses for the catalog reference, in lookup priority order.
var exerciseRefFields = []string{"exercise_id", "all_exercise_id", "base_exercise_id", "exercise", "exerciseId", "allExerciseId"}

// ExerciseRef points a logged exercise at its catalog definition, either
// by embedding the definition or by a scalar foreign key.
type ExerciseRef struct {
	Embedded *ExerciseDefinition
	ID       ID
}

// LoggedExercise is a user's instance of a catalog exercise on a date
// (/user_exercises). Fields keeps every original field as sent.
type LoggedExercise struct {
	ID       ID
	UserID   ID
	Date     time.Time
	Exercise ExerciseRef
	Fields   map[string]json.RawMessage
}

func (le *LoggedExercise) UnmarshalJSON(b []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	parsed := LoggedExercise{Fields: fields}

	parsed.ID = rawID(fields["id"])
	if parsed.ID.IsZero() {
		parsed.ID = rawID(fields["_id"])
	}
	parsed.UserID = rawID(fields["user_id"])

	if rawDate, ok := fields["date"]; ok {
		var s string
		if err := json.Unmarshal(rawDate, &s); err == nil {
			parsed.Date = ParseDate(s)
		}
	}

	var def ExerciseDefinition
	if rawEx := bytes.TrimSpace(fields["exercise"]); len(rawEx) > 0 && rawEx[0] == '{' && json.Unmarshal(rawEx, &def) == nil {
		parsed.Exercise = ExerciseRef{Embedded: &def, ID: def.ID}
	} else {
		for _, field := range exerciseRefFields {
			if id := rawID(fields[field]); !id.IsZero() {
				parsed.Exercise = ExerciseRef{ID: id}
				break
			}
		}
	}

	*le = parsed
	return nil
}

func (le LoggedExercise) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(le.Fields)+3)
	for k, v := range le.Fields {
		out[k] = v
	}
	out["id"] = le.ID
	if !le.UserID.IsZero() {
		out["user_id"] = le.UserID
	}
	if !le.Date.IsZero() {
		out["date"] = le.Date.Format(time.RFC3339)
	}
	if le.Exercise.Embedded != nil {
		out["exercise"] = le.Exercise.Embedded
	} else if !le.Exercise.ID.IsZero() {
		if _, ok := out["exercise_id"]; !ok {
			out["exercise_id"] = le.Exercise.ID
		}
	}
	return json.Marshal(out)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseDate parses the date formats the remote API is known to send.
// Naive datetimes are taken as UTC. Unparseable input yields the zero time.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// User is a gym app account (/users).
type User struct {
	ID          ID     `json:"id,omitempty"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role,omitempty"`
	Password    string `json:"password,omitempty"`
}

// TokenPair is the /auth/login response.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// rawString returns raw as a string when it is a JSON string, "" otherwise.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func rawID(raw json.RawMessage) ID {
	if len(raw) == 0 {
		return ""
	}
	var id ID
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id
}

// looseNumber decodes a JSON number or numeric string; missing and null are 0.
// NaN and infinities are rejected.
func looseNumber(raw json.RawMessage) (float64, error) {
	f, err := parseLooseNumber(raw)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %s", raw)
	}
	return f, nil
}

func parseLooseNumber(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

func firstID(ids ...ID) ID {
	for _, id := range ids {
		if !id.IsZero() {
			return id
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
