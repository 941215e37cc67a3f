package sessions

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidExercise = errors.New("invalid exercise")

// HistoryEntry is a snapshot of the exercise values taken at save time.
type HistoryEntry struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
	Series int       `json:"series"`
	Reps   int       `json:"reps"`
}

// Exercise is one tracked movement within a session category.
// Current values are not stored separately, they always mirror the last history entry.
type Exercise struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Comments string         `json:"comments"`
	History  []HistoryEntry `json:"history"`
}

// ExerciseParams holds the values entered when creating or saving an exercise.
type ExerciseParams struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Series   int     `json:"series"`
	Reps     int     `json:"reps"`
	Comments string  `json:"comments"`
}

func (p ExerciseParams) validateValues() error {
	if p.Weight < 0 {
		return fmt.Errorf("%w: weight cannot be negative", ErrInvalidExercise)
	}
	if p.Reps < 0 {
		return fmt.Errorf("%w: reps cannot be negative", ErrInvalidExercise)
	}
	if p.Series < 0 {
		return fmt.Errorf("%w: series cannot be negative", ErrInvalidExercise)
	}
	return nil
}

// NewExercise creates an exercise with its first history entry written at now.
func NewExercise(params ExerciseParams, now time.Time, genID func() string) (Exercise, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return Exercise{}, fmt.Errorf("%w: name empty", ErrInvalidExercise)
	}
	if err := params.validateValues(); err != nil {
		return Exercise{}, err
	}

	return Exercise{
		ID:       genID(),
		Name:     name,
		Comments: params.Comments,
		History: []HistoryEntry{
			{
				Date:   now,
				Weight: params.Weight,
				Series: params.Series,
				Reps:   params.Reps,
			},
		},
	}, nil
}

// WithSave returns a copy of the exercise with one new history entry appended
// and the comments replaced. The name is kept as is.
func (e Exercise) WithSave(params ExerciseParams, now time.Time) (Exercise, error) {
	if err := params.validateValues(); err != nil {
		return Exercise{}, err
	}

	saved := e.Clone()
	saved.Comments = params.Comments
	saved.History = append(saved.History, HistoryEntry{
		Date:   now,
		Weight: params.Weight,
		Series: params.Series,
		Reps:   params.Reps,
	})
	return saved, nil
}

// Latest returns the most recent history entry.
func (e Exercise) Latest() HistoryEntry {
	if len(e.History) == 0 {
		return HistoryEntry{}
	}
	return e.History[len(e.History)-1]
}

func (e Exercise) CurrentWeight() float64 {
	return e.Latest().Weight
}

func (e Exercise) CurrentSeries() int {
	return e.Latest().Series
}

func (e Exercise) CurrentReps() int {
	return e.Latest().Reps
}

func (e Exercise) Clone() Exercise {
	c := e
	if e.History != nil {
		c.History = make([]HistoryEntry, len(e.History))
		copy(c.History, e.History)
	}
	return c
}

// exerciseRecord is the persisted document shape.
type exerciseRecord struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	CurrentWeight float64        `json:"currentWeight"`
	CurrentSeries int            `json:"currentSeries"`
	CurrentReps   int            `json:"currentReps"`
	Comments      string         `json:"comments"`
	History       []HistoryEntry `json:"history"`
}

func (e Exercise) MarshalJSON() ([]byte, error) {
	history := e.History
	if history == nil {
		history = make([]HistoryEntry, 0)
	}
	latest := e.Latest()
	return json.Marshal(exerciseRecord{
		ID:            e.ID,
		Name:          e.Name,
		CurrentWeight: latest.Weight,
		CurrentSeries: latest.Series,
		CurrentReps:   latest.Reps,
		Comments:      e.Comments,
		History:       history,
	})
}

func (e *Exercise) UnmarshalJSON(data []byte) error {
	var rec exerciseRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	e.ID = rec.ID
	e.Name = rec.Name
	e.Comments = rec.Comments
	e.History = rec.History

	// documents written without a history get one undated entry from their current values
	if len(e.History) == 0 {
		e.History = []HistoryEntry{
			{
				Weight: rec.CurrentWeight,
				Series: rec.CurrentSeries,
				Reps:   rec.CurrentReps,
			},
		}
	}

	return nil
}
