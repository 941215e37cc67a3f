package sessions

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/gymsessions/internal/telemetry/tracing"
	"github.com/2beens/gymsessions/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=sessions_test

type exercisesStore interface {
	Get(category Category) []Exercise
	Find(category Category, exerciseID string) (Exercise, bool)
	Add(category Category, exercise Exercise) bool
	Update(category Category, exerciseID string, fn func(Exercise) (Exercise, error)) (Exercise, bool, error)
	Remove(category Category, exerciseID string) bool
	Reorder(category Category, ids []string) error
}

type ListResponse struct {
	Category  Category   `json:"category"`
	Exercises []Exercise `json:"exercises"`
}

type DeleteExerciseResponse struct {
	DeletedID string `json:"deletedId"`
	Removed   bool   `json:"removed"`
}

type HistoryResponse struct {
	ExerciseID string         `json:"exerciseId"`
	Name       string         `json:"name"`
	History    []HistoryEntry `json:"history"`
}

type ReorderRequest struct {
	IDs []string `json:"ids"`
}

type Handler struct {
	store exercisesStore
	// ability to inject id generator and clock (for unit testing)
	IDFunc  func() string
	NowFunc func() time.Time
}

func NewHandler(store exercisesStore) *Handler {
	return &Handler{
		store:   store,
		IDFunc:  NewIDGenerator().Next,
		NowFunc: time.Now,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/sessions/{category}/exercises", handler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/sessions/{category}/exercises", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc("/sessions/{category}/exercises/{id}", handler.HandleSave).Methods("PUT", "OPTIONS").Name("save-exercise")
	r.HandleFunc("/sessions/{category}/exercises/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-exercise")
	r.HandleFunc("/sessions/{category}/exercises/{id}/history", handler.HandleHistory).Methods("GET", "OPTIONS").Name("exercise-history")
	r.HandleFunc("/sessions/{category}/order", handler.HandleReorder).Methods("PUT", "OPTIONS").Name("reorder-exercises")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.list")
	defer span.End()

	category, ok := categoryFromRequest(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("category", category.String()))

	writeJSON(w, ListResponse{
		Category:  category,
		Exercises: handler.store.Get(category),
	}, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.add")
	defer span.End()

	category, ok := categoryFromRequest(w, r)
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var params ExerciseParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	exercise, err := NewExercise(params, handler.NowFunc(), handler.IDFunc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("exercise.id", exercise.ID))

	if !handler.store.Add(category, exercise) {
		log.Errorf("exercise [%s] already exists in session %s", exercise.ID, category)
		http.Error(w, "error, exercise already exists", http.StatusConflict)
		return
	}

	log.Debugf("new exercise added to session %s: %s [%s]", category, exercise.Name, exercise.ID)
	writeJSON(w, exercise, http.StatusCreated)
}

// HandleSave records a new save of the exercise: current values change and
// one history entry is appended.
func (handler *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.save")
	defer span.End()

	category, ok := categoryFromRequest(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	span.SetAttributes(attribute.String("exercise.id", id))

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var params ExerciseParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		log.Tracef("save exercise, unmarshal json params: %s", err)
		http.Error(w, "save exercise failed", http.StatusBadRequest)
		return
	}

	now := handler.NowFunc()
	saved, found, err := handler.store.Update(category, id, func(current Exercise) (Exercise, error) {
		return current.WithSave(params, now)
	})
	if !found {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Debugf("exercise saved in session %s: [%s], history size %d", category, id, len(saved.History))
	writeJSON(w, saved, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.delete")
	defer span.End()

	category, ok := categoryFromRequest(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("exercise.id", id))

	removed := handler.store.Remove(category, id)
	if !removed {
		log.Debugf("exercise [%s] not found in session %s, nothing to remove", id, category)
	}

	writeJSON(w, DeleteExerciseResponse{
		DeletedID: id,
		Removed:   removed,
	}, http.StatusOK)
}

// HandleHistory returns the exercise history, newest entry first.
func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.history")
	defer span.End()

	category, ok := categoryFromRequest(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	exercise, found := handler.store.Find(category, id)
	if !found {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}

	history := make([]HistoryEntry, 0, len(exercise.History))
	for i := len(exercise.History) - 1; i >= 0; i-- {
		history = append(history, exercise.History[i])
	}

	writeJSON(w, HistoryResponse{
		ExerciseID: exercise.ID,
		Name:       exercise.Name,
		History:    history,
	}, http.StatusOK)
}

func (handler *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.reorder")
	defer span.End()

	category, ok := categoryFromRequest(w, r)
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("reorder exercises, unmarshal json params: %s", err)
		http.Error(w, "reorder exercises failed", http.StatusBadRequest)
		return
	}

	if err := handler.store.Reorder(category, req.IDs); err != nil {
		if errors.Is(err, ErrOrderMismatch) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("reorder exercises in session %s: %s", category, err)
		http.Error(w, "reorder exercises failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, ListResponse{
		Category:  category,
		Exercises: handler.store.Get(category),
	}, http.StatusOK)
}

func categoryFromRequest(w http.ResponseWriter, r *http.Request) (Category, bool) {
	category, err := ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return "", false
	}
	return category, true
}

func writeJSON(w http.ResponseWriter, v any, statusCode int) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("failed to marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, statusCode)
}
