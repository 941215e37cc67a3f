package sessions

import (
	"errors"
	"sync"
)

var ErrOrderMismatch = errors.New("order does not match category exercises")

// MutationListener is notified after every applied store mutation.
// Implementations must not block: the store calls them on the caller's goroutine
// while holding its write lock.
type MutationListener interface {
	ExerciseUpserted(category Category, exercise Exercise)
	ExerciseRemoved(category Category, exerciseID string)
}

// Store holds the authoritative in-memory state of all session categories.
// Mutations are applied synchronously and are visible to subsequent reads right away.
// Invalid mutations (duplicate add, unknown edit or remove) are no-ops and return false.
type Store struct {
	mu        sync.RWMutex
	exercises map[Category][]Exercise
	listener  MutationListener
}

func NewStore(listener MutationListener) *Store {
	return &Store{
		exercises: emptyCategories(),
		listener:  listener,
	}
}

func emptyCategories() map[Category][]Exercise {
	m := make(map[Category][]Exercise, 3)
	for _, c := range Categories() {
		m[c] = make([]Exercise, 0)
	}
	return m
}

// Initialize replaces the whole state. Categories missing from loaded end up empty,
// unknown ones are ignored. Listeners are not notified.
func (s *Store) Initialize(loaded map[Category][]Exercise) {
	next := emptyCategories()
	for c, list := range loaded {
		if !c.IsValid() {
			continue
		}
		next[c] = cloneList(list)
	}

	s.mu.Lock()
	s.exercises = next
	s.mu.Unlock()
}

// Add appends the exercise at the end of the category.
func (s *Store) Add(category Category, exercise Exercise) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.exercises[category]
	if !ok || indexOf(list, exercise.ID) >= 0 {
		return false
	}
	s.exercises[category] = append(list, exercise.Clone())

	s.notifyUpsert(category, exercise)
	return true
}

// Edit replaces the exercise with the same ID, keeping its position.
// The store does not build history, it stores the exercise as given.
func (s *Store) Edit(category Category, exercise Exercise) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.exercises[category]
	i := indexOf(list, exercise.ID)
	if i < 0 {
		return false
	}
	list[i] = exercise.Clone()

	s.notifyUpsert(category, exercise)
	return true
}

// Update runs fn on a copy of the stored exercise and stores its result in place.
// Lookup, fn and the write happen under one lock, so concurrent updates of the
// same exercise never lose each other. The bool is false when the exercise
// does not exist. An fn error leaves the store untouched.
func (s *Store) Update(category Category, exerciseID string, fn func(Exercise) (Exercise, error)) (Exercise, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.exercises[category]
	i := indexOf(list, exerciseID)
	if i < 0 {
		return Exercise{}, false, nil
	}

	updated, err := fn(list[i].Clone())
	if err != nil {
		return Exercise{}, true, err
	}
	updated.ID = exerciseID
	list[i] = updated.Clone()

	s.notifyUpsert(category, updated)
	return updated, true, nil
}

func (s *Store) Remove(category Category, exerciseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.exercises[category]
	i := indexOf(list, exerciseID)
	if i < 0 {
		return false
	}
	s.exercises[category] = append(list[:i:i], list[i+1:]...)

	if s.listener != nil {
		s.listener.ExerciseRemoved(category, exerciseID)
	}
	return true
}

// listeners are called with the lock held, so notifications keep the mutation order
func (s *Store) notifyUpsert(category Category, exercise Exercise) {
	if s.listener != nil {
		s.listener.ExerciseUpserted(category, exercise.Clone())
	}
}

// Get returns a copy of the category exercises, in display order.
func (s *Store) Get(category Category) []Exercise {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.exercises[category]
	if !ok {
		return nil
	}
	return cloneList(list)
}

func (s *Store) Find(category Category, exerciseID string) (Exercise, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.exercises[category]
	i := indexOf(list, exerciseID)
	if i < 0 {
		return Exercise{}, false
	}
	return list[i].Clone(), true
}

// Reorder replaces the category order. ids must hold exactly the current members.
// Ordering is local only and is not persisted.
func (s *Store) Reorder(category Category, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.exercises[category]
	if !ok {
		return ErrUnknownCategory
	}
	if len(ids) != len(list) {
		return ErrOrderMismatch
	}

	byID := make(map[string]Exercise, len(list))
	for _, e := range list {
		byID[e.ID] = e
	}

	reordered := make([]Exercise, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return ErrOrderMismatch
		}
		delete(byID, id)
		reordered = append(reordered, e)
	}

	s.exercises[category] = reordered
	return nil
}

// Snapshot returns a copy of all categories.
func (s *Store) Snapshot() map[Category][]Exercise {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[Category][]Exercise, len(s.exercises))
	for c, list := range s.exercises {
		snap[c] = cloneList(list)
	}
	return snap
}

func indexOf(list []Exercise, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneList(list []Exercise) []Exercise {
	cloned := make([]Exercise, 0, len(list))
	for _, e := range list {
		cloned = append(cloned, e.Clone())
	}
	return cloned
}
