package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/gymsessions/internal/docstore"
	"github.com/2beens/gymsessions/internal/sessions"
	"github.com/2beens/gymsessions/internal/telemetry/metrics"
	"github.com/2beens/gymsessions/internal/telemetry/tracing"
)

//go:generate mockgen -destination=docstore_mocks_test.go -package=syncer_test github.com/2beens/gymsessions/internal/docstore Store

const defaultWriteTimeout = 10 * time.Second

var ErrClosed = errors.New("synchronizer closed")

type opType string

const (
	opUpsert opType = "upsert"
	opDelete opType = "delete"
)

type write struct {
	op         opType
	collection string
	id         string
	record     docstore.Record
}

func (w write) key() string {
	return docstore.DocumentKey(w.collection, w.id)
}

type initializer interface {
	Initialize(loaded map[sessions.Category][]sessions.Exercise)
}

// Synchronizer mirrors session mutations into the document store and loads
// the sessions back on startup.
//
// Writes are asynchronous. Each document has at most one write in flight, and
// while it is in flight only the latest requested write is kept pending.
// Writes of different documents run concurrently. Failed writes are logged and
// counted, never retried.
type Synchronizer struct {
	docs    docstore.Store
	metrics *metrics.Manager

	// ability to tweak per write timeout (for unit testing)
	WriteTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	pending  map[string]write
	inFlight map[string]struct{}
	// closed when no document has a write pending or in flight
	idle   chan struct{}
	closed bool
}

var _ sessions.MutationListener = (*Synchronizer)(nil)

func New(docs docstore.Store, metricsManager *metrics.Manager) *Synchronizer {
	ctx, cancel := context.WithCancel(context.Background())

	idle := make(chan struct{})
	close(idle)

	return &Synchronizer{
		docs:         docs,
		metrics:      metricsManager,
		WriteTimeout: defaultWriteTimeout,
		ctx:          ctx,
		cancel:       cancel,
		pending:      make(map[string]write),
		inFlight:     make(map[string]struct{}),
		idle:         idle,
	}
}

// LoadAll reads every session category from the document store. A category
// that cannot be read comes back empty, the others are not affected.
func (s *Synchronizer) LoadAll(ctx context.Context) map[sessions.Category][]sessions.Exercise {
	ctx, span := tracing.GlobalTracer.Start(ctx, "syncer.loadAll")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.HistHydrationDuration.Observe(time.Since(start).Seconds())
	}()

	loaded := make(map[sessions.Category][]sessions.Exercise, len(sessions.Categories()))
	for _, category := range sessions.Categories() {
		exercises, err := s.loadCategory(ctx, category)
		if err != nil {
			log.Errorf("load session %s: %s", category, err)
			s.metrics.CounterHydrationFailures.WithLabelValues(category.String()).Inc()
			exercises = make([]sessions.Exercise, 0)
		}
		loaded[category] = exercises
	}

	return loaded
}

func (s *Synchronizer) loadCategory(ctx context.Context, category sessions.Category) (_ []sessions.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "syncer.loadCategory")
	span.SetAttributes(attribute.String("category", category.String()))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	records, err := s.docs.List(ctx, category.CollectionPath())
	if err != nil {
		return nil, err
	}

	exercises := make([]sessions.Exercise, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, record := range records {
		var exercise sessions.Exercise
		if err := json.Unmarshal(record, &exercise); err != nil {
			log.Warnf("session %s: skipping document #%d, decode: %s", category, i, err)
			s.metrics.CounterHydrationSkipped.WithLabelValues(category.String()).Inc()
			continue
		}
		if exercise.ID == "" || seen[exercise.ID] {
			log.Warnf("session %s: skipping document #%d, missing or duplicate id [%s]", category, i, exercise.ID)
			s.metrics.CounterHydrationSkipped.WithLabelValues(category.String()).Inc()
			continue
		}
		seen[exercise.ID] = true
		exercises = append(exercises, exercise)
	}

	span.SetAttributes(attribute.Int("exercises.count", len(exercises)))
	log.Debugf("session %s: loaded %d exercises", category, len(exercises))

	return exercises, nil
}

// Hydrate loads all categories and replaces the store contents with them.
func (s *Synchronizer) Hydrate(ctx context.Context, store initializer) {
	store.Initialize(s.LoadAll(ctx))
}

func (s *Synchronizer) ExerciseUpserted(category sessions.Category, exercise sessions.Exercise) {
	s.metrics.CounterSessionMutations.WithLabelValues(category.String(), string(opUpsert)).Inc()
	if err := s.PersistUpsert(category, exercise); err != nil {
		log.Errorf("persist exercise [%s] in session %s: %s", exercise.ID, category, err)
	}
}

func (s *Synchronizer) ExerciseRemoved(category sessions.Category, exerciseID string) {
	s.metrics.CounterSessionMutations.WithLabelValues(category.String(), string(opDelete)).Inc()
	if err := s.PersistDelete(category, exerciseID); err != nil {
		log.Errorf("persist exercise [%s] removal from session %s: %s", exerciseID, category, err)
	}
}

// PersistUpsert queues a full write of the exercise document. The returned error
// only covers encoding and queueing, the write itself happens later.
func (s *Synchronizer) PersistUpsert(category sessions.Category, exercise sessions.Exercise) error {
	record, err := json.Marshal(exercise)
	if err != nil {
		s.metrics.CounterSyncWrites.WithLabelValues(string(opUpsert), "encode_error").Inc()
		return err
	}
	return s.enqueue(write{
		op:         opUpsert,
		collection: category.CollectionPath(),
		id:         exercise.ID,
		record:     record,
	})
}

func (s *Synchronizer) PersistDelete(category sessions.Category, exerciseID string) error {
	return s.enqueue(write{
		op:         opDelete,
		collection: category.CollectionPath(),
		id:         exerciseID,
	})
}

func (s *Synchronizer) enqueue(w write) error {
	if w.id == "" {
		return docstore.ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.metrics.CounterSyncDroppedWrites.Inc()
		return ErrClosed
	}

	key := w.key()
	if _, replaced := s.pending[key]; replaced {
		log.Tracef("syncer: %s write coalesced", key)
	}
	s.pending[key] = w

	if _, busy := s.inFlight[key]; busy {
		return nil
	}

	if len(s.inFlight) == 0 {
		s.idle = make(chan struct{})
	}
	s.inFlight[key] = struct{}{}
	s.metrics.GaugeSyncPendingWrites.Set(float64(len(s.inFlight)))

	go s.drain(key)

	return nil
}

// drain applies writes for one document until nothing is left pending for it.
func (s *Synchronizer) drain(key string) {
	for {
		s.mu.Lock()
		w, ok := s.pending[key]
		if !ok {
			delete(s.inFlight, key)
			s.metrics.GaugeSyncPendingWrites.Set(float64(len(s.inFlight)))
			if len(s.inFlight) == 0 {
				close(s.idle)
			}
			s.mu.Unlock()
			return
		}
		delete(s.pending, key)
		s.mu.Unlock()

		s.apply(w)
	}
}

func (s *Synchronizer) apply(w write) {
	ctx, cancel := context.WithTimeout(s.ctx, s.WriteTimeout)
	defer cancel()

	ctx, span := tracing.GlobalTracer.Start(ctx, "syncer."+string(w.op))
	span.SetAttributes(
		attribute.String("collection", w.collection),
		attribute.String("document.id", w.id),
	)

	start := time.Now()
	var err error
	switch w.op {
	case opUpsert:
		err = s.docs.Put(ctx, w.collection, w.id, w.record)
	case opDelete:
		err = s.docs.Delete(ctx, w.collection, w.id)
	}
	s.metrics.HistogramSyncWriteDuration.WithLabelValues(string(w.op)).Observe(time.Since(start).Seconds())
	tracing.EndSpanWithErrCheck(span, err)

	if err != nil {
		s.metrics.CounterSyncWrites.WithLabelValues(string(w.op), "error").Inc()
		log.Errorf("syncer: %s %s: %s", w.op, w.key(), err)
		return
	}

	s.metrics.CounterSyncWrites.WithLabelValues(string(w.op), "ok").Inc()
	log.Tracef("syncer: %s %s done", w.op, w.key())
}

// Flush blocks until no document has a write pending or in flight, or ctx is done.
func (s *Synchronizer) Flush(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes and waits for the queued ones. If ctx ends first,
// writes still in flight are canceled.
func (s *Synchronizer) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	err := s.Flush(ctx)
	s.cancel()
	if err != nil {
		log.Warnf("syncer closed with writes still pending: %s", err)
		return err
	}

	log.Debugln("syncer closed, all writes done")
	return nil
}
