// Package history persists exercises together with every attempt made
// against them and the follow-up questions asked about each attempt.
package history

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/abhisek/satzbau/internal/logging"
	"github.com/abhisek/satzbau/internal/sentencegen"
	"github.com/abhisek/satzbau/internal/store"
)

// Key is the blob key the history map is stored under.
const Key = "germanAppExerciseHistory"

// ErrRecordNotFound is returned when a mutation targets an unknown exercise.
var ErrRecordNotFound = errors.New("exercise not found in history")

// errUnchanged aborts a blob update without writing.
var errUnchanged = errors.New("history unchanged")

// QA is one follow-up question and its answer.
type QA struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Attempt is one submitted sentence and the grading it received.
type Attempt struct {
	AttemptID  int                       `json:"attemptId"`
	ExerciseID string                    `json:"exerciseId"`
	UserAnswer string                    `json:"userAnswer"`
	Feedback   sentencegen.GradingResult `json:"feedback"`
	Timestamp  time.Time                 `json:"timestamp"`
	QAHistory  []QA                      `json:"qaHistory"`
}

// Record is an exercise with its attempts. IsComplete turns true with the
// first correct attempt and never reverts.
type Record struct {
	Exercise   sentencegen.Exercise `json:"exercise"`
	Attempts   []Attempt            `json:"attempts"`
	IsComplete bool                 `json:"isComplete"`
}

// LastAttemptAt returns the timestamp of the newest attempt, or the zero
// time when there are none.
func (r *Record) LastAttemptAt() time.Time {
	if len(r.Attempts) == 0 {
		return time.Time{}
	}
	return r.Attempts[len(r.Attempts)-1].Timestamp
}

type historyMap map[string]*Record

// Store is the attempt history backed by a single blob.
type Store struct {
	blobs  store.BlobRepo
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Store persisting into blobs.
func New(blobs store.BlobRepo, logger *slog.Logger) *Store {
	logger = logging.OrDefault(logger)
	return &Store{
		blobs:  blobs,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC().Round(0) },
	}
}

// Upsert adds the exercise with no attempts, or replaces the stored
// exercise while keeping its attempts and completion state.
func (s *Store) Upsert(ctx context.Context, ex sentencegen.Exercise) (*Record, error) {
	if ex.ExerciseID == "" {
		return nil, fmt.Errorf("upsert exercise: missing exerciseId")
	}

	var out Record
	err := s.mutate(ctx, func(h historyMap) error {
		rec, ok := h[ex.ExerciseID]
		if !ok {
			rec = &Record{Attempts: []Attempt{}}
			h[ex.ExerciseID] = rec
		}
		rec.Exercise = ex
		out = *rec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("upsert exercise %s: %w", ex.ExerciseID, err)
	}
	return &out, nil
}

// RecordAttempt appends an attempt to the exercise and returns it. The
// attempt's timestamp is strictly later than every earlier attempt on the
// same exercise.
func (s *Store) RecordAttempt(ctx context.Context, exerciseID, userAnswer string, feedback sentencegen.GradingResult) (*Attempt, error) {
	var out Attempt
	err := s.mutate(ctx, func(h historyMap) error {
		rec, ok := h[exerciseID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, exerciseID)
		}

		ts := s.now()
		nextID := 1
		if n := len(rec.Attempts); n > 0 {
			last := rec.Attempts[n-1]
			if !ts.After(last.Timestamp) {
				ts = last.Timestamp.Add(time.Nanosecond)
			}
			nextID = maxAttemptID(rec.Attempts) + 1
		}

		out = Attempt{
			AttemptID:  nextID,
			ExerciseID: exerciseID,
			UserAnswer: userAnswer,
			Feedback:   feedback,
			Timestamp:  ts,
			QAHistory:  []QA{},
		}
		rec.Attempts = append(rec.Attempts, out)
		if feedback.IsCorrect {
			rec.IsComplete = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	return &out, nil
}

// AttachFollowup replaces the Q&A thread of the attempt whose timestamp
// equals attemptTimestamp. An unknown exercise or attempt is logged and
// ignored.
func (s *Store) AttachFollowup(ctx context.Context, exerciseID string, attemptTimestamp time.Time, thread []QA) error {
	return s.attach(ctx, exerciseID, func(a *Attempt) bool {
		return a.Timestamp.Equal(attemptTimestamp)
	}, thread, "timestamp", attemptTimestamp.Format(time.RFC3339Nano))
}

// AttachFollowupByID replaces the Q&A thread of the attempt with the given
// id. An unknown exercise or attempt is logged and ignored.
func (s *Store) AttachFollowupByID(ctx context.Context, exerciseID string, attemptID int, thread []QA) error {
	return s.attach(ctx, exerciseID, func(a *Attempt) bool {
		return a.AttemptID == attemptID
	}, thread, "attempt_id", attemptID)
}

func (s *Store) attach(ctx context.Context, exerciseID string, match func(*Attempt) bool, thread []QA, key string, val any) error {
	if thread == nil {
		thread = []QA{}
	}
	err := s.mutate(ctx, func(h historyMap) error {
		rec, ok := h[exerciseID]
		if !ok {
			s.logger.Warn("exercise not found for follow-up", "exercise_id", exerciseID)
			return errUnchanged
		}
		for i := range rec.Attempts {
			if match(&rec.Attempts[i]) {
				rec.Attempts[i].QAHistory = thread
				return nil
			}
		}
		s.logger.Warn("attempt not found for follow-up", "exercise_id", exerciseID, key, val)
		return errUnchanged
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("attach follow-up: %w", err)
	}
	return nil
}

// Get returns the record for exerciseID or ErrRecordNotFound.
func (s *Store) Get(ctx context.Context, exerciseID string) (*Record, error) {
	h, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := h[exerciseID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, exerciseID)
	}
	return rec, nil
}

// ListAttempts returns the attempts of an exercise in insertion order, or
// an empty slice when the exercise is unknown.
func (s *Store) ListAttempts(ctx context.Context, exerciseID string) ([]Attempt, error) {
	h, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := h[exerciseID]
	if !ok {
		return []Attempt{}, nil
	}
	return rec.Attempts, nil
}

// ListRecent returns records ordered by their newest attempt, most recent
// first. Records without attempts sort last. limit <= 0 returns all.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	return s.list(ctx, limit, func(*Record) bool { return true })
}

// Clear deletes every exercise record.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.blobs.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.logger.Info("history cleared")
	return nil
}

// ListIncomplete is ListRecent restricted to records with no correct attempt.
func (s *Store) ListIncomplete(ctx context.Context, limit int) ([]Record, error) {
	return s.list(ctx, limit, func(r *Record) bool { return !r.IsComplete })
}

func (s *Store) list(ctx context.Context, limit int, keep func(*Record) bool) ([]Record, error) {
	h, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(h))
	for _, rec := range h {
		if keep(rec) {
			out = append(out, *rec)
		}
	}
	slices.SortFunc(out, func(a, b Record) int {
		if c := b.LastAttemptAt().Compare(a.LastAttemptAt()); c != 0 {
			return c
		}
		return cmp.Compare(a.Exercise.ExerciseID, b.Exercise.ExerciseID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// read loads the history for a query. A corrupt blob is logged and read
// as empty.
func (s *Store) read(ctx context.Context) (historyMap, error) {
	data, err := s.blobs.Get(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		return historyMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	h, err := decode(data)
	if err != nil {
		s.logger.Error("history blob unreadable, treating as empty", "error", err)
		return historyMap{}, nil
	}
	return h, nil
}

// mutate runs fn over the decoded history inside one blob transaction.
// A corrupt blob fails the mutation and is left untouched.
func (s *Store) mutate(ctx context.Context, fn func(historyMap) error) error {
	return s.blobs.Update(ctx, Key, 0, func(current []byte) ([]byte, error) {
		h := historyMap{}
		if current != nil {
			var err error
			if h, err = decode(current); err != nil {
				return nil, fmt.Errorf("decode history: %w", err)
			}
		}
		if err := fn(h); err != nil {
			return nil, err
		}
		return json.Marshal(h)
	})
}

func decode(data []byte) (historyMap, error) {
	var h historyMap
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, err
	}
	if h == nil {
		h = historyMap{}
	}
	for id, rec := range h {
		if rec == nil {
			delete(h, id)
			continue
		}
		normalize(id, rec)
	}
	return h, nil
}

// normalize fills fields missing from blobs written before attempts had
// ids, so every attempt is addressable.
func normalize(id string, rec *Record) {
	if rec.Attempts == nil {
		rec.Attempts = []Attempt{}
	}
	next := maxAttemptID(rec.Attempts) + 1
	for i := range rec.Attempts {
		a := &rec.Attempts[i]
		if a.AttemptID == 0 {
			a.AttemptID = next
			next++
		}
		if a.ExerciseID == "" {
			a.ExerciseID = id
		}
		if a.QAHistory == nil {
			a.QAHistory = []QA{}
		}
	}
}

func maxAttemptID(attempts []Attempt) int {
	m := 0
	for _, a := range attempts {
		m = max(m, a.AttemptID)
	}
	return m
}
