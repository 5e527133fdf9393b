// Package profile persists the learner profile.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/satzbau/internal/logging"
	"github.com/abhisek/satzbau/internal/sentencegen"
	"github.com/abhisek/satzbau/internal/store"
)

// Key is the blob key the profile is stored under.
const Key = "germanAppUserProfile"

// Retention is how long a saved profile is kept without being saved again.
const Retention = 365 * 24 * time.Hour

// Profile is the learner's persisted profile.
type Profile struct {
	ProficiencyLevel   string   `json:"proficiencyLevel"`
	ProblemAreas       []string `json:"problemAreas"`
	FocusArea          *string  `json:"focusArea,omitempty"`
	ExercisesCompleted int      `json:"exercisesCompleted"`
	CorrectAnswers     int      `json:"correctAnswers"`
}

// Default returns the profile used before anything has been saved.
func Default() Profile {
	return Profile{
		ProficiencyLevel: "A1",
		ProblemAreas:     []string{"word-order"},
	}
}

// Learner returns the fields that shape exercise generation.
func (p Profile) Learner() sentencegen.LearnerProfile {
	return sentencegen.LearnerProfile{
		ProficiencyLevel: p.ProficiencyLevel,
		ProblemAreas:     p.ProblemAreas,
		FocusArea:        p.FocusArea,
	}
}

// Patch is a partial update. Nil fields are left unchanged. An empty
// FocusArea clears the focus.
type Patch struct {
	ProficiencyLevel   *string   `json:"proficiencyLevel,omitempty"`
	ProblemAreas       *[]string `json:"problemAreas,omitempty"`
	FocusArea          *string   `json:"focusArea,omitempty"`
	ExercisesCompleted *int      `json:"exercisesCompleted,omitempty"`
	CorrectAnswers     *int      `json:"correctAnswers,omitempty"`
}

func (p Patch) apply(prof *Profile) {
	if p.ProficiencyLevel != nil {
		prof.ProficiencyLevel = *p.ProficiencyLevel
	}
	if p.ProblemAreas != nil {
		prof.ProblemAreas = *p.ProblemAreas
	}
	if p.FocusArea != nil {
		if strings.TrimSpace(*p.FocusArea) == "" {
			prof.FocusArea = nil
		} else {
			focus := *p.FocusArea
			prof.FocusArea = &focus
		}
	}
	if p.ExercisesCompleted != nil {
		prof.ExercisesCompleted = *p.ExercisesCompleted
	}
	if p.CorrectAnswers != nil {
		prof.CorrectAnswers = *p.CorrectAnswers
	}
}

// Store loads and saves the profile blob.
type Store struct {
	blobs  store.BlobRepo
	logger *slog.Logger
}

// New returns a Store persisting into blobs.
func New(blobs store.BlobRepo, logger *slog.Logger) *Store {
	logger = logging.OrDefault(logger)
	return &Store{blobs: blobs, logger: logger}
}

// Load returns the saved profile merged over the defaults. A missing,
// expired or unreadable blob yields the defaults.
func (s *Store) Load(ctx context.Context) (Profile, error) {
	data, err := s.blobs.Get(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return s.decode(data), nil
}

// Save stores the full profile.
func (s *Store) Save(ctx context.Context, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.blobs.Put(ctx, Key, data, Retention); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Update applies the patch to the current profile, saves and returns it.
func (s *Store) Update(ctx context.Context, patch Patch) (Profile, error) {
	return s.modify(ctx, patch.apply)
}

// Reset deletes the saved profile so the next Load returns the defaults.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.blobs.Delete(ctx, Key); err != nil {
		return fmt.Errorf("reset profile: %w", err)
	}
	return nil
}

// RecordOutcome counts a graded exercise.
func (s *Store) RecordOutcome(ctx context.Context, correct bool) (Profile, error) {
	return s.modify(ctx, func(p *Profile) {
		p.ExercisesCompleted++
		if correct {
			p.CorrectAnswers++
		}
	})
}

func (s *Store) modify(ctx context.Context, fn func(*Profile)) (Profile, error) {
	var out Profile
	err := s.blobs.Update(ctx, Key, Retention, func(current []byte) ([]byte, error) {
		out = Default()
		if current != nil {
			out = s.decode(current)
		}
		fn(&out)
		return json.Marshal(out)
	})
	if err != nil {
		return Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return out, nil
}

// decode merges the blob over the defaults, keeping defaults for any key
// the blob lacks.
func (s *Store) decode(data []byte) Profile {
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Error("profile blob unreadable, using defaults", "error", err)
		return Default()
	}
	return p
}
