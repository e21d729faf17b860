// Package profile persists learner state as a single JSON document. Loading
// repairs what it can instead of rejecting the file: unknown fields are
// dropped, out-of-range scheduling values are recomputed, and item keys are
// renormalized with collisions merged.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/example/kobot/internal/logger"
	"github.com/example/kobot/internal/normalizer"
	"github.com/example/kobot/internal/spaced_repetition"
	"github.com/example/kobot/pkg/models"
)

// Store reads and writes one learner's profile file.
type Store struct {
	path        string
	engine      *spaced_repetition.Engine
	log         *logger.Logger
	mergeEvents []models.MergeEvent
}

// NewStore returns a store for the given profile path.
func NewStore(path string, engine *spaced_repetition.Engine, log *logger.Logger) *Store {
	return &Store{path: path, engine: engine, log: log}
}

// Load reads the profile, applying defaults, key renormalization and
// scheduling repair. A missing file yields a fresh default profile, persisted
// immediately so the first session starts from a known state.
func (s *Store) Load(userID string, today models.Date) (*models.Profile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.log.Info("profile not found, creating default", "path", s.path, "user", userID)
		p := models.DefaultProfile(userID)
		if err := s.Save(p); err != nil {
			return nil, err
		}
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", s.path, err)
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	if p.Level == "" {
		p.Level = "beginner"
	}
	p.LearningPreferences.ApplyDefaults()
	if p.GrammarSummary == nil {
		p.GrammarSummary = make(map[string]*models.LearningItem)
	}
	if p.VocabSummary == nil {
		p.VocabSummary = make(map[string]*models.LearningItem)
	}

	p.GrammarSummary = s.renormalize(p.GrammarSummary, models.KindGrammar)
	p.VocabSummary = s.renormalize(p.VocabSummary, models.KindVocabulary)

	repaired := 0
	for _, m := range []map[string]*models.LearningItem{p.GrammarSummary, p.VocabSummary} {
		for _, item := range m {
			if s.engine.Repair(item, today) {
				repaired++
			}
		}
	}
	if repaired > 0 {
		s.log.Warn("repaired items with out-of-range scheduling state", "count", repaired)
	}

	return &p, nil
}

// renormalize rewrites every item key to its canonical form. When two raw
// keys collapse into one canonical id, the item with more repetitions wins;
// on a tie the first key in sorted order wins. Each collision is recorded as
// a merge event.
func (s *Store) renormalize(items map[string]*models.LearningItem, kind models.ItemKind) map[string]*models.LearningItem {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]*models.LearningItem, len(items))
	for _, raw := range keys {
		item := items[raw]
		if item == nil {
			continue
		}
		canonical := normalizer.Normalize(raw)
		item.ID = canonical
		item.Kind = kind

		kept, exists := out[canonical]
		if !exists {
			out[canonical] = item
			continue
		}

		winner, loser := kept, item
		if item.Repetitions > kept.Repetitions {
			winner, loser = item, kept
			out[canonical] = item
		}
		s.mergeEvents = append(s.mergeEvents, models.MergeEvent{
			CanonicalID:        canonical,
			DroppedID:          raw,
			KeptRepetitions:    winner.Repetitions,
			DroppedRepetitions: loser.Repetitions,
			Kind:               kind,
			CreatedAt:          time.Now().UTC(),
		})
		s.log.Warn("merged colliding item keys",
			"canonical", canonical,
			"kind", kind,
			"kept_repetitions", winner.Repetitions,
			"dropped_repetitions", loser.Repetitions)
	}
	return out
}

// TakeMergeEvents returns the merge events recorded since the last call and
// clears the buffer.
func (s *Store) TakeMergeEvents() []models.MergeEvent {
	events := s.mergeEvents
	s.mergeEvents = nil
	return events
}

// Save writes the profile atomically: a temp file in the same directory is
// renamed over the target, so a crash mid-write never truncates the profile.
func (s *Store) Save(p *models.Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".profile-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp profile file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace profile file: %w", err)
	}
	return nil
}
