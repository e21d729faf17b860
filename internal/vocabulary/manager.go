// Package vocabulary manages the vocabulary corpus: level-filtered candidate
// words for new-item introduction, plus an importer for xlsx/csv word lists.
package vocabulary

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/example/kobot/internal/logger"
)

// Entry is one corpus word with its metadata.
type Entry struct {
	Translation   string `json:"translation"`
	FrequencyRank int    `json:"frequency_rank,omitempty"`
	TopikLevel    string `json:"topik_level,omitempty"`
	Tags          string `json:"tags,omitempty"`
}

// legacyEntry is the old array file format, one object per word.
type legacyEntry struct {
	Vocab         string `json:"vocab"`
	Translation   string `json:"translation"`
	FrequencyRank int    `json:"frequency_rank,omitempty"`
	TopikLevel    string `json:"topik_level,omitempty"`
	Tags          string `json:"tags,omitempty"`
}

// levelCriteria maps learner levels onto TOPIK levels and tags.
var levelCriteria = map[string]struct {
	topikLevels []string
	tags        map[string]bool
}{
	"beginner":     {[]string{"1"}, map[string]bool{"Beginner": true}},
	"intermediate": {[]string{"1", "2"}, map[string]bool{"Beginner": true, "Intermediate": true}},
	"advanced":     {[]string{"1", "2", "3"}, map[string]bool{"Beginner": true, "Intermediate": true, "Advanced": true}},
}

// Manager owns the loaded corpus. Construct with NewManager; a missing corpus
// file yields an empty manager, so new-word selection simply produces nothing.
type Manager struct {
	path    string
	entries map[string]Entry
	log     *logger.Logger
}

func NewManager(path string, log *logger.Logger) (*Manager, error) {
	m := &Manager{path: path, entries: make(map[string]Entry), log: log}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Warn("vocabulary file not found, continuing with empty corpus", "path", path)
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	if err := json.Unmarshal(data, &m.entries); err == nil {
		log.Info("vocabulary loaded", "path", path, "words", len(m.entries))
		return m, nil
	}

	// Legacy array format: convert in place.
	var legacy []legacyEntry
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file %s: %w", path, err)
	}
	for _, e := range legacy {
		if e.Vocab == "" {
			continue
		}
		m.entries[e.Vocab] = Entry{
			Translation:   e.Translation,
			FrequencyRank: e.FrequencyRank,
			TopikLevel:    e.TopikLevel,
			Tags:          e.Tags,
		}
	}
	log.Info("vocabulary converted from legacy array format", "path", path, "words", len(m.entries))
	return m, nil
}

// Len returns the corpus size.
func (m *Manager) Len() int {
	return len(m.entries)
}

// WordData returns the entry for a word, if present.
func (m *Manager) WordData(word string) (Entry, bool) {
	e, ok := m.entries[word]
	return e, ok
}

// NewWordCandidates returns up to limit level-appropriate words the learner
// does not already know, most frequent first.
func (m *Manager) NewWordCandidates(level string, known map[string]bool, limit int) []string {
	criteria, ok := levelCriteria[level]
	if !ok {
		criteria = levelCriteria["beginner"]
	}

	var candidates []string
	for word, e := range m.entries {
		if known[word] {
			continue
		}
		if !matchesLevel(e, criteria.topikLevels, criteria.tags) {
			continue
		}
		candidates = append(candidates, word)
	}

	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := m.rank(candidates[i]), m.rank(candidates[j])
		if ri != rj {
			return ri < rj
		}
		return candidates[i] < candidates[j]
	})

	if limit >= 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func matchesLevel(e Entry, topikLevels []string, tags map[string]bool) bool {
	for _, lvl := range topikLevels {
		if e.TopikLevel == lvl {
			return true
		}
	}
	return tags[e.Tags]
}

// rank returns the frequency rank, pushing unranked words to the back.
func (m *Manager) rank(word string) int {
	if r := m.entries[word].FrequencyRank; r > 0 {
		return r
	}
	return math.MaxInt32
}

// save writes the corpus back to disk atomically.
func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create vocabulary directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".vocab-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp vocabulary file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write vocabulary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), m.path)
}
