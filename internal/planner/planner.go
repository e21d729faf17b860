// Package planner partitions due items into urgency tiers and assembles each
// session's review/new-item selection within the configured budgets, gated by
// the new-content readiness policy.
package planner

import (
	"sort"

	"github.com/example/kobot/internal/logger"
	"github.com/example/kobot/internal/normalizer"
	"github.com/example/kobot/pkg/models"
)

// Curriculum supplies ordered, level-filtered grammar points.
type Curriculum interface {
	PointsForLevel(level string) []models.GrammarPoint
}

// Vocabulary supplies level-appropriate candidate words excluding a known set.
type Vocabulary interface {
	NewWordCandidates(level string, known map[string]bool, limit int) []string
}

// Selection is the session's item selection, consumed by the external
// exercise generator.
type Selection struct {
	ReviewGrammar []string `json:"review_grammar"`
	ReviewVocab   []string `json:"review_vocab"`
	NewGrammar    []string `json:"new_grammar"`
	NewVocab      []string `json:"new_vocab"`
}

// Tier is the urgency class of a grammar item on a given day.
type Tier int

const (
	TierNone Tier = iota
	TierMaintenance
	TierRegular
	TierUrgent
)

// Config tunes tier classification.
type Config struct {
	// Overdue items below this repetition level count as urgent.
	LowRepsThreshold int
	// Due items at or above this repetition level that classify as mastered
	// go to the maintenance tier.
	MaintenanceMinReps int
}

// DefaultConfig returns the stock planner tuning.
func DefaultConfig() Config {
	return Config{
		LowRepsThreshold:   3,
		MaintenanceMinReps: 5,
	}
}

// Planner assembles session selections. Deterministic given profile, date and
// configuration.
type Planner struct {
	cfg  Config
	gate *Gate
	log  *logger.Logger
}

func New(cfg Config, gate *Gate, log *logger.Logger) *Planner {
	return &Planner{cfg: cfg, gate: gate, log: log}
}

// TierFor classifies one grammar item for the given day.
func (pl *Planner) TierFor(item *models.LearningItem, today models.Date) Tier {
	struggling := pl.gate.IsStruggling(item)
	due := item.IsDue(today) && item.TotalAttempts > 0

	switch {
	case struggling:
		return TierUrgent
	case item.IsOverdue(today) && item.Repetitions < pl.cfg.LowRepsThreshold:
		return TierUrgent
	case due && pl.gate.classifier.IsMastered(item) && item.Repetitions >= pl.cfg.MaintenanceMinReps:
		return TierMaintenance
	case due:
		return TierRegular
	default:
		return TierNone
	}
}

// Select builds the session selection: urgent and regular grammar reviews
// first, due vocabulary by nearest date, then new material if the readiness
// gate allows. New grammar and new vocabulary share one combined cap, grammar
// first.
func (pl *Planner) Select(p *models.Profile, today models.Date, cur Curriculum, vocab Vocabulary) Selection {
	prefs := p.LearningPreferences
	sel := Selection{}

	// Grammar reviews: urgent, then regular, then maintenance while budget
	// remains, each tier ordered by earliest next review.
	var urgent, regular, maintenance []*models.LearningItem
	for _, item := range p.GrammarSummary {
		switch pl.TierFor(item, today) {
		case TierUrgent:
			urgent = append(urgent, item)
		case TierRegular:
			regular = append(regular, item)
		case TierMaintenance:
			maintenance = append(maintenance, item)
		}
	}
	sortByDueDate(urgent)
	sortByDueDate(regular)
	sortByDueDate(maintenance)
	for _, tier := range [][]*models.LearningItem{urgent, regular, maintenance} {
		for _, item := range tier {
			if len(sel.ReviewGrammar) >= prefs.ReviewsPerSession {
				break
			}
			sel.ReviewGrammar = append(sel.ReviewGrammar, item.ID)
		}
	}

	// Vocabulary reviews: everything due, nearest date first.
	var dueVocab []*models.LearningItem
	for _, item := range p.VocabSummary {
		if item.IsDue(today) && item.TotalAttempts > 0 {
			dueVocab = append(dueVocab, item)
		}
	}
	sortByDueDate(dueVocab)
	for _, item := range dueVocab {
		if len(sel.ReviewVocab) >= prefs.ReviewsPerSession {
			break
		}
		sel.ReviewVocab = append(sel.ReviewVocab, item.ID)
	}

	if !pl.gate.AllowNewContent(p, today) {
		pl.log.Debug("new content blocked by readiness gate",
			"known_grammar", len(p.GrammarSummary),
			"sessions_since_new", p.SessionTracking.SessionsSinceNewContent)
		return sel
	}

	newBudget := prefs.MaxNewPerSession

	// New grammar: curriculum points unseen by canonical id, in curriculum
	// order.
	if cur != nil {
		grammarBudget := min(prefs.NewGrammarPerSession, newBudget)
		points := append([]models.GrammarPoint(nil), cur.PointsForLevel(p.Level)...)
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].LearningOrder < points[j].LearningOrder
		})
		for _, gp := range points {
			if len(sel.NewGrammar) >= grammarBudget {
				break
			}
			id := normalizer.Normalize(gp.ID)
			if _, seen := p.GrammarSummary[id]; seen {
				continue
			}
			sel.NewGrammar = append(sel.NewGrammar, id)
		}
		newBudget -= len(sel.NewGrammar)
	}

	// New vocabulary takes whatever the combined cap has left: a new grammar
	// item crowds out new vocabulary in the same session.
	if vocab != nil {
		vocabBudget := min(prefs.NewVocabPerSession, newBudget)
		if vocabBudget > 0 {
			known := make(map[string]bool, len(p.VocabSummary))
			for id := range p.VocabSummary {
				known[id] = true
			}
			for _, w := range vocab.NewWordCandidates(p.Level, known, vocabBudget) {
				sel.NewVocab = append(sel.NewVocab, normalizer.Normalize(w))
			}
		}
	}

	pl.log.Debug("session selection assembled",
		"review_grammar", len(sel.ReviewGrammar),
		"review_vocab", len(sel.ReviewVocab),
		"new_grammar", len(sel.NewGrammar),
		"new_vocab", len(sel.NewVocab))
	return sel
}

// sortByDueDate orders items by earliest next review, then id for stability.
func sortByDueDate(items []*models.LearningItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].NextReview.Equal(items[j].NextReview) {
			return items[i].NextReview.Before(items[j].NextReview)
		}
		return items[i].ID < items[j].ID
	})
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
