package planner

import (
	"github.com/example/kobot/internal/mastery"
	"github.com/example/kobot/pkg/models"
)

// GateConfig tunes the new-content readiness policy.
type GateConfig struct {
	// Struggling: recent accuracy below this, or no streak after several
	// attempts.
	StrugglingAccuracy    float64
	StrugglingMinAttempts int
	// Strict bar applied when exactly one item is known.
	SingleItemMinExposures int
	SingleItemMinReps      int
	// Small corpora (2..SmallCorpusMax items) need zero struggling items and
	// this fraction mastered.
	SmallCorpusMax           int
	SmallCorpusMasteredRatio float64
	// Larger corpora relax to proportional limits.
	MaxStrugglingFraction float64
	MaxUnmasteredFraction float64
}

// DefaultGateConfig returns the stock readiness policy.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		StrugglingAccuracy:       0.6,
		StrugglingMinAttempts:    4,
		SingleItemMinExposures:   5,
		SingleItemMinReps:        3,
		SmallCorpusMax:           4,
		SmallCorpusMasteredRatio: 0.75,
		MaxStrugglingFraction:    0.25,
		MaxUnmasteredFraction:    1.0 / 3.0,
	}
}

// Gate decides whether introducing new material is currently allowed, from
// aggregate grammar state. Policy scales with corpus size, and two overrides
// apply on top: the consolidation window and presently-urgent items. The
// consolidation counter and the mastery policy are AND-combined — either one
// blocking blocks new content.
type Gate struct {
	cfg        GateConfig
	classifier *mastery.Classifier
}

func NewGate(cfg GateConfig, classifier *mastery.Classifier) *Gate {
	return &Gate{cfg: cfg, classifier: classifier}
}

// AllowNewContent reports whether new grammar or vocabulary may be introduced.
func (g *Gate) AllowNewContent(p *models.Profile, today models.Date) bool {
	items := p.GrammarSummary

	// Bootstrap: an empty corpus has nothing to consolidate.
	if len(items) == 0 {
		return true
	}

	// Consolidation window: hold new content until enough review-only
	// sessions have elapsed since the last introduction.
	if p.SessionTracking.SessionsSinceNewContent < p.LearningPreferences.ConsolidationSessions {
		return false
	}

	var struggling, mastered, urgentNow int
	for _, item := range items {
		isStruggling := g.IsStruggling(item)
		if isStruggling {
			struggling++
			// A struggling item that is also due right now needs attention
			// before anything new; it blocks unconditionally.
			if item.IsDue(today) {
				urgentNow++
			}
		}
		if g.classifier.IsMastered(item) {
			mastered++
		}
	}
	if urgentNow > 0 {
		return false
	}

	total := len(items)
	switch {
	case total == 1:
		for _, item := range items {
			if !g.singleItemBar(item) {
				return false
			}
		}
		return true
	case total <= g.cfg.SmallCorpusMax:
		if struggling > 0 {
			return false
		}
		return float64(mastered)/float64(total) >= g.cfg.SmallCorpusMasteredRatio
	default:
		if float64(struggling) > float64(total)*g.cfg.MaxStrugglingFraction {
			return false
		}
		unmastered := total - mastered
		return float64(unmastered) <= float64(total)*g.cfg.MaxUnmasteredFraction
	}
}

// IsStruggling reports whether an item is doing badly enough to hold back
// new content: low recent accuracy, or a dead streak after several attempts.
// Untouched items are not struggling.
func (g *Gate) IsStruggling(item *models.LearningItem) bool {
	if item.TotalAttempts == 0 {
		return false
	}
	if item.RecentAccuracy < g.cfg.StrugglingAccuracy {
		return true
	}
	return item.ConsecutiveCorrect == 0 && item.TotalAttempts >= g.cfg.StrugglingMinAttempts
}

// singleItemBar is the strict readiness bar for a one-item corpus: the lone
// item must be solidly known on every axis before anything else comes in.
func (g *Gate) singleItemBar(item *models.LearningItem) bool {
	t := g.classifier.T
	return item.ExposureCount >= g.cfg.SingleItemMinExposures &&
		item.Repetitions >= g.cfg.SingleItemMinReps &&
		item.ConsecutiveCorrect >= t.MinConsecutive &&
		item.RecentAccuracy >= t.MinAccuracy &&
		item.TotalAttempts >= t.MinAttempts
}
