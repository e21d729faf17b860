// Package mastery derives categorical competence levels from per-item
// scheduling metrics and builds the per-item summaries the dashboard reads.
package mastery

import (
	"sort"

	"github.com/example/kobot/pkg/models"
)

// Thresholds are the competence bars for the Mastered level.
type Thresholds struct {
	MinReps        int
	MinAttempts    int
	MinConsecutive int
	MinAccuracy    float64
}

// DefaultThresholds returns the stock mastery bars.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinReps:        3,
		MinAttempts:    5,
		MinConsecutive: 3,
		MinAccuracy:    0.8,
	}
}

// Classifier is a pure function of item metrics against thresholds.
type Classifier struct {
	T Thresholds
}

func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{T: t}
}

// Classify maps an item to New, Learning, Reviewing or Mastered. Monotonic:
// improving any input never lowers the result.
func (c *Classifier) Classify(item *models.LearningItem) models.MasteryLevel {
	if exposures(item) == 0 && item.TotalAttempts == 0 {
		return models.MasteryNew
	}
	if item.Repetitions < c.T.MinReps || item.TotalAttempts < c.T.MinAttempts {
		return models.MasteryLearning
	}
	if item.RecentAccuracy < c.T.MinAccuracy || item.ConsecutiveCorrect < c.T.MinConsecutive {
		return models.MasteryReviewing
	}
	return models.MasteryMastered
}

// IsMastered is a convenience wrapper for gate and planner checks.
func (c *Classifier) IsMastered(item *models.LearningItem) bool {
	return c.Classify(item) == models.MasteryMastered
}

// MarkMastery stamps the mastery date the first time an item classifies as
// Mastered. The date is set once and never cleared.
func (c *Classifier) MarkMastery(item *models.LearningItem, today models.Date) {
	if item.MasteryDate == nil && c.IsMastered(item) {
		d := today
		item.MasteryDate = &d
	}
}

// exposures returns the exposure metric for classification. Vocabulary items
// carry no exposure counter, so attempts stand in for it.
func exposures(item *models.LearningItem) int {
	if item.Kind == models.KindVocabulary {
		return item.TotalAttempts
	}
	return item.ExposureCount
}

// ItemSummary is the reporting view of one item.
type ItemSummary struct {
	ID                 string              `json:"id"`
	Kind               models.ItemKind     `json:"kind"`
	Level              models.MasteryLevel `json:"-"`
	LevelName          string              `json:"level"`
	Repetitions        int                 `json:"repetitions"`
	IntervalDays       int                 `json:"interval_days"`
	RecentAccuracy     float64             `json:"recent_accuracy"`
	ConsecutiveCorrect int                 `json:"consecutive_correct"`
	Lapses             int                 `json:"lapses"`
	NextReview         models.Date         `json:"next_review_date"`
}

// Summarize builds mastery summaries for every item in the profile, sorted
// by kind then id so output is stable.
func (c *Classifier) Summarize(p *models.Profile) []ItemSummary {
	out := make([]ItemSummary, 0, len(p.GrammarSummary)+len(p.VocabSummary))
	for _, m := range []map[string]*models.LearningItem{p.GrammarSummary, p.VocabSummary} {
		for _, item := range m {
			level := c.Classify(item)
			out = append(out, ItemSummary{
				ID:                 item.ID,
				Kind:               item.Kind,
				Level:              level,
				LevelName:          level.String(),
				Repetitions:        item.Repetitions,
				IntervalDays:       item.IntervalDays,
				RecentAccuracy:     item.RecentAccuracy,
				ConsecutiveCorrect: item.ConsecutiveCorrect,
				Lapses:             item.Lapses,
				NextReview:         item.NextReview,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})
	return out
}
