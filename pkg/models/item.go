package models

// ItemKind distinguishes grammar patterns from vocabulary entries.
type ItemKind string

const (
	KindGrammar    ItemKind = "grammar"
	KindVocabulary ItemKind = "vocabulary"
)

// MasteryLevel is the categorical competence level derived from an item's
// metrics. Levels are ordered: New < Learning < Reviewing < Mastered.
type MasteryLevel int

const (
	MasteryNew MasteryLevel = iota
	MasteryLearning
	MasteryReviewing
	MasteryMastered
)

func (m MasteryLevel) String() string {
	switch m {
	case MasteryNew:
		return "new"
	case MasteryLearning:
		return "learning"
	case MasteryReviewing:
		return "reviewing"
	case MasteryMastered:
		return "mastered"
	default:
		return "unknown"
	}
}

// LearningItem tracks per-item scheduling state for one grammar pattern or
// vocabulary entry. It is created lazily on first exposure, mutated only by
// the SRS engine, and never deleted.
type LearningItem struct {
	ID                 string   `json:"id"`
	Kind               ItemKind `json:"kind"`
	EaseFactor         float64  `json:"ease_factor"`
	IntervalDays       int      `json:"interval_days"`
	Repetitions        int      `json:"repetitions"`
	Lapses             int      `json:"lapses"`
	ConsecutiveCorrect int      `json:"consecutive_correct"`
	SuccessStreak      int      `json:"success_streak"`
	TotalAttempts      int      `json:"total_attempts"`
	RecentAccuracy     float64  `json:"recent_accuracy"`
	// ExposureCount counts every appearance regardless of correctness.
	// Tracked for grammar items only.
	ExposureCount int   `json:"exposure_count,omitempty"`
	FirstSeen     Date  `json:"first_seen_date"`
	LastReviewed  Date  `json:"last_reviewed_date"`
	NextReview    Date  `json:"next_review_date"`
	MasteryDate   *Date `json:"mastery_date,omitempty"`
}

// InitialEase is the SM-2 starting ease factor for fresh items.
const InitialEase = 2.5

// NewLearningItem returns a fresh item first seen today.
func NewLearningItem(id string, kind ItemKind, today Date) *LearningItem {
	return &LearningItem{
		ID:           id,
		Kind:         kind,
		EaseFactor:   InitialEase,
		IntervalDays: 1,
		FirstSeen:    today,
	}
}

// IsDue reports whether the item should be reviewed on the given day. Items
// with no (or unparseable) next-review date count as due.
func (it *LearningItem) IsDue(today Date) bool {
	return !it.NextReview.After(today)
}

// IsOverdue reports whether the review date has already passed.
func (it *LearningItem) IsOverdue(today Date) bool {
	return !it.NextReview.IsZero() && it.NextReview.Before(today)
}
