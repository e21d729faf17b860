// Package spaced_repetition implements the review scheduling algorithm: a
// gated SM-2 variant tuned for beginner pacing. Compared to stock SM-2 it
// requires a sustained streak before an item advances, caps interval growth,
// and only partially resets progress on failure.
package spaced_repetition

import (
	"math"

	"github.com/example/kobot/pkg/models"
)

// Engine holds the scheduling tunables and applies review outcomes to
// per-item state. All methods are deterministic given the item and the day.
type Engine struct {
	// Ease factor bounds.
	MinEase float64
	MaxEase float64
	// InitialEase seeds items that lost their ease factor entirely.
	InitialEase float64
	// GrowthEaseCap limits the effective ease used for interval growth,
	// below the raw MaxEase ceiling.
	GrowthEaseCap float64
	// MaxGrowthFactor hard-caps per-step interval growth.
	MaxGrowthFactor float64
	// IntervalTable fixes the interval for the first repetition levels,
	// indexed by repetitions.
	IntervalTable []int
	// MaxInterval bounds every computed interval, in days.
	MaxInterval int
	// FailureResetSteps is how many repetition levels a failure costs.
	FailureResetSteps int
	// AccuracyWindow is the attempt window for recent accuracy.
	AccuracyWindow int
	// Lapse penalties subtracted from the ease factor on failure. The severe
	// penalty applies once lapses reach SevereLapseCount.
	LapsePenalty       float64
	SevereLapsePenalty float64
	SevereLapseCount   int
	// Ease nudge applied when a success advances the repetition level.
	AdvanceEaseBonus float64
	// Streak required before a success advances the repetition level.
	// Stricter at low levels.
	StreakBelowLevel3 int
	StreakBelowLevel5 int
	StreakBaseline    int
	// RepairHorizonDays flags next-review dates implausibly far out.
	RepairHorizonDays int
}

// New returns an engine with the default tunables.
func New() *Engine {
	return &Engine{
		MinEase:            1.3,
		MaxEase:            2.8,
		InitialEase:        models.InitialEase,
		GrowthEaseCap:      2.0,
		MaxGrowthFactor:    1.5,
		IntervalTable:      []int{1, 2, 3, 7, 14, 30},
		MaxInterval:        60,
		FailureResetSteps:  2,
		AccuracyWindow:     8,
		LapsePenalty:       0.2,
		SevereLapsePenalty: 0.3,
		SevereLapseCount:   3,
		AdvanceEaseBonus:   0.05,
		StreakBelowLevel3:  4,
		StreakBelowLevel5:  3,
		StreakBaseline:     2,
		RepairHorizonDays:  180,
	}
}

// RequiredStreak returns the success streak needed to advance from the given
// repetition level.
func (e *Engine) RequiredStreak(repetitions int) int {
	switch {
	case repetitions < 3:
		return e.StreakBelowLevel3
	case repetitions < 5:
		return e.StreakBelowLevel5
	default:
		return e.StreakBaseline
	}
}

// ApplyOutcome mutates one item's scheduling state for an evaluated attempt
// and computes its next review date.
func (e *Engine) ApplyOutcome(item *models.LearningItem, correct bool, today models.Date) {
	item.TotalAttempts++
	if correct {
		item.ConsecutiveCorrect++
		item.SuccessStreak++
	} else {
		item.ConsecutiveCorrect = 0
		item.SuccessStreak = 0
	}
	item.RecentAccuracy = e.recentAccuracy(item)

	if correct {
		e.applySuccess(item)
	} else {
		e.applyFailure(item)
	}

	item.LastReviewed = today
	item.NextReview = today.AddDays(item.IntervalDays)
}

func (e *Engine) recentAccuracy(item *models.LearningItem) float64 {
	if item.TotalAttempts == 0 {
		return 0
	}
	window := item.TotalAttempts
	if window > e.AccuracyWindow {
		window = e.AccuracyWindow
	}
	acc := float64(item.ConsecutiveCorrect) / float64(window)
	return math.Min(1, acc)
}

func (e *Engine) applyFailure(item *models.LearningItem) {
	item.Repetitions -= e.FailureResetSteps
	if item.Repetitions < 0 {
		item.Repetitions = 0
	}
	item.IntervalDays = e.tableInterval(item.Repetitions)
	item.Lapses++

	penalty := e.LapsePenalty
	if item.Lapses >= e.SevereLapseCount {
		penalty = e.SevereLapsePenalty
	}
	item.EaseFactor = e.clampEase(item.EaseFactor - penalty)
}

func (e *Engine) applySuccess(item *models.LearningItem) {
	if item.SuccessStreak < e.RequiredStreak(item.Repetitions) {
		// Not enough sustained correctness yet: only the counters move, the
		// current spacing and ease repeat.
		return
	}

	item.Repetitions++
	if item.Repetitions < len(e.IntervalTable) {
		item.IntervalDays = e.IntervalTable[item.Repetitions]
	} else {
		growth := math.Min(item.EaseFactor, e.GrowthEaseCap)
		growth = math.Min(growth, e.MaxGrowthFactor)
		next := int(math.Round(float64(item.IntervalDays) * growth))
		if next <= item.IntervalDays {
			next = item.IntervalDays + 1
		}
		if next > e.MaxInterval {
			next = e.MaxInterval
		}
		item.IntervalDays = next
	}
	item.EaseFactor = e.clampEase(item.EaseFactor + e.AdvanceEaseBonus)
	item.SuccessStreak = 0
}

// Repair recomputes an item's scheduling state from its repetition level when
// the persisted values have drifted out of range (legacy algorithm versions,
// hand-edited files). Returns true when anything changed.
func (e *Engine) Repair(item *models.LearningItem, today models.Date) bool {
	horizon := today.AddDays(e.RepairHorizonDays)
	corrupt := item.IntervalDays < 1 ||
		item.IntervalDays > e.MaxInterval ||
		item.EaseFactor < e.MinEase ||
		item.EaseFactor > e.MaxEase ||
		item.Repetitions < 0 ||
		item.NextReview.After(horizon)
	if !corrupt {
		return false
	}

	if item.Repetitions < 0 {
		item.Repetitions = 0
	}
	if item.EaseFactor == 0 {
		item.EaseFactor = e.InitialEase
	}
	item.EaseFactor = e.clampEase(item.EaseFactor)
	item.IntervalDays = e.tableInterval(item.Repetitions)

	base := item.LastReviewed
	if base.IsZero() {
		base = today
	}
	item.NextReview = base.AddDays(item.IntervalDays)
	return true
}

// tableInterval returns the fixed interval for a repetition level, clamped to
// the last table entry for levels beyond it.
func (e *Engine) tableInterval(repetitions int) int {
	if len(e.IntervalTable) == 0 {
		return 1
	}
	if repetitions < 0 {
		repetitions = 0
	}
	if repetitions >= len(e.IntervalTable) {
		repetitions = len(e.IntervalTable) - 1
	}
	return e.IntervalTable[repetitions]
}

func (e *Engine) clampEase(ease float64) float64 {
	if ease < e.MinEase {
		return e.MinEase
	}
	if ease > e.MaxEase {
		return e.MaxEase
	}
	return ease
}
