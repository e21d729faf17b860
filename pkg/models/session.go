package models

import "time"

// ExerciseOutcome is the record an external evaluator produces for one
// completed exercise. Ids may be raw or canonical; they are normalized before
// any state is touched.
type ExerciseOutcome struct {
	GrammarFocus []string `json:"grammar_focus"`
	VocabUsed    []string `json:"vocab_used"`
	IsCorrect    bool     `json:"is_correct"`
}

// SessionRecord summarizes one completed study session for the history log.
type SessionRecord struct {
	SessionID          string    `json:"session_id" db:"session_id"`
	UserID             string    `json:"user_id" db:"user_id"`
	Date               string    `json:"date" db:"date"`
	DurationMinutes    int       `json:"duration_minutes" db:"duration_minutes"`
	TotalExercises     int       `json:"total_exercises" db:"total_exercises"`
	CorrectExercises   int       `json:"correct_exercises" db:"correct_exercises"`
	AccuracyRate       float64   `json:"accuracy_rate" db:"accuracy_rate"`
	Promotions         int       `json:"promotions" db:"promotions"`
	NewItemsIntroduced int       `json:"new_items_introduced" db:"new_items_introduced"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// OutcomeRecord is one evaluated attempt against one item.
type OutcomeRecord struct {
	ID         string    `json:"id" db:"id"`
	SessionID  string    `json:"session_id" db:"session_id"`
	ItemID     string    `json:"item_id" db:"item_id"`
	Kind       ItemKind  `json:"kind" db:"kind"`
	IsCorrect  bool      `json:"is_correct" db:"is_correct"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// MergeEvent records two raw ids collapsing into one canonical key on load.
type MergeEvent struct {
	ID                 int64     `json:"id" db:"id"`
	CanonicalID        string    `json:"canonical_id" db:"canonical_id"`
	DroppedID          string    `json:"dropped_id" db:"dropped_id"`
	KeptRepetitions    int       `json:"kept_repetitions" db:"kept_repetitions"`
	DroppedRepetitions int       `json:"dropped_repetitions" db:"dropped_repetitions"`
	Kind               ItemKind  `json:"kind" db:"kind"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}
