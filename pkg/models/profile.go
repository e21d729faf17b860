package models

// LearningPreferences holds per-user session budgets. Zero fields fall back
// to the documented defaults on load.
type LearningPreferences struct {
	ReviewsPerSession     int `json:"reviews_per_session"`
	NewGrammarPerSession  int `json:"new_grammar_per_session"`
	NewVocabPerSession    int `json:"new_vocab_per_session"`
	MaxNewPerSession      int `json:"max_new_items_per_session"`
	ConsolidationSessions int `json:"consolidation_sessions"`
}

// DefaultPreferences returns the stock session budgets.
func DefaultPreferences() LearningPreferences {
	return LearningPreferences{
		ReviewsPerSession:     10,
		NewGrammarPerSession:  2,
		NewVocabPerSession:    5,
		MaxNewPerSession:      5,
		ConsolidationSessions: 2,
	}
}

// ApplyDefaults fills missing (zero) preference values.
func (p *LearningPreferences) ApplyDefaults() {
	def := DefaultPreferences()
	if p.ReviewsPerSession <= 0 {
		p.ReviewsPerSession = def.ReviewsPerSession
	}
	if p.NewGrammarPerSession <= 0 {
		p.NewGrammarPerSession = def.NewGrammarPerSession
	}
	if p.NewVocabPerSession <= 0 {
		p.NewVocabPerSession = def.NewVocabPerSession
	}
	if p.MaxNewPerSession <= 0 {
		p.MaxNewPerSession = def.MaxNewPerSession
	}
	if p.ConsolidationSessions <= 0 {
		p.ConsolidationSessions = def.ConsolidationSessions
	}
}

// SessionTracking carries counters that span sessions.
type SessionTracking struct {
	LastSessionDate    Date `json:"last_session_date"`
	ExercisesCompleted int  `json:"exercises_completed"`
	// SessionsSinceNewContent counts completed sessions since the last time
	// new material was introduced. The readiness gate holds new content back
	// until it reaches the configured consolidation count.
	SessionsSinceNewContent int `json:"sessions_since_new_content"`
}

// Profile is one user's full persisted state: preferences, session counters
// and the two per-item scheduling maps keyed by canonical id.
type Profile struct {
	UserID              string                   `json:"user_id"`
	Level               string                   `json:"level"`
	NativeLanguage      string                   `json:"native_language"`
	TargetLanguage      string                   `json:"target_language"`
	SessionTracking     SessionTracking          `json:"session_tracking"`
	LearningPreferences LearningPreferences      `json:"learning_preferences"`
	GrammarSummary      map[string]*LearningItem `json:"grammar_summary"`
	VocabSummary        map[string]*LearningItem `json:"vocab_summary"`
}

// DefaultProfile returns a first-run profile for a beginner learner. The
// consolidation counter starts satisfied so a brand-new profile is not
// review-locked before it has anything to review.
func DefaultProfile(userID string) *Profile {
	prefs := DefaultPreferences()
	return &Profile{
		UserID:         userID,
		Level:          "beginner",
		NativeLanguage: "English",
		TargetLanguage: "Korean",
		SessionTracking: SessionTracking{
			SessionsSinceNewContent: prefs.ConsolidationSessions,
		},
		LearningPreferences: prefs,
		GrammarSummary:      make(map[string]*LearningItem),
		VocabSummary:        make(map[string]*LearningItem),
	}
}

// Items returns the summary map for the given kind.
func (p *Profile) Items(kind ItemKind) map[string]*LearningItem {
	if kind == KindVocabulary {
		return p.VocabSummary
	}
	return p.GrammarSummary
}

// GrammarPoint is one curriculum entry: a teachable pattern with its
// position in the curriculum's learning order.
type GrammarPoint struct {
	ID            string `json:"id"`
	Description   string `json:"description"`
	LearningOrder int    `json:"learning_order"`
}
