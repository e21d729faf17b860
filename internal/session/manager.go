// Package session runs the study-session transaction: load and plan, apply
// evaluated outcomes to item state, then persist the profile atomically and
// log the session to history.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/kobot/internal/logger"
	"github.com/example/kobot/internal/mastery"
	"github.com/example/kobot/internal/normalizer"
	"github.com/example/kobot/internal/planner"
	"github.com/example/kobot/internal/profile"
	"github.com/example/kobot/internal/spaced_repetition"
	"github.com/example/kobot/pkg/models"
)

// History receives session records. Failures are logged, never fatal: the
// profile file is the source of truth and must save regardless.
type History interface {
	SaveSession(rec *models.SessionRecord) error
	SaveOutcomes(records []models.OutcomeRecord) error
	SaveMergeEvents(events []models.MergeEvent) error
}

// Manager owns the session lifecycle.
type Manager struct {
	store      *profile.Store
	engine     *spaced_repetition.Engine
	classifier *mastery.Classifier
	planner    *planner.Planner
	curriculum planner.Curriculum
	vocabulary planner.Vocabulary
	history    History
	log        *logger.Logger
}

func NewManager(
	store *profile.Store,
	engine *spaced_repetition.Engine,
	classifier *mastery.Classifier,
	pl *planner.Planner,
	cur planner.Curriculum,
	vocab planner.Vocabulary,
	hist History,
	log *logger.Logger,
) *Manager {
	return &Manager{
		store:      store,
		engine:     engine,
		classifier: classifier,
		planner:    pl,
		curriculum: cur,
		vocabulary: vocab,
		history:    hist,
		log:        log,
	}
}

// Session is one in-progress study session.
type Session struct {
	ID        string
	Profile   *models.Profile
	Selection planner.Selection

	today       models.Date
	startedAt   time.Time
	startLevels map[string]models.MasteryLevel
	outcomes    []models.OutcomeRecord
	introduced  int
	total       int
	correct     int
}

// Start loads the profile, builds the day's selection and opens a session.
func (m *Manager) Start(userID string, today models.Date) (*Session, error) {
	p, err := m.store.Load(userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if events := m.store.TakeMergeEvents(); len(events) > 0 && m.history != nil {
		if err := m.history.SaveMergeEvents(events); err != nil {
			m.log.Warn("failed to log merge events", "error", err)
		}
	}

	sess := &Session{
		ID:          uuid.NewString(),
		Profile:     p,
		Selection:   m.planner.Select(p, today, m.curriculum, m.vocabulary),
		today:       today,
		startedAt:   time.Now(),
		startLevels: make(map[string]models.MasteryLevel),
	}
	for _, items := range []map[string]*models.LearningItem{p.GrammarSummary, p.VocabSummary} {
		for id, item := range items {
			sess.startLevels[string(item.Kind)+":"+id] = m.classifier.Classify(item)
		}
	}

	m.log.Info("session started",
		"session", sess.ID,
		"user", userID,
		"review_grammar", len(sess.Selection.ReviewGrammar),
		"review_vocab", len(sess.Selection.ReviewVocab),
		"new_grammar", len(sess.Selection.NewGrammar),
		"new_vocab", len(sess.Selection.NewVocab))
	return sess, nil
}

// RecordOutcome applies one evaluated exercise to every item it touched.
// Unknown ids create fresh items on the spot, so an exercise that slipped in
// extra material still gets tracked.
func (m *Manager) RecordOutcome(sess *Session, outcome models.ExerciseOutcome) {
	sess.total++
	if outcome.IsCorrect {
		sess.correct++
	}

	for _, raw := range outcome.GrammarFocus {
		m.applyToItem(sess, raw, models.KindGrammar, outcome.IsCorrect)
	}
	for _, raw := range outcome.VocabUsed {
		m.applyToItem(sess, raw, models.KindVocabulary, outcome.IsCorrect)
	}
}

func (m *Manager) applyToItem(sess *Session, rawID string, kind models.ItemKind, correct bool) {
	id := normalizer.Normalize(rawID)
	if id == "" {
		return
	}

	items := sess.Profile.Items(kind)
	item, ok := items[id]
	if !ok {
		item = models.NewLearningItem(id, kind, sess.today)
		items[id] = item
		sess.introduced++
		m.log.Debug("new item introduced", "id", id, "kind", kind)
	}
	if kind == models.KindGrammar {
		item.ExposureCount++
	}

	m.engine.ApplyOutcome(item, correct, sess.today)
	m.classifier.MarkMastery(item, sess.today)

	sess.outcomes = append(sess.outcomes, models.OutcomeRecord{
		ID:         uuid.NewString(),
		SessionID:  sess.ID,
		ItemID:     id,
		Kind:       kind,
		IsCorrect:  correct,
		RecordedAt: time.Now().UTC(),
	})
}

// Summary reports what a completed session changed.
type Summary struct {
	Record        models.SessionRecord `json:"record"`
	PromotedItems []string             `json:"promoted_items"`
}

// End closes the session: counts promotions, advances session tracking, saves
// the profile atomically and logs the record to history.
func (m *Manager) End(sess *Session) (*Summary, error) {
	p := sess.Profile

	var promoted []string
	for _, items := range []map[string]*models.LearningItem{p.GrammarSummary, p.VocabSummary} {
		for id, item := range items {
			before, existed := sess.startLevels[string(item.Kind)+":"+id]
			after := m.classifier.Classify(item)
			if (existed && after > before) || (!existed && after > models.MasteryNew) {
				promoted = append(promoted, id)
			}
		}
	}

	p.SessionTracking.LastSessionDate = sess.today
	p.SessionTracking.ExercisesCompleted += sess.total
	if sess.introduced > 0 {
		p.SessionTracking.SessionsSinceNewContent = 0
	} else {
		p.SessionTracking.SessionsSinceNewContent++
	}

	accuracy := 0.0
	if sess.total > 0 {
		accuracy = float64(sess.correct) / float64(sess.total)
	}
	record := models.SessionRecord{
		SessionID:          sess.ID,
		UserID:             p.UserID,
		Date:               sess.today.String(),
		DurationMinutes:    int(time.Since(sess.startedAt).Minutes()),
		TotalExercises:     sess.total,
		CorrectExercises:   sess.correct,
		AccuracyRate:       accuracy,
		Promotions:         len(promoted),
		NewItemsIntroduced: sess.introduced,
		CreatedAt:          time.Now().UTC(),
	}

	if m.history != nil {
		if err := m.history.SaveSession(&record); err != nil {
			m.log.Warn("failed to log session record", "error", err)
		}
		if err := m.history.SaveOutcomes(sess.outcomes); err != nil {
			m.log.Warn("failed to log outcome records", "error", err)
		}
	}

	if err := m.store.Save(p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	m.log.Info("session ended",
		"session", sess.ID,
		"exercises", sess.total,
		"accuracy", accuracy,
		"promotions", len(promoted),
		"introduced", sess.introduced)
	return &Summary{Record: record, PromotedItems: promoted}, nil
}
