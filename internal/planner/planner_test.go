package planner

import (
	"reflect"
	"testing"

	"github.com/example/kobot/internal/logger"
	"github.com/example/kobot/internal/mastery"
	"github.com/example/kobot/pkg/models"
)

type fakeCurriculum struct {
	points []models.GrammarPoint
}

func (f *fakeCurriculum) PointsForLevel(level string) []models.GrammarPoint {
	return f.points
}

type fakeVocabulary struct {
	words []string
}

func (f *fakeVocabulary) NewWordCandidates(level string, known map[string]bool, limit int) []string {
	out := []string{}
	for _, w := range f.words {
		if len(out) >= limit {
			break
		}
		if !known[w] {
			out = append(out, w)
		}
	}
	return out
}

func newPlanner() *Planner {
	classifier := mastery.NewClassifier(mastery.DefaultThresholds())
	gate := NewGate(DefaultGateConfig(), classifier)
	return New(DefaultConfig(), gate, logger.NewNop())
}

func beginnerCurriculum() *fakeCurriculum {
	return &fakeCurriculum{points: []models.GrammarPoint{
		{ID: "-이에요/예요", LearningOrder: 1},
		{ID: "-아요/-어요", LearningOrder: 2},
		{ID: "은/는", LearningOrder: 3},
		{ID: "이/가", LearningOrder: 4},
	}}
}

func TestSelectBootstrap(t *testing.T) {
	pl := newPlanner()
	p := models.DefaultProfile("user_001")
	vocab := &fakeVocabulary{words: []string{"먹다", "가다", "보다", "하다", "오다", "사다"}}

	sel := pl.Select(p, day0, beginnerCurriculum(), vocab)

	if len(sel.NewGrammar) != p.LearningPreferences.NewGrammarPerSession {
		t.Fatalf("bootstrap new grammar = %d, want exactly %d",
			len(sel.NewGrammar), p.LearningPreferences.NewGrammarPerSession)
	}
	// Curriculum order, canonicalized.
	want := []string{"-이에요_예요", "-아요_어요"}
	if !reflect.DeepEqual(sel.NewGrammar, want) {
		t.Errorf("new grammar = %v, want %v", sel.NewGrammar, want)
	}
	if len(sel.ReviewGrammar) != 0 || len(sel.ReviewVocab) != 0 {
		t.Errorf("bootstrap selection has reviews: %+v", sel)
	}
	// Combined cap 5: 2 grammar leaves room for 3 vocab even though the
	// per-session vocab budget is 5.
	if len(sel.NewVocab) != 3 {
		t.Errorf("new vocab = %d, want 3 (crowded out by new grammar)", len(sel.NewVocab))
	}
}

func TestSelectUrgentFirst(t *testing.T) {
	pl := newPlanner()
	p := models.DefaultProfile("user_001")
	p.LearningPreferences.ReviewsPerSession = 2
	p.SessionTracking.SessionsSinceNewContent = 0

	// Regular item due today with the earliest date.
	regular := solidItem("regular")
	regular.Repetitions = 4 // mastered but below the maintenance floor
	regular.NextReview = day0.AddDays(-3)
	p.GrammarSummary["regular"] = regular

	urgent := strugglingItem("urgent")
	urgent.NextReview = day0
	p.GrammarSummary["urgent"] = urgent

	other := solidItem("other")
	other.Repetitions = 4
	other.NextReview = day0
	p.GrammarSummary["other"] = other

	sel := pl.Select(p, day0, nil, nil)
	want := []string{"urgent", "regular"}
	if !reflect.DeepEqual(sel.ReviewGrammar, want) {
		t.Errorf("review grammar = %v, want urgent first then earliest regular %v", sel.ReviewGrammar, want)
	}
}

func TestSelectOverdueLowRepsIsUrgent(t *testing.T) {
	pl := newPlanner()
	it := models.NewLearningItem("x", models.KindGrammar, day0)
	it.TotalAttempts = 3
	it.ConsecutiveCorrect = 3
	it.RecentAccuracy = 1.0
	it.Repetitions = 1
	it.NextReview = day0.AddDays(-2)

	if got := pl.TierFor(it, day0); got != TierUrgent {
		t.Errorf("overdue low-reps item tier = %v, want urgent", got)
	}
}

func TestSelectMaintenanceOnlyWithSpareBudget(t *testing.T) {
	pl := newPlanner()
	p := models.DefaultProfile("user_001")
	p.LearningPreferences.ReviewsPerSession = 1
	p.SessionTracking.SessionsSinceNewContent = 0

	maint := solidItem("maint") // reps 5, mastered, due makes it maintenance
	maint.NextReview = day0
	p.GrammarSummary["maint"] = maint

	regular := solidItem("regular")
	regular.Repetitions = 4
	regular.NextReview = day0
	p.GrammarSummary["regular"] = regular

	sel := pl.Select(p, day0, nil, nil)
	if !reflect.DeepEqual(sel.ReviewGrammar, []string{"regular"}) {
		t.Errorf("review grammar = %v, maintenance must not displace regular reviews", sel.ReviewGrammar)
	}

	p.LearningPreferences.ReviewsPerSession = 2
	sel = pl.Select(p, day0, nil, nil)
	if !reflect.DeepEqual(sel.ReviewGrammar, []string{"regular", "maint"}) {
		t.Errorf("review grammar = %v, want maintenance appended with spare budget", sel.ReviewGrammar)
	}
}

func TestSelectVocabByNearestDueDate(t *testing.T) {
	pl := newPlanner()
	p := models.DefaultProfile("user_001")
	p.SessionTracking.SessionsSinceNewContent = 0

	for i, w := range []string{"가다", "먹다", "보다"} {
		it := models.NewLearningItem(w, models.KindVocabulary, day0.AddDays(-10))
		it.TotalAttempts = 2
		it.ConsecutiveCorrect = 2
		it.RecentAccuracy = 1.0
		it.NextReview = day0.AddDays(-i) // 보다 most overdue
		p.VocabSummary[w] = it
	}
	notDue := models.NewLearningItem("오다", models.KindVocabulary, day0)
	notDue.TotalAttempts = 1
	notDue.ConsecutiveCorrect = 1
	notDue.RecentAccuracy = 1.0
	notDue.NextReview = day0.AddDays(3)
	p.VocabSummary["오다"] = notDue

	sel := pl.Select(p, day0, nil, nil)
	want := []string{"보다", "먹다", "가다"}
	if !reflect.DeepEqual(sel.ReviewVocab, want) {
		t.Errorf("review vocab = %v, want %v", sel.ReviewVocab, want)
	}
}

func TestSelectNoNewContentWhenGateBlocks(t *testing.T) {
	pl := newPlanner()
	p := models.DefaultProfile("user_001")
	p.GrammarSummary["s"] = strugglingItem("s")
	p.GrammarSummary["s"].NextReview = day0

	sel := pl.Select(p, day0, beginnerCurriculum(), &fakeVocabulary{words: []string{"먹다"}})
	if len(sel.NewGrammar) != 0 || len(sel.NewVocab) != 0 {
		t.Errorf("gate blocked but selection has new items: %+v", sel)
	}
}

func TestSelectSkipsSeenCurriculumPoints(t *testing.T) {
	pl := newPlanner()
	p := models.DefaultProfile("user_001")

	// The first curriculum point is already known under a variant spelling.
	seen := solidItem("-이에요_예요")
	p.GrammarSummary[seen.ID] = seen

	sel := pl.Select(p, day0, beginnerCurriculum(), nil)
	want := []string{"-아요_어요", "은_는"}
	if !reflect.DeepEqual(sel.NewGrammar, want) {
		t.Errorf("new grammar = %v, want next unseen points %v", sel.NewGrammar, want)
	}
}

func TestSelectDeterministic(t *testing.T) {
	pl := newPlanner()
	p := models.DefaultProfile("user_001")
	p.SessionTracking.SessionsSinceNewContent = 0
	for _, id := range []string{"b", "a", "c"} {
		it := solidItem(id)
		it.Repetitions = 4
		it.NextReview = day0
		p.GrammarSummary[id] = it
	}

	first := pl.Select(p, day0, nil, nil)
	for i := 0; i < 10; i++ {
		again := pl.Select(p, day0, nil, nil)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Select not deterministic: %+v vs %+v", first, again)
		}
	}
	// Same due date: ids break the tie.
	if !reflect.DeepEqual(first.ReviewGrammar, []string{"a", "b", "c"}) {
		t.Errorf("tie-break order = %v, want sorted ids", first.ReviewGrammar)
	}
}
