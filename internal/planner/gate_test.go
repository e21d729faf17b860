package planner

import (
	"testing"
	"time"

	"github.com/example/kobot/internal/mastery"
	"github.com/example/kobot/pkg/models"
)

var day0 = models.DateOf(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

func newGate() *Gate {
	return NewGate(DefaultGateConfig(), mastery.NewClassifier(mastery.DefaultThresholds()))
}

func solidItem(id string) *models.LearningItem {
	it := models.NewLearningItem(id, models.KindGrammar, day0)
	it.ExposureCount = 10
	it.Repetitions = 5
	it.ConsecutiveCorrect = 5
	it.TotalAttempts = 10
	it.RecentAccuracy = 1.0
	it.LastReviewed = day0
	it.NextReview = day0.AddDays(14)
	return it
}

func strugglingItem(id string) *models.LearningItem {
	it := models.NewLearningItem(id, models.KindGrammar, day0)
	it.ExposureCount = 6
	it.TotalAttempts = 6
	it.ConsecutiveCorrect = 0
	it.RecentAccuracy = 0.2
	it.NextReview = day0.AddDays(7)
	return it
}

func readyProfile() *models.Profile {
	p := models.DefaultProfile("user_001")
	p.SessionTracking.SessionsSinceNewContent = p.LearningPreferences.ConsolidationSessions
	return p
}

func TestGateBootstrap(t *testing.T) {
	g := newGate()
	p := readyProfile()
	p.SessionTracking.SessionsSinceNewContent = 0 // consolidation never blocks an empty corpus
	if !g.AllowNewContent(p, day0) {
		t.Error("empty corpus must allow new content")
	}
}

func TestGateSingleItemStrictBar(t *testing.T) {
	g := newGate()

	p := readyProfile()
	it := solidItem("-이에요_예요")
	p.GrammarSummary[it.ID] = it
	if !g.AllowNewContent(p, day0) {
		t.Error("single solid item (10 exposures, 5 reps, streak 5, accuracy 1.0) must allow new content")
	}

	// Same metrics but barely exposed: blocked.
	p2 := readyProfile()
	it2 := solidItem("-이에요_예요")
	it2.ExposureCount = 2
	p2.GrammarSummary[it2.ID] = it2
	if g.AllowNewContent(p2, day0) {
		t.Error("single item with only 2 exposures must block new content")
	}
}

func TestGateSmallCorpus(t *testing.T) {
	g := newGate()

	// 3 of 4 mastered (75%), none struggling: allowed.
	p := readyProfile()
	for _, id := range []string{"a", "b", "c"} {
		p.GrammarSummary[id] = solidItem(id)
	}
	learning := models.NewLearningItem("d", models.KindGrammar, day0)
	learning.ExposureCount = 2
	learning.TotalAttempts = 2
	learning.ConsecutiveCorrect = 2
	learning.RecentAccuracy = 1.0
	learning.NextReview = day0.AddDays(2)
	p.GrammarSummary["d"] = learning
	if !g.AllowNewContent(p, day0) {
		t.Error("small corpus at 75% mastered with no struggling items must allow")
	}

	// Any struggling item in a small corpus blocks.
	p.GrammarSummary["d"] = strugglingItem("d")
	if g.AllowNewContent(p, day0) {
		t.Error("small corpus with a struggling item must block")
	}

	// Under the mastered ratio: blocked.
	p2 := readyProfile()
	p2.GrammarSummary["a"] = solidItem("a")
	p2.GrammarSummary["b"] = solidItem("b")
	ln := models.NewLearningItem("c", models.KindGrammar, day0)
	ln.ExposureCount = 2
	ln.TotalAttempts = 2
	ln.ConsecutiveCorrect = 2
	ln.RecentAccuracy = 1.0
	ln.NextReview = day0.AddDays(2)
	p2.GrammarSummary["c"] = ln
	if g.AllowNewContent(p2, day0) {
		t.Error("2 of 3 mastered (67%) must block in a small corpus")
	}
}

func TestGateProportionalLimits(t *testing.T) {
	g := newGate()

	// 8 items, 1 struggling-but-not-due (12.5% <= 25%), 2 unmastered (25% <= 33%).
	p := readyProfile()
	for i := 0; i < 6; i++ {
		id := string(rune('a' + i))
		p.GrammarSummary[id] = solidItem(id)
	}
	s := strugglingItem("g")
	s.NextReview = day0.AddDays(7) // not due, so not presently urgent
	p.GrammarSummary["g"] = s
	ln := models.NewLearningItem("h", models.KindGrammar, day0)
	ln.ExposureCount = 3
	ln.TotalAttempts = 3
	ln.ConsecutiveCorrect = 3
	ln.RecentAccuracy = 1.0
	ln.NextReview = day0.AddDays(2)
	p.GrammarSummary["h"] = ln
	if !g.AllowNewContent(p, day0) {
		t.Error("large corpus within proportional limits must allow")
	}

	// Too many struggling items: blocked.
	s2 := strugglingItem("i")
	s2.NextReview = day0.AddDays(7)
	s3 := strugglingItem("j")
	s3.NextReview = day0.AddDays(7)
	p.GrammarSummary["i"] = s2
	p.GrammarSummary["j"] = s3
	if g.AllowNewContent(p, day0) {
		t.Error("3 of 10 struggling exceeds the quarter limit and must block")
	}
}

func TestGateUrgentItemBlocksUnconditionally(t *testing.T) {
	g := newGate()
	p := readyProfile()
	for i := 0; i < 7; i++ {
		id := string(rune('a' + i))
		p.GrammarSummary[id] = solidItem(id)
	}
	// One struggling item that is due today: blocks even though the
	// proportional limits would tolerate it.
	s := strugglingItem("urgent")
	s.NextReview = day0
	p.GrammarSummary["urgent"] = s
	if g.AllowNewContent(p, day0) {
		t.Error("a presently urgent item must block new content unconditionally")
	}
}

func TestGateConsolidationWindow(t *testing.T) {
	g := newGate()
	p := readyProfile()
	p.GrammarSummary["a"] = solidItem("a")
	p.SessionTracking.SessionsSinceNewContent = 0

	if g.AllowNewContent(p, day0) {
		t.Error("consolidation window must block regardless of mastery")
	}

	p.SessionTracking.SessionsSinceNewContent = p.LearningPreferences.ConsolidationSessions
	if !g.AllowNewContent(p, day0) {
		t.Error("elapsed consolidation window must unblock")
	}
}

func TestIsStruggling(t *testing.T) {
	g := newGate()

	fresh := models.NewLearningItem("x", models.KindGrammar, day0)
	if g.IsStruggling(fresh) {
		t.Error("untouched item must not count as struggling")
	}

	lowAcc := models.NewLearningItem("y", models.KindGrammar, day0)
	lowAcc.TotalAttempts = 2
	lowAcc.RecentAccuracy = 0.5
	if !g.IsStruggling(lowAcc) {
		t.Error("accuracy below 0.6 must count as struggling")
	}

	deadStreak := models.NewLearningItem("z", models.KindGrammar, day0)
	deadStreak.TotalAttempts = 4
	deadStreak.ConsecutiveCorrect = 0
	deadStreak.RecentAccuracy = 0.7
	if !g.IsStruggling(deadStreak) {
		t.Error("zero streak after 4 attempts must count as struggling")
	}
}
