// Package scheduler runs the hourly due-review reminder loop.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/kobot/internal/logger"
	"github.com/example/kobot/internal/profile"
	"github.com/example/kobot/pkg/models"
)

// Default quiet-hours bounds, overridable through configuration.
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier delivers a due-review reminder to the learner.
type Notifier interface {
	SendReminder(userID string, dueGrammar, dueVocab int) error
}

// Scheduler periodically counts due reviews and nudges the learner.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     *profile.Store
	notifier  Notifier
	userID    string
	startHour int
	endHour   int
	log       *logger.Logger
}

// New creates a scheduler for one learner's profile.
func New(store *profile.Store, notifier Notifier, userID string, startHour, endHour int, log *logger.Logger) *Scheduler {
	if startHour < 0 || startHour > 23 {
		startHour = DefaultNotificationStartHour
	}
	if endHour < 0 || endHour > 23 {
		endHour = DefaultNotificationEndHour
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		notifier:  notifier,
		userID:    userID,
		startHour: startHour,
		endHour:   endHour,
		log:       log,
	}
}

// Start schedules the hourly check and returns immediately.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminder)
	s.scheduler.StartAsync()
}

// Stop terminates the scheduled checks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) checkAndSendReminder() {
	hour := time.Now().Hour()
	if hour < s.startHour || hour > s.endHour {
		s.log.Debug("outside notification hours, skipping reminder",
			"hour", hour, "start", s.startHour, "end", s.endHour)
		return
	}
	if err := s.RunManualCheck(); err != nil {
		s.log.Error("reminder check failed", "error", err)
	}
}

// RunManualCheck counts due reviews right now and sends a reminder if any
// exist, regardless of notification hours.
func (s *Scheduler) RunManualCheck() error {
	today := models.Today()
	p, err := s.store.Load(s.userID, today)
	if err != nil {
		return err
	}

	dueGrammar := countDue(p.GrammarSummary, today)
	dueVocab := countDue(p.VocabSummary, today)
	if dueGrammar == 0 && dueVocab == 0 {
		s.log.Debug("nothing due, no reminder sent")
		return nil
	}
	return s.notifier.SendReminder(s.userID, dueGrammar, dueVocab)
}

func countDue(items map[string]*models.LearningItem, today models.Date) int {
	n := 0
	for _, item := range items {
		if item.TotalAttempts > 0 && item.IsDue(today) {
			n++
		}
	}
	return n
}
