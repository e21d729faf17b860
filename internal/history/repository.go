package history

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/kobot/pkg/models"
)

// Repository persists session history through an injected connection.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a repository over an open history database.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// rebind converts ? placeholders for the active driver.
func (r *Repository) rebind(query string) string {
	if r.db.DriverName() == "postgres" {
		return sqlx.Rebind(sqlx.DOLLAR, query)
	}
	return query
}

// SaveSession inserts one completed session record.
func (r *Repository) SaveSession(rec *models.SessionRecord) error {
	query := r.rebind(`
		INSERT INTO sessions (session_id, user_id, date, duration_minutes,
			total_exercises, correct_exercises, accuracy_rate, promotions,
			new_items_introduced, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.Exec(query,
		rec.SessionID, rec.UserID, rec.Date, rec.DurationMinutes,
		rec.TotalExercises, rec.CorrectExercises, rec.AccuracyRate,
		rec.Promotions, rec.NewItemsIntroduced, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SaveOutcomes inserts the per-item outcome rows for a session.
func (r *Repository) SaveOutcomes(records []models.OutcomeRecord) error {
	if len(records) == 0 {
		return nil
	}
	query := r.rebind(`
		INSERT INTO outcomes (id, session_id, item_id, kind, is_correct, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin outcome transaction: %w", err)
	}
	for _, rec := range records {
		if _, err := tx.Exec(query,
			rec.ID, rec.SessionID, rec.ItemID, string(rec.Kind),
			rec.IsCorrect, rec.RecordedAt); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save outcome for %s: %w", rec.ItemID, err)
		}
	}
	return tx.Commit()
}

// SaveMergeEvents records key collisions resolved during a profile load.
func (r *Repository) SaveMergeEvents(events []models.MergeEvent) error {
	if len(events) == 0 {
		return nil
	}
	query := r.rebind(`
		INSERT INTO merge_events (canonical_id, dropped_id, kept_repetitions,
			dropped_repetitions, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	for _, ev := range events {
		if _, err := r.db.Exec(query,
			ev.CanonicalID, ev.DroppedID, ev.KeptRepetitions,
			ev.DroppedRepetitions, string(ev.Kind), ev.CreatedAt); err != nil {
			return fmt.Errorf("failed to save merge event for %s: %w", ev.CanonicalID, err)
		}
	}
	return nil
}

// RecentSessions returns up to limit sessions for a user, newest first.
func (r *Repository) RecentSessions(userID string, limit int) ([]models.SessionRecord, error) {
	query := r.rebind(`
		SELECT * FROM sessions
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC
		LIMIT ?`)
	var sessions []models.SessionRecord
	if err := r.db.Select(&sessions, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent sessions: %w", err)
	}
	return sessions, nil
}

// UserStats aggregates a user's full session history.
type UserStats struct {
	TotalSessions  int     `db:"total_sessions"`
	TotalExercises int     `db:"total_exercises"`
	TotalCorrect   int     `db:"total_correct"`
	AverageRate    float64 `db:"average_rate"`
	TotalNewItems  int     `db:"total_new_items"`
	TotalPromoted  int     `db:"total_promoted"`
}

// Stats computes aggregate statistics over all of a user's sessions.
func (r *Repository) Stats(userID string) (*UserStats, error) {
	query := r.rebind(strings.TrimSpace(`
		SELECT
			COUNT(*) AS total_sessions,
			COALESCE(SUM(total_exercises), 0) AS total_exercises,
			COALESCE(SUM(correct_exercises), 0) AS total_correct,
			COALESCE(AVG(accuracy_rate), 0) AS average_rate,
			COALESCE(SUM(new_items_introduced), 0) AS total_new_items,
			COALESCE(SUM(promotions), 0) AS total_promoted
		FROM sessions WHERE user_id = ?`))
	var stats UserStats
	if err := r.db.Get(&stats, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &stats, nil
}
