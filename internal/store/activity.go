package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/reciperescue/internal/model"
)

// sqliteTime matches CURRENT_TIMESTAMP so stored and bound times compare
// as strings.
const sqliteTime = "2006-01-02 15:04:05"

type ActivityStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db, now: time.Now}
}

// Record appends one activity event. CreatedAt defaults to now.
func (s *ActivityStore) Record(ev model.ActivityEvent) error {
	at := ev.CreatedAt
	if at.IsZero() {
		at = s.now()
	}
	var ok int
	if ev.OK {
		ok = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO activity (kitchen_id, kind, subject, ok, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.KitchenID, ev.Kind, ev.Subject, ok, ev.DurationMS, at.UTC().Format(sqliteTime),
	)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// ListRecent returns a kitchen's latest events, newest first.
func (s *ActivityStore) ListRecent(kitchenID string, limit int) ([]model.ActivityEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, kitchen_id, kind, subject, ok, duration_ms, created_at
		 FROM activity WHERE kitchen_id = ? ORDER BY id DESC LIMIT ?`,
		kitchenID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var events []model.ActivityEvent
	for rows.Next() {
		var ev model.ActivityEvent
		var ok int
		if err := rows.Scan(&ev.ID, &ev.KitchenID, &ev.Kind, &ev.Subject, &ok, &ev.DurationMS, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		ev.OK = ok != 0
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Impact counts rescued and wasted food for a kitchen since the given
// time. An empty kitchenID counts every kitchen.
func (s *ActivityStore) Impact(kitchenID string, since time.Time) (model.Impact, error) {
	rows, err := s.db.Query(
		`SELECT kind, COUNT(*) FROM activity
		 WHERE created_at >= ? AND ok = 1 AND (? = '' OR kitchen_id = ?)
		   AND kind IN (?, ?, ?)
		 GROUP BY kind`,
		since.UTC().Format(sqliteTime), kitchenID, kitchenID,
		model.ActivityIngredientUsed, model.ActivityIngredientExpired, model.ActivityRecipesGenerated,
	)
	if err != nil {
		return model.Impact{}, fmt.Errorf("query impact: %w", err)
	}
	defer rows.Close()

	impact := model.Impact{Since: since}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return model.Impact{}, fmt.Errorf("scan impact: %w", err)
		}
		switch kind {
		case model.ActivityIngredientUsed:
			impact.Used = n
		case model.ActivityIngredientExpired:
			impact.Expired = n
		case model.ActivityRecipesGenerated:
			impact.Saved = n
		}
	}
	return impact, rows.Err()
}

// Prune deletes events older than before.
func (s *ActivityStore) Prune(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM activity WHERE created_at < ?`, before.UTC().Format(sqliteTime))
	if err != nil {
		return 0, fmt.Errorf("prune activity: %w", err)
	}
	return res.RowsAffected()
}
