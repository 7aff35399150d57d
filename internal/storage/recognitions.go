package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Recognition is one logged recognition result.
type Recognition struct {
	ID             string
	UserID         int64
	Name           string
	Brand          string
	Model          string
	Confidence     float64
	Category       string
	Condition      string
	SuggestedPrice float64
	Currency       string
	CreatedAt      time.Time
}

// SaveRecognition logs a recognition. ID and CreatedAt are filled in when empty.
func (s *SQLiteStore) SaveRecognition(r *Recognition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO recognitions (id, user_id, name, brand, model, confidence, category, condition, suggested_price, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.UserID, r.Name, r.Brand, r.Model, r.Confidence, r.Category, r.Condition, r.SuggestedPrice, r.Currency, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save recognition: %w", err)
	}

	return nil
}

// RecentRecognitions returns a user's latest recognitions, newest first.
func (s *SQLiteStore) RecentRecognitions(userID int64, limit int) ([]Recognition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, user_id, name, brand, model, confidence, category, condition, suggested_price, currency, created_at
		FROM recognitions WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recognitions: %w", err)
	}
	defer rows.Close()

	var out []Recognition
	for rows.Next() {
		var r Recognition
		var brand, model, category, condition, currency sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &brand, &model, &r.Confidence, &category, &condition, &r.SuggestedPrice, &currency, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recognition: %w", err)
		}
		r.Brand = brand.String
		r.Model = model.String
		r.Category = category.String
		r.Condition = condition.String
		r.Currency = currency.String
		out = append(out, r)
	}

	return out, rows.Err()
}

// CountRecognitionsByUser returns how many recognitions a user has made.
func (s *SQLiteStore) CountRecognitionsByUser(userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM recognitions WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recognitions: %w", err)
	}
	return count, nil
}

// PruneOldRecognitions deletes logged recognitions older than olderThan.
func (s *SQLiteStore) PruneOldRecognitions(olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	result, err := s.db.Exec(`DELETE FROM recognitions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune old recognitions: %w", err)
	}

	return result.RowsAffected()
}
