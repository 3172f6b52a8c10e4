package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

// AddSearchHistory appends query to the history of userID.
func (s *Store) AddSearchHistory(ctx context.Context, userID uint, query string, at time.Time) (SearchHistory, error) {
	h := SearchHistory{UserID: userID, SearchQuery: query, SearchDate: at.UTC()}
	if err := s.conn(ctx).Omit("User").Create(&h).Error; err != nil {
		return SearchHistory{}, fmt.Errorf("add search history: %w", translate(err))
	}
	return h, nil
}

// SearchHistoryFor returns the saved queries of userID, newest first. A
// non-positive limit returns every entry.
func (s *Store) SearchHistoryFor(ctx context.Context, userID uint, limit int) ([]SearchHistory, error) {
	q := s.conn(ctx).
		Where("user_id = ?", userID).
		Order("search_date DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []SearchHistory
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("search history: %w", translate(err))
	}
	return out, nil
}

// SetPreference stores value under key for userID, replacing an earlier value.
func (s *Store) SetPreference(ctx context.Context, userID uint, key, value string) error {
	pref := FilterPreference{
		UserID:          userID,
		PreferenceKey:   key,
		PreferenceValue: value,
		UpdatedAt:       time.Now().UTC(),
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "preference_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"preference_value", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, translate(err))
	}
	return nil
}

// Preferences returns the stored preferences of userID keyed by name.
func (s *Store) Preferences(ctx context.Context, userID uint) (map[string]string, error) {
	var rows []FilterPreference
	if err := s.conn(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("preferences: %w", translate(err))
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.PreferenceKey] = r.PreferenceValue
	}
	return out, nil
}
