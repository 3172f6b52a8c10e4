package service

import (
	"context"
	"strings"

	"github.com/okian/pricewise/internal/adapters/repository"
	"github.com/okian/pricewise/internal/domain/errs"
	"github.com/okian/pricewise/internal/domain/types"
)

// Filter preference keys and values.
const (
	PreferencePrice  = "price"
	PreferenceRating = "rating"

	Ascending  = "ascending"
	Descending = "descending"
)

// preferenceOrder is the order preferences are applied in when sorting.
var preferenceOrder = []struct {
	key    string
	column repository.SortColumn
}{
	{PreferencePrice, repository.SortByPrice},
	{PreferenceRating, repository.SortByRating},
}

// SaveSearchHistory appends query to the history of userID.
func (s *Service) SaveSearchHistory(ctx context.Context, userID uint, query string) (types.SearchHistoryEntry, error) {
	const op = "service.SaveSearchHistory"

	query = strings.TrimSpace(query)
	if query == "" {
		return types.SearchHistoryEntry{}, errs.New(op, errs.ErrValidation, "Search query is required")
	}
	h, err := s.store.AddSearchHistory(ctx, userID, query, s.now())
	if err != nil {
		return types.SearchHistoryEntry{}, storeErr(op, err, "User not found")
	}
	return projectHistory(h), nil
}

// SearchHistory returns the saved queries of userID, newest first.
func (s *Service) SearchHistory(ctx context.Context, userID uint) ([]types.SearchHistoryEntry, error) {
	rows, err := s.store.SearchHistoryFor(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, storeErr("service.SearchHistory", err, "User not found")
	}
	out := make([]types.SearchHistoryEntry, len(rows))
	for i, h := range rows {
		out[i] = projectHistory(h)
	}
	return out, nil
}

// SetPreference stores a sort preference for userID. key is price or rating
// and value is ascending or descending.
func (s *Service) SetPreference(ctx context.Context, userID uint, key, value string) error {
	const op = "service.SetPreference"

	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.ToLower(strings.TrimSpace(value))
	if key == "" || value == "" {
		return errs.New(op, errs.ErrValidation, "Preference key and preference value are required")
	}
	if key != PreferencePrice && key != PreferenceRating {
		return errs.New(op, errs.ErrValidation, "Preference key must be price or rating")
	}
	if value != Ascending && value != Descending {
		return errs.New(op, errs.ErrValidation, "Preference value must be ascending or descending")
	}

	if err := s.store.SetPreference(ctx, userID, key, value); err != nil {
		return storeErr(op, err, "User not found")
	}
	return nil
}

// ApplyFilters lists catalog products sorted by the preferences of userID.
// Price ordering takes precedence over rating.
func (s *Service) ApplyFilters(ctx context.Context, userID uint) ([]types.Product, error) {
	const op = "service.ApplyFilters"

	prefs, err := s.store.Preferences(ctx, userID)
	if err != nil {
		return nil, storeErr(op, err, "User not found")
	}

	var keys []repository.SortKey
	for _, p := range preferenceOrder {
		v, ok := prefs[p.key]
		if !ok {
			continue
		}
		keys = append(keys, repository.SortKey{Column: p.column, Desc: v == Descending})
	}

	products, err := s.store.ListProducts(ctx, keys...)
	if err != nil {
		return nil, storeErr(op, err, "")
	}
	out := make([]types.Product, len(products))
	for i, p := range products {
		out[i] = projectProduct(p)
	}
	return out, nil
}
