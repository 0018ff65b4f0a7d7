package service

import (
	"context"
	"encoding/json"

	"cardvault-rest-api/internal/cache"
	"cardvault-rest-api/internal/model"
	"cardvault-rest-api/pkg/apierror"
)

// PrefsService stores per-account display preferences. Preferences never
// expire; a cache miss falls back to the defaults.
type PrefsService struct {
	cache cache.Cache
}

// NewPrefsService creates a new preferences service.
func NewPrefsService(c cache.Cache) *PrefsService {
	return &PrefsService{cache: c}
}

// Get returns the account's preferences, or the defaults when none are
// stored or the stored blob cannot be decoded.
func (s *PrefsService) Get(ctx context.Context, accountID int64) model.Preferences {
	if s.cache == nil {
		return model.DefaultPreferences()
	}

	data, err := s.cache.Get(ctx, cache.PrefsKey(accountID))
	if err != nil {
		return model.DefaultPreferences()
	}

	var prefs model.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return model.DefaultPreferences()
	}
	if !model.ValidPageSize(prefs.PageSize) {
		prefs.PageSize = model.DefaultPreferences().PageSize
	}
	return prefs
}

// Save validates and persists the account's preferences.
func (s *PrefsService) Save(ctx context.Context, accountID int64, prefs model.Preferences) error {
	if !model.ValidPageSize(prefs.PageSize) {
		return apierror.ValidationError("invalid page size",
			apierror.FieldError{Field: "page_size", Message: "must be one of 10, 25, 50, 100"})
	}
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, cache.PrefsKey(accountID), data, 0)
}
