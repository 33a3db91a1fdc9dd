package syndication

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/umarijaz5156/jobpilot-sub000/models"
)

// ErrTokenConflict is returned when a token refresh lost the race twice
// in a row; the caller's freshly exchanged token is discarded and the
// winner's token stays.
var ErrTokenConflict = errors.New("settings row changed concurrently")

// TokenStore reads and refreshes the single settings row that holds
// per-channel OAuth tokens. Writes are guarded by a version check so a
// concurrent refresh cannot be silently overwritten.
type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) Get() (*models.Setting, error) {
	var setting models.Setting
	if err := s.db.First(&setting, 1).Error; err != nil {
		return nil, fmt.Errorf("settings row missing: %w", err)
	}
	return &setting, nil
}

// Update applies fn to the current settings row and writes it back only
// if the version it read is still current, retrying once on conflict.
func (s *TokenStore) Update(fn func(*models.Setting)) (*models.Setting, error) {
	for attempt := 0; attempt < 2; attempt++ {
		setting, err := s.Get()
		if err != nil {
			return nil, err
		}

		readVersion := setting.Version
		fn(setting)
		setting.Version = readVersion + 1

		res := s.db.Model(&models.Setting{}).
			Where("id = ? AND version = ?", setting.ID, readVersion).
			Updates(map[string]interface{}{
				"facebook_token":     setting.FacebookToken,
				"linked_in_token":    setting.LinkedInToken,
				"facebook_page_ids":  setting.FacebookPageIDs,
				"linked_in_page_ids": setting.LinkedInPageIDs,
				"version":            setting.Version,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return setting, nil
		}
		// Lost the race; re-read and try once more.
	}
	return nil, ErrTokenConflict
}
