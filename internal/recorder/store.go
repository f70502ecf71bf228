package recorder

import (
	"errors"

	"gorm.io/gorm"

	"scrapeflow/backend/internal/models"
	"scrapeflow/backend/pkg/database"
)

// sessionSelectorStore persists the list-container selector on the session's
// RecordingSession row. It is the gorm-backed implementation of
// recording.SelectorStore.
type sessionSelectorStore struct {
	sessionID string
}

func newSessionSelectorStore(sessionID string) *sessionSelectorStore {
	return &sessionSelectorStore{sessionID: sessionID}
}

func (s *sessionSelectorStore) Load() (string, error) {
	var session models.RecordingSession
	err := database.DB.Where("session_id = ?", s.sessionID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return session.ListSelector, nil
}

func (s *sessionSelectorStore) Save(selector string) error {
	return database.DB.Model(&models.RecordingSession{}).
		Where("session_id = ?", s.sessionID).
		Update("list_selector", selector).Error
}
