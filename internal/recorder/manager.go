package recorder

import (
	"fmt"
	"sync"

	"scrapeflow/backend/internal/models"
	"scrapeflow/backend/pkg/database"
)

type RecorderManager struct {
	recorders map[string]*Recorder
	mutex     sync.RWMutex
}

var Manager = &RecorderManager{
	recorders: make(map[string]*Recorder),
}

func (rm *RecorderManager) StartRecording(sessionID, userID, targetURL string, device DeviceInfo, opts Options) error {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	if _, exists := rm.recorders[sessionID]; exists {
		return fmt.Errorf("recording session %s already exists", sessionID)
	}

	r := NewRecorder(sessionID, userID, device, opts)
	if err := r.StartRecording(targetURL); err != nil {
		return err
	}

	rm.recorders[sessionID] = r
	return nil
}

func (rm *RecorderManager) StopRecording(sessionID string) error {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	r, exists := rm.recorders[sessionID]
	if !exists {
		return fmt.Errorf("recording session %s not found", sessionID)
	}

	if err := r.StopRecording(); err != nil {
		return err
	}

	// Keep the session around until saving completes; CleanupRecording
	// removes it.
	return nil
}

func (rm *RecorderManager) GetRecorder(sessionID string) (*Recorder, bool) {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	r, exists := rm.recorders[sessionID]
	return r, exists
}

func (rm *RecorderManager) GetRecordingStatus(sessionID string) (bool, []models.ScrapeStep, error) {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	r, exists := rm.recorders[sessionID]
	if !exists {
		return false, nil, fmt.Errorf("recording session %s not found", sessionID)
	}

	return r.IsRecording(), r.GetSteps(), nil
}

func (rm *RecorderManager) CleanupRecording(sessionID string) error {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	if _, exists := rm.recorders[sessionID]; exists {
		delete(rm.recorders, sessionID)
	}

	return database.DB.Model(&models.RecordingSession{}).
		Where("session_id = ?", sessionID).
		Update("status", 0).Error
}

// ActiveSessionIDs lists the sessions currently held by the manager.
func (rm *RecorderManager) ActiveSessionIDs() []string {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	ids := make([]string, 0, len(rm.recorders))
	for id := range rm.recorders {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of live recording sessions.
func (rm *RecorderManager) Count() int {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	return len(rm.recorders)
}
