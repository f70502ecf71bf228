package services

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"scrapeflow/backend/internal/models"
	"scrapeflow/backend/internal/recorder"
	"scrapeflow/backend/pkg/database"
)

// CleanupService sweeps abandoned recording sessions: recorders whose browser
// died and durable session rows nobody saved or resumed.
type CleanupService struct {
	cron *cron.Cron
}

var GlobalCleanup *CleanupService

const staleSessionAge = 24 * time.Hour

func InitCleanup() error {
	GlobalCleanup = &CleanupService{
		cron: cron.New(),
	}

	_, err := GlobalCleanup.cron.AddFunc("@every 10m", GlobalCleanup.sweep)
	if err != nil {
		return err
	}

	GlobalCleanup.cron.Start()
	log.Println("Cleanup service initialized")

	return nil
}

func (s *CleanupService) sweep() {
	// Drop recorders whose durable session row is gone or closed. A closed
	// row means the session was saved, cleaned up, or aged out; the recorder
	// has nothing left to feed.
	for _, sessionID := range recorder.Manager.ActiveSessionIDs() {
		r, exists := recorder.Manager.GetRecorder(sessionID)
		if !exists {
			continue
		}

		var session models.RecordingSession
		err := database.DB.Where("session_id = ?", sessionID).First(&session).Error
		if err == nil && session.Status == 1 {
			continue
		}

		log.Printf("Sweeping recorder with no active session row: %s", sessionID)
		if r.IsRecording() {
			if err := r.StopRecording(); err != nil {
				log.Printf("Failed to stop recorder %s: %v", sessionID, err)
			}
		}
		recorder.Manager.CleanupRecording(sessionID)
	}

	// Close durable rows for sessions that were abandoned long ago.
	cutoff := time.Now().Add(-staleSessionAge)
	result := database.DB.Model(&models.RecordingSession{}).
		Where("status = ? AND updated_at < ?", 1, cutoff).
		Update("status", 0)
	if result.Error != nil {
		log.Printf("Failed to close stale sessions: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Closed %d stale recording sessions", result.RowsAffected)
	}
}

func (s *CleanupService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		log.Println("Cleanup service stopped")
	}
}
