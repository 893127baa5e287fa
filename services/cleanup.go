package services

import (
	"log"
	"os"
	"strings"
	"time"

	"newsiq/database"
	"newsiq/models"
)

// CleanupService removes abandoned guest accounts and their derived rows.
type CleanupService struct{}

var cleanupService *CleanupService

// InitCleanupService initializes the singleton cleanup service.
func InitCleanupService() {
	cleanupService = &CleanupService{}
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// CleanupStaleGuests deletes guest users inactive for 30+ days along with
// their attempts, interactions, streaks, points and chat history. Disabled
// with GUEST_CLEANUP_ENABLED=false.
func (s *CleanupService) CleanupStaleGuests() error {
	if strings.EqualFold(os.Getenv("GUEST_CLEANUP_ENABLED"), "false") {
		return nil
	}

	db := database.GetDB()
	cutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)

	var stale []models.User
	if err := db.Where("is_guest = ? AND created_at < ? AND (last_activity IS NULL OR last_activity < ?)",
		true, cutoff, cutoff).Find(&stale).Error; err != nil {
		return err
	}

	if len(stale) == 0 {
		return nil
	}

	ids := make([]uint, len(stale))
	for i, u := range stale {
		ids[i] = u.ID
	}

	db.Where("user_id IN ?", ids).Delete(&models.QuizAttempt{})
	db.Where("user_id IN ?", ids).Delete(&models.UserArticleInteraction{})
	db.Where("user_id IN ?", ids).Delete(&models.UserAchievement{})
	db.Where("user_id IN ?", ids).Delete(&models.LeaderboardPoints{})
	db.Where("user_id IN ?", ids).Delete(&models.ReadingStreak{})
	db.Where("user_id IN ?", ids).Delete(&models.ChatMessage{})
	if err := db.Delete(&stale).Error; err != nil {
		return err
	}

	log.Printf("🧹 Cleaned up %d stale guest accounts", len(stale))
	return nil
}
