// handlers/stats.go
package handlers

import (
	"errors"

	"newsiq/database"
	"newsiq/middleware"
	"newsiq/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetUserStats aggregates the caller's reading and quiz activity.
func GetUserStats(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var readCount, savedCount, attemptCount, perfectCount, badgeCount int64
	db.Model(&models.UserArticleInteraction{}).Where("user_id = ? AND is_read = ?", userID, true).Count(&readCount)
	db.Model(&models.UserArticleInteraction{}).Where("user_id = ? AND is_saved = ?", userID, true).Count(&savedCount)
	db.Model(&models.QuizAttempt{}).Where("user_id = ?", userID).Count(&attemptCount)
	db.Model(&models.QuizAttempt{}).Where("user_id = ? AND score = ?", userID, 100).Count(&perfectCount)
	db.Model(&models.UserAchievement{}).Where("user_id = ?", userID).Count(&badgeCount)

	var avgScore float64
	db.Model(&models.QuizAttempt{}).Where("user_id = ?", userID).
		Select("COALESCE(AVG(score), 0)").Scan(&avgScore)

	var points models.LeaderboardPoints
	if err := db.Where("user_id = ?", userID).First(&points).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch stats"})
	}

	var streak models.ReadingStreak
	if err := db.Where("user_id = ?", userID).First(&streak).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch stats"})
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"articles_read":   readCount,
		"articles_saved":  savedCount,
		"quiz_attempts":   attemptCount,
		"perfect_scores":  perfectCount,
		"average_score":   avgScore,
		"badges_earned":   badgeCount,
		"points":          points.Points,
		"weekly_points":   points.WeeklyPoints,
		"monthly_points":  points.MonthlyPoints,
		"current_streak":  streak.CurrentStreak,
		"longest_streak":  streak.LongestStreak,
	})
}
