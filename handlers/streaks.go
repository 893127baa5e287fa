// handlers/streaks.go
package handlers

import (
	"errors"

	"newsiq/database"
	"newsiq/middleware"
	"newsiq/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetReadingStreak returns the caller's streak. Users who never read anything
// get a zeroed streak rather than a 404.
func GetReadingStreak(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var streak models.ReadingStreak
	err = db.Where("user_id = ?", userID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(fiber.Map{
			"success":        true,
			"current_streak": 0,
			"longest_streak": 0,
			"last_read_date": nil,
		})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch streak"})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"current_streak": streak.CurrentStreak,
		"longest_streak": streak.LongestStreak,
		"last_read_date": streak.LastReadDate,
	})
}
