// handlers/achievements.go
package handlers

import (
	"newsiq/database"
	"newsiq/middleware"
	"newsiq/models"

	"github.com/gofiber/fiber/v2"
)

// GetUserAchievements returns the full catalog with the caller's unlock
// status merged in.
func GetUserAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var unlocked []models.UserAchievement
	if err := db.Preload("Achievement").Where("user_id = ?", userID).Order("earned_at DESC").Find(&unlocked).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	var allAchievements []models.Achievement
	if err := db.Find(&allAchievements).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch all achievements"})
	}

	unlockedMap := make(map[uint]models.UserAchievement)
	for _, ua := range unlocked {
		unlockedMap[ua.AchievementID] = ua
	}

	achievements := make([]fiber.Map, 0, len(allAchievements))
	for _, achievement := range allAchievements {
		achData := fiber.Map{
			"id":          achievement.ID,
			"name":        achievement.Name,
			"description": achievement.Description,
			"criteria":    achievement.Criteria,
			"icon":        achievement.Icon,
			"unlocked":    false,
		}

		if ua, ok := unlockedMap[achievement.ID]; ok {
			achData["unlocked"] = true
			achData["earned_at"] = ua.EarnedAt
		}

		achievements = append(achievements, achData)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": achievements,
		"total":        len(allAchievements),
		"unlocked":     len(unlocked),
	})
}

// GetAchievementCatalog returns the catalog without user state. Public.
func GetAchievementCatalog(c *fiber.Ctx) error {
	db := database.GetDB()

	var achievements []models.Achievement
	if err := db.Order("id").Find(&achievements).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": achievements,
	})
}
