// database/seed.go - Achievement Catalog Seeding
package database

import (
	"log"
	"newsiq/models"

	"gorm.io/gorm/clause"
)

// SeedAchievements ensures the badge catalog exists. The gamification engine
// looks badges up by name, so names here must stay stable.
func SeedAchievements() {
	db := GetDB()

	achievements := []models.Achievement{
		{
			Name:        models.AchievementAvidReader,
			Description: "Read 5 articles",
			Criteria:    "Mark 5 articles as read",
			Icon:        "📰",
		},
		{
			Name:        models.AchievementArticleCollector,
			Description: "Save 10 articles for later",
			Criteria:    "Save 10 articles",
			Icon:        "🔖",
		},
		{
			Name:        models.AchievementQuizMaster,
			Description: "Score 100% on 5 quizzes",
			Criteria:    "Get 5 perfect quiz scores",
			Icon:        "🏆",
		},
		{
			Name:        models.AchievementQuizEnthusiast,
			Description: "Complete 10 quizzes",
			Criteria:    "Submit 10 quiz attempts",
			Icon:        "✏️",
		},
		{
			Name:        models.AchievementStreakHunter,
			Description: "Read articles 7 days in a row",
			Criteria:    "Reach a 7-day reading streak",
			Icon:        "🔥",
		},
		{
			Name:        models.AchievementPointCollector,
			Description: "Earn 500 points",
			Criteria:    "Reach 500 total points",
			Icon:        "⭐",
		},
		{
			Name:        models.AchievementPointMaster,
			Description: "Earn 1000 points",
			Criteria:    "Reach 1000 total points",
			Icon:        "💎",
		},
	}

	// Existing rows keep their descriptions; only missing badges are inserted.
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&achievements)

	if result.Error != nil {
		log.Printf("❌ Failed to seed achievements: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("✅ Seeded %d achievements", result.RowsAffected)
	}
}
