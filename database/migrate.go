// database/migrate.go - Database Migration Runner
package database

import (
	"log"
	"newsiq/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Article{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
		&models.UserArticleInteraction{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.LeaderboardPoints{},
		&models.ReadingStreak{},
		&models.ChatMessage{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes the struct tags don't cover
func createIndexes() {
	db := GetDB()

	// Article lookup paths
	db.Exec("CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at DESC)")

	// Attempt counting paths used by the achievement checks
	db.Exec("CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user ON quiz_attempts(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user_score ON quiz_attempts(user_id, score)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_quiz_attempts_completed ON quiz_attempts(completed_at DESC)")

	// Interaction counting paths
	db.Exec("CREATE INDEX IF NOT EXISTS idx_interactions_user_read ON user_article_interactions(user_id, is_read)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_interactions_user_saved ON user_article_interactions(user_id, is_saved)")

	// Leaderboard ordering
	db.Exec("CREATE INDEX IF NOT EXISTS idx_leaderboard_points_total ON leaderboard_points(points DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_leaderboard_points_weekly ON leaderboard_points(weekly_points DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_leaderboard_points_monthly ON leaderboard_points(monthly_points DESC)")

	// Chat history
	db.Exec("CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, created_at)")
}
