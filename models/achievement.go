// models/achievement.go
package models

import "time"

// Badge names known to the gamification engine. The catalog rows are seeded
// at startup; the engine looks them up by name.
const (
	AchievementAvidReader       = "Avid Reader"
	AchievementArticleCollector = "Article Collector"
	AchievementQuizMaster       = "Quiz Master"
	AchievementQuizEnthusiast   = "Quiz Enthusiast"
	AchievementStreakHunter     = "Streak Hunter"
	AchievementPointCollector   = "Point Collector"
	AchievementPointMaster      = "Point Master"
)

type Achievement struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;uniqueIndex" json:"name"`
	Description string `gorm:"not null" json:"description"`
	Criteria    string `gorm:"type:text" json:"criteria"` // human-readable unlock criteria
	Icon        string `json:"icon"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement records a badge unlock. The composite unique index is what
// makes grants idempotent under concurrent checks; inserts go through
// ON CONFLICT DO NOTHING.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint      `gorm:"not null;index;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`

	// Relationships
	User        User        `gorm:"foreignKey:UserID" json:"-"`
	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
