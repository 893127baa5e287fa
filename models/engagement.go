// models/engagement.go - per-user engagement state the gamification engine feeds on
package models

import "time"

// UserArticleInteraction tracks read/saved status per (user, article). Rows are
// upserted on the composite key, never appended.
type UserArticleInteraction struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_article"`
	ArticleID    uint      `json:"article_id" gorm:"not null;index;uniqueIndex:idx_user_article"`
	Article      *Article  `json:"article,omitempty" gorm:"foreignKey:ArticleID"`
	IsRead       bool      `json:"is_read" gorm:"default:false"`
	IsSaved      bool      `json:"is_saved" gorm:"default:false"`
	ReadProgress int       `json:"read_progress" gorm:"default:0"` // percent, 0-100
	ReadTime     int       `json:"read_time" gorm:"default:0"`     // seconds spent reading
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LeaderboardPoints is one row per user, created lazily on the first
// point-earning event. Counters are bumped with atomic SQL increments; the
// weekly and monthly windows are zeroed by the scheduler.
type LeaderboardPoints struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	Points        int       `json:"points" gorm:"default:0"`
	WeeklyPoints  int       `json:"weekly_points" gorm:"default:0"`
	MonthlyPoints int       `json:"monthly_points" gorm:"default:0"`
	LastUpdated   time.Time `json:"last_updated"`
}

// ReadingStreak counts consecutive calendar days (UTC) with at least one
// qualifying read event. LastReadDate stores a date, not a timestamp.
type ReadingStreak struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	UserID        uint       `json:"user_id" gorm:"not null;uniqueIndex"`
	CurrentStreak int        `json:"current_streak" gorm:"default:0"`
	LongestStreak int        `json:"longest_streak" gorm:"default:0"`
	LastReadDate  *time.Time `json:"last_read_date"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (UserArticleInteraction) TableName() string {
	return "user_article_interactions"
}

func (LeaderboardPoints) TableName() string {
	return "leaderboard_points"
}

func (ReadingStreak) TableName() string {
	return "reading_streaks"
}
