// models/user.go
package models

import (
	"time"
)

type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"uniqueIndex;not null" json:"username"`
	Email       *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password    string  `gorm:"not null" json:"-"`
	DisplayName string  `json:"display_name"`
	Avatar      string  `json:"avatar"`
	IsGuest     bool    `gorm:"default:false" json:"is_guest"`
	IsAdmin     bool    `gorm:"default:false" json:"is_admin"`
	IsBanned    bool    `gorm:"default:false" json:"is_banned"`

	// Reading preferences
	PreferredCategories string `gorm:"type:text" json:"preferred_categories"` // JSON array of category names
	DailyReadingGoal    int    `gorm:"default:3" json:"daily_reading_goal"`

	// Timestamps
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    time.Time  `json:"last_login"`
	LastActivity *time.Time `json:"last_activity,omitempty"`

	// Relationships
	Achievements []UserAchievement        `gorm:"foreignKey:UserID" json:"achievements,omitempty"`
	Attempts     []QuizAttempt            `gorm:"foreignKey:UserID" json:"attempts,omitempty"`
	Interactions []UserArticleInteraction `gorm:"foreignKey:UserID" json:"interactions,omitempty"`
}

func (User) TableName() string {
	return "users"
}
