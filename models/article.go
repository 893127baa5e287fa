// models/article.go
package models

import "time"

// Article is a news article users read and take quizzes on.
type Article struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:300"`
	Summary     string     `json:"summary" gorm:"type:text"`
	Content     string     `json:"content" gorm:"not null;type:text"`
	Category    string     `json:"category" gorm:"size:50;index"`
	Source      string     `json:"source" gorm:"size:200"`
	SourceURL   string     `json:"source_url" gorm:"size:500"`
	ImageURL    string     `json:"image_url" gorm:"size:500"`
	Author      string     `json:"author" gorm:"size:200"`
	ReadMinutes int        `json:"read_minutes" gorm:"default:0"` // estimated reading time
	PublishedAt *time.Time `json:"published_at" gorm:"index"`
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Quizzes []Quiz `json:"quizzes,omitempty" gorm:"foreignKey:ArticleID"`
}

func (Article) TableName() string {
	return "articles"
}
