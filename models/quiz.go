// models/quiz.go
package models

import "time"

// Quiz is an auto-generated question set for one article.
type Quiz struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ArticleID uint      `json:"article_id" gorm:"not null;index"`
	Article   *Article  `json:"article,omitempty" gorm:"foreignKey:ArticleID"`
	Title     string    `json:"title" gorm:"size:300"`
	CreatedAt time.Time `json:"created_at"`

	Questions []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

// QuizQuestion holds one multiple-choice question. Options is a JSON array of
// answer strings; CorrectIndex points into it and is never sent to quiz takers.
type QuizQuestion struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	QuizID       uint      `json:"quiz_id" gorm:"not null;index"`
	Text         string    `json:"text" gorm:"not null;type:text"`
	Options      string    `json:"options" gorm:"not null;type:text"`
	CorrectIndex int       `json:"-" gorm:"not null"`
	Explanation  string    `json:"explanation" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

// QuizAttempt is one scored submission. Attempts are append-only: re-taking a
// quiz inserts a new row, nothing is ever updated or deduplicated.
type QuizAttempt struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	QuizID      uint      `json:"quiz_id" gorm:"not null;index"`
	Quiz        *Quiz     `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	Score       int       `json:"score" gorm:"not null"` // 0-100
	Answers     string    `json:"answers" gorm:"type:text"` // JSON array of chosen option indexes
	CompletedAt time.Time `json:"completed_at" gorm:"index"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
