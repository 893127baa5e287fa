package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"newsiq/database"
	"newsiq/models"
	"newsiq/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupQuizTest(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Article{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
		&models.UserArticleInteraction{},
		&models.LeaderboardPoints{},
		&models.ReadingStreak{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	database.SetDB(db)
	database.SeedAchievements()
	services.InitGamification()

	return db
}

// newQuizApp mounts the quiz routes behind a stub that injects the user the
// way the JWT middleware would.
func newQuizApp(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userId", userID)
		return c.Next()
	})
	app.Get("/articles/:id/quiz", GetQuizForArticle)
	app.Post("/quizzes/:id/submit", SubmitQuiz)
	return app
}

func seedQuiz(t *testing.T, db *gorm.DB, correctIndexes []int) (quizID, articleID uint) {
	t.Helper()

	article := models.Article{Title: "Fusion milestone " + t.Name(), Category: "science", IsActive: true}
	if err := db.Create(&article).Error; err != nil {
		t.Fatalf("failed to create article: %v", err)
	}
	quiz := models.Quiz{ArticleID: article.ID, Title: article.Title + " Quiz"}
	if err := db.Create(&quiz).Error; err != nil {
		t.Fatalf("failed to create quiz: %v", err)
	}
	for i, correct := range correctIndexes {
		question := models.QuizQuestion{
			QuizID:       quiz.ID,
			Text:         fmt.Sprintf("Question %d", i+1),
			Options:      `["a","b","c","d"]`,
			CorrectIndex: correct,
		}
		if err := db.Create(&question).Error; err != nil {
			t.Fatalf("failed to create question: %v", err)
		}
	}
	return quiz.ID, article.ID
}

func TestSubmitQuizScoring(t *testing.T) {
	db := setupQuizTest(t)

	user := models.User{Username: "scorer", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	quizID, articleID := seedQuiz(t, db, []int{0, 2, 1, 3})

	app := newQuizApp(user.ID)

	// Two of four correct: 50%.
	body, _ := json.Marshal(map[string][]int{"answers": {0, 2, 0, 0}})
	req := httptest.NewRequest("POST", fmt.Sprintf("/quizzes/%d/submit", quizID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}

	var result struct {
		Score          int `json:"score"`
		CorrectAnswers int `json:"correct_answers"`
		TotalQuestions int `json:"total_questions"`
		PointsAwarded  int `json:"points_awarded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Score != 50 || result.CorrectAnswers != 2 || result.TotalQuestions != 4 {
		t.Errorf("expected 50%% (2/4), got %d%% (%d/%d)",
			result.Score, result.CorrectAnswers, result.TotalQuestions)
	}
	if result.PointsAwarded != 50 {
		t.Errorf("points awarded should equal the score, got %d", result.PointsAwarded)
	}

	// The attempt is recorded and the article marked read.
	var attempts int64
	db.Model(&models.QuizAttempt{}).Where("user_id = ?", user.ID).Count(&attempts)
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	var interaction models.UserArticleInteraction
	if err := db.Where("user_id = ? AND article_id = ?", user.ID, articleID).First(&interaction).Error; err != nil {
		t.Fatal("quiz submission should mark the article read")
	}
	if !interaction.IsRead {
		t.Error("interaction should have is_read=true")
	}
}

func TestSubmitQuizAnswerCountMismatch(t *testing.T) {
	db := setupQuizTest(t)

	user := models.User{Username: "mismatcher", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	quizID, _ := seedQuiz(t, db, []int{0, 1})

	app := newQuizApp(user.ID)

	body, _ := json.Marshal(map[string][]int{"answers": {0}})
	req := httptest.NewRequest("POST", fmt.Sprintf("/quizzes/%d/submit", quizID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("expected 400 for a short answer list, got %d", resp.StatusCode)
	}

	var attempts int64
	db.Model(&models.QuizAttempt{}).Where("user_id = ?", user.ID).Count(&attempts)
	if attempts != 0 {
		t.Errorf("rejected submission must not record an attempt, got %d", attempts)
	}
}

func TestGetQuizHidesCorrectAnswers(t *testing.T) {
	db := setupQuizTest(t)

	user := models.User{Username: "peeker", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	_, articleID := seedQuiz(t, db, []int{3})

	app := newQuizApp(user.ID)

	resp, err := app.Test(httptest.NewRequest("GET", fmt.Sprintf("/articles/%d/quiz", articleID), nil), 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	if bytes.Contains(raw, []byte("correct_index")) || bytes.Contains(raw, []byte("CorrectIndex")) {
		t.Error("quiz payload must not leak correct answers")
	}
}
