// handlers/quizzes.go - quiz retrieval and attempt submission. Scoring is
// server-side: the client sends chosen option indexes, never a score.
package handlers

import (
	"encoding/json"
	"strconv"

	"newsiq/database"
	"newsiq/middleware"
	"newsiq/models"
	"newsiq/services"

	"github.com/gofiber/fiber/v2"
)

// GetQuizForArticle returns the quiz attached to an article, questions
// included but with correct answers stripped (the QuizQuestion json tags hide
// CorrectIndex).
func GetQuizForArticle(c *fiber.Ctx) error {
	db := database.GetDB()

	articleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid article id"})
	}

	var quiz models.Quiz
	if err := db.Preload("Questions").Where("article_id = ?", articleID).First(&quiz).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "No quiz for this article"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"quiz":    quiz,
	})
}

type SubmitQuizRequest struct {
	Answers []int `json:"answers"` // chosen option index per question, in question order
}

// SubmitQuiz scores the submitted answers, records the attempt and runs the
// downstream bookkeeping (points, badges, article read, streak) through the
// gamification service. Resubmitting is allowed and adds a fresh attempt.
func SubmitQuiz(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid quiz id"})
	}

	var req SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	db := database.GetDB()

	var questions []models.QuizQuestion
	if err := db.Where("quiz_id = ?", quizID).Order("id").Find(&questions).Error; err != nil || len(questions) == 0 {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Quiz not found"})
	}

	if len(req.Answers) != len(questions) {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Expected " + strconv.Itoa(len(questions)) + " answers",
		})
	}

	correct := 0
	for i, q := range questions {
		if req.Answers[i] == q.CorrectIndex {
			correct++
		}
	}
	score := correct * 100 / len(questions)

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid answers"})
	}

	result, err := services.GetGamification().SubmitQuizAttempt(userID, uint(quizID), score, string(answersJSON))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to record attempt"})
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"score":           score,
		"correct_answers": correct,
		"total_questions": len(questions),
		"points_awarded":  result.PointsAwarded,
		"new_badges":      result.NewBadges,
		"attempt_id":      result.Attempt.ID,
	})
}

// GetQuizAttempts returns the caller's attempt history, newest first.
func GetQuizAttempts(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	limit := clampInt(parseIntDefault(c.Query("limit"), 50), 1, 200)

	var attempts []models.QuizAttempt
	if err := db.Preload("Quiz").
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&attempts).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch attempts"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"attempts": attempts,
	})
}
