// handlers/articles.go - article browsing plus the per-user interaction
// endpoints (read progress, save/unsave) that feed the gamification engine.
package handlers

import (
	"strconv"
	"time"

	"newsiq/database"
	"newsiq/middleware"
	"newsiq/models"
	"newsiq/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Progress at or above this marks the article as read.
const readProgressThreshold = 90

// GetArticles returns active articles with optional category/search filters.
// GET /api/articles?category=tech&search=ai&limit=20&offset=0
func GetArticles(c *fiber.Ctx) error {
	db := database.GetDB()

	limit := clampInt(parseIntDefault(c.Query("limit"), 20), 1, 100)
	offset := maxInt(parseIntDefault(c.Query("offset"), 0), 0)

	query := db.Model(&models.Article{}).Where("is_active = ?", true)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR summary LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var articles []models.Article
	if err := query.Order("published_at DESC").Limit(limit).Offset(offset).Find(&articles).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch articles"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"articles": articles,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetArticle returns one article, including the caller's interaction state
// when authenticated.
func GetArticle(c *fiber.Ctx) error {
	db := database.GetDB()

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid article id"})
	}

	var article models.Article
	if err := db.First(&article, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Article not found"})
	}

	response := fiber.Map{
		"success": true,
		"article": article,
	}

	if userID, err := middleware.GetUserID(c); err == nil {
		var interaction models.UserArticleInteraction
		if err := db.Where("user_id = ? AND article_id = ?", userID, article.ID).First(&interaction).Error; err == nil {
			response["interaction"] = interaction
		}
	}

	return c.JSON(response)
}

// GetSavedArticles returns the caller's saved articles.
func GetSavedArticles(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var interactions []models.UserArticleInteraction
	if err := db.Preload("Article").
		Where("user_id = ? AND is_saved = ?", userID, true).
		Order("updated_at DESC").
		Find(&interactions).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch saved articles"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"saved":   interactions,
	})
}

type ProgressRequest struct {
	ReadProgress int `json:"read_progress"` // percent, 0-100
	ReadTime     int `json:"read_time"`     // seconds spent this session
}

// UpdateReadProgress upserts the caller's progress on an article. Crossing
// the read threshold marks it read and triggers the reader achievement
// checks; badge failures never fail the progress save.
func UpdateReadProgress(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	articleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid article id"})
	}

	var req ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.ReadProgress < 0 || req.ReadProgress > 100 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Progress must be between 0 and 100"})
	}

	db := database.GetDB()

	var article models.Article
	if err := db.First(&article, articleID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Article not found"})
	}

	isRead := req.ReadProgress >= readProgressThreshold
	now := time.Now().UTC()

	interaction := models.UserArticleInteraction{
		UserID:       userID,
		ArticleID:    article.ID,
		IsRead:       isRead,
		ReadProgress: req.ReadProgress,
		ReadTime:     req.ReadTime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	assignments := map[string]interface{}{
		"read_progress": req.ReadProgress,
		"read_time":     gorm.Expr("read_time + ?", req.ReadTime),
		"updated_at":    now,
	}
	// Reads never un-happen; only flip the flag forward.
	if isRead {
		assignments["is_read"] = true
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&interaction).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save progress"})
	}

	response := fiber.Map{
		"success":       true,
		"read_progress": req.ReadProgress,
		"is_read":       isRead,
	}

	if isRead {
		summary := services.GetGamification().CheckReaderAchievements(userID)
		response["new_badges"] = summary.NewBadges
		if summary.Streak != nil {
			response["streak"] = summary.Streak
		}
	}

	return c.JSON(response)
}

type SaveRequest struct {
	Saved bool `json:"saved"`
}

// SaveArticle toggles the caller's saved flag for an article and re-runs the
// reader checks when saving (the Article Collector badge counts saves).
func SaveArticle(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	articleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid article id"})
	}

	var req SaveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	db := database.GetDB()

	var article models.Article
	if err := db.First(&article, articleID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Article not found"})
	}

	now := time.Now().UTC()
	interaction := models.UserArticleInteraction{
		UserID:    userID,
		ArticleID: article.ID,
		IsSaved:   req.Saved,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_saved":   req.Saved,
			"updated_at": now,
		}),
	}).Create(&interaction).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save article"})
	}

	response := fiber.Map{
		"success": true,
		"saved":   req.Saved,
	}

	if req.Saved {
		summary := services.GetGamification().CheckReaderAchievements(userID)
		response["new_badges"] = summary.NewBadges
	}

	return c.JSON(response)
}

// GetCategories lists distinct article categories.
func GetCategories(c *fiber.Ctx) error {
	db := database.GetDB()

	var categories []string
	if err := db.Model(&models.Article{}).
		Where("is_active = ? AND category <> ''", true).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch categories"})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"categories": categories,
	})
}

// helpers shared across handlers
func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
