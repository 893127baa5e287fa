package admin

import (
	"strconv"

	"newsiq/database"
	"newsiq/models"

	"github.com/gofiber/fiber/v2"
)

// GetUsers lists users with pagination
// GET /api/admin/users?limit=50&offset=0&search=
func GetUsers(c *fiber.Ctx) error {
	db := database.GetDB()

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	query := db.Model(&models.User{})
	if search := c.Query("search"); search != "" {
		query = query.Where("username LIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"users":   users,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetUser returns one user with achievements preloaded
func GetUser(c *fiber.Ctx) error {
	db := database.GetDB()

	var user models.User
	if err := db.Preload("Achievements.Achievement").First(&user, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// BanUser toggles a user's banned flag
func BanUser(c *fiber.Ctx) error {
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	var req struct {
		Banned bool `json:"banned"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := db.Model(&user).Update("is_banned", req.Banned).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"banned":  req.Banned,
	})
}

// DeleteUser removes a user and their derived rows
func DeleteUser(c *fiber.Ctx) error {
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	db.Where("user_id = ?", user.ID).Delete(&models.QuizAttempt{})
	db.Where("user_id = ?", user.ID).Delete(&models.UserArticleInteraction{})
	db.Where("user_id = ?", user.ID).Delete(&models.UserAchievement{})
	db.Where("user_id = ?", user.ID).Delete(&models.LeaderboardPoints{})
	db.Where("user_id = ?", user.ID).Delete(&models.ReadingStreak{})
	db.Where("user_id = ?", user.ID).Delete(&models.ChatMessage{})

	if err := db.Delete(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete user"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deleted successfully",
	})
}
