// handlers/users.go
package handlers

import (
	"encoding/json"
	"log"

	"newsiq/database"
	"newsiq/middleware"
	"newsiq/models"

	"github.com/gofiber/fiber/v2"
)

// GetCurrentUser returns the caller's profile.
func GetCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    userInfo(user),
	})
}

type UpdateUserRequest struct {
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// UpdateCurrentUser updates mutable profile fields.
func UpdateCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	db := database.GetDB()

	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"display_name": req.DisplayName,
		"avatar":       req.Avatar,
	})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"success": true})
}

type PreferencesRequest struct {
	PreferredCategories []string `json:"preferred_categories"`
	DailyReadingGoal    int      `json:"daily_reading_goal"`
}

// SavePreferences saves the caller's reading preferences
func SavePreferences(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.DailyReadingGoal < 1 || req.DailyReadingGoal > 50 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Daily reading goal must be between 1 and 50",
		})
	}

	if len(req.PreferredCategories) > 10 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Maximum 10 categories allowed",
		})
	}

	categoriesJSON, err := json.Marshal(req.PreferredCategories)
	if err != nil {
		log.Printf("Error marshaling categories: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save preferences",
		})
	}

	db := database.GetDB()

	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"preferred_categories": string(categoriesJSON),
		"daily_reading_goal":   req.DailyReadingGoal,
	})

	if result.Error != nil {
		log.Printf("Error saving preferences: %v", result.Error)
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save preferences",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Preferences saved successfully",
	})
}

// GetPreferences retrieves the caller's reading preferences
func GetPreferences(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "User not found",
		})
	}

	var categories []string
	if user.PreferredCategories != "" {
		if err := json.Unmarshal([]byte(user.PreferredCategories), &categories); err != nil {
			log.Printf("Error parsing preferred categories: %v", err)
			categories = []string{}
		}
	}

	return c.JSON(fiber.Map{
		"success":              true,
		"preferred_categories": categories,
		"daily_reading_goal":   user.DailyReadingGoal,
	})
}
