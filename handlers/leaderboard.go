// handlers/leaderboard.go - points rankings over three windows. Reads hit the
// Redis sorted sets when the cache is warm and fall back to SQL otherwise.
package handlers

import (
	"strconv"

	"newsiq/database"
	"newsiq/models"
	"newsiq/services"

	"github.com/gofiber/fiber/v2"
)

type LeaderboardEntry struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Points      int    `json:"points"`
	Rank        int    `json:"rank"`
}

func windowColumn(window string) (string, string) {
	switch window {
	case services.WindowWeekly:
		return services.WindowWeekly, "weekly_points"
	case services.WindowMonthly:
		return services.WindowMonthly, "monthly_points"
	default:
		return services.WindowAllTime, "points"
	}
}

// GetLeaderboard returns the top users for a window.
// GET /api/leaderboard?window=alltime|weekly|monthly&limit=50
func GetLeaderboard(c *fiber.Ctx) error {
	window, column := windowColumn(c.Query("window"))
	limit := clampInt(parseIntDefault(c.Query("limit"), 50), 1, 100)

	if cache := services.GetLeaderboardCache(); cache != nil {
		if entries, err := cache.Top(window, int64(limit)); err == nil && len(entries) > 0 {
			return c.JSON(fiber.Map{
				"success": true,
				"window":  window,
				"entries": hydrateEntries(entries),
				"source":  "cache",
			})
		}
	}

	db := database.GetDB()

	var entries []LeaderboardEntry
	db.Raw(`
		SELECT
			lp.user_id,
			u.username,
			u.display_name,
			u.avatar,
			lp.`+column+` AS points,
			ROW_NUMBER() OVER (ORDER BY lp.`+column+` DESC) AS rank
		FROM leaderboard_points lp
		JOIN users u ON u.id = lp.user_id
		WHERE u.is_banned = false
		ORDER BY lp.`+column+` DESC
		LIMIT ?
	`, limit).Scan(&entries)

	return c.JSON(fiber.Map{
		"success": true,
		"window":  window,
		"entries": entries,
		"source":  "db",
	})
}

// GetUserRank returns one user's rank and counters for a window.
// GET /api/leaderboard/user/:id?window=weekly
func GetUserRank(c *fiber.Ctx) error {
	window, column := windowColumn(c.Query("window"))

	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid user id"})
	}

	db := database.GetDB()

	var points models.LeaderboardPoints
	if err := db.Where("user_id = ?", userID).First(&points).Error; err != nil {
		return c.JSON(fiber.Map{
			"success": true,
			"window":  window,
			"user_id": userID,
			"points":  0,
			"rank":    0,
		})
	}

	var rank int64
	if cache := services.GetLeaderboardCache(); cache != nil {
		rank = cache.Rank(window, uint(userID))
	}
	if rank == 0 {
		db.Raw(`
			SELECT COUNT(*) + 1 FROM leaderboard_points
			WHERE `+column+` > (SELECT `+column+` FROM leaderboard_points WHERE user_id = ?)
		`, userID).Scan(&rank)
	}

	value := points.Points
	switch window {
	case services.WindowWeekly:
		value = points.WeeklyPoints
	case services.WindowMonthly:
		value = points.MonthlyPoints
	}

	return c.JSON(fiber.Map{
		"success": true,
		"window":  window,
		"user_id": userID,
		"points":  value,
		"rank":    rank,
	})
}

// hydrateEntries fills usernames in for cache hits, which only carry ids.
func hydrateEntries(cached []services.CachedEntry) []LeaderboardEntry {
	db := database.GetDB()

	ids := make([]uint, len(cached))
	for i, e := range cached {
		ids[i] = e.UserID
	}

	var users []models.User
	db.Where("id IN ?", ids).Find(&users)

	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	entries := make([]LeaderboardEntry, 0, len(cached))
	for _, e := range cached {
		u := byID[e.UserID]
		if u.IsBanned {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			UserID:      e.UserID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Avatar:      u.Avatar,
			Points:      e.Points,
			Rank:        e.Rank,
		})
	}
	return entries
}
