// services/gamification.go - achievement, points and streak bookkeeping.
//
// Everything in here is best-effort side work triggered by primary user
// actions (reading an article, submitting a quiz). Failures are logged and
// reported through sentinel returns so the primary action never fails because
// a badge could not be granted.
package services

import (
	"errors"
	"log"
	"time"

	"newsiq/database"
	"newsiq/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	avidReaderThreshold       = 5
	articleCollectorThreshold = 10
	quizMasterThreshold       = 5
	quizEnthusiastThreshold   = 10
	streakHunterThreshold     = 7
	pointCollectorThreshold   = 500
	pointMasterThreshold      = 1000
)

// GamificationService evaluates badge thresholds and maintains the points
// ledger and reading streaks.
type GamificationService struct {
	db *gorm.DB
	// now is swapped out by streak tests to cross day boundaries
	now func() time.Time
}

var gamification *GamificationService

// InitGamification wires the singleton used by the handlers.
func InitGamification() {
	gamification = NewGamificationService(database.GetDB())
}

// GetGamification returns the initialized service.
func GetGamification() *GamificationService {
	return gamification
}

func NewGamificationService(db *gorm.DB) *GamificationService {
	return &GamificationService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// AwardResult describes the outcome of one grant attempt.
type AwardResult struct {
	Awarded     bool   `json:"awarded"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EngagementSummary is returned by CheckReaderAchievements.
type EngagementSummary struct {
	ReadCount  int64                 `json:"read_count"`
	SavedCount int64                 `json:"saved_count"`
	NewBadges  []string              `json:"new_badges"`
	Streak     *models.ReadingStreak `json:"streak,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// QuizCheckSummary is returned by CheckQuizAchievements.
type QuizCheckSummary struct {
	TotalAttempts int64    `json:"total_attempts"`
	PerfectScores int64    `json:"perfect_scores"`
	NewBadges     []string `json:"new_badges"`
	Error         string   `json:"error,omitempty"`
}

// AttemptResult is returned by SubmitQuizAttempt.
type AttemptResult struct {
	Attempt       models.QuizAttempt `json:"attempt"`
	PointsAwarded int                `json:"points_awarded"`
	NewBadges     []string           `json:"new_badges"`
}

// AwardAchievement grants the named badge to the user exactly once. The
// composite unique index on user_achievements plus ON CONFLICT DO NOTHING
// makes the grant race-free; a second call reports Awarded=false. An unknown
// badge name is a soft failure: logged, nil returned.
func (s *GamificationService) AwardAchievement(userID uint, name string) *AwardResult {
	var achievement models.Achievement
	if err := s.db.Where("name = ?", name).First(&achievement).Error; err != nil {
		log.Printf("Achievement %q not found in catalog: %v", name, err)
		return nil
	}

	grant := models.UserAchievement{
		UserID:        userID,
		AchievementID: achievement.ID,
		EarnedAt:      s.now(),
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&grant)

	if result.Error != nil {
		log.Printf("Failed to grant achievement %q to user %d: %v", name, userID, result.Error)
		return nil
	}

	if result.RowsAffected > 0 {
		log.Printf("🏅 User %d earned achievement %q", userID, name)
	}

	return &AwardResult{
		Awarded:     result.RowsAffected > 0,
		Name:        achievement.Name,
		Description: achievement.Description,
	}
}

// AddPoints adds delta to the user's all-time, weekly and monthly counters.
// The row is created lazily; existing rows are bumped with atomic SQL
// increments so concurrent submissions never lose updates. After the bump the
// point badges are evaluated with strict branch priority: the 1000 badge wins
// within a single call, the 500 badge only fires below that.
func (s *GamificationService) AddPoints(userID uint, delta int) bool {
	if delta < 0 {
		log.Printf("Rejected negative point delta %d for user %d", delta, userID)
		return false
	}

	now := s.now()
	row := models.LeaderboardPoints{
		UserID:        userID,
		Points:        delta,
		WeeklyPoints:  delta,
		MonthlyPoints: delta,
		LastUpdated:   now,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":         gorm.Expr("points + ?", delta),
			"weekly_points":  gorm.Expr("weekly_points + ?", delta),
			"monthly_points": gorm.Expr("monthly_points + ?", delta),
			"last_updated":   now,
		}),
	}).Create(&row).Error

	if err != nil {
		log.Printf("Failed to update points for user %d: %v", userID, err)
		return false
	}

	var current models.LeaderboardPoints
	if err := s.db.Where("user_id = ?", userID).First(&current).Error; err != nil {
		log.Printf("Failed to reload points for user %d: %v", userID, err)
		return false
	}

	if current.Points >= pointMasterThreshold {
		s.AwardAchievement(userID, models.AchievementPointMaster)
	} else if current.Points >= pointCollectorThreshold {
		s.AwardAchievement(userID, models.AchievementPointCollector)
	}

	if cache := GetLeaderboardCache(); cache != nil {
		cache.Record(userID, current)
	}

	return true
}

// UpdateReadingStreak advances the user's consecutive-day streak based on
// today's UTC calendar date vs. the stored last-read date:
//
//	no row / nil date    -> streak restarts at 1
//	last read yesterday  -> streak += 1
//	last read today      -> counts unchanged, date refreshed
//	gap of 2+ days       -> streak resets to 1
//
// LongestStreak tracks the high-water mark, and reaching 7 consecutive days
// grants Streak Hunter. Returns nil if the database fails.
func (s *GamificationService) UpdateReadingStreak(userID uint) *models.ReadingStreak {
	today := dateOnly(s.now())

	var streak models.ReadingStreak
	err := s.db.Where("user_id = ?", userID).First(&streak).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		streak = models.ReadingStreak{
			UserID:        userID,
			CurrentStreak: 1,
			LongestStreak: 1,
			LastReadDate:  &today,
		}
		if err := s.db.Create(&streak).Error; err != nil {
			log.Printf("Failed to create reading streak for user %d: %v", userID, err)
			return nil
		}
		return &streak
	}

	if err != nil {
		log.Printf("Failed to load reading streak for user %d: %v", userID, err)
		return nil
	}

	if streak.LastReadDate == nil {
		streak.CurrentStreak = 1
		streak.LongestStreak = 1
	} else {
		switch daysBetween(dateOnly(*streak.LastReadDate), today) {
		case 0:
			// already counted today; only the date and updated_at are refreshed
		case 1:
			streak.CurrentStreak++
		default:
			streak.CurrentStreak = 1
		}
	}

	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastReadDate = &today

	if err := s.db.Save(&streak).Error; err != nil {
		log.Printf("Failed to save reading streak for user %d: %v", userID, err)
		return nil
	}

	if streak.CurrentStreak >= streakHunterThreshold {
		s.AwardAchievement(userID, models.AchievementStreakHunter)
	}

	return &streak
}

// CheckReaderAchievements evaluates the read and saved counters against their
// badge thresholds and always advances the reading streak. Errors end up in
// the summary instead of being propagated.
func (s *GamificationService) CheckReaderAchievements(userID uint) EngagementSummary {
	summary := EngagementSummary{NewBadges: []string{}}

	if err := s.db.Model(&models.UserArticleInteraction{}).
		Where("user_id = ? AND is_read = ?", userID, true).
		Count(&summary.ReadCount).Error; err != nil {
		log.Printf("Failed to count read articles for user %d: %v", userID, err)
		summary.Error = "failed to count read articles"
		return summary
	}

	if summary.ReadCount >= avidReaderThreshold {
		if res := s.AwardAchievement(userID, models.AchievementAvidReader); res != nil && res.Awarded {
			summary.NewBadges = append(summary.NewBadges, res.Name)
		}
	}

	if err := s.db.Model(&models.UserArticleInteraction{}).
		Where("user_id = ? AND is_saved = ?", userID, true).
		Count(&summary.SavedCount).Error; err != nil {
		log.Printf("Failed to count saved articles for user %d: %v", userID, err)
		summary.Error = "failed to count saved articles"
		return summary
	}

	if summary.SavedCount >= articleCollectorThreshold {
		if res := s.AwardAchievement(userID, models.AchievementArticleCollector); res != nil && res.Awarded {
			summary.NewBadges = append(summary.NewBadges, res.Name)
		}
	}

	before := s.streakBadgeCount(userID)
	summary.Streak = s.UpdateReadingStreak(userID)
	if summary.Streak != nil && s.streakBadgeCount(userID) > before {
		summary.NewBadges = append(summary.NewBadges, models.AchievementStreakHunter)
	}

	return summary
}

// CheckQuizAchievements counts all attempts and perfect attempts for the user
// and evaluates both quiz badges. Both checks run on every call; the grants
// are idempotent so repeated evaluation is harmless.
func (s *GamificationService) CheckQuizAchievements(userID uint) QuizCheckSummary {
	summary := QuizCheckSummary{NewBadges: []string{}}

	if err := s.db.Model(&models.QuizAttempt{}).
		Where("user_id = ?", userID).
		Count(&summary.TotalAttempts).Error; err != nil {
		log.Printf("Failed to count quiz attempts for user %d: %v", userID, err)
		summary.Error = "failed to count quiz attempts"
		return summary
	}

	if err := s.db.Model(&models.QuizAttempt{}).
		Where("user_id = ? AND score = ?", userID, 100).
		Count(&summary.PerfectScores).Error; err != nil {
		log.Printf("Failed to count perfect scores for user %d: %v", userID, err)
		summary.Error = "failed to count perfect scores"
		return summary
	}

	if summary.PerfectScores >= quizMasterThreshold {
		if res := s.AwardAchievement(userID, models.AchievementQuizMaster); res != nil && res.Awarded {
			summary.NewBadges = append(summary.NewBadges, res.Name)
		}
	}

	if summary.TotalAttempts >= quizEnthusiastThreshold {
		if res := s.AwardAchievement(userID, models.AchievementQuizEnthusiast); res != nil && res.Awarded {
			summary.NewBadges = append(summary.NewBadges, res.Name)
		}
	}

	return summary
}

// SubmitQuizAttempt records one scored attempt and runs the downstream
// bookkeeping in order: points (delta equals the score), quiz badges, then
// marking the quiz's article as read, which feeds the reader badges and the
// streak. Only the attempt insert can fail the submission; every later step
// is best-effort and logged. Attempts and points are intentionally not
// idempotent - resubmitting adds a new attempt row and more points.
func (s *GamificationService) SubmitQuizAttempt(userID, quizID uint, score int, answers string) (*AttemptResult, error) {
	attempt := models.QuizAttempt{
		UserID:      userID,
		QuizID:      quizID,
		Score:       score,
		Answers:     answers,
		CompletedAt: s.now(),
	}
	if err := s.db.Create(&attempt).Error; err != nil {
		return nil, err
	}

	result := &AttemptResult{
		Attempt:       attempt,
		PointsAwarded: score,
		NewBadges:     []string{},
	}

	if !s.AddPoints(userID, score) {
		log.Printf("Points update failed for user %d after attempt %d", userID, attempt.ID)
	}

	quizSummary := s.CheckQuizAchievements(userID)
	result.NewBadges = append(result.NewBadges, quizSummary.NewBadges...)

	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		log.Printf("Failed to resolve article for quiz %d: %v", quizID, err)
		return result, nil
	}

	if err := s.MarkArticleRead(userID, quiz.ArticleID); err != nil {
		log.Printf("Failed to mark article %d read for user %d: %v", quiz.ArticleID, userID, err)
		return result, nil
	}

	readerSummary := s.CheckReaderAchievements(userID)
	result.NewBadges = append(result.NewBadges, readerSummary.NewBadges...)

	return result, nil
}

// MarkArticleRead upserts the (user, article) interaction with is_read=true.
func (s *GamificationService) MarkArticleRead(userID, articleID uint) error {
	now := s.now()
	interaction := models.UserArticleInteraction{
		UserID:    userID,
		ArticleID: articleID,
		IsRead:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_read":    true,
			"updated_at": now,
		}),
	}).Create(&interaction).Error
}

// RecalculateAllUsers re-evaluates every badge threshold for every user,
// sequentially. Unlike the event-driven checks it never advances streaks - a
// batch run is not a read event. Per-user failures are logged and skipped.
func (s *GamificationService) RecalculateAllUsers() (processed int, failed int) {
	var userIDs []uint
	if err := s.db.Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
		log.Printf("Failed to list users for recalculation: %v", err)
		return 0, 0
	}

	for _, id := range userIDs {
		if err := s.recalculateUser(id); err != nil {
			log.Printf("Recalculation failed for user %d: %v", id, err)
			failed++
			continue
		}
		processed++
	}

	log.Printf("♻️ Recalculated achievements for %d users (%d failed)", processed, failed)
	return processed, failed
}

func (s *GamificationService) recalculateUser(userID uint) error {
	var readCount int64
	if err := s.db.Model(&models.UserArticleInteraction{}).
		Where("user_id = ? AND is_read = ?", userID, true).
		Count(&readCount).Error; err != nil {
		return err
	}
	if readCount >= avidReaderThreshold {
		s.AwardAchievement(userID, models.AchievementAvidReader)
	}

	var savedCount int64
	if err := s.db.Model(&models.UserArticleInteraction{}).
		Where("user_id = ? AND is_saved = ?", userID, true).
		Count(&savedCount).Error; err != nil {
		return err
	}
	if savedCount >= articleCollectorThreshold {
		s.AwardAchievement(userID, models.AchievementArticleCollector)
	}

	var totalAttempts, perfectScores int64
	if err := s.db.Model(&models.QuizAttempt{}).
		Where("user_id = ?", userID).
		Count(&totalAttempts).Error; err != nil {
		return err
	}
	if err := s.db.Model(&models.QuizAttempt{}).
		Where("user_id = ? AND score = ?", userID, 100).
		Count(&perfectScores).Error; err != nil {
		return err
	}
	if perfectScores >= quizMasterThreshold {
		s.AwardAchievement(userID, models.AchievementQuizMaster)
	}
	if totalAttempts >= quizEnthusiastThreshold {
		s.AwardAchievement(userID, models.AchievementQuizEnthusiast)
	}

	var streak models.ReadingStreak
	err := s.db.Where("user_id = ?", userID).First(&streak).Error
	if err == nil && streak.CurrentStreak >= streakHunterThreshold {
		s.AwardAchievement(userID, models.AchievementStreakHunter)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var points models.LeaderboardPoints
	err = s.db.Where("user_id = ?", userID).First(&points).Error
	if err == nil {
		if points.Points >= pointMasterThreshold {
			s.AwardAchievement(userID, models.AchievementPointMaster)
		} else if points.Points >= pointCollectorThreshold {
			s.AwardAchievement(userID, models.AchievementPointCollector)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return nil
}

func (s *GamificationService) streakBadgeCount(userID uint) int64 {
	var count int64
	s.db.Model(&models.UserAchievement{}).
		Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
		Where("user_achievements.user_id = ? AND achievements.name = ?", userID, models.AchievementStreakHunter).
		Count(&count)
	return count
}

// dateOnly truncates a time to its UTC calendar date.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns whole calendar days from a to b, both date-only.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
