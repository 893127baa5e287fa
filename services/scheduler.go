// services/scheduler.go - cron jobs for window resets and cleanup.
//
// The weekly and monthly point counters only mean anything if something zeroes
// them at the window boundary; that is this scheduler's job. When Redis is
// available each reset takes a short lock so multiple replicas reset once.
package services

import (
	"context"
	"errors"
	"log"
	"time"

	"newsiq/database"
	"newsiq/models"

	"github.com/bsm/redislock"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron *cron.Cron
}

var scheduler *Scheduler

// InitScheduler registers and starts the maintenance jobs. All schedules run
// in UTC, matching the streak tracker's calendar.
func InitScheduler() {
	c := cron.New(cron.WithLocation(time.UTC))

	// Monday 00:00 UTC
	if _, err := c.AddFunc("0 0 * * 1", func() { ResetWindowPoints(WindowWeekly) }); err != nil {
		log.Fatalf("Failed to register weekly reset job: %v", err)
	}

	// First of the month, 00:00 UTC
	if _, err := c.AddFunc("0 0 1 * *", func() { ResetWindowPoints(WindowMonthly) }); err != nil {
		log.Fatalf("Failed to register monthly reset job: %v", err)
	}

	// Nightly guest cleanup
	if _, err := c.AddFunc("30 3 * * *", func() {
		if svc := GetCleanupService(); svc != nil {
			if err := svc.CleanupStaleGuests(); err != nil {
				log.Printf("Guest cleanup failed: %v", err)
			}
		}
	}); err != nil {
		log.Fatalf("Failed to register cleanup job: %v", err)
	}

	c.Start()
	scheduler = &Scheduler{cron: c}
	log.Println("⏰ Scheduler started (weekly/monthly point resets, nightly cleanup)")
}

// GetScheduler returns the running scheduler.
func GetScheduler() *Scheduler {
	return scheduler
}

// Stop stops the cron runner and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	if s == nil || s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ResetWindowPoints zeroes one window column across the whole ledger and
// drops the matching cache. All-time points are never reset.
func ResetWindowPoints(window string) {
	var column string
	switch window {
	case WindowWeekly:
		column = "weekly_points"
	case WindowMonthly:
		column = "monthly_points"
	default:
		log.Printf("Refusing to reset unknown window %q", window)
		return
	}

	release, acquired := acquireResetLock(window)
	if !acquired {
		log.Printf("Skipping %s reset, another replica holds the lock", window)
		return
	}
	defer release()

	db := database.GetDB()
	result := db.Model(&models.LeaderboardPoints{}).
		Where(column+" <> 0").
		Update(column, 0)
	if result.Error != nil {
		log.Printf("Failed to reset %s points: %v", window, result.Error)
		return
	}

	if cache := GetLeaderboardCache(); cache != nil {
		cache.Reset(window)
	}

	log.Printf("🔁 Reset %s points for %d users", window, result.RowsAffected)
}

// acquireResetLock takes a Redis lock for the reset job. Without Redis the
// lock degrades to a no-op, which is fine for single-instance deployments.
func acquireResetLock(window string) (release func(), acquired bool) {
	rdb := GetRedis()
	if rdb == nil {
		return func() {}, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	locker := redislock.New(rdb)
	lock, err := locker.Obtain(ctx, "newsiq:reset:"+window, time.Minute, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		cancel()
		return func() {}, false
	}
	if err != nil {
		log.Printf("Reset lock error for %s (continuing without lock): %v", window, err)
		cancel()
		return func() {}, true
	}

	return func() {
		defer cancel()
		if err := lock.Release(ctx); err != nil {
			log.Printf("Failed to release %s reset lock: %v", window, err)
		}
	}, true
}
