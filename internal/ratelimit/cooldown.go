// Package ratelimit enforces per-user cooldowns on post creation and
// feedback submission. The durable truth is the user_activities row; a Redis
// TTL key per (category, user) is a fast path that avoids a database read on
// the hot deny case. Client-side checks exist too, but they are advisory
// only — a rejection here wins regardless of what the client thought.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/murmurhq/murmur/internal/cache"
	"github.com/murmurhq/murmur/internal/logger"
	"github.com/murmurhq/murmur/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Category identifies an independently rate-limited action
type Category string

const (
	CategoryPost              Category = "post"
	CategoryBugReport         Category = "bug_report"
	CategoryFeatureSuggestion Category = "feature_suggestion"
)

// activityColumn maps a category to its user_activities column
func (c Category) activityColumn() string {
	switch c {
	case CategoryPost:
		return "last_post_at"
	case CategoryBugReport:
		return "last_bug_report_at"
	case CategoryFeatureSuggestion:
		return "last_feature_suggestion_at"
	}
	return ""
}

// lastAt extracts the category's timestamp from an activity record
func (c Category) lastAt(a *models.UserActivity) *time.Time {
	switch c {
	case CategoryPost:
		return a.LastPostAt
	case CategoryBugReport:
		return a.LastBugReportAt
	case CategoryFeatureSuggestion:
		return a.LastFeatureSuggestionAt
	}
	return nil
}

// Decision is the outcome of a cooldown check
type Decision struct {
	Allowed          bool `json:"allowed"`
	SecondsRemaining int  `json:"seconds_remaining"`
}

// CooldownLimiter enforces per-category cooldown windows
type CooldownLimiter struct {
	db      *gorm.DB
	redis   *cache.RedisClient
	windows map[Category]time.Duration
	now     func() time.Time
}

// NewCooldownLimiter creates a limiter. redisClient may be nil; the limiter
// then runs on the database alone.
func NewCooldownLimiter(db *gorm.DB, redisClient *cache.RedisClient, postWindow, feedbackWindow time.Duration) *CooldownLimiter {
	return &CooldownLimiter{
		db:    db,
		redis: redisClient,
		windows: map[Category]time.Duration{
			CategoryPost:              postWindow,
			CategoryBugReport:         feedbackWindow,
			CategoryFeatureSuggestion: feedbackWindow,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the clock, for tests
func (l *CooldownLimiter) SetNowFunc(now func() time.Time) {
	l.now = now
}

// Now returns the limiter's current time. Callers that stamp inside their
// own transaction use it so the stamp and the window checks share a clock.
func (l *CooldownLimiter) Now() time.Time {
	return l.now()
}

// Window returns the cooldown window for a category
func (l *CooldownLimiter) Window(category Category) time.Duration {
	return l.windows[category]
}

func cooldownKey(category Category, userID string) string {
	return fmt.Sprintf("cooldown:%s:%s", category, userID)
}

// CanProceed reports whether the user may perform the action now, and if not,
// how many seconds remain. The Redis TTL is consulted first; on a miss or a
// Redis outage the user_activities row decides.
func (l *CooldownLimiter) CanProceed(ctx context.Context, category Category, userID string) (Decision, error) {
	window, ok := l.windows[category]
	if !ok {
		return Decision{}, fmt.Errorf("unknown cooldown category %q", category)
	}

	if l.redis != nil {
		ttl, err := l.redis.TTL(ctx, cooldownKey(category, userID))
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.Log.Warn("cooldown fast path unavailable, falling back to database",
				zap.String("category", string(category)),
				zap.Error(err),
			)
		} else if ttl > 0 {
			return Decision{Allowed: false, SecondsRemaining: ceilSeconds(ttl)}, nil
		}
		// A missing key is not a grant: the TTL may simply have been lost.
	}

	var activity models.UserActivity
	err := l.db.WithContext(ctx).Where("user_id = ?", userID).First(&activity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Decision{Allowed: true}, nil
	} else if err != nil {
		return Decision{}, fmt.Errorf("failed to read activity record: %w", err)
	}

	last := category.lastAt(&activity)
	if last == nil {
		return Decision{Allowed: true}, nil
	}

	elapsed := l.now().Sub(*last)
	if elapsed >= window {
		return Decision{Allowed: true}, nil
	}

	return Decision{Allowed: false, SecondsRemaining: ceilSeconds(window - elapsed)}, nil
}

// RecordAction persists the action timestamp, durable row first, then the
// Redis fast path. Callers must only invoke it after the action succeeded so
// a failed attempt does not consume the window.
func (l *CooldownLimiter) RecordAction(ctx context.Context, category Category, userID string) error {
	if err := l.StampTx(l.db.WithContext(ctx), category, userID, l.now()); err != nil {
		return err
	}
	l.Remember(ctx, category, userID)
	return nil
}

// StampTx upserts the category timestamp inside the caller's transaction so
// the cooldown commits atomically with the action it covers.
func (l *CooldownLimiter) StampTx(tx *gorm.DB, category Category, userID string, at time.Time) error {
	column := category.activityColumn()
	if column == "" {
		return fmt.Errorf("unknown cooldown category %q", category)
	}

	activity := models.UserActivity{UserID: userID}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{column: at, "updated_at": at}),
	}).Model(&models.UserActivity{}).
		Create(map[string]interface{}{"user_id": activity.UserID, column: at, "updated_at": at}).Error
	if err != nil {
		return fmt.Errorf("failed to stamp %s cooldown: %w", category, err)
	}
	return nil
}

// Remember arms the Redis TTL after the durable write committed. Best
// effort: the database record already holds the truth.
func (l *CooldownLimiter) Remember(ctx context.Context, category Category, userID string) {
	if l.redis == nil {
		return
	}
	window := l.windows[category]
	if err := l.redis.SetEx(ctx, cooldownKey(category, userID), 1, window); err != nil {
		logger.Log.Warn("failed to arm cooldown fast path",
			zap.String("category", string(category)),
			logger.WithUserID(userID),
			zap.Error(err),
		)
	}
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
