// Package publisher validates and submits new posts. A submission writes the
// private record, the redacted public record, and the author's cooldown
// stamp in one transaction; either all three land or none do.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/murmurhq/murmur/internal/logger"
	"github.com/murmurhq/murmur/internal/models"
	"github.com/murmurhq/murmur/internal/ratelimit"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEmptyContent   = errors.New("content is empty")
	ErrContentTooLong = errors.New("content exceeds the character limit")
	ErrTooManyWords   = errors.New("content exceeds the word limit")
)

// CooldownError reports that the author is still inside the posting window
type CooldownError struct {
	SecondsRemaining int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("posting cooldown active, %ds remaining", e.SecondsRemaining)
}

// Limits are the configurable content constraints. Both have applied at
// different points in the product's history, so both are enforced.
type Limits struct {
	MaxChars int
	MaxWords int
}

// ValidateContent checks content against the limits. The returned content is
// the trimmed form that will be stored.
func ValidateContent(content string, limits Limits) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	if limits.MaxChars > 0 && len([]rune(trimmed)) > limits.MaxChars {
		return "", ErrContentTooLong
	}
	if limits.MaxWords > 0 && countWords(trimmed) > limits.MaxWords {
		return "", ErrTooManyWords
	}
	return trimmed, nil
}

// countWords counts whitespace-separated words
func countWords(s string) int {
	return len(strings.Fields(s))
}

// Publisher submits validated posts to the store
type Publisher struct {
	db      *gorm.DB
	limiter *ratelimit.CooldownLimiter
	limits  Limits
}

// NewPublisher creates a publisher
func NewPublisher(db *gorm.DB, limiter *ratelimit.CooldownLimiter, limits Limits) *Publisher {
	return &Publisher{db: db, limiter: limiter, limits: limits}
}

// Limits returns the active content limits
func (p *Publisher) Limits() Limits {
	return p.limits
}

// SubmitPost validates content and writes the post. The cooldown is checked
// before the store is touched; a blocked submission returns CooldownError
// without consuming anything. On success the cooldown stamp has committed
// with the post, and the Redis fast path is armed afterwards.
func (p *Publisher) SubmitPost(ctx context.Context, content, authorID string) (*models.Post, error) {
	trimmed, err := ValidateContent(content, p.limits)
	if err != nil {
		return nil, err
	}

	decision, err := p.limiter.CanProceed(ctx, ratelimit.CategoryPost, authorID)
	if err != nil {
		return nil, fmt.Errorf("cooldown check failed: %w", err)
	}
	if !decision.Allowed {
		return nil, &CooldownError{SecondsRemaining: decision.SecondsRemaining}
	}

	now := p.limiter.Now()
	post := models.Post{
		ID:        uuid.New().String(),
		Content:   trimmed,
		AuthorID:  authorID,
		CreatedAt: now,
	}

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}

		public := post.Public()
		if err := tx.Create(&public).Error; err != nil {
			return fmt.Errorf("failed to create public post: %w", err)
		}

		return p.limiter.StampTx(tx, ratelimit.CategoryPost, authorID, now)
	})
	if err != nil {
		return nil, err
	}

	p.limiter.Remember(ctx, ratelimit.CategoryPost, authorID)

	logger.Log.Info("post published",
		logger.WithPostID(post.ID),
		logger.WithUserID(authorID),
		zap.Int("content_length", len(trimmed)),
	)

	return &post, nil
}
