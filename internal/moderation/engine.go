// Package moderation implements the report engine: idempotent per-user
// reporting with an atomically maintained report counter, and the visibility
// policy derived from it.
package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/murmurhq/murmur/internal/logger"
	"github.com/murmurhq/murmur/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrAlreadyReported means a receipt already exists for this
	// (post, reporter) pair. Callers treat it as success-equivalent.
	ErrAlreadyReported = errors.New("post already reported by this user")

	// ErrPostNotFound means the post id does not exist
	ErrPostNotFound = errors.New("post not found")
)

// Policy is the externally configured moderation policy. The hide threshold
// has changed before (3, then 5) and must never be assumed by call sites.
type Policy struct {
	HideThreshold int
}

// Visible reports whether a post with the given state may appear in a feed
func (p Policy) Visible(reportCount int, isImmune bool) bool {
	return reportCount < p.HideThreshold || isImmune
}

// Engine executes report transactions against the store
type Engine struct {
	db     *gorm.DB
	policy Policy
}

// NewEngine creates a report engine
func NewEngine(db *gorm.DB, policy Policy) *Engine {
	return &Engine{db: db, policy: policy}
}

// Policy returns the active moderation policy
func (e *Engine) Policy() Policy {
	return e.policy
}

// ReportResult describes the outcome of a successful report
type ReportResult struct {
	// NewCount is the post's report count after this report
	NewCount int

	// Hidden is true when the post is no longer visible after this report
	Hidden bool

	// JustHidden is true when this report moved the post across the hide
	// threshold. Immune posts never set it.
	JustHidden bool
}

// ReportPost records that reporterID reported postID and returns the new
// report count. The receipt write and the counter increment on both post
// materializations commit in a single transaction; repeated calls by the
// same reporter return ErrAlreadyReported and never move the counter.
//
// The private post row is locked for the read-modify-write, so concurrent
// reports on the same post serialize; the unique receipt index resolves the
// remaining race where two transactions pass the existence check together.
func (e *Engine) ReportPost(ctx context.Context, postID, reporterID string) (ReportResult, error) {
	if postID == "" || reporterID == "" {
		return ReportResult{}, fmt.Errorf("post id and reporter id are required")
	}

	var result ReportResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ReportReceipt
		err := tx.Where("post_id = ? AND reporter_id = ?", postID, reporterID).First(&existing).Error
		if err == nil {
			return ErrAlreadyReported
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check report receipt: %w", err)
		}

		var post models.Post
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, "id = ?", postID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		} else if err != nil {
			return fmt.Errorf("failed to load post: %w", err)
		}

		receipt := models.ReportReceipt{PostID: postID, ReporterID: reporterID}
		if err := tx.Create(&receipt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyReported
			}
			return fmt.Errorf("failed to create report receipt: %w", err)
		}

		newCount := post.ReportCount + 1
		result = ReportResult{
			NewCount:   newCount,
			Hidden:     !e.policy.Visible(newCount, post.IsImmune),
			JustHidden: !post.IsImmune && newCount == e.policy.HideThreshold,
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			Update("report_count", newCount).Error; err != nil {
			return fmt.Errorf("failed to update report count: %w", err)
		}
		if err := tx.Model(&models.PublicPost{}).Where("id = ?", postID).
			Update("report_count", newCount).Error; err != nil {
			return fmt.Errorf("failed to update public report count: %w", err)
		}

		return nil
	})
	if err != nil {
		return ReportResult{}, err
	}

	logger.Log.Info("post reported",
		logger.WithPostID(postID),
		logger.WithUserID(reporterID),
		zap.Int("report_count", result.NewCount),
		zap.Bool("just_hidden", result.JustHidden),
	)

	return result, nil
}
