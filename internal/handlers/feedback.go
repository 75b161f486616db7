package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/murmurhq/murmur/internal/database"
	apierrors "github.com/murmurhq/murmur/internal/errors"
	"github.com/murmurhq/murmur/internal/logger"
	"github.com/murmurhq/murmur/internal/metrics"
	"github.com/murmurhq/murmur/internal/models"
	"github.com/murmurhq/murmur/internal/ratelimit"
	"github.com/murmurhq/murmur/internal/util"
	"gorm.io/gorm"
)

// SubmitFeedback stores a bug report or feature suggestion. Each category
// has its own cooldown window, checked and stamped like posting.
func (h *Handlers) SubmitFeedback(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		util.RespondUnauthorized(c)
		return
	}

	var req struct {
		Category string `json:"category" binding:"required"`
		Message  string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "category and message are required")
		return
	}

	category := models.FeedbackCategory(req.Category)
	if !category.Valid() {
		util.RespondValidationError(c, "category", "must be bug_report or feature_suggestion")
		return
	}

	limiterCategory := ratelimit.Category(category)
	decision, err := h.limiter.CanProceed(c.Request.Context(), limiterCategory, userID.(string))
	if err != nil {
		logger.ErrorWithFields("feedback cooldown check failed", err)
		util.RespondInternalError(c, "failed to submit feedback")
		return
	}
	if !decision.Allowed {
		metrics.Get().CooldownDeniedTotal.WithLabelValues(string(category)).Inc()
		util.RespondWithAPIError(c, apierrors.CooldownActive(decision.SecondsRemaining))
		return
	}

	feedback := models.Feedback{
		UserID:   userID.(string),
		Category: category,
		Message:  req.Message,
	}

	now := h.limiter.Now()
	err = database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&feedback).Error; err != nil {
			return err
		}
		return h.limiter.StampTx(tx, limiterCategory, userID.(string), now)
	})
	if err != nil {
		logger.ErrorWithFields("feedback store failed", err)
		util.RespondInternalError(c, "failed to submit feedback")
		return
	}

	h.limiter.Remember(c.Request.Context(), limiterCategory, userID.(string))

	// Mail forwarding is best-effort; the stored row is the source of
	// truth and unforwarded rows can be replayed later.
	if h.email != nil {
		go h.forwardFeedback(feedback)
	}

	// Accepted rather than Created: mail forwarding completes out of band.
	c.JSON(http.StatusAccepted, gin.H{
		"id":       feedback.ID,
		"category": feedback.Category,
	})
}

// forwardFeedback mails the feedback to the operator inbox and marks the
// row forwarded on success.
func (h *Handlers) forwardFeedback(feedback models.Feedback) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := h.email.SendFeedback(ctx, &feedback); err != nil {
		logger.WarnWithFields("feedback mail forward failed", err)
		return
	}

	if err := database.DB.Model(&models.Feedback{}).
		Where("id = ?", feedback.ID).
		Update("forwarded", true).Error; err != nil {
		logger.WarnWithFields("failed to mark feedback forwarded", err)
	}
}
