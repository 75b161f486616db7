package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/murmurhq/murmur/internal/database"
	apierrors "github.com/murmurhq/murmur/internal/errors"
	"github.com/murmurhq/murmur/internal/logger"
	"github.com/murmurhq/murmur/internal/metrics"
	"github.com/murmurhq/murmur/internal/moderation"
	"github.com/murmurhq/murmur/internal/publisher"
	"github.com/murmurhq/murmur/internal/util"
)

// CreatePost publishes a new anonymous thought
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		util.RespondUnauthorized(c)
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "content is required")
		return
	}

	post, err := h.publisher.SubmitPost(c.Request.Context(), req.Content, userID.(string))
	if err != nil {
		h.respondPublishError(c, err)
		return
	}

	metrics.Get().PostsCreatedTotal.Inc()

	if h.wsHandler != nil {
		h.wsHandler.NotifyPostCreated(post.ID, post.Content, post.CreatedAt)
	}

	public := post.Public()
	c.JSON(http.StatusCreated, public)
}

// respondPublishError maps publisher errors onto the API error taxonomy
func (h *Handlers) respondPublishError(c *gin.Context, err error) {
	var cooldownErr *publisher.CooldownError

	switch {
	case errors.Is(err, publisher.ErrEmptyContent):
		metrics.Get().PostsRejectedTotal.WithLabelValues("empty").Inc()
		util.RespondValidationError(c, "content", "content cannot be empty")

	case errors.Is(err, publisher.ErrContentTooLong):
		metrics.Get().PostsRejectedTotal.WithLabelValues("too_long").Inc()
		util.RespondValidationError(c, "content", "content exceeds the character limit")

	case errors.Is(err, publisher.ErrTooManyWords):
		metrics.Get().PostsRejectedTotal.WithLabelValues("too_many_words").Inc()
		util.RespondValidationError(c, "content", "content exceeds the word limit")

	case errors.As(err, &cooldownErr):
		metrics.Get().CooldownDeniedTotal.WithLabelValues("post").Inc()
		util.RespondWithAPIError(c, apierrors.CooldownActive(cooldownErr.SecondsRemaining))

	case database.IsSerializationFailure(err):
		metrics.Get().PostsRejectedTotal.WithLabelValues("conflict").Inc()
		util.RespondWithAPIError(c, apierrors.TransactionConflict("publishing"))

	default:
		logger.ErrorWithFields("post submission failed", err)
		util.RespondInternalError(c, "failed to publish post")
	}
}

// ReportPost records that the caller reported a post. Reporting is
// idempotent per (post, reporter): a repeat report returns 409 with
// ALREADY_REPORTED and leaves the count untouched.
func (h *Handlers) ReportPost(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		util.RespondUnauthorized(c)
		return
	}

	postID := c.Param("id")
	if postID == "" {
		util.RespondBadRequest(c, "post id is required")
		return
	}

	result, err := h.engine.ReportPost(c.Request.Context(), postID, userID.(string))
	if err != nil {
		switch {
		case errors.Is(err, moderation.ErrAlreadyReported):
			metrics.Get().ReportsTotal.WithLabelValues("duplicate").Inc()
			util.RespondWithAPIError(c, apierrors.AlreadyReported())

		case errors.Is(err, moderation.ErrPostNotFound):
			metrics.Get().ReportsTotal.WithLabelValues("not_found").Inc()
			util.RespondNotFound(c, "post")

		case database.IsSerializationFailure(err):
			metrics.Get().ReportsTotal.WithLabelValues("conflict").Inc()
			util.RespondWithAPIError(c, apierrors.TransactionConflict("reporting"))

		default:
			metrics.Get().ReportsTotal.WithLabelValues("error").Inc()
			logger.ErrorWithFields("report failed", err)
			util.RespondInternalError(c, "failed to report post")
		}
		return
	}

	metrics.Get().ReportsTotal.WithLabelValues("accepted").Inc()

	if result.JustHidden {
		metrics.Get().PostsHiddenTotal.Inc()
		if h.wsHandler != nil {
			h.wsHandler.NotifyPostHidden(postID)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"post_id":      postID,
		"report_count": result.NewCount,
		"hidden":       result.Hidden,
	})
}
