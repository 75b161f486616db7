package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/murmurhq/murmur/internal/logger"
	"github.com/murmurhq/murmur/internal/util"
)

// SignInAnonymously creates a fresh anonymous identity and returns its
// token. There is no registration: an identity is just an opaque ID the
// client keeps for cooldowns and report receipts.
func (h *Handlers) SignInAnonymously(c *gin.Context) {
	resp, err := h.auth.SignInAnonymously()
	if err != nil {
		logger.ErrorWithFields("anonymous sign-in failed", err)
		util.RespondInternalError(c, "failed to create anonymous session")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetConfig returns the client-facing limits so clients never hardcode
// them: content limits, cooldown windows, and the feed page size.
func (h *Handlers) GetConfig(c *gin.Context) {
	limits := h.publisher.Limits()

	c.JSON(http.StatusOK, gin.H{
		"max_post_chars": limits.MaxChars,
		"max_post_words": limits.MaxWords,
		// Character counters turn into a warning at 90% of the limit
		"post_chars_warn_at":        limits.MaxChars * 9 / 10,
		"feed_page_size":            h.feed.PageSize(),
		"post_cooldown_seconds":     int(h.cfg.PostCooldown.Seconds()),
		"feedback_cooldown_seconds": int(h.cfg.FeedbackCooldown.Seconds()),
	})
}
