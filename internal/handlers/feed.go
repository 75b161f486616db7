package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/murmurhq/murmur/internal/feed"
	"github.com/murmurhq/murmur/internal/logger"
	"github.com/murmurhq/murmur/internal/metrics"
	"github.com/murmurhq/murmur/internal/util"
)

// GetFeed serves one page of the public feed.
//
// Query params:
//
//	cursor - opaque position from a previous page's next_cursor; empty
//	         means top of feed
//	limit  - page size override, capped server-side
func (h *Handlers) GetFeed(c *gin.Context) {
	cursor, err := feed.DecodeCursor(c.Query("cursor"))
	if err != nil {
		util.RespondBadRequest(c, "invalid cursor")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			util.RespondBadRequest(c, "limit must be a non-negative integer")
			return
		}
	}

	start := time.Now()
	page, err := h.feed.FetchPage(c.Request.Context(), cursor, limit)
	if err != nil {
		logger.ErrorWithFields("feed page fetch failed", err)
		util.RespondInternalError(c, "failed to fetch feed")
		return
	}

	m := metrics.Get()
	m.FeedPagesTotal.Inc()
	m.FeedPageDuration.Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, page)
}
