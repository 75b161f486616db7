// Package handlers contains the HTTP handlers for the murmur API.
package handlers

import (
	"github.com/murmurhq/murmur/internal/auth"
	"github.com/murmurhq/murmur/internal/config"
	"github.com/murmurhq/murmur/internal/email"
	"github.com/murmurhq/murmur/internal/feed"
	"github.com/murmurhq/murmur/internal/moderation"
	"github.com/murmurhq/murmur/internal/publisher"
	"github.com/murmurhq/murmur/internal/ratelimit"
	"github.com/murmurhq/murmur/internal/websocket"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	cfg       *config.Config
	auth      *auth.Service
	feed      *feed.Service
	engine    *moderation.Engine
	publisher *publisher.Publisher
	limiter   *ratelimit.CooldownLimiter
	email     *email.EmailService
	wsHandler *websocket.Handler
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	cfg *config.Config,
	authService *auth.Service,
	feedService *feed.Service,
	engine *moderation.Engine,
	pub *publisher.Publisher,
	limiter *ratelimit.CooldownLimiter,
) *Handlers {
	return &Handlers{
		cfg:       cfg,
		auth:      authService,
		feed:      feedService,
		engine:    engine,
		publisher: pub,
		limiter:   limiter,
	}
}

// SetEmailService sets the SES feedback forwarder. Optional; without it
// feedback is stored but not mailed.
func (h *Handlers) SetEmailService(svc *email.EmailService) {
	h.email = svc
}

// SetWebSocketHandler sets the WebSocket handler for live feed events
func (h *Handlers) SetWebSocketHandler(ws *websocket.Handler) {
	h.wsHandler = ws
}
