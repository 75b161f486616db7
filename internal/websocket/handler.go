package websocket

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/murmurhq/murmur/internal/auth"
	"github.com/murmurhq/murmur/internal/models"
)

// Handler handles WebSocket HTTP upgrade requests
type Handler struct {
	hub  *Hub
	auth *auth.Service
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authService *auth.Service) *Handler {
	return &Handler{
		hub:  hub,
		auth: authService,
	}
}

// HandleWebSocket handles WebSocket upgrade requests
// Authentication is done via JWT token in query param: ?token=...
// Or via Authorization header: Bearer <token>
func (h *Handler) HandleWebSocket(c *gin.Context) {
	user, err := h.authenticateRequest(c)
	if err != nil {
		log.Printf("WebSocket auth failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "authentication_failed",
			"message": err.Error(),
		})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin checking is handled by the CORS middleware
		CompressionMode:    websocket.CompressionContextTakeover,
	})
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, user.ID)
	client.RemoteAddr = c.ClientIP()

	h.hub.Register(client)

	client.Send(NewMessage(MessageTypeSystem, SystemPayload{
		Event: "connected",
		Data: map[string]interface{}{
			"server_time": time.Now().UTC().UnixMilli(),
		},
	}))

	go client.WritePump()
	client.ReadPump() // This blocks until client disconnects
}

// authenticateRequest extracts and validates the JWT token from the request
func (h *Handler) authenticateRequest(c *gin.Context) (*models.User, error) {
	tokenString := ""

	// First check query parameter; browsers cannot set headers on
	// WebSocket upgrades.
	if token := c.Query("token"); token != "" {
		tokenString = token
	}

	// Then check Authorization header
	if header := c.GetHeader("Authorization"); header != "" {
		if strings.HasPrefix(header, "Bearer ") {
			tokenString = strings.TrimPrefix(header, "Bearer ")
		} else {
			tokenString = header
		}
	}

	if tokenString == "" {
		return nil, errors.New("no authentication token provided")
	}

	return h.auth.ValidateToken(tokenString)
}

// NotifyPostCreated broadcasts a newly published thought to all feed
// listeners.
func (h *Handler) NotifyPostCreated(postID, content string, createdAt time.Time) {
	h.hub.Broadcast(NewMessage(MessageTypePostCreated, PostCreatedPayload{
		PostID:    postID,
		Content:   content,
		CreatedAt: createdAt.UTC().UnixMilli(),
	}))
}

// NotifyPostHidden tells all feed listeners to drop a hidden post.
func (h *Handler) NotifyPostHidden(postID string) {
	h.hub.Broadcast(NewMessage(MessageTypePostHidden, PostHiddenPayload{
		PostID: postID,
	}))
}

// HandleMetrics returns WebSocket metrics (for monitoring)
func (h *Handler) HandleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"websocket": h.hub.GetMetrics(),
		"timestamp": time.Now().UTC(),
	})
}

// Shutdown gracefully shuts down the WebSocket handler
func (h *Handler) Shutdown(ctx context.Context) error {
	return h.hub.Shutdown(ctx)
}

// GetHub returns the hub for external access
func (h *Handler) GetHub() *Hub {
	return h.hub
}
