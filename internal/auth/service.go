// Package auth implements the anonymous identity provider. Identities carry
// no profile data: signing in mints a fresh uuid-backed user and a signed
// token for it, and every authenticated request resolves the token back to
// that user. Post and report actions are gated on a resolved identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/murmurhq/murmur/internal/database"
	"github.com/murmurhq/murmur/internal/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidToken = errors.New("invalid token")
)

// Anonymous sessions live a long time; losing the token just means a new
// anonymous identity, so there is no refresh flow.
const tokenLifetime = 30 * 24 * time.Hour

// Service handles anonymous identity operations
type Service struct {
	jwtSecret []byte
}

// NewService creates a new identity service
func NewService(jwtSecret []byte) *Service {
	return &Service{jwtSecret: jwtSecret}
}

// AuthResponse represents an issued anonymous session
type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignInAnonymously mints a new anonymous identity and a token for it
func (s *Service) SignInAnonymously() (*AuthResponse, error) {
	user := models.User{
		ID: uuid.New().String(),
	}

	if err := database.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create anonymous user: %w", err)
	}

	return s.generateAuthResponse(&user)
}

// generateAuthResponse creates a signed token for the user
func (s *Service) generateAuthResponse(user *models.User) (*AuthResponse, error) {
	expiresAt := time.Now().Add(tokenLifetime)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"anon":    true,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResponse{
		Token:     tokenString,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken validates a token and returns the identity it names
func (s *Service) ValidateToken(tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	// Fetch fresh user data so revoked identities stop working
	var user models.User
	err = database.DB.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}

// TouchLastActive updates the user's last-active timestamp, best effort
func (s *Service) TouchLastActive(user *models.User) {
	now := time.Now().UTC()
	user.LastActiveAt = &now
	database.DB.Model(user).Update("last_active_at", now)
}
