package client

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// State is the client's durable local store, a small sqlite database under
// the user's config directory. It remembers the auth token, which posts this
// identity already reported (so the report action greys out immediately and
// across restarts), and small preferences like the theme.
//
// The reported set is advisory: the server enforces idempotence regardless,
// this just saves a round trip for the common case.
type State struct {
	db *gorm.DB
}

// settingRow is a key/value preference
type settingRow struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"type:text;not null"`
}

func (settingRow) TableName() string { return "settings" }

// reportedRow remembers a post this identity reported
type reportedRow struct {
	PostID     string    `gorm:"primaryKey"`
	ReportedAt time.Time `gorm:"not null"`
}

func (reportedRow) TableName() string { return "reported_posts" }

// Setting keys
const (
	SettingToken  = "token"
	SettingUserID = "user_id"
	SettingTheme  = "theme"
	SettingAPIURL = "api_url"
)

// Cooldown categories mirror the server's rate-limit categories
const (
	CategoryPost              = "post"
	CategoryBugReport         = "bug_report"
	CategoryFeatureSuggestion = "feature_suggestion"
)

// defaultCooldowns mirror the server defaults; login overwrites them with
// the windows the server advertises in /config.
var defaultCooldowns = map[string]time.Duration{
	CategoryPost:              300 * time.Second,
	CategoryBugReport:         180 * time.Second,
	CategoryFeatureSuggestion: 180 * time.Second,
}

func lastActionKey(category string) string { return "last_action:" + category }
func cooldownKey(category string) string   { return "cooldown:" + category }

// DefaultStatePath returns the default sqlite path under the user config dir
func DefaultStatePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve config directory: %w", err)
	}
	dir := filepath.Join(configDir, "murmur")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}
	return filepath.Join(dir, "state.db"), nil
}

// OpenState opens (and if needed creates) the local state database
func OpenState(path string) (*State, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if err := db.AutoMigrate(&settingRow{}, &reportedRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}

	return &State{db: db}, nil
}

// Close closes the underlying database
func (s *State) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns a setting value, or "" when unset
func (s *State) Get(key string) (string, error) {
	var row settingRow
	err := s.db.First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	return row.Value, nil
}

// Set stores a setting value
func (s *State) Set(key, value string) error {
	return s.db.Save(&settingRow{Key: key, Value: value}).Error
}

// MarkReported remembers that this identity reported postID
func (s *State) MarkReported(postID string) error {
	err := s.db.Create(&reportedRow{PostID: postID, ReportedAt: time.Now().UTC()}).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// HasReported reports whether this identity already reported postID
func (s *State) HasReported(postID string) (bool, error) {
	var count int64
	err := s.db.Model(&reportedRow{}).Where("post_id = ?", postID).Count(&count).Error
	return count > 0, err
}

// StampAction remembers that the server accepted an action in the given
// category, starting the local advisory cooldown. Called only on success:
// a rejected action must not extend the window.
func (s *State) StampAction(category string) error {
	return s.Set(lastActionKey(category), time.Now().UTC().Format(time.RFC3339))
}

// SetCooldownWindow stores the server-advertised window for a category
func (s *State) SetCooldownWindow(category string, seconds int) error {
	return s.Set(cooldownKey(category), strconv.Itoa(seconds))
}

// CooldownRemaining returns how many seconds of the category's cooldown are
// left according to local state, zero when clear. The check is advisory: it
// saves a round trip that is sure to fail, but the server's own limiter
// stays authoritative (another device won't have this stamp).
func (s *State) CooldownRemaining(category string) (int, error) {
	raw, err := s.Get(lastActionKey(category))
	if err != nil || raw == "" {
		return 0, err
	}
	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Unreadable stamp: let the server decide
		return 0, nil
	}

	window := defaultCooldowns[category]
	if stored, err := s.Get(cooldownKey(category)); err == nil && stored != "" {
		if secs, err := strconv.Atoi(stored); err == nil && secs > 0 {
			window = time.Duration(secs) * time.Second
		}
	}

	elapsed := time.Since(last)
	if elapsed >= window {
		return 0, nil
	}
	return int(math.Ceil((window - elapsed).Seconds())), nil
}

// ClearIdentity wipes the token, user id, the reported set, and the
// cooldown stamps. Used when signing in again: they all belong to the old
// identity.
func (s *State) ClearIdentity() error {
	if err := s.db.Where("key IN ?", []string{SettingToken, SettingUserID}).
		Delete(&settingRow{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("key LIKE ?", "last_action:%").
		Delete(&settingRow{}).Error; err != nil {
		return err
	}
	return s.db.Where("1 = 1").Delete(&reportedRow{}).Error
}
