package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/murmurhq/murmur/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CooldownTestSuite exercises the limiter against an in-memory store with a
// controlled clock. Redis is absent, so every check takes the durable path.
type CooldownTestSuite struct {
	suite.Suite
	db      *gorm.DB
	limiter *CooldownLimiter
	now     time.Time
}

func (suite *CooldownTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), db.AutoMigrate(&models.UserActivity{}))

	suite.db = db
	suite.now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	suite.limiter = NewCooldownLimiter(db, nil, 300*time.Second, 180*time.Second)
	suite.limiter.SetNowFunc(func() time.Time { return suite.now })
}

func (suite *CooldownTestSuite) advance(d time.Duration) {
	suite.now = suite.now.Add(d)
}

func (suite *CooldownTestSuite) TestFirstActionAllowed() {
	decision, err := suite.limiter.CanProceed(context.Background(), CategoryPost, "user-1")
	suite.Require().NoError(err)
	suite.True(decision.Allowed)
	suite.Equal(0, decision.SecondsRemaining)
}

func (suite *CooldownTestSuite) TestWindowBlocksUntilElapsed() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.limiter.RecordAction(ctx, CategoryPost, "user-1"))

	// Immediately after: blocked for the full window
	decision, err := suite.limiter.CanProceed(ctx, CategoryPost, "user-1")
	suite.Require().NoError(err)
	suite.False(decision.Allowed)
	suite.Equal(300, decision.SecondsRemaining)

	// One second before the window closes: still blocked
	suite.advance(299 * time.Second)
	decision, err = suite.limiter.CanProceed(ctx, CategoryPost, "user-1")
	suite.Require().NoError(err)
	suite.False(decision.Allowed)
	suite.Equal(1, decision.SecondsRemaining)

	// Exactly at the boundary: allowed
	suite.advance(1 * time.Second)
	decision, err = suite.limiter.CanProceed(ctx, CategoryPost, "user-1")
	suite.Require().NoError(err)
	suite.True(decision.Allowed)
}

func (suite *CooldownTestSuite) TestCategoriesAreIndependent() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.limiter.RecordAction(ctx, CategoryPost, "user-1"))

	// A post cooldown does not block feedback, and the two feedback
	// categories do not block each other.
	decision, err := suite.limiter.CanProceed(ctx, CategoryBugReport, "user-1")
	suite.Require().NoError(err)
	suite.True(decision.Allowed)

	require.NoError(suite.T(), suite.limiter.RecordAction(ctx, CategoryBugReport, "user-1"))
	decision, err = suite.limiter.CanProceed(ctx, CategoryFeatureSuggestion, "user-1")
	suite.Require().NoError(err)
	suite.True(decision.Allowed)

	decision, err = suite.limiter.CanProceed(ctx, CategoryBugReport, "user-1")
	suite.Require().NoError(err)
	suite.False(decision.Allowed)
}

func (suite *CooldownTestSuite) TestUsersAreIndependent() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.limiter.RecordAction(ctx, CategoryPost, "user-1"))

	decision, err := suite.limiter.CanProceed(ctx, CategoryPost, "user-2")
	suite.Require().NoError(err)
	suite.True(decision.Allowed)
}

func (suite *CooldownTestSuite) TestRepeatActionResetsWindow() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.limiter.RecordAction(ctx, CategoryPost, "user-1"))

	suite.advance(300 * time.Second)
	require.NoError(suite.T(), suite.limiter.RecordAction(ctx, CategoryPost, "user-1"))

	suite.advance(150 * time.Second)
	decision, err := suite.limiter.CanProceed(ctx, CategoryPost, "user-1")
	suite.Require().NoError(err)
	suite.False(decision.Allowed)
	suite.Equal(150, decision.SecondsRemaining)
}

func (suite *CooldownTestSuite) TestUnknownCategoryRejected() {
	_, err := suite.limiter.CanProceed(context.Background(), Category("likes"), "user-1")
	suite.Error(err)
}

func TestCooldownTestSuite(t *testing.T) {
	suite.Run(t, new(CooldownTestSuite))
}
