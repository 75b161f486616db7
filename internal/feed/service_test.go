package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/murmurhq/murmur/internal/models"
	"github.com/murmurhq/murmur/internal/moderation"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// FeedServiceTestSuite exercises keyset pagination and visibility filtering
// against an in-memory store
type FeedServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service
	base    time.Time
}

func (suite *FeedServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), db.AutoMigrate(&models.PublicPost{}))

	suite.db = db
	suite.base = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	suite.service = NewService(db, moderation.Policy{HideThreshold: 5}, 15)
}

// addPost inserts a public post offset minutes after the suite's base time
func (suite *FeedServiceTestSuite) addPost(id string, offsetMinutes int, reportCount int, immune bool) {
	post := models.PublicPost{
		ID:          id,
		Content:     "thought " + id,
		ReportCount: reportCount,
		IsImmune:    immune,
		CreatedAt:   suite.base.Add(time.Duration(offsetMinutes) * time.Minute),
	}
	require.NoError(suite.T(), suite.db.Create(&post).Error)
}

func (suite *FeedServiceTestSuite) ids(page *Page) []string {
	out := make([]string, 0, len(page.Posts))
	for _, post := range page.Posts {
		out = append(out, post.ID)
	}
	return out
}

func (suite *FeedServiceTestSuite) TestNewestFirstOrdering() {
	suite.addPost("old", 0, 0, false)
	suite.addPost("mid", 10, 0, false)
	suite.addPost("new", 20, 0, false)

	page, err := suite.service.FetchPage(context.Background(), Cursor{}, 10)
	suite.Require().NoError(err)
	suite.Equal([]string{"new", "mid", "old"}, suite.ids(page))
	suite.True(page.EndOfFeed)
}

func (suite *FeedServiceTestSuite) TestPaginationWalksWholeFeeds() {
	for i := 0; i < 7; i++ {
		suite.addPost(fmt.Sprintf("p%d", i), i, 0, false)
	}

	var seen []string
	cursor := Cursor{}
	pages := 0
	for {
		page, err := suite.service.FetchPage(context.Background(), cursor, 3)
		suite.Require().NoError(err)
		seen = append(seen, suite.ids(page)...)
		pages++
		if page.EndOfFeed {
			break
		}
		cursor, err = DecodeCursor(page.NextCursor)
		suite.Require().NoError(err)
	}

	// Every post seen exactly once, newest first
	suite.Equal([]string{"p6", "p5", "p4", "p3", "p2", "p1", "p0"}, seen)
	suite.Equal(3, pages)
}

func (suite *FeedServiceTestSuite) TestIdenticalTimestampsTieBreakOnID() {
	// Three posts in the same instant must not duplicate or skip across a
	// page boundary
	for _, id := range []string{"aaa", "bbb", "ccc"} {
		suite.addPost(id, 0, 0, false)
	}

	first, err := suite.service.FetchPage(context.Background(), Cursor{}, 2)
	suite.Require().NoError(err)
	suite.Len(first.Posts, 2)

	cursor, err := DecodeCursor(first.NextCursor)
	suite.Require().NoError(err)
	second, err := suite.service.FetchPage(context.Background(), cursor, 2)
	suite.Require().NoError(err)

	seen := append(suite.ids(first), suite.ids(second)...)
	suite.ElementsMatch([]string{"aaa", "bbb", "ccc"}, seen)
}

func (suite *FeedServiceTestSuite) TestHiddenPostsFiltered() {
	suite.addPost("visible", 0, 4, false)
	suite.addPost("hidden", 1, 5, false)
	suite.addPost("buried", 2, 11, false)

	page, err := suite.service.FetchPage(context.Background(), Cursor{}, 10)
	suite.Require().NoError(err)
	suite.Equal([]string{"visible"}, suite.ids(page))
}

func (suite *FeedServiceTestSuite) TestImmunePostStaysVisible() {
	suite.addPost("immune", 0, 40, true)

	page, err := suite.service.FetchPage(context.Background(), Cursor{}, 10)
	suite.Require().NoError(err)
	suite.Equal([]string{"immune"}, suite.ids(page))
	suite.Equal(40, page.Posts[0].ReportCount)
}

func (suite *FeedServiceTestSuite) TestFullyHiddenPageStillAdvances() {
	// Newest three posts all hidden; the page comes back empty but its
	// cursor points past them, so the next fetch reaches the visible post.
	suite.addPost("reachable", 0, 0, false)
	suite.addPost("h1", 10, 9, false)
	suite.addPost("h2", 11, 9, false)
	suite.addPost("h3", 12, 9, false)

	first, err := suite.service.FetchPage(context.Background(), Cursor{}, 3)
	suite.Require().NoError(err)
	suite.Empty(first.Posts)
	suite.False(first.EndOfFeed)
	suite.NotEmpty(first.NextCursor)

	cursor, err := DecodeCursor(first.NextCursor)
	suite.Require().NoError(err)
	second, err := suite.service.FetchPage(context.Background(), cursor, 3)
	suite.Require().NoError(err)
	suite.Equal([]string{"reachable"}, suite.ids(second))
	suite.True(second.EndOfFeed)
}

func (suite *FeedServiceTestSuite) TestEmptyFeed() {
	page, err := suite.service.FetchPage(context.Background(), Cursor{}, 10)
	suite.Require().NoError(err)
	suite.Empty(page.Posts)
	suite.True(page.EndOfFeed)
	suite.Empty(page.NextCursor)
}

func (suite *FeedServiceTestSuite) TestLimitFallsBackToDefault() {
	for i := 0; i < 20; i++ {
		suite.addPost(fmt.Sprintf("p%02d", i), i, 0, false)
	}

	// Zero and out-of-range limits use the configured page size
	page, err := suite.service.FetchPage(context.Background(), Cursor{}, 0)
	suite.Require().NoError(err)
	suite.Len(page.Posts, 15)

	page, err = suite.service.FetchPage(context.Background(), Cursor{}, 1000)
	suite.Require().NoError(err)
	suite.Len(page.Posts, 15)
}

func TestFeedServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FeedServiceTestSuite))
}
