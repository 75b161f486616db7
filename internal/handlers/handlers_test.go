package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/murmurhq/murmur/internal/auth"
	"github.com/murmurhq/murmur/internal/config"
	"github.com/murmurhq/murmur/internal/database"
	"github.com/murmurhq/murmur/internal/feed"
	"github.com/murmurhq/murmur/internal/models"
	"github.com/murmurhq/murmur/internal/moderation"
	"github.com/murmurhq/murmur/internal/publisher"
	"github.com/murmurhq/murmur/internal/ratelimit"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// HandlersTestSuite drives the full HTTP surface against a real Postgres.
// Skips when no test database is reachable.
type HandlersTestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	handlers *Handlers
	limiter  *ratelimit.CooldownLimiter
	auth     *auth.Service
	now      time.Time
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (suite *HandlersTestSuite) SetupSuite() {
	host := getEnvOrDefault("POSTGRES_HOST", "localhost")
	port := getEnvOrDefault("POSTGRES_PORT", "5432")
	user := getEnvOrDefault("POSTGRES_USER", "postgres")
	password := getEnvOrDefault("POSTGRES_PASSWORD", "")
	dbname := getEnvOrDefault("POSTGRES_DB", "murmur_test")

	testDSN := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		testDSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
	}

	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		suite.T().Skipf("Skipping handler tests: database not available (%v)", err)
		return
	}

	database.DB = db

	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PublicPost{},
		&models.ReportReceipt{},
		&models.UserActivity{},
		&models.Feedback{},
	)
	require.NoError(suite.T(), err)

	suite.db = db

	cfg := &config.Config{
		HideThreshold:    5,
		FeedPageSize:     15,
		MaxPostChars:     1200,
		MaxPostWords:     200,
		PostCooldown:     300 * time.Second,
		FeedbackCooldown: 180 * time.Second,
	}

	suite.auth = auth.NewService([]byte("handler-test-secret"))

	policy := moderation.Policy{HideThreshold: cfg.HideThreshold}
	engine := moderation.NewEngine(db, policy)
	feedService := feed.NewService(db, policy, cfg.FeedPageSize)

	suite.now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	suite.limiter = ratelimit.NewCooldownLimiter(db, nil, cfg.PostCooldown, cfg.FeedbackCooldown)
	suite.limiter.SetNowFunc(func() time.Time { return suite.now })

	pub := publisher.NewPublisher(db, suite.limiter, publisher.Limits{
		MaxChars: cfg.MaxPostChars,
		MaxWords: cfg.MaxPostWords,
	})

	suite.handlers = NewHandlers(cfg, suite.auth, feedService, engine, pub, suite.limiter)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.setupRoutes()
}

func (suite *HandlersTestSuite) setupRoutes() {
	api := suite.router.Group("/api/v1")
	api.POST("/auth/anonymous", suite.handlers.SignInAnonymously)
	api.GET("/config", suite.handlers.GetConfig)

	authed := api.Group("")
	authed.Use(suite.auth.Middleware())
	authed.GET("/feed", suite.handlers.GetFeed)
	authed.POST("/posts", suite.handlers.CreatePost)
	authed.POST("/posts/:id/report", suite.handlers.ReportPost)
	authed.POST("/feedback", suite.handlers.SubmitFeedback)
}

func (suite *HandlersTestSuite) TearDownSuite() {
	if suite.db == nil {
		return
	}
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *HandlersTestSuite) SetupTest() {
	suite.db.Exec("TRUNCATE TABLE report_receipts RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE feedback RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE public_posts, posts, user_activities, users CASCADE")
	suite.now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

// do performs a request and decodes the JSON response body
func (suite *HandlersTestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	decoded := map[string]interface{}{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

// signIn creates a fresh identity and returns its token
func (suite *HandlersTestSuite) signIn() string {
	w, body := suite.do(http.MethodPost, "/api/v1/auth/anonymous", "", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(suite.T(), token)
	return token
}

func (suite *HandlersTestSuite) TestAnonymousSignIn() {
	w, body := suite.do(http.MethodPost, "/api/v1/auth/anonymous", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.NotEmpty(body["token"])
	suite.NotEmpty(body["user_id"])

	// Each sign-in mints a distinct identity
	_, second := suite.do(http.MethodPost, "/api/v1/auth/anonymous", "", nil)
	suite.NotEqual(body["user_id"], second["user_id"])
}

func (suite *HandlersTestSuite) TestConfigAdvertisesLimits() {
	w, body := suite.do(http.MethodGet, "/api/v1/config", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(float64(1200), body["max_post_chars"])
	suite.Equal(float64(200), body["max_post_words"])
	suite.Equal(float64(1080), body["post_chars_warn_at"])
	suite.Equal(float64(15), body["feed_page_size"])
	suite.Equal(float64(300), body["post_cooldown_seconds"])
}

func (suite *HandlersTestSuite) TestRequestsWithoutTokenRejected() {
	w, _ := suite.do(http.MethodGet, "/api/v1/feed", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.do(http.MethodPost, "/api/v1/posts", "", map[string]string{"content": "x"})
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestCreatePost() {
	token := suite.signIn()

	w, body := suite.do(http.MethodPost, "/api/v1/posts", token, map[string]string{"content": "  an honest thought  "})
	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal("an honest thought", body["content"])
	suite.NotEmpty(body["id"])

	// The public projection carries no author field
	_, hasAuthor := body["author_id"]
	suite.False(hasAuthor)
}

func (suite *HandlersTestSuite) TestCreatePostValidation() {
	token := suite.signIn()

	w, body := suite.do(http.MethodPost, "/api/v1/posts", token, map[string]string{"content": "   "})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("VALIDATION_ERROR", body["code"])

	long := strings.Repeat("a", 1201)
	w, body = suite.do(http.MethodPost, "/api/v1/posts", token, map[string]string{"content": long})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("VALIDATION_ERROR", body["code"])
}

func (suite *HandlersTestSuite) TestCreatePostCooldown() {
	token := suite.signIn()

	w, _ := suite.do(http.MethodPost, "/api/v1/posts", token, map[string]string{"content": "first"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w, body := suite.do(http.MethodPost, "/api/v1/posts", token, map[string]string{"content": "second"})
	suite.Equal(http.StatusTooManyRequests, w.Code)
	suite.Equal("COOLDOWN_ACTIVE", body["code"])
	suite.Equal(float64(300), body["retry_after"])

	// After the window the same identity may post again
	suite.now = suite.now.Add(300 * time.Second)
	w, _ = suite.do(http.MethodPost, "/api/v1/posts", token, map[string]string{"content": "second"})
	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *HandlersTestSuite) TestReportFlow() {
	author := suite.signIn()
	w, created := suite.do(http.MethodPost, "/api/v1/posts", author, map[string]string{"content": "report me"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	postID := created["id"].(string)

	reporter := suite.signIn()
	w, body := suite.do(http.MethodPost, "/api/v1/posts/"+postID+"/report", reporter, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(float64(1), body["report_count"])
	suite.Equal(false, body["hidden"])

	// Same reporter again: conflict, count untouched
	w, body = suite.do(http.MethodPost, "/api/v1/posts/"+postID+"/report", reporter, nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("ALREADY_REPORTED", body["code"])

	var post models.Post
	suite.Require().NoError(suite.db.First(&post, "id = ?", postID).Error)
	suite.Equal(1, post.ReportCount)
}

func (suite *HandlersTestSuite) TestReportingToThresholdHidesFromFeed() {
	author := suite.signIn()
	w, created := suite.do(http.MethodPost, "/api/v1/posts", author, map[string]string{"content": "about to vanish"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	postID := created["id"].(string)

	var lastBody map[string]interface{}
	for i := 0; i < 5; i++ {
		reporter := suite.signIn()
		w, lastBody = suite.do(http.MethodPost, "/api/v1/posts/"+postID+"/report", reporter, nil)
		suite.Require().Equal(http.StatusOK, w.Code)
	}
	suite.Equal(float64(5), lastBody["report_count"])
	suite.Equal(true, lastBody["hidden"])

	// The post no longer appears in the feed
	viewer := suite.signIn()
	w, feedBody := suite.do(http.MethodGet, "/api/v1/feed", viewer, nil)
	suite.Equal(http.StatusOK, w.Code)
	posts, _ := feedBody["posts"].([]interface{})
	for _, raw := range posts {
		post := raw.(map[string]interface{})
		suite.NotEqual(postID, post["id"])
	}
}

func (suite *HandlersTestSuite) TestReportUnknownPost() {
	reporter := suite.signIn()
	w, body := suite.do(http.MethodPost, "/api/v1/posts/00000000-0000-0000-0000-000000000000/report", reporter, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("NOT_FOUND", body["code"])
}

func (suite *HandlersTestSuite) TestFeedPagination() {
	// Publish three posts from separate identities, a minute apart
	for i := 0; i < 3; i++ {
		author := suite.signIn()
		w, _ := suite.do(http.MethodPost, "/api/v1/posts", author, map[string]string{
			"content": fmt.Sprintf("thought number %d", i),
		})
		suite.Require().Equal(http.StatusCreated, w.Code)
		suite.now = suite.now.Add(time.Minute)
	}

	viewer := suite.signIn()
	w, body := suite.do(http.MethodGet, "/api/v1/feed?limit=2", viewer, nil)
	suite.Equal(http.StatusOK, w.Code)

	posts, _ := body["posts"].([]interface{})
	suite.Require().Len(posts, 2)
	suite.Equal(false, body["end_of_feed"])
	suite.Equal("thought number 2", posts[0].(map[string]interface{})["content"])

	cursor, _ := body["next_cursor"].(string)
	suite.Require().NotEmpty(cursor)

	w, body = suite.do(http.MethodGet, "/api/v1/feed?limit=2&cursor="+cursor, viewer, nil)
	suite.Equal(http.StatusOK, w.Code)
	posts, _ = body["posts"].([]interface{})
	suite.Require().Len(posts, 1)
	suite.Equal("thought number 0", posts[0].(map[string]interface{})["content"])
	suite.Equal(true, body["end_of_feed"])
}

func (suite *HandlersTestSuite) TestFeedRejectsBadCursor() {
	viewer := suite.signIn()
	w, body := suite.do(http.MethodGet, "/api/v1/feed?cursor=!!!bogus!!!", viewer, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("BAD_REQUEST", body["code"])
}

func (suite *HandlersTestSuite) TestFeedbackFlow() {
	token := suite.signIn()

	w, _ := suite.do(http.MethodPost, "/api/v1/feedback", token, map[string]string{
		"category": "bug_report",
		"message":  "the feed shows my own hidden post",
	})
	suite.Equal(http.StatusAccepted, w.Code)

	// Same category inside the window: blocked
	w, body := suite.do(http.MethodPost, "/api/v1/feedback", token, map[string]string{
		"category": "bug_report",
		"message":  "another one",
	})
	suite.Equal(http.StatusTooManyRequests, w.Code)
	suite.Equal("COOLDOWN_ACTIVE", body["code"])

	// The other category has its own window
	w, _ = suite.do(http.MethodPost, "/api/v1/feedback", token, map[string]string{
		"category": "feature_suggestion",
		"message":  "dark mode by default",
	})
	suite.Equal(http.StatusAccepted, w.Code)

	var stored int64
	suite.db.Model(&models.Feedback{}).Count(&stored)
	suite.Equal(int64(2), stored)
}

func (suite *HandlersTestSuite) TestFeedbackRejectsUnknownCategory() {
	token := suite.signIn()
	w, body := suite.do(http.MethodPost, "/api/v1/feedback", token, map[string]string{
		"category": "complaint",
		"message":  "hmm",
	})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("VALIDATION_ERROR", body["code"])
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
