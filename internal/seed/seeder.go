// Package seed fills a development database with plausible data.
package seed

import (
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/murmurhq/murmur/internal/models"
	"gorm.io/gorm"
)

// Seeder writes fake users, posts, and reports
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a seeder
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Options controls how much data SeedDev generates
type Options struct {
	Users int
	Posts int

	// ReportedFraction of posts get between 1 and MaxReports reports
	ReportedFraction float64
	MaxReports       int
}

// DefaultOptions are enough data to exercise pagination and hiding
func DefaultOptions() Options {
	return Options{
		Users:            25,
		Posts:            120,
		ReportedFraction: 0.2,
		MaxReports:       6,
	}
}

// SeedDev populates the database. Posts get spread over the past two weeks
// so the feed has realistic ordering, and a slice of them get enough reports
// to cross typical hide thresholds.
func (s *Seeder) SeedDev(opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	users := make([]models.User, 0, opts.Users)
	lastActive := time.Now().UTC()
	for i := 0; i < opts.Users; i++ {
		users = append(users, models.User{
			ID:           uuid.New().String(),
			CreatedAt:    gofakeit.DateRange(time.Now().AddDate(0, -1, 0), time.Now()),
			LastActiveAt: &lastActive,
		})
	}
	if err := s.db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	log.Printf("✅ Seeded %d anonymous users", len(users))

	posts := make([]models.Post, 0, opts.Posts)
	now := time.Now().UTC()
	for i := 0; i < opts.Posts; i++ {
		author := users[gofakeit.Number(0, len(users)-1)]
		posts = append(posts, models.Post{
			ID:        uuid.New().String(),
			Content:   fakeThought(),
			AuthorID:  author.ID,
			CreatedAt: gofakeit.DateRange(now.AddDate(0, 0, -14), now),
		})
	}

	for i := range posts {
		public := posts[i].Public()
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&posts[i]).Error; err != nil {
				return err
			}
			return tx.Create(&public).Error
		})
		if err != nil {
			return fmt.Errorf("failed to seed post: %w", err)
		}
	}
	log.Printf("✅ Seeded %d posts", len(posts))

	reported := 0
	for i := range posts {
		if gofakeit.Float64Range(0, 1) > opts.ReportedFraction {
			continue
		}
		count := gofakeit.Number(1, opts.MaxReports)
		if err := s.reportPost(&posts[i], users, count); err != nil {
			return err
		}
		reported++
	}
	log.Printf("✅ Seeded reports on %d posts", reported)

	return nil
}

// reportPost writes count receipts from distinct users and syncs the
// counters, the same shape the report engine produces.
func (s *Seeder) reportPost(post *models.Post, users []models.User, count int) error {
	if count > len(users) {
		count = len(users)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < count; i++ {
			receipt := models.ReportReceipt{
				PostID:     post.ID,
				ReporterID: users[i].ID,
			}
			if err := tx.Create(&receipt).Error; err != nil {
				return fmt.Errorf("failed to seed report receipt: %w", err)
			}
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			Update("report_count", count).Error; err != nil {
			return err
		}
		return tx.Model(&models.PublicPost{}).Where("id = ?", post.ID).
			Update("report_count", count).Error
	})
}

// Clean removes all seeded data. Order respects the foreign references.
func (s *Seeder) Clean() error {
	tables := []interface{}{
		&models.ReportReceipt{},
		&models.PublicPost{},
		&models.Post{},
		&models.Feedback{},
		&models.UserActivity{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Where("1 = 1").Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

// fakeThought produces short first-person content the way real posts look
func fakeThought() string {
	switch gofakeit.Number(0, 3) {
	case 0:
		return gofakeit.Quote()
	case 1:
		return gofakeit.HipsterSentence()
	case 2:
		return fmt.Sprintf("%s %s", gofakeit.Emoji(), gofakeit.Sentence(gofakeit.Number(6, 20)))
	default:
		return gofakeit.Sentence(gofakeit.Number(4, 25))
	}
}
