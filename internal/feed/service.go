// Package feed serves the reverse-chronological public feed: keyset
// pagination on the server side, and the client-side paginator state machine
// that drives it.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/murmurhq/murmur/internal/models"
	"github.com/murmurhq/murmur/internal/moderation"
	"gorm.io/gorm"
)

// PostView is the feed's rendering shape for a single post
type PostView struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	ReportCount int       `json:"report_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Page is one fetched feed page. NextCursor tracks the last row the store
// returned, not the last visible one, so a fully hidden page still advances.
type Page struct {
	Posts      []PostView `json:"posts"`
	NextCursor string     `json:"next_cursor,omitempty"`
	EndOfFeed  bool       `json:"end_of_feed"`
}

// Service reads feed pages from the public post materialization
type Service struct {
	db       *gorm.DB
	policy   moderation.Policy
	pageSize int
}

// NewService creates a feed service. pageSize is the default page length
// when the caller does not specify one.
func NewService(db *gorm.DB, policy moderation.Policy, pageSize int) *Service {
	return &Service{db: db, policy: policy, pageSize: pageSize}
}

// PageSize returns the default page size
func (s *Service) PageSize() int {
	return s.pageSize
}

// FetchPage returns the page of posts strictly after the cursor in
// (created_at DESC, id DESC) order. Hidden posts are fetched and then
// filtered by the visibility policy: the cursor advances over them, which
// guarantees forward progress even when an entire page is hidden.
func (s *Service) FetchPage(ctx context.Context, cursor Cursor, limit int) (*Page, error) {
	if limit <= 0 || limit > 100 {
		limit = s.pageSize
	}

	query := s.db.WithContext(ctx).Model(&models.PublicPost{}).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if !cursor.IsZero() {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.PublicPost
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch feed page: %w", err)
	}

	page := &Page{
		Posts:     make([]PostView, 0, len(rows)),
		EndOfFeed: len(rows) < limit,
	}

	for _, row := range rows {
		if !s.policy.Visible(row.ReportCount, row.IsImmune) {
			continue
		}
		page.Posts = append(page.Posts, PostView{
			ID:          row.ID,
			Content:     row.Content,
			ReportCount: row.ReportCount,
			CreatedAt:   row.CreatedAt,
		})
	}

	if len(rows) > 0 {
		last := rows[len(rows)-1]
		page.NextCursor = Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}

	return page, nil
}
