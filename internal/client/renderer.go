package client

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/murmurhq/murmur/internal/feed"
)

// TerminalRenderer prints feed pages to a writer. It satisfies
// feed.Renderer so the paginator can drive it directly.
type TerminalRenderer struct {
	out io.Writer

	// reported decides whether the report hint shows for a post; nil
	// means always show it.
	reported func(postID string) bool
}

// NewTerminalRenderer creates a renderer writing to out
func NewTerminalRenderer(out io.Writer, reported func(postID string) bool) *TerminalRenderer {
	return &TerminalRenderer{out: out, reported: reported}
}

// RenderPage prints one page of posts
func (r *TerminalRenderer) RenderPage(posts []feed.PostView) {
	for _, post := range posts {
		r.renderPost(post, false)
	}
}

// RenderNewPostOptimistic prints a just-submitted post before the server
// confirms it
func (r *TerminalRenderer) RenderNewPostOptimistic(post feed.PostView) {
	r.renderPost(post, true)
}

// RemoveOptimisticPost retracts an optimistic post. A terminal cannot unprint,
// so this prints the retraction instead.
func (r *TerminalRenderer) RemoveOptimisticPost(id string) {
	fmt.Fprintf(r.out, "  (post %s was not accepted and has been removed)\n", shortID(id))
}

// SetFeedStatus prints a status line
func (r *TerminalRenderer) SetFeedStatus(message string) {
	fmt.Fprintf(r.out, "-- %s\n", message)
}

// SetLoading is a no-op for the terminal; pages print when they arrive
func (r *TerminalRenderer) SetLoading(loading bool) {}

// SetEndOfFeed prints the end marker once
func (r *TerminalRenderer) SetEndOfFeed(end bool) {
	if end {
		fmt.Fprintln(r.out, "-- You're all caught up.")
	}
}

func (r *TerminalRenderer) renderPost(post feed.PostView, pending bool) {
	marker := ""
	if pending {
		marker = " (sending...)"
	}

	fmt.Fprintf(r.out, "%s · %s%s\n", shortID(post.ID), relativeTime(post.CreatedAt), marker)
	for _, line := range strings.Split(post.Content, "\n") {
		fmt.Fprintf(r.out, "  %s\n", line)
	}
	if !pending && (r.reported == nil || !r.reported(post.ID)) {
		fmt.Fprintf(r.out, "  [report: murmur report %s]\n", post.ID)
	}
	fmt.Fprintln(r.out)
}

// shortID truncates a UUID for display
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// relativeTime renders a timestamp the way the feed shows it
func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2")
	}
}
