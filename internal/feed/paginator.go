package feed

import (
	"context"
	"sync"
)

// State is the paginator's lifecycle state
type State int

const (
	StateIdle State = iota
	StateLoading
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateExhausted:
		return "exhausted"
	}
	return "unknown"
}

// FetchFunc fetches one feed page for the given opaque cursor. The HTTP
// client and the in-process service both satisfy it.
type FetchFunc func(ctx context.Context, cursor string, limit int) (*Page, error)

// Renderer is the rendering collaborator the paginator drives. Terminal and
// test renderers implement it; nothing here knows how posts are displayed.
type Renderer interface {
	RenderPage(posts []PostView)
	RenderNewPostOptimistic(post PostView)
	RemoveOptimisticPost(id string)
	SetFeedStatus(message string)
	SetLoading(loading bool)
	SetEndOfFeed(end bool)
}

// Paginator walks the feed page by page. FetchNextPage is a no-op while a
// fetch is in flight or after the feed is exhausted, so rapid triggers
// (scroll events) cannot start duplicate fetches. Each fetch carries a
// generation token; Reload bumps it and any response from a previous
// generation is discarded instead of being applied to the new feed.
type Paginator struct {
	mu          sync.Mutex
	fetch       FetchFunc
	renderer    Renderer
	limit       int
	state       State
	cursor      string
	gen         uint64
	endSignaled bool
}

// NewPaginator creates a paginator over fetch, rendering into renderer
func NewPaginator(fetch FetchFunc, renderer Renderer, limit int) *Paginator {
	return &Paginator{
		fetch:    fetch,
		renderer: renderer,
		limit:    limit,
	}
}

// State returns the current state
func (p *Paginator) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cursor returns the current opaque cursor ("" at top of feed)
func (p *Paginator) Cursor() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Reload resets the paginator to the top of the feed and fetches the first
// page. In-flight responses from before the reload are discarded.
func (p *Paginator) Reload(ctx context.Context) error {
	p.mu.Lock()
	p.gen++
	p.cursor = ""
	p.state = StateIdle
	p.endSignaled = false
	p.mu.Unlock()

	p.renderer.SetEndOfFeed(false)
	return p.FetchNextPage(ctx)
}

// FetchNextPage fetches the next page and hands visible posts to the
// renderer. No-op when already Loading or Exhausted. On failure the state
// returns to Idle so a later trigger can retry; only the fetch that owns
// the current generation touches the loading indicator.
func (p *Paginator) FetchNextPage(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return nil
	}
	p.state = StateLoading
	gen := p.gen
	cursor := p.cursor
	first := cursor == ""
	p.mu.Unlock()

	p.renderer.SetLoading(true)
	if first {
		p.renderer.SetFeedStatus("Loading thoughts...")
	}

	page, err := p.fetch(ctx, cursor, p.limit)

	p.mu.Lock()
	if gen != p.gen {
		// A reload happened while this fetch was in flight; the result
		// belongs to the old feed. The reload's own fetch owns the loading
		// indicator now, so leave the renderer untouched.
		p.mu.Unlock()
		return nil
	}

	if err != nil {
		p.state = StateIdle
		p.mu.Unlock()
		p.renderer.SetLoading(false)
		p.renderer.SetFeedStatus("Could not fetch posts. Please try again.")
		return err
	}

	if page.NextCursor != "" {
		p.cursor = page.NextCursor
	}

	signalEnd := false
	if page.EndOfFeed {
		p.state = StateExhausted
		if !p.endSignaled {
			p.endSignaled = true
			signalEnd = true
		}
	} else {
		p.state = StateIdle
	}
	p.mu.Unlock()

	p.renderer.SetLoading(false)

	if len(page.Posts) > 0 {
		p.renderer.RenderPage(page.Posts)
	} else if first && page.EndOfFeed {
		p.renderer.SetFeedStatus("No thoughts shared yet. Be the first!")
	}

	if signalEnd {
		p.renderer.SetEndOfFeed(true)
	}

	return nil
}
