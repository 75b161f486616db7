package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRenderer captures every renderer call for assertions
type recordingRenderer struct {
	mu        sync.Mutex
	pages     [][]PostView
	statuses  []string
	loading   []bool
	endOfFeed []bool
}

func (r *recordingRenderer) RenderPage(posts []PostView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, posts)
}

func (r *recordingRenderer) RenderNewPostOptimistic(post PostView) {}
func (r *recordingRenderer) RemoveOptimisticPost(id string)       {}

func (r *recordingRenderer) SetFeedStatus(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, message)
}

func (r *recordingRenderer) SetLoading(loading bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = append(r.loading, loading)
}

func (r *recordingRenderer) SetEndOfFeed(end bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endOfFeed = append(r.endOfFeed, end)
}

func (r *recordingRenderer) endSignals() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, 0, len(r.endOfFeed))
	for _, e := range r.endOfFeed {
		if e {
			out = append(out, e)
		}
	}
	return out
}

// pagedFetch serves pre-built pages in order, tracking calls
type pagedFetch struct {
	mu    sync.Mutex
	pages []*Page
	calls int
}

func (f *pagedFetch) fetch(ctx context.Context, cursor string, limit int) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls >= len(f.pages) {
		return &Page{EndOfFeed: true}, nil
	}
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func makePosts(n int, prefix string) []PostView {
	posts := make([]PostView, n)
	for i := range posts {
		posts[i] = PostView{ID: prefix, Content: "thought", CreatedAt: time.Now()}
	}
	return posts
}

func TestFetchNextPageWalksPages(t *testing.T) {
	fetcher := &pagedFetch{pages: []*Page{
		{Posts: makePosts(3, "a"), NextCursor: "c1"},
		{Posts: makePosts(2, "b"), NextCursor: "c2", EndOfFeed: true},
	}}
	renderer := &recordingRenderer{}
	p := NewPaginator(fetcher.fetch, renderer, 3)

	require.NoError(t, p.FetchNextPage(context.Background()))
	assert.Equal(t, StateIdle, p.State())
	assert.Equal(t, "c1", p.Cursor())

	require.NoError(t, p.FetchNextPage(context.Background()))
	assert.Equal(t, StateExhausted, p.State())

	require.Len(t, renderer.pages, 2)
	assert.Len(t, renderer.pages[0], 3)
	assert.Len(t, renderer.pages[1], 2)
}

func TestFetchNextPageNoOpWhenExhausted(t *testing.T) {
	fetcher := &pagedFetch{pages: []*Page{
		{Posts: makePosts(1, "a"), NextCursor: "c1", EndOfFeed: true},
	}}
	renderer := &recordingRenderer{}
	p := NewPaginator(fetcher.fetch, renderer, 10)

	require.NoError(t, p.FetchNextPage(context.Background()))
	require.Equal(t, StateExhausted, p.State())

	// Further triggers must not fetch
	require.NoError(t, p.FetchNextPage(context.Background()))
	require.NoError(t, p.FetchNextPage(context.Background()))
	assert.Equal(t, 1, fetcher.calls)
}

func TestFetchNextPageNoOpWhileLoading(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex

	fetch := func(ctx context.Context, cursor string, limit int) (*Page, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		return &Page{EndOfFeed: true}, nil
	}

	renderer := &recordingRenderer{}
	p := NewPaginator(fetch, renderer, 10)

	done := make(chan error)
	go func() { done <- p.FetchNextPage(context.Background()) }()
	<-started

	// While the first fetch is in flight, triggers are ignored
	require.NoError(t, p.FetchNextPage(context.Background()))
	require.NoError(t, p.FetchNextPage(context.Background()))

	close(release)
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestEndOfFeedSignaledOnce(t *testing.T) {
	fetcher := &pagedFetch{pages: []*Page{
		{Posts: makePosts(1, "a"), EndOfFeed: true},
	}}
	renderer := &recordingRenderer{}
	p := NewPaginator(fetcher.fetch, renderer, 10)

	require.NoError(t, p.FetchNextPage(context.Background()))
	require.NoError(t, p.FetchNextPage(context.Background()))

	assert.Len(t, renderer.endSignals(), 1)
}

func TestFetchErrorReturnsToIdle(t *testing.T) {
	boom := errors.New("network down")
	failing := true
	fetch := func(ctx context.Context, cursor string, limit int) (*Page, error) {
		if failing {
			return nil, boom
		}
		return &Page{Posts: makePosts(1, "a"), EndOfFeed: true}, nil
	}

	renderer := &recordingRenderer{}
	p := NewPaginator(fetch, renderer, 10)

	err := p.FetchNextPage(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateIdle, p.State())
	assert.Contains(t, renderer.statuses, "Could not fetch posts. Please try again.")

	// Loading indicator was cleared even though the fetch failed
	require.NotEmpty(t, renderer.loading)
	assert.False(t, renderer.loading[len(renderer.loading)-1])

	// The next trigger retries and succeeds
	failing = false
	require.NoError(t, p.FetchNextPage(context.Background()))
	assert.Equal(t, StateExhausted, p.State())
}

func TestEmptyFeedShowsPlaceholder(t *testing.T) {
	fetcher := &pagedFetch{pages: []*Page{
		{EndOfFeed: true},
	}}
	renderer := &recordingRenderer{}
	p := NewPaginator(fetcher.fetch, renderer, 10)

	require.NoError(t, p.FetchNextPage(context.Background()))
	assert.Contains(t, renderer.statuses, "No thoughts shared yet. Be the first!")
	assert.Empty(t, renderer.pages)
}

func TestReloadDiscardsStaleResponse(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	fetch := func(ctx context.Context, cursor string, limit int) (*Page, error) {
		stale := false
		once.Do(func() {
			stale = true
			close(started)
		})
		if stale {
			<-release
			// This response belongs to the pre-reload feed
			return &Page{Posts: makePosts(5, "stale"), NextCursor: "stale-cursor"}, nil
		}
		return &Page{Posts: makePosts(1, "fresh"), NextCursor: "fresh-cursor", EndOfFeed: true}, nil
	}

	renderer := &recordingRenderer{}
	p := NewPaginator(fetch, renderer, 10)

	done := make(chan error)
	go func() { done <- p.FetchNextPage(context.Background()) }()
	<-started

	// Reload bumps the generation; it runs its own fetch immediately
	require.NoError(t, p.Reload(context.Background()))
	assert.Equal(t, "fresh-cursor", p.Cursor())

	close(release)
	require.NoError(t, <-done)

	// The stale page was never rendered and never moved the cursor
	assert.Equal(t, "fresh-cursor", p.Cursor())
	require.Len(t, renderer.pages, 1)
	assert.Equal(t, "fresh", renderer.pages[0][0].ID)
}

func TestStaleResponseLeavesLoadingIndicatorAlone(t *testing.T) {
	staleStarted := make(chan struct{})
	staleRelease := make(chan struct{})
	freshStarted := make(chan struct{})
	freshRelease := make(chan struct{})
	var calls int
	var mu sync.Mutex

	fetch := func(ctx context.Context, cursor string, limit int) (*Page, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			close(staleStarted)
			<-staleRelease
			return &Page{Posts: makePosts(2, "stale")}, nil
		}
		close(freshStarted)
		<-freshRelease
		return &Page{Posts: makePosts(1, "fresh"), EndOfFeed: true}, nil
	}

	renderer := &recordingRenderer{}
	p := NewPaginator(fetch, renderer, 10)

	staleDone := make(chan error)
	go func() { staleDone <- p.FetchNextPage(context.Background()) }()
	<-staleStarted

	freshDone := make(chan error)
	go func() { freshDone <- p.Reload(context.Background()) }()
	<-freshStarted

	// The stale fetch resolves while the reload's fetch is still in
	// flight; it must not clear the reload's loading indicator.
	close(staleRelease)
	require.NoError(t, <-staleDone)

	renderer.mu.Lock()
	require.NotEmpty(t, renderer.loading)
	assert.True(t, renderer.loading[len(renderer.loading)-1])
	renderer.mu.Unlock()

	close(freshRelease)
	require.NoError(t, <-freshDone)

	renderer.mu.Lock()
	assert.False(t, renderer.loading[len(renderer.loading)-1])
	renderer.mu.Unlock()
}

func TestHiddenOnlyPageStillAdvancesCursor(t *testing.T) {
	// A page whose posts were all filtered server-side arrives empty but
	// carries a cursor; the paginator must store it and stay Idle.
	fetcher := &pagedFetch{pages: []*Page{
		{Posts: nil, NextCursor: "past-hidden", EndOfFeed: false},
		{Posts: makePosts(1, "visible"), NextCursor: "end", EndOfFeed: true},
	}}
	renderer := &recordingRenderer{}
	p := NewPaginator(fetcher.fetch, renderer, 10)

	require.NoError(t, p.FetchNextPage(context.Background()))
	assert.Equal(t, StateIdle, p.State())
	assert.Equal(t, "past-hidden", p.Cursor())

	require.NoError(t, p.FetchNextPage(context.Background()))
	require.Len(t, renderer.pages, 1)
	assert.Equal(t, "visible", renderer.pages[0][0].ID)
}
