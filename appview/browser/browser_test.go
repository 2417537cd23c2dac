package browser_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tangled.org/repobrowser/appview/browser"
	"tangled.org/repobrowser/appview/cache"
	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/source"
	"tangled.org/repobrowser/appview/source/sourcetest"
	"tangled.org/repobrowser/log"
)

const helloWorld = "octocat%2FHello-World"

var helloWorldID = models.RepoIdentifier{Owner: "octocat", Name: "Hello-World"}

func newController(t *testing.T, opts ...browser.Option) (*browser.Controller, *sourcetest.Fake) {
	t.Helper()
	fake := sourcetest.NewFake(sourcetest.Repository("octocat/Hello-World"))
	opts = append([]browser.Option{browser.WithLogger(log.Discard())}, opts...)
	return browser.New(fake, opts...), fake
}

func ready(t *testing.T, opts ...browser.Option) (*browser.Controller, *sourcetest.Fake) {
	t.Helper()
	c, fake := newController(t, opts...)
	require.NoError(t, c.Initialize(context.Background(), helloWorld))
	fake.Reset()
	return c, fake
}

func requireOneActive(t *testing.T, s models.BrowsingState) {
	t.Helper()
	active := 0
	for _, f := range s.Filters() {
		if f.Active {
			active++
		}
	}
	require.Equal(t, 1, active)
}

// gate blocks matching fetches until released and reports each arrival.
type gate struct {
	arrived chan sourcetest.Call
	release chan struct{}
}

func newGate() *gate {
	return &gate{arrived: make(chan sourcetest.Call, 8), release: make(chan struct{})}
}

func (g *gate) hook(match func(sourcetest.Call) bool) func(context.Context, sourcetest.Call) error {
	return func(ctx context.Context, c sourcetest.Call) error {
		if !match(c) {
			return nil
		}
		g.arrived <- c
		select {
		case <-g.release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (g *gate) await(t *testing.T) sourcetest.Call {
	t.Helper()
	select {
	case c := <-g.arrived:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("fetch never issued")
	}
	return sourcetest.Call{}
}

func TestInitialState(t *testing.T) {
	c, _ := newController(t)
	s := c.State()

	assert.Equal(t, models.PhaseUninitialized, s.Phase)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, models.FilterAll, s.Filter)
	assert.Nil(t, s.Metadata)
	assert.Empty(t, s.Issues)
	requireOneActive(t, s)
}

func TestInitializeFetchesConcurrently(t *testing.T) {
	c, fake := newController(t)
	g := newGate()
	fake.Hook = g.hook(func(sourcetest.Call) bool { return true })

	done := make(chan error, 1)
	go func() { done <- c.Initialize(context.Background(), helloWorld) }()

	// both fetches must be in flight before either is allowed to finish
	first, second := g.await(t), g.await(t)
	assert.ElementsMatch(t,
		[]sourcetest.Kind{sourcetest.KindRepository, sourcetest.KindIssues},
		[]sourcetest.Kind{first.Kind, second.Kind})

	s := c.State()
	assert.True(t, s.IsLoading)
	assert.Equal(t, models.PhaseLoading, s.Phase)
	assert.Nil(t, s.Metadata)

	close(g.release)
	require.NoError(t, <-done)

	s = c.State()
	assert.False(t, s.IsLoading)
	assert.Equal(t, models.PhaseReady, s.Phase)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, models.FilterAll, s.Filter)
	assert.Equal(t, helloWorldID, s.Repo)
	require.NotNil(t, s.Metadata)
	assert.Equal(t, "Hello-World", s.Metadata.Name)
	assert.Equal(t, sourcetest.Issues(models.FilterAll, 1), s.Issues)
	requireOneActive(t, s)

	for _, call := range fake.Calls() {
		if call.Kind == sourcetest.KindIssues {
			assert.Equal(t, models.FilterAll, call.Filter)
			assert.Equal(t, 1, call.Page)
		}
	}
}

func TestInitializeRejectsBadIdentifier(t *testing.T) {
	c, fake := newController(t)

	err := c.Initialize(context.Background(), "not-a-repo")
	assert.ErrorIs(t, err, models.ErrInvalidIdentifier)
	assert.Equal(t, models.PhaseUninitialized, c.State().Phase)
	assert.Empty(t, fake.Calls())
}

func TestInitializeFailure(t *testing.T) {
	c, _ := newController(t)

	err := c.Initialize(context.Background(), "octocat%2Fmissing")
	require.ErrorIs(t, err, source.ErrNotFound)

	s := c.State()
	assert.Equal(t, models.PhaseFailed, s.Phase)
	assert.False(t, s.IsLoading)
	assert.ErrorIs(t, s.Err, source.ErrNotFound)
	assert.Nil(t, s.Metadata)

	assert.ErrorIs(t, c.ChangePage(context.Background(), 1), browser.ErrNotInitialized)
	assert.ErrorIs(t, c.SelectFilter(context.Background(), "open"), browser.ErrNotInitialized)
}

func TestReinitializeResetsToDefaults(t *testing.T) {
	c, _ := ready(t)
	ctx := context.Background()
	require.NoError(t, c.SelectFilter(ctx, "closed"))
	require.NoError(t, c.ChangePage(ctx, 1))

	require.NoError(t, c.Initialize(ctx, helloWorld))
	s := c.State()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, models.FilterAll, s.Filter)
	assert.Equal(t, sourcetest.Issues(models.FilterAll, 1), s.Issues)
}

func TestChangePageForward(t *testing.T) {
	c, fake := ready(t)

	require.NoError(t, c.ChangePage(context.Background(), 1))

	s := c.State()
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, models.FilterAll, s.Filter)
	assert.Equal(t, sourcetest.Issues(models.FilterAll, 2), s.Issues)
	assert.False(t, s.IsLoading)
	assert.Equal(t, []sourcetest.Call{
		{Kind: sourcetest.KindIssues, Repo: helloWorldID, Filter: models.FilterAll, Page: 2},
	}, fake.Calls())
}

func TestChangePageLoadingIsObservable(t *testing.T) {
	c, fake := ready(t)
	g := newGate()
	fake.Hook = g.hook(func(sourcetest.Call) bool { return true })

	done := make(chan error, 1)
	go func() { done <- c.ChangePage(context.Background(), 1) }()
	g.await(t)

	s := c.State()
	assert.True(t, s.IsLoading)
	assert.False(t, s.CanNavigate())
	assert.Equal(t, 1, s.Page, "page is committed only with its issues")

	close(g.release)
	require.NoError(t, <-done)
	assert.Equal(t, 2, c.State().Page)
}

func TestChangePageBelowOneDoesNotCrash(t *testing.T) {
	c, fake := ready(t)

	require.NoError(t, c.ChangePage(context.Background(), -1))

	s := c.State()
	assert.Equal(t, 0, s.Page)
	assert.False(t, s.IsLoading)
	require.Len(t, fake.Calls(), 1)
	assert.Equal(t, 0, fake.Calls()[0].Page)
}

func TestStrictPagingRejectsBelowOne(t *testing.T) {
	c, fake := ready(t, browser.WithStrictPaging())

	err := c.ChangePage(context.Background(), -1)
	assert.ErrorIs(t, err, browser.ErrInvalidPage)

	s := c.State()
	assert.Equal(t, 1, s.Page)
	assert.False(t, s.IsLoading)
	assert.Equal(t, models.PhaseReady, s.Phase)
	assert.Empty(t, fake.Calls())
}

func TestSelectFilterResetsPage(t *testing.T) {
	c, fake := ready(t)
	ctx := context.Background()
	require.NoError(t, c.ChangePage(ctx, 1))
	fake.Reset()

	require.NoError(t, c.SelectFilter(ctx, "closed"))

	s := c.State()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, models.FilterClosed, s.Filter)
	assert.Equal(t, sourcetest.Issues(models.FilterClosed, 1), s.Issues)
	for _, f := range s.Filters() {
		assert.Equal(t, f.State == models.FilterClosed, f.Active, f.State)
	}
	assert.Equal(t, []sourcetest.Call{
		{Kind: sourcetest.KindIssues, Repo: helloWorldID, Filter: models.FilterClosed, Page: 1},
	}, fake.Calls())
}

func TestSelectFilterActivatesBeforeFetchCompletes(t *testing.T) {
	c, fake := ready(t)
	g := newGate()
	fake.Hook = g.hook(func(sourcetest.Call) bool { return true })

	done := make(chan error, 1)
	go func() { done <- c.SelectFilter(context.Background(), "open") }()
	g.await(t)

	s := c.State()
	assert.True(t, s.IsLoading)
	assert.Equal(t, models.FilterOpen, s.Filter)
	requireOneActive(t, s)

	close(g.release)
	require.NoError(t, <-done)
}

func TestSelectSameFilterRefetches(t *testing.T) {
	c, fake := ready(t)
	ctx := context.Background()
	require.NoError(t, c.ChangePage(ctx, 1))
	fake.Reset()

	require.NoError(t, c.SelectFilter(ctx, "all"))

	s := c.State()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, sourcetest.Issues(models.FilterAll, 1), s.Issues)
	require.Len(t, fake.Calls(), 1)
	assert.True(t, fake.Calls()[0].Fresh, "re-selecting is a refresh")

	fake.Reset()
	require.NoError(t, c.SelectFilter(ctx, "open"))
	require.Len(t, fake.Calls(), 1)
	assert.False(t, fake.Calls()[0].Fresh)
}

func TestReselectBypassesCachedSource(t *testing.T) {
	fake := sourcetest.NewFake(sourcetest.Repository("octocat/Hello-World"))
	store, err := cache.NewMemory(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	src := source.NewCached(fake, store, time.Hour, log.Discard())

	c := browser.New(src, browser.WithLogger(log.Discard()))
	ctx := context.Background()
	require.NoError(t, c.Initialize(ctx, "octocat/Hello-World"))
	store.Wait()
	fake.Reset()

	require.NoError(t, c.SelectFilter(ctx, "all"))
	assert.Equal(t, []sourcetest.Call{
		{Kind: sourcetest.KindIssues, Repo: helloWorldID, Filter: models.FilterAll, Page: 1, Fresh: true},
	}, fake.Calls())
}

func TestSelectUnknownFilter(t *testing.T) {
	c, fake := ready(t)
	before := c.State()

	err := c.SelectFilter(context.Background(), "merged")
	assert.ErrorIs(t, err, models.ErrUnknownFilter)
	assert.Equal(t, before, c.State())
	assert.Empty(t, fake.Calls())
}

// A failed fetch ends loading and records the error.
func TestChangePageFailure(t *testing.T) {
	c, fake := ready(t)
	fake.Hook = func(ctx context.Context, call sourcetest.Call) error {
		return source.ErrNetwork
	}

	err := c.ChangePage(context.Background(), 1)
	require.ErrorIs(t, err, source.ErrNetwork)

	s := c.State()
	assert.False(t, s.IsLoading)
	assert.Equal(t, models.PhaseFailed, s.Phase)
	assert.ErrorIs(t, s.Err, source.ErrNetwork)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, sourcetest.Issues(models.FilterAll, 1), s.Issues)
	assert.True(t, s.CanNavigate())

	// recovers on the next successful request
	fake.Hook = nil
	require.NoError(t, c.ChangePage(context.Background(), 1))
	s = c.State()
	assert.Equal(t, models.PhaseReady, s.Phase)
	assert.NoError(t, s.Err)
	assert.Equal(t, 2, s.Page)
}

func TestSelectFilterFailureKeepsSelection(t *testing.T) {
	c, fake := ready(t)
	fake.Hook = func(ctx context.Context, call sourcetest.Call) error {
		return source.ErrRateLimited
	}

	err := c.SelectFilter(context.Background(), "open")
	require.ErrorIs(t, err, source.ErrRateLimited)

	s := c.State()
	assert.False(t, s.IsLoading)
	assert.Equal(t, models.PhaseFailed, s.Phase)
	assert.Equal(t, models.FilterOpen, s.Filter)
	requireOneActive(t, s)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	c, fake := ready(t)
	g := newGate()
	fake.Hook = g.hook(func(call sourcetest.Call) bool { return call.Page == 2 })

	slow := make(chan error, 1)
	go func() { slow <- c.ChangePage(context.Background(), 1) }()
	g.await(t)

	// the newer request completes first
	require.NoError(t, c.SelectFilter(context.Background(), "closed"))

	close(g.release)
	assert.ErrorIs(t, <-slow, browser.ErrSuperseded)

	s := c.State()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, models.FilterClosed, s.Filter)
	assert.Equal(t, sourcetest.Issues(models.FilterClosed, 1), s.Issues)
	assert.False(t, s.IsLoading)
}

func TestStaleFailureIsDiscarded(t *testing.T) {
	c, fake := ready(t)
	g := newGate()
	hold := g.hook(func(call sourcetest.Call) bool { return call.Page == 2 })
	fake.Hook = func(ctx context.Context, call sourcetest.Call) error {
		if err := hold(ctx, call); err != nil {
			return err
		}
		if call.Page == 2 {
			return source.ErrNetwork
		}
		return nil
	}

	slow := make(chan error, 1)
	go func() { slow <- c.ChangePage(context.Background(), 1) }()
	g.await(t)

	require.NoError(t, c.SelectFilter(context.Background(), "open"))
	close(g.release)
	assert.ErrorIs(t, <-slow, browser.ErrSuperseded)

	s := c.State()
	assert.Equal(t, models.PhaseReady, s.Phase)
	assert.NoError(t, s.Err)
}

func TestLoadingStaysUntilLatestSettles(t *testing.T) {
	c, fake := ready(t)
	older, newer := newGate(), newGate()
	holdOlder := older.hook(func(call sourcetest.Call) bool { return call.Page == 2 })
	holdNewer := newer.hook(func(call sourcetest.Call) bool { return call.Filter == models.FilterOpen })
	fake.Hook = func(ctx context.Context, call sourcetest.Call) error {
		if err := holdOlder(ctx, call); err != nil {
			return err
		}
		return holdNewer(ctx, call)
	}

	first := make(chan error, 1)
	go func() { first <- c.ChangePage(context.Background(), 1) }()
	older.await(t)

	second := make(chan error, 1)
	go func() { second <- c.SelectFilter(context.Background(), "open") }()
	newer.await(t)

	close(older.release)
	assert.ErrorIs(t, <-first, browser.ErrSuperseded)
	assert.True(t, c.State().IsLoading)

	close(newer.release)
	require.NoError(t, <-second)
	s := c.State()
	assert.False(t, s.IsLoading)
	assert.Equal(t, sourcetest.Issues(models.FilterOpen, 1), s.Issues)
}

func TestClose(t *testing.T) {
	c, fake := ready(t)
	g := newGate()
	fake.Hook = g.hook(func(sourcetest.Call) bool { return true })

	inflight := make(chan error, 1)
	go func() { inflight <- c.ChangePage(context.Background(), 1) }()
	g.await(t)

	c.Close()
	close(g.release)
	assert.ErrorIs(t, <-inflight, browser.ErrClosed)
	assert.Equal(t, 1, c.State().Page)

	assert.ErrorIs(t, c.ChangePage(context.Background(), 1), browser.ErrClosed)
	assert.ErrorIs(t, c.SelectFilter(context.Background(), "open"), browser.ErrClosed)
	assert.ErrorIs(t, c.Initialize(context.Background(), helloWorld), browser.ErrClosed)
}

func TestStateIsACopy(t *testing.T) {
	c, _ := ready(t)

	s := c.State()
	s.Issues[0].Title = "mutated"
	s.Metadata.Name = "mutated"

	fresh := c.State()
	assert.NotEqual(t, "mutated", fresh.Issues[0].Title)
	assert.NotEqual(t, "mutated", fresh.Metadata.Name)
}

func TestStateStaysConsistentAcrossOperations(t *testing.T) {
	c, _ := ready(t, browser.WithStrictPaging())
	ctx := context.Background()

	ops := []func() error{
		func() error { return c.ChangePage(ctx, 1) },
		func() error { return c.ChangePage(ctx, 1) },
		func() error { return c.SelectFilter(ctx, "open") },
		func() error { return c.ChangePage(ctx, -1) },
		func() error { return c.ChangePage(ctx, 3) },
		func() error { return c.SelectFilter(ctx, "closed") },
		func() error { return c.SelectFilter(ctx, "closed") },
		func() error { return c.ChangePage(ctx, -1) },
		func() error { return c.SelectFilter(ctx, "all") },
	}
	for i, op := range ops {
		_ = op()
		s := c.State()
		requireOneActive(t, s)
		assert.GreaterOrEqual(t, s.Page, 1, "op %d", i)
		assert.False(t, s.IsLoading, "op %d", i)
	}
}
