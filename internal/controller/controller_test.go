package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staygrip/internal/domain"
	"staygrip/internal/gateway"
	"staygrip/internal/resolver"
	"staygrip/internal/router"
	"staygrip/internal/searchstate"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

func ptr[T any](v T) *T { return &v }

type fakeSearcher struct {
	mu       sync.Mutex
	calls    []searchstate.SearchParams
	gates    map[string]chan struct{}
	failures int
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{gates: make(map[string]chan struct{})}
}

func (f *fakeSearcher) Search(ctx context.Context, params searchstate.SearchParams) (domain.ResultPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	gate := f.gates[params.City]
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.ResultPage{}, ctx.Err()
		}
	}
	if fail {
		return domain.ResultPage{}, &gateway.Error{Op: "search", StatusCode: 503}
	}
	return domain.ResultPage{
		Properties: []domain.Property{{ListID: 1, City: params.City}},
		Pagination: domain.PageInfo{Page: params.Page, PageSize: params.PageSize, Total: 1, TotalPages: 1},
	}, nil
}

func (f *fakeSearcher) hold(city string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gates[city] = gate
	return gate
}

func (f *fakeSearcher) failNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = n
}

func (f *fakeSearcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSearcher) last() searchstate.SearchParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fakeView struct {
	mu       sync.Mutex
	loading  []domain.LoadingKind
	pages    []domain.ResultPage
	cleared  int
	notified []string
}

func (v *fakeView) ShowLoading(kind domain.LoadingKind) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = append(v.loading, kind)
}

func (v *fakeView) ShowResults(page domain.ResultPage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pages = append(v.pages, page)
}

func (v *fakeView) ClearResults() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cleared++
}

func (v *fakeView) Notify(message string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notified = append(v.notified, message)
}

func (v *fakeView) shown() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pages)
}

func (v *fakeView) lastCity() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.pages) == 0 || len(v.pages[len(v.pages)-1].Properties) == 0 {
		return ""
	}
	return v.pages[len(v.pages)-1].Properties[0].City
}

type harness struct {
	store    *searchstate.Store
	router   *router.Router
	searcher *fakeSearcher
	view     *fakeView
	ctrl     *Controller
}

// newHarness wires the real store, router and resolver, enters /properties
// and waits for the mount fetch to finish
func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	return newWrappedHarness(t, func(_ *searchstate.Store, r *router.Router) Navigator { return r }, opts...)
}

// newWrappedHarness is newHarness with the controller navigating through wrap
func newWrappedHarness(t *testing.T, wrap func(*searchstate.Store, *router.Router) Navigator, opts ...Option) *harness {
	t.Helper()
	store := searchstate.NewStore(searchstate.DefaultOptions(), nil)
	r := router.New(nil, nil)
	res := resolver.New(store, nil)
	r.Handle("/properties", res)
	r.Handle("/properties/{city}", res)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	_, err := r.Navigate(ctx, "/properties", router.NavigateOptions{})
	require.NoError(t, err)

	h := &harness{store: store, router: r, searcher: newFakeSearcher(), view: &fakeView{}}
	opts = append([]Option{WithView(h.view), WithNotifier(h.view)}, opts...)
	h.ctrl = New(DefaultConfig(), store, wrap(store, r), h.searcher, nil, opts...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.ctrl.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool { return h.view.shown() == 1 }, waitFor, tick)
	return h
}

// settle waits until the controller has stopped producing calls and navigations
func (h *harness) settle(t *testing.T) {
	t.Helper()
	prevCalls, prevNavs := -1, -1
	require.Eventually(t, func() bool {
		calls, navs := h.searcher.count(), h.ctrl.Stats().Navigations
		stable := calls == prevCalls && navs == prevNavs
		prevCalls, prevNavs = calls, navs
		return stable
	}, waitFor, 20*time.Millisecond)
}

func destin() *searchstate.Location {
	return &searchstate.Location{Text: "Destin, FL", City: "Destin", State: "FL", Country: "USA"}
}

func TestMountFetchesOnceWithoutSync(t *testing.T) {
	h := newHarness(t)
	h.settle(t)

	assert.Equal(t, 1, h.searcher.count())
	assert.Equal(t, 0, h.ctrl.Stats().Navigations)
	assert.Equal(t, []domain.LoadingKind{domain.LoadingBlocking}, h.view.loading)
}

func TestUpdateLocationSyncsOnceAndFetchesOnce(t *testing.T) {
	h := newHarness(t)
	h.settle(t)

	h.store.UpdateLocation(destin())

	require.Eventually(t, func() bool { return h.view.shown() == 2 }, waitFor, tick)
	h.settle(t)

	assert.Equal(t, 2, h.searcher.count(), "mount plus one search")
	assert.Equal(t, 1, h.ctrl.Stats().Navigations)
	assert.Equal(t, "/properties/Destin%2C%20FL", h.router.CurrentURL())

	got := h.searcher.last()
	assert.Equal(t, "Destin", got.City)
	assert.Equal(t, "FL", got.State)
	assert.Equal(t, "USA", got.Country)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 12, got.PageSize)
	assert.Equal(t, "newest", got.SortBy)
	assert.Nil(t, got.MinBedrooms)
	assert.Nil(t, got.MinPrice)
	assert.Empty(t, got.CheckIn)
	assert.Empty(t, got.Amenities)

	history, index := h.router.History()
	assert.Len(t, history, 1, "syncs replace the entry")
	assert.Equal(t, 0, index)
}

func TestPaginationKeepsPageSizeInURL(t *testing.T) {
	h := newHarness(t)

	h.store.UpdatePagination(1, ptr(24))
	require.Eventually(t, func() bool { return h.searcher.count() == 2 }, waitFor, tick)
	h.store.UpdatePagination(2, nil)
	require.Eventually(t, func() bool { return h.searcher.count() == 3 }, waitFor, tick)
	h.settle(t)

	assert.Equal(t, "/properties?page=2&pageSize=24", h.router.CurrentURL())
	assert.Equal(t, 2, h.searcher.last().Page)
	assert.Equal(t, 24, h.searcher.last().PageSize)
}

func TestIdenticalParamsFetchOnce(t *testing.T) {
	h := newHarness(t)
	h.store.UpdateDates(&civil.Date{Year: 2025, Month: 7, Day: 1}, &civil.Date{Year: 2025, Month: 7, Day: 5})
	require.Eventually(t, func() bool { return h.view.shown() == 2 }, waitFor, tick)
	h.settle(t)
	calls := h.searcher.count()

	// same calendar days, distinct values
	h.store.UpdateDates(&civil.Date{Year: 2025, Month: 7, Day: 1}, &civil.Date{Year: 2025, Month: 7, Day: 5})
	require.Eventually(t, func() bool { return h.ctrl.Stats().Skipped >= 1 }, waitFor, tick)
	h.settle(t)

	assert.Equal(t, calls, h.searcher.count())
	assert.Equal(t, "2025-07-01", h.searcher.last().CheckIn)
}

func TestIdenticalParamsInFlightFetchOnce(t *testing.T) {
	h := newHarness(t)
	gate := h.searcher.hold("Destin")

	h.store.UpdateLocation(destin())
	require.Eventually(t, func() bool { return h.searcher.count() == 2 }, waitFor, tick)

	h.store.UpdateLocation(destin())
	require.Eventually(t, func() bool { return h.ctrl.Stats().Skipped >= 1 }, waitFor, tick)

	close(gate)
	require.Eventually(t, func() bool { return h.view.lastCity() == "Destin" }, waitFor, tick)
	h.settle(t)
	assert.Equal(t, 2, h.searcher.count())
}

func TestStaleResultIsDiscarded(t *testing.T) {
	h := newHarness(t)
	gate := h.searcher.hold("Destin")

	h.store.UpdateLocation(destin())
	require.Eventually(t, func() bool { return h.searcher.count() == 2 }, waitFor, tick)

	h.store.UpdateLocation(searchstate.LocationFromText("Miramar Beach, FL"))
	require.Eventually(t, func() bool { return h.view.lastCity() == "Miramar Beach" }, waitFor, tick)

	close(gate)
	require.Eventually(t, func() bool { return h.ctrl.Stats().Stale == 1 }, waitFor, tick)
	assert.Equal(t, "Miramar Beach", h.view.lastCity())
	assert.Equal(t, 2, h.view.shown())
}

func TestFailureClearsResultsAndAllowsRetry(t *testing.T) {
	h := newHarness(t)
	h.searcher.failNext(1)

	h.store.UpdateLocation(destin())
	require.Eventually(t, func() bool { return h.ctrl.Stats().Failures == 1 }, waitFor, tick)

	h.view.mu.Lock()
	assert.Equal(t, 1, h.view.cleared)
	assert.Len(t, h.view.notified, 1)
	h.view.mu.Unlock()

	// the same search again is not deduplicated away
	h.store.UpdateLocation(destin())
	require.Eventually(t, func() bool { return h.view.lastCity() == "Destin" }, waitFor, tick)
	h.settle(t)
	assert.Equal(t, 3, h.searcher.count())
	assert.Equal(t, 1, h.ctrl.Stats().Navigations)
}

func TestSharedFailureNotifiesOnce(t *testing.T) {
	h := newHarness(t)
	gate := h.searcher.hold("Destin")
	h.searcher.failNext(1)

	h.store.UpdateLocation(destin())
	require.Eventually(t, func() bool { return h.searcher.count() == 2 }, waitFor, tick)

	h.store.UpdateLocation(searchstate.LocationFromText("Miramar Beach, FL"))
	require.Eventually(t, func() bool { return h.view.lastCity() == "Miramar Beach" }, waitFor, tick)

	// back to Destin while its failing call is still held: the second fetch
	// joins the same flight and both deliveries carry the error
	h.store.UpdateLocation(destin())
	require.Eventually(t, func() bool { return h.ctrl.Stats().Fetches == 4 }, waitFor, tick)
	assert.Equal(t, 3, h.searcher.count())

	close(gate)
	require.Eventually(t, func() bool { return h.ctrl.Stats().Failures == 1 }, waitFor, tick)
	h.settle(t)

	assert.Equal(t, 1, h.ctrl.Stats().Failures)
	h.view.mu.Lock()
	defer h.view.mu.Unlock()
	assert.Equal(t, 1, h.view.cleared)
	assert.Equal(t, []string{"Search failed, please try again"}, h.view.notified)
}

// interleavingNavigator runs intervene just before the first replace
// navigation, as if the user acted while the controller was syncing
type interleavingNavigator struct {
	*router.Router
	once      sync.Once
	intervene func()
}

func (n *interleavingNavigator) Navigate(ctx context.Context, href string, opts router.NavigateOptions) (router.Navigation, error) {
	if opts.Replace {
		n.once.Do(n.intervene)
	}
	return n.Router.Navigate(ctx, href, opts)
}

func TestIntentDuringSyncIsNotOverwritten(t *testing.T) {
	paris := searchstate.LocationFromText("Paris, TX")
	h := newWrappedHarness(t, func(store *searchstate.Store, r *router.Router) Navigator {
		return &interleavingNavigator{Router: r, intervene: func() { store.UpdateLocation(paris) }}
	})
	h.settle(t)

	h.store.UpdateLocation(destin())

	require.Eventually(t, func() bool { return h.view.lastCity() == "Paris" }, waitFor, tick)
	h.settle(t)

	assert.Equal(t, "Paris", h.store.Current().Location.City)
	assert.Equal(t, "/properties/Paris%2C%20TX", h.router.CurrentURL())
	assert.Equal(t, "Paris", h.searcher.last().City)
	assert.Equal(t, 2, h.searcher.count(), "the overtaken location is never searched")
	assert.Equal(t, "Paris", h.view.lastCity())
}

func TestLoadingKinds(t *testing.T) {
	h := newHarness(t)
	h.store.UpdateNumericFilter(searchstate.MinBedrooms, ptr(3))
	require.Eventually(t, func() bool { return h.view.shown() == 2 }, waitFor, tick)

	h.view.mu.Lock()
	defer h.view.mu.Unlock()
	assert.Equal(t, []domain.LoadingKind{domain.LoadingBlocking, domain.LoadingPlaceholder}, h.view.loading)
}

func TestResetAllReturnsToBarePath(t *testing.T) {
	h := newHarness(t)
	h.store.UpdateLocation(destin())
	h.store.UpdateNumericFilter(searchstate.MinBedrooms, ptr(3))
	h.store.UpdateArrayFilter(searchstate.Amenities, []string{"pool"})
	require.Eventually(t, func() bool {
		return h.router.CurrentURL() == "/properties/Destin%2C%20FL?amenities=pool&minBedrooms=3"
	}, waitFor, tick)
	h.settle(t)

	h.store.ResetAll()
	require.Eventually(t, func() bool { return h.router.CurrentURL() == "/properties" }, waitFor, tick)
	h.settle(t)

	assert.False(t, h.store.HasActiveFilters())
	last := h.searcher.last()
	assert.Empty(t, last.City)
	assert.Nil(t, last.MinBedrooms)
	assert.Empty(t, last.Amenities)
}

func TestHistoryNavigationRestoresSearch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.router.Navigate(ctx, "/properties/Destin, FL?minBedrooms=2", router.NavigateOptions{})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.view.lastCity() == "Destin" }, waitFor, tick)

	_, err = h.router.Navigate(ctx, "/properties/Miramar Beach", router.NavigateOptions{})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.view.lastCity() == "Miramar Beach" }, waitFor, tick)

	_, err = h.router.Back(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.view.lastCity() == "Destin" }, waitFor, tick)
	h.settle(t)

	st := h.store.Current()
	require.NotNil(t, st.MinBedrooms)
	assert.Equal(t, 2, *st.MinBedrooms)
	assert.Equal(t, "/properties/Destin%2C%20FL?minBedrooms=2", h.router.CurrentURL())
	assert.Equal(t, 0, h.ctrl.Stats().Navigations, "history entries are not rewritten")
	assert.True(t, h.router.CanGoForward())
}

type fakeLookup struct {
	props map[int]domain.Property
}

func (f fakeLookup) GetByListID(ctx context.Context, listID int) (domain.Property, error) {
	p, ok := f.props[listID]
	if !ok {
		return domain.Property{}, gateway.ErrNotFound
	}
	return p, nil
}

func TestLookupListID(t *testing.T) {
	lookup := fakeLookup{props: map[int]domain.Property{42: {ListID: 42, City: "Gulf Shores"}}}
	h := newHarness(t, WithLookup(lookup))

	h.ctrl.LookupListID(context.Background(), 42)
	require.Eventually(t, func() bool { return h.view.lastCity() == "Gulf Shores" }, waitFor, tick)

	h.view.mu.Lock()
	page := h.view.pages[len(h.view.pages)-1]
	h.view.mu.Unlock()
	assert.Equal(t, domain.PageInfo{Page: 1, PageSize: 1, Total: 1, TotalPages: 1}, page.Pagination)

	h.ctrl.LookupListID(context.Background(), 7)
	require.Eventually(t, func() bool {
		h.view.mu.Lock()
		defer h.view.mu.Unlock()
		return len(h.view.notified) == 1
	}, waitFor, tick)
	assert.Equal(t, "Listing 7 was not found", h.view.notified[0])

	// searching again after a lookup fetches even if the state is unchanged
	calls := h.searcher.count()
	h.store.UpdatePagination(1, nil)
	require.Eventually(t, func() bool { return h.searcher.count() == calls+1 }, waitFor, tick)
}

func TestSyncLoopGuard(t *testing.T) {
	store := searchstate.NewStore(searchstate.DefaultOptions(), nil)
	nav := &stuckNavigator{}
	searcher := newFakeSearcher()
	ctrl := New(Config{MaxConsecutiveSyncs: 2}, store, nav, searcher, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctrl.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	// the navigator claims success but never moves and never echoes
	require.Eventually(t, func() bool { return ctrl.Stats().Navigations == 1 }, waitFor, tick)
	store.UpdateLocation(destin())
	require.Eventually(t, func() bool { return ctrl.Stats().Navigations == 2 }, waitFor, tick)
	store.UpdateNumericFilter(searchstate.MinGuests, ptr(4))
	require.Eventually(t, func() bool { return searcher.count() == 1 }, waitFor, tick)

	assert.Equal(t, 2, ctrl.Stats().Navigations)
	assert.Equal(t, 2, nav.calls())
	assert.Equal(t, "Destin", searcher.last().City)
}

type stuckNavigator struct {
	mu    sync.Mutex
	count int
}

func (n *stuckNavigator) CurrentURL() string { return "/elsewhere" }

func (n *stuckNavigator) Navigate(ctx context.Context, href string, opts router.NavigateOptions) (router.Navigation, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
	return router.Navigation{ID: opts.ID, Href: href, Primed: true}, nil
}

func (n *stuckNavigator) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

func TestNavigationErrorFallsBackToFetch(t *testing.T) {
	store := searchstate.NewStore(searchstate.DefaultOptions(), nil)
	searcher := newFakeSearcher()
	view := &fakeView{}
	ctrl := New(DefaultConfig(), store, failingNavigator{}, searcher, nil, WithView(view))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctrl.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool { return view.shown() == 1 }, waitFor, tick)
	assert.Equal(t, 1, searcher.count())
}

type failingNavigator struct{}

func (failingNavigator) CurrentURL() string { return "" }

func (failingNavigator) Navigate(context.Context, string, router.NavigateOptions) (router.Navigation, error) {
	return router.Navigation{}, errors.New("navigation rejected")
}
