package app

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staygrip/internal/config"
	"staygrip/internal/controller"
	"staygrip/internal/domain"
	"staygrip/internal/eventbus"
	"staygrip/internal/gateway"
	"staygrip/internal/logic"
	"staygrip/internal/mockapi"
	"staygrip/internal/searchstate"
)

type recordingView struct {
	mu      sync.Mutex
	pages   []domain.ResultPage
	notices []string
}

func (v *recordingView) ShowLoading(domain.LoadingKind) {}

func (v *recordingView) ShowResults(page domain.ResultPage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pages = append(v.pages, page)
}

func (v *recordingView) ClearResults() {}

func (v *recordingView) Notify(message string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, message)
}

func (v *recordingView) last() (domain.ResultPage, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.pages) == 0 {
		return domain.ResultPage{}, 0
	}
	return v.pages[len(v.pages)-1], len(v.pages)
}

func newTestEngine(t *testing.T) (*Engine, *recordingView, *mockapi.Server) {
	t.Helper()
	api := mockapi.New(logic.NewMemoryPropertyStore(mockapi.DefaultFixtures()...), nil)
	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = ts.URL
	cfg.API.RateLimit = 0

	bus := eventbus.New(nil)
	t.Cleanup(bus.Close)

	view := &recordingView{}
	e := NewEngine(cfg, bus, nil, controller.WithView(view), controller.WithNotifier(view))
	t.Cleanup(e.Close)
	return e, view, api
}

func TestLaunchSearchesTheStartURL(t *testing.T) {
	e, view, api := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	done, err := e.Launch(ctx, "/properties/Destin, FL")
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		_, n := view.last()
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)

	page, _ := view.last()
	require.NotEmpty(t, page.Properties)
	for _, p := range page.Properties {
		assert.Equal(t, "Destin", p.City)
	}
	assert.Equal(t, 1, api.Requests(gateway.SearchPath))
	assert.Equal(t, "/properties/Destin%2C%20FL", e.Router.CurrentURL())
}

func TestIntentRoundTripThroughTheAPI(t *testing.T) {
	e, view, api := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	done, err := e.Launch(ctx, SearchRoute)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		<-done
	})
	require.Eventually(t, func() bool {
		_, n := view.last()
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)

	three := 3
	e.Store.UpdateNumericFilter(searchstate.MinBedrooms, &three)

	require.Eventually(t, func() bool {
		_, n := view.last()
		return n == 2
	}, 2*time.Second, 10*time.Millisecond)

	page, _ := view.last()
	for _, p := range page.Properties {
		assert.GreaterOrEqual(t, p.Bedrooms, 3)
	}
	assert.Equal(t, "/properties?minBedrooms=3", e.Router.CurrentURL())
	assert.Equal(t, 2, api.Requests(gateway.SearchPath))
}

func TestLaunchListingURL(t *testing.T) {
	e, view, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	done, err := e.Launch(ctx, "/properties?listId=1005")
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		page, _ := view.last()
		return len(page.Properties) == 1 && page.Properties[0].ListID == 1005
	}, 2*time.Second, 10*time.Millisecond)
	assert.Nil(t, e.Store.Current().Location)
	assert.Equal(t, "/properties?listId=1005", e.Router.CurrentURL())
}

func TestListIDFromHref(t *testing.T) {
	assert.Equal(t, 42, ListIDFromHref("/properties?listId=42"))
	assert.Equal(t, 0, ListIDFromHref("/properties/Destin?minBedrooms=2"))
	assert.Equal(t, 0, ListIDFromHref("/properties?listId=abc"))
}

func TestConfigMapping(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Search.IncludePlaceDetails = true
	cfg.API.ViewTypeRemoveList = []string{"None"}

	gc := GatewayConfig(cfg)
	assert.Equal(t, cfg.API.BaseURL, gc.BaseURL)
	assert.Equal(t, 10*time.Second, gc.Timeout)
	assert.Equal(t, []string{"None"}, gc.ViewTypeRemoveList)

	cc := ControllerConfig(cfg)
	assert.True(t, cc.URL.IncludePlaceDetails)
	assert.Equal(t, searchstate.SortNewest, cc.URL.DefaultSortBy)
	assert.Equal(t, 15*time.Second, cc.FetchTimeout)
	assert.Equal(t, 3, cc.MaxConsecutiveSyncs)
}
