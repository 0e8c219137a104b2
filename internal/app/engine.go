// Package app wires the search engine together for the TUI and the CLI
package app

import (
	"context"

	"github.com/spf13/cast"

	"staygrip/internal/config"
	"staygrip/internal/controller"
	"staygrip/internal/eventbus"
	"staygrip/internal/gateway"
	"staygrip/internal/logging"
	"staygrip/internal/resolver"
	"staygrip/internal/router"
	"staygrip/internal/searchstate"
	"staygrip/internal/urlcodec"
)

// Route patterns served by the router
const (
	SearchRoute   = "/properties"
	LocationRoute = "/properties/{" + searchstate.CityParam + "}"
)

// Engine holds the long-lived pieces of one search session
type Engine struct {
	Bus        eventbus.EventBus
	Store      *searchstate.Store
	Router     *router.Router
	Client     *gateway.HTTPClient
	Searcher   *gateway.CachedGateway
	Controller *controller.Controller
}

// NewEngine builds the store, router, gateway and controller described by
// cfg. opts are passed to the controller, usually its view and notifier.
func NewEngine(cfg *config.Config, bus eventbus.EventBus, logger logging.Logger, opts ...controller.Option) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}

	store := searchstate.NewStore(cfg.SearchOptions(), logger)
	rt := router.New(bus, logger)

	client := gateway.NewHTTPClient(GatewayConfig(cfg), nil, logger)
	cached := gateway.NewCachedGateway(client, cfg.Search.CacheTTL.Duration, cfg.Search.CacheSize, logger)

	opts = append([]controller.Option{controller.WithLookup(client)}, opts...)
	if bus != nil {
		opts = append(opts, controller.WithEventBus(bus))
	}
	ctrl := controller.New(ControllerConfig(cfg), store, rt, cached, logger, opts...)

	// the controller loop may not be running yet when the first URL resolves
	lookup := func(ctx context.Context, listID int) {
		go ctrl.LookupListID(ctx, listID)
	}
	entry := resolver.New(store, logger, resolver.WithListIDHandler(lookup))
	rt.Handle(SearchRoute, entry)
	rt.Handle(LocationRoute, entry)

	return &Engine{
		Bus:        bus,
		Store:      store,
		Router:     rt,
		Client:     client,
		Searcher:   cached,
		Controller: ctrl,
	}
}

// Start runs the controller in the background. Open the first URL before
// Start so the controller begins from the resolved state.
func (e *Engine) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- e.Controller.Run(ctx)
	}()
	return done
}

// Open navigates to href, pushing a history entry
func (e *Engine) Open(ctx context.Context, href string) (router.Navigation, error) {
	return e.Router.Navigate(ctx, href, router.NavigateOptions{})
}

// Launch opens href and starts the controller. A listing URL is opened
// after the controller runs, on top of the default search, so the first
// URL sync does not overwrite it.
func (e *Engine) Launch(ctx context.Context, href string) (<-chan error, error) {
	if ListIDFromHref(href) == 0 {
		if _, err := e.Open(ctx, href); err != nil {
			return nil, err
		}
		return e.Start(ctx), nil
	}

	if _, err := e.Open(ctx, SearchRoute); err != nil {
		return nil, err
	}
	done := e.Start(ctx)
	if _, err := e.Open(ctx, href); err != nil {
		return done, err
	}
	return done, nil
}

// ListIDFromHref returns the listId query value of href, or 0
func ListIDFromHref(href string) int {
	parsed, err := urlcodec.Parse(href)
	if err != nil {
		return 0
	}
	id, err := cast.ToIntE(parsed.Query[searchstate.ListIDParam])
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// Close releases the result cache
func (e *Engine) Close() {
	e.Searcher.Stop()
}

// GatewayConfig maps the API settings onto the HTTP client config
func GatewayConfig(cfg *config.Config) gateway.Config {
	return gateway.Config{
		BaseURL:            cfg.API.BaseURL,
		Timeout:            cfg.API.Timeout.Duration,
		RateLimit:          cfg.API.RateLimit,
		Burst:              cfg.API.Burst,
		MaxRetries:         cfg.API.MaxRetries,
		ViewTypeRemoveList: cfg.API.ViewTypeRemoveList,
	}
}

// ControllerConfig maps the search settings onto the controller config
func ControllerConfig(cfg *config.Config) controller.Config {
	return controller.Config{
		URL: urlcodec.Config{
			DefaultPage:         cfg.Search.DefaultPage,
			DefaultPageSize:     cfg.Search.DefaultPageSize,
			DefaultSortBy:       searchstate.SortKey(cfg.Search.DefaultSortBy),
			IncludePlaceDetails: cfg.Search.IncludePlaceDetails,
			IncludeListIDInURL:  cfg.Search.IncludeListIDInURL,
		},
		FetchTimeout:        cfg.Search.FetchTimeout.Duration,
		MaxConsecutiveSyncs: cfg.Search.MaxConsecutiveSyncs,
	}
}
