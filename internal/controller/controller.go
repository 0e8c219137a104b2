// Package controller keeps the address, the search state and the gateway
// calls consistent. It is the only caller of the search gateway.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"staygrip/internal/domain"
	"staygrip/internal/eventbus"
	"staygrip/internal/gateway"
	"staygrip/internal/logging"
	"staygrip/internal/router"
	"staygrip/internal/searchstate"
	"staygrip/internal/urlcodec"
)

// StateSource is the read side of the search state store
type StateSource interface {
	Subscribe() *searchstate.Subscription
}

// Navigator is the address bar the controller keeps in sync
type Navigator interface {
	CurrentURL() string
	Navigate(ctx context.Context, href string, opts router.NavigateOptions) (router.Navigation, error)
}

// View renders results
type View interface {
	ShowLoading(kind domain.LoadingKind)
	ShowResults(page domain.ResultPage)
	ClearResults()
}

// Notifier shows non-blocking messages to the user
type Notifier interface {
	Notify(message string, err error)
}

// Config tunes the controller
type Config struct {
	URL urlcodec.Config
	// FetchTimeout bounds a single gateway call
	FetchTimeout time.Duration
	// MaxConsecutiveSyncs is how many URL syncs may happen without a fetch
	// before the controller stops syncing and fetches directly
	MaxConsecutiveSyncs int
}

// DefaultConfig returns the defaults used by the TUI
func DefaultConfig() Config {
	return Config{
		URL:                 urlcodec.DefaultConfig(),
		FetchTimeout:        15 * time.Second,
		MaxConsecutiveSyncs: 3,
	}
}

// Stats counts what the controller has done since it started
type Stats struct {
	Snapshots   int
	Navigations int
	Fetches     int
	Skipped     int
	Stale       int
	Failures    int
	Lookups     int
}

type fetchResult struct {
	key  string
	page domain.ResultPage
	err  error
}

type lookupResult struct {
	listID int
	page   domain.ResultPage
	err    error
}

// Controller arbitrates between syncing the URL and fetching results
type Controller struct {
	cfg      Config
	state    StateSource
	nav      Navigator
	searcher gateway.Searcher
	lookup   gateway.PropertyLookup
	view     View
	notifier Notifier
	bus      eventbus.EventBus
	logger   logging.Logger

	group   singleflight.Group
	results chan fetchResult
	lookups chan int
	found   chan lookupResult

	// loop-owned
	pendingSync      string
	consecutiveSyncs int
	lastVersion      uint64
	seen             bool
	currentKey       string
	lastKey          string
	inFlightKey      string
	failedKey        string
	mounted          bool

	statsMu sync.Mutex
	stats   Stats
}

// Option configures a Controller
type Option func(*Controller)

// WithView sets the result view
func WithView(v View) Option {
	return func(c *Controller) { c.view = v }
}

// WithNotifier sets the notifier
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithEventBus publishes search events on bus
func WithEventBus(bus eventbus.EventBus) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithLookup enables LookupListID
func WithLookup(l gateway.PropertyLookup) Option {
	return func(c *Controller) { c.lookup = l }
}

// New creates a controller. Run must be called to start it.
func New(cfg Config, state StateSource, nav Navigator, searcher gateway.Searcher, logger logging.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = logging.Nop()
	}
	def := DefaultConfig()
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}
	if cfg.MaxConsecutiveSyncs <= 0 {
		cfg.MaxConsecutiveSyncs = def.MaxConsecutiveSyncs
	}
	c := &Controller{
		cfg:      cfg,
		state:    state,
		nav:      nav,
		searcher: searcher,
		logger:   logger.WithFields(logging.Fields{"component": "controller"}),
		results:  make(chan fetchResult, 16),
		lookups:  make(chan int, 4),
		found:    make(chan lookupResult, 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats returns a copy of the counters
func (c *Controller) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

func (c *Controller) count(f func(*Stats)) {
	c.statsMu.Lock()
	f(&c.stats)
	c.statsMu.Unlock()
}

// LookupListID shows a single listing by id instead of the current search.
// It is safe to call from any goroutine.
func (c *Controller) LookupListID(ctx context.Context, listID int) {
	select {
	case c.lookups <- listID:
	case <-ctx.Done():
	}
}

// Run processes snapshots and fetch results until ctx is done
func (c *Controller) Run(ctx context.Context) error {
	sub := c.state.Subscribe()
	defer sub.Close()

	c.logger.Info("controller started", nil)
	defer c.logger.Info("controller stopped", nil)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := c.handleSnapshot(ctx, snap); err != nil {
				return err
			}
		case res := <-c.results:
			c.handleResult(res)
		case id := <-c.lookups:
			c.startLookup(ctx, id)
		case res := <-c.found:
			c.handleLookup(res)
		}
	}
}

func (c *Controller) handleSnapshot(ctx context.Context, snap searchstate.Snapshot) error {
	if c.seen && snap.Version <= c.lastVersion {
		return nil
	}
	c.seen = true
	c.lastVersion = snap.Version
	c.count(func(s *Stats) { s.Snapshots++ })

	st := snap.State
	c.currentKey = st.SearchParams().Key()

	// Emissions tagged with a navigation came from the URL being entered, so
	// the address already matches. Either it is the echo of our own sync or
	// the user navigated; both only need a fetch.
	if id := snap.Origin.NavigationID; id != "" {
		if id == c.pendingSync {
			c.logger.Debug("url sync settled", logging.Fields{"navigation": id, "version": snap.Version})
		}
		c.pendingSync = ""
		c.fetch(ctx, st)
		return nil
	}
	c.pendingSync = ""

	href := urlcodec.Encode(st, c.cfg.URL).Href()
	if urlcodec.Equivalent(c.nav.CurrentURL(), href) {
		c.fetch(ctx, st)
		return nil
	}

	if c.consecutiveSyncs >= c.cfg.MaxConsecutiveSyncs {
		c.logger.Error("url sync is not settling, fetching directly", nil, logging.Fields{
			"syncs": c.consecutiveSyncs,
			"href":  href,
			"url":   c.nav.CurrentURL(),
		})
		c.fetch(ctx, st)
		return nil
	}

	return c.syncURL(ctx, snap, href)
}

// syncURL replaces the address with href. The resolver's emission for this
// navigation comes back tagged with its id and triggers the fetch. The
// navigation carries the version href was encoded from so a newer intent
// that lands meanwhile is never overwritten by it.
func (c *Controller) syncURL(ctx context.Context, snap searchstate.Snapshot, href string) error {
	st := snap.State
	id := uuid.NewString()
	c.pendingSync = id
	c.consecutiveSyncs++
	c.count(func(s *Stats) { s.Navigations++ })

	nav, err := c.nav.Navigate(ctx, href, router.NavigateOptions{
		Replace:      true,
		ID:           id,
		StateVersion: snap.Version,
	})
	if err != nil {
		c.pendingSync = ""
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("url sync failed", logging.Fields{"href": href, "error": err.Error()})
		c.fetch(ctx, st)
		return nil
	}

	c.publish(domain.URLSyncedEvent{NavigationID: id, Href: nav.Href})
	if nav.Stale {
		// the newer snapshot is already queued and will sync itself
		c.pendingSync = ""
		c.consecutiveSyncs--
		c.logger.Debug("url sync overtaken", logging.Fields{"navigation": id, "version": snap.Version})
		return nil
	}
	if !nav.Primed {
		// nothing was merged, so no tagged emission will follow
		c.pendingSync = ""
		c.fetch(ctx, st)
	}
	return nil
}

// fetch starts a gateway call for st unless the same search is already
// shown or in flight
func (c *Controller) fetch(ctx context.Context, st searchstate.State) {
	c.consecutiveSyncs = 0

	params := st.SearchParams()
	key := params.Key()
	if key == c.lastKey || key == c.inFlightKey {
		c.count(func(s *Stats) { s.Skipped++ })
		c.logger.Debug("fetch skipped", logging.Fields{"key": key})
		return
	}
	c.inFlightKey = key
	c.failedKey = ""

	kind := domain.LoadingPlaceholder
	if !c.mounted {
		kind = domain.LoadingBlocking
		c.mounted = true
	}
	if c.view != nil {
		c.view.ShowLoading(kind)
	}
	c.publish(domain.SearchStartedEvent{Key: key, Loading: kind})
	c.count(func(s *Stats) { s.Fetches++ })

	go func() {
		fctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()

		v, err, shared := c.group.Do(key, func() (interface{}, error) {
			return c.searcher.Search(fctx, params)
		})
		if shared {
			c.logger.Debug("fetch shared with call in flight", logging.Fields{"key": key})
		}
		res := fetchResult{key: key, err: err}
		if page, ok := v.(domain.ResultPage); ok {
			res.page = page
		}

		select {
		case c.results <- res:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) handleResult(res fetchResult) {
	if res.key == c.inFlightKey {
		c.inFlightKey = ""
	}
	if res.key != c.currentKey {
		c.count(func(s *Stats) { s.Stale++ })
		c.logger.Debug("stale result discarded", logging.Fields{"key": res.key})
		return
	}

	if res.err == nil && res.key == c.lastKey {
		// a second caller of a shared flight
		return
	}

	if res.err != nil && res.key == c.failedKey {
		// already reported for this search
		return
	}

	if res.err != nil {
		c.lastKey = ""
		c.failedKey = res.key
		c.count(func(s *Stats) { s.Failures++ })
		c.logger.Error("search failed", res.err, logging.Fields{"key": res.key})
		if c.view != nil {
			c.view.ClearResults()
		}
		c.notify("Search failed, please try again", res.err)
		c.publish(domain.SearchFailedEvent{Key: res.key, Err: res.err})
		return
	}

	c.lastKey = res.key
	c.logger.Debug("results committed", logging.Fields{
		"key":   res.key,
		"count": len(res.page.Properties),
		"total": res.page.Pagination.Total,
	})
	if c.view != nil {
		c.view.ShowResults(res.page)
	}
	c.publish(domain.SearchCompletedEvent{Key: res.key, Page: res.page})
}

func (c *Controller) startLookup(ctx context.Context, listID int) {
	if c.lookup == nil {
		c.notify(fmt.Sprintf("Listing %d cannot be looked up", listID), errors.New("no lookup configured"))
		return
	}

	// whatever is in flight no longer belongs on screen
	c.currentKey = ""
	c.lastKey = ""
	c.count(func(s *Stats) { s.Lookups++ })
	if c.view != nil {
		c.view.ShowLoading(domain.LoadingPlaceholder)
	}

	go func() {
		fctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()

		res := lookupResult{listID: listID}
		p, err := c.lookup.GetByListID(fctx, listID)
		if err != nil {
			res.err = err
		} else {
			res.page = domain.SinglePropertyPage(p, 1)
		}
		select {
		case c.found <- res:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) handleLookup(res lookupResult) {
	if c.currentKey != "" {
		// the user searched again before the lookup came back
		c.count(func(s *Stats) { s.Stale++ })
		return
	}
	c.publish(domain.LookupCompletedEvent{ListID: res.listID, Page: res.page, Err: res.err})
	if res.err != nil {
		if c.view != nil {
			c.view.ClearResults()
		}
		msg := "Listing lookup failed"
		if errors.Is(res.err, gateway.ErrNotFound) {
			msg = fmt.Sprintf("Listing %d was not found", res.listID)
		}
		c.notify(msg, res.err)
		return
	}
	if c.view != nil {
		c.view.ShowResults(res.page)
	}
}

func (c *Controller) notify(msg string, err error) {
	if c.notifier != nil {
		c.notifier.Notify(msg, err)
	}
	c.publish(domain.NotificationEvent{Message: msg, Err: err})
}

func (c *Controller) publish(e domain.DomainEvent) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}
