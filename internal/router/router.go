// Package router stands in for the address bar: it matches hrefs against the
// registered routes, runs their resolvers, and keeps a navigation history.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"staygrip/internal/domain"
	"staygrip/internal/eventbus"
	"staygrip/internal/logging"
	"staygrip/internal/urlcodec"
)

var (
	// ErrNoRoute is returned when no route matches an href
	ErrNoRoute = errors.New("no route matches")
	// ErrNoHistory is returned by Back and Forward at either end of the history
	ErrNoHistory = errors.New("no history entry")
)

// EntryKind says how a navigation reached its history entry
type EntryKind string

const (
	EntryInitial EntryKind = "initial"
	EntryPush    EntryKind = "push"
	EntryReplace EntryKind = "replace"
	EntryBack    EntryKind = "back"
	EntryForward EntryKind = "forward"
)

// Match is what a resolver sees for a navigation
type Match struct {
	NavigationID string
	Href         string
	Pattern      string
	Kind         EntryKind
	// StateVersion is the state version the href was encoded from, or 0
	StateVersion uint64
	// PathParams and Query are percent-decoded
	PathParams map[string]string
	Query      map[string]string
}

// Params merges query and path parameters into one flat map. Path
// parameters win over query keys of the same name.
func (m Match) Params() map[string]string {
	merged := make(map[string]string, len(m.Query)+len(m.PathParams))
	for k, v := range m.Query {
		merged[k] = v
	}
	for k, v := range m.PathParams {
		merged[k] = v
	}
	return merged
}

// Resolution reports what a resolver did
type Resolution struct {
	// Primed is true when the resolver produced a state emission
	Primed  bool
	Version uint64
	// Stale is true when the state moved past Match.StateVersion and the
	// href was not applied
	Stale bool
}

// Resolver runs before a navigation is committed
type Resolver interface {
	Resolve(ctx context.Context, m Match) (Resolution, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(ctx context.Context, m Match) (Resolution, error)

func (f ResolverFunc) Resolve(ctx context.Context, m Match) (Resolution, error) {
	return f(ctx, m)
}

// NavigateOptions controls a single navigation
type NavigateOptions struct {
	// Replace overwrites the current history entry instead of pushing one
	Replace bool
	// ID identifies the navigation; a uuid is generated when empty
	ID string
	// StateVersion is the state version the href was encoded from
	StateVersion uint64
}

// Navigation is the settled result of a navigation
type Navigation struct {
	ID      string
	Href    string
	Kind    EntryKind
	Replace bool
	Primed  bool
	Version uint64
	Stale   bool
}

// Router matches hrefs with chi and keeps an in-memory history
type Router struct {
	mux       *chi.Mux
	resolvers map[string][]Resolver

	// navMu serializes navigations; mu guards the history
	navMu   sync.Mutex
	mu      sync.RWMutex
	history []string
	index   int
	count   int

	bus    eventbus.EventBus
	logger logging.Logger
}

// New creates an empty router. bus may be nil.
func New(bus eventbus.EventBus, logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Router{
		mux:       chi.NewRouter(),
		resolvers: make(map[string][]Resolver),
		index:     -1,
		bus:       bus,
		logger:    logger.WithFields(logging.Fields{"component": "router"}),
	}
}

// Handle registers a route pattern such as "/properties/{city}" with the
// resolvers that must run before a navigation to it settles
func (r *Router) Handle(pattern string, resolvers ...Resolver) {
	r.mux.Get(pattern, http.NotFound)
	r.resolvers[pattern] = append(r.resolvers[pattern], resolvers...)
}

// CurrentURL returns the committed href, or "" before the first navigation
func (r *Router) CurrentURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.index < 0 {
		return ""
	}
	return r.history[r.index]
}

// History returns a copy of the history entries and the current index
func (r *Router) History() ([]string, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.history...), r.index
}

// CanGoBack reports whether Back has an entry to go to
func (r *Router) CanGoBack() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index > 0
}

// CanGoForward reports whether Forward has an entry to go to
func (r *Router) CanGoForward() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index >= 0 && r.index < len(r.history)-1
}

// Count returns the number of committed navigations
func (r *Router) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Navigate matches href, awaits the route's resolvers and commits the entry.
// It returns once the navigation has fully settled.
func (r *Router) Navigate(ctx context.Context, href string, opts NavigateOptions) (Navigation, error) {
	r.navMu.Lock()
	defer r.navMu.Unlock()

	kind := EntryPush
	if r.CurrentURL() == "" {
		kind = EntryInitial
	} else if opts.Replace {
		kind = EntryReplace
	}

	return r.navigate(ctx, href, opts.ID, opts.StateVersion, kind, func(canonical string) {
		switch {
		case r.index < 0:
			r.history = []string{canonical}
			r.index = 0
		case opts.Replace:
			r.history[r.index] = canonical
		default:
			r.history = append(r.history[:r.index+1], canonical)
			r.index++
		}
	})
}

// Back re-enters the previous history entry
func (r *Router) Back(ctx context.Context) (Navigation, error) {
	return r.traverse(ctx, -1, EntryBack)
}

// Forward re-enters the next history entry
func (r *Router) Forward(ctx context.Context) (Navigation, error) {
	return r.traverse(ctx, 1, EntryForward)
}

func (r *Router) traverse(ctx context.Context, delta int, kind EntryKind) (Navigation, error) {
	r.navMu.Lock()
	defer r.navMu.Unlock()

	r.mu.RLock()
	target := r.index + delta
	if r.index < 0 || target < 0 || target >= len(r.history) {
		r.mu.RUnlock()
		return Navigation{}, ErrNoHistory
	}
	href := r.history[target]
	r.mu.RUnlock()

	return r.navigate(ctx, href, "", 0, kind, func(string) {
		r.index = target
	})
}

func (r *Router) navigate(ctx context.Context, href, id string, stateVersion uint64, kind EntryKind, commit func(canonical string)) (Navigation, error) {
	if id == "" {
		id = uuid.NewString()
	}

	m, err := r.match(href)
	if err != nil {
		return Navigation{}, err
	}
	m.NavigationID = id
	m.Kind = kind
	m.StateVersion = stateVersion

	nav := Navigation{
		ID:      id,
		Href:    m.Href,
		Kind:    kind,
		Replace: kind == EntryReplace,
	}

	for _, res := range r.resolvers[m.Pattern] {
		if err := ctx.Err(); err != nil {
			return Navigation{}, err
		}
		out, err := res.Resolve(ctx, m)
		if err != nil {
			r.logger.Warn("navigation cancelled by resolver", logging.Fields{"href": m.Href, "error": err.Error()})
			return Navigation{}, fmt.Errorf("resolve %s: %w", m.Href, err)
		}
		if out.Stale {
			nav.Stale = true
		}
		if out.Primed {
			nav.Primed = true
			if out.Version > nav.Version {
				nav.Version = out.Version
			}
		}
	}

	r.mu.Lock()
	commit(m.Href)
	r.count++
	r.mu.Unlock()

	r.logger.Debug("navigation settled", logging.Fields{
		"id":     id,
		"href":   m.Href,
		"kind":   string(kind),
		"primed": nav.Primed,
		"stale":  nav.Stale,
	})
	if r.bus != nil {
		r.bus.Publish(domain.NavigatedEvent{NavigationID: id, Href: m.Href, Replace: nav.Replace})
	}
	return nav, nil
}

// match canonicalizes href and resolves it against the chi routes
func (r *Router) match(href string) (Match, error) {
	parsed, err := urlcodec.Parse(href)
	if err != nil {
		return Match{}, fmt.Errorf("invalid href %q: %w", href, err)
	}
	canonical := urlcodec.Representation{PathSegments: parsed.PathSegments, Query: parsed.Query}.Href()

	escaped := make([]string, len(parsed.PathSegments))
	for i, seg := range parsed.PathSegments {
		escaped[i] = url.PathEscape(seg)
	}
	path := "/" + strings.Join(escaped, "/")

	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, path) {
		return Match{}, fmt.Errorf("%w: %s", ErrNoRoute, path)
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		value := rctx.URLParams.Values[i]
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		params[key] = value
	}

	return Match{
		Href:       canonical,
		Pattern:    rctx.RoutePattern(),
		PathParams: params,
		Query:      parsed.Query,
	}, nil
}
