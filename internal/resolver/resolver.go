// Package resolver primes the search state from an entry URL before the
// results view uses it.
package resolver

import (
	"context"

	"github.com/spf13/cast"

	"staygrip/internal/logging"
	"staygrip/internal/router"
	"staygrip/internal/searchstate"
)

// StatePrimer is the part of the search state store the resolver writes to
type StatePrimer interface {
	InitializeFromURLParams(raw map[string]string, opts ...searchstate.EmitOption) (searchstate.Snapshot, bool)
	ResetFromURLParams(raw map[string]string, opts ...searchstate.EmitOption) searchstate.Snapshot
}

// ListIDHandler receives the list id of a direct lookup URL
type ListIDHandler func(ctx context.Context, listID int)

// EntryResolver forwards route parameters to the state store. It produces
// no output of its own.
type EntryResolver struct {
	store    StatePrimer
	onListID ListIDHandler
	logger   logging.Logger
}

// Option configures an EntryResolver
type Option func(*EntryResolver)

// WithListIDHandler routes listId URLs to a direct lookup instead of the
// store. Without a handler the parameter is dropped.
func WithListIDHandler(h ListIDHandler) Option {
	return func(r *EntryResolver) {
		r.onListID = h
	}
}

// New creates a resolver writing to store
func New(store StatePrimer, logger logging.Logger, opts ...Option) *EntryResolver {
	if logger == nil {
		logger = logging.Nop()
	}
	r := &EntryResolver{
		store:  store,
		logger: logger.WithFields(logging.Fields{"component": "resolver"}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve merges path and query into one map (the location segment under
// "city") and hands it to the store, tagged with the navigation id.
//
// Replace navigations and the first entry merge into the current state. A
// navigation that names the state version its URL came from is only merged
// while the store is still at that version.
// Pushed entries and history traversal reset to defaults first, since the
// URL of a history entry describes the whole search.
func (r *EntryResolver) Resolve(ctx context.Context, m router.Match) (router.Resolution, error) {
	params := m.Params()

	if raw, ok := params[searchstate.ListIDParam]; ok {
		delete(params, searchstate.ListIDParam)
		if id, err := cast.ToIntE(raw); err == nil && id > 0 && r.onListID != nil {
			// a listing URL is a direct lookup and leaves the search state alone
			r.onListID(ctx, id)
			r.logger.Debug("list id lookup", logging.Fields{"navigation": m.NavigationID, "list_id": id})
			return router.Resolution{}, nil
		}
	}

	tag := searchstate.WithNavigation(m.NavigationID)
	fields := logging.Fields{"navigation": m.NavigationID, "kind": string(m.Kind), "params": len(params)}

	switch m.Kind {
	case router.EntryPush, router.EntryBack, router.EntryForward:
		snap := r.store.ResetFromURLParams(params, tag)
		r.logger.Debug("state reset from url", fields)
		return router.Resolution{Primed: true, Version: snap.Version}, nil
	default:
		opts := []searchstate.EmitOption{tag}
		if m.StateVersion != 0 {
			// the URL was encoded from that version; newer intents win
			opts = append(opts, searchstate.AtVersion(m.StateVersion))
		}
		snap, emitted := r.store.InitializeFromURLParams(params, opts...)
		if !emitted {
			if m.StateVersion != 0 && snap.Version != m.StateVersion {
				r.logger.Debug("state moved on, url not merged", fields)
				return router.Resolution{Stale: true}, nil
			}
			r.logger.Debug("no url params to merge", fields)
			return router.Resolution{}, nil
		}
		r.logger.Debug("state primed from url", fields)
		return router.Resolution{Primed: true, Version: snap.Version}, nil
	}
}
