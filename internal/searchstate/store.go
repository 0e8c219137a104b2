package searchstate

import (
	"sync"

	"cloud.google.com/go/civil"

	"staygrip/internal/logging"
)

// Intent names recorded in Origin
const (
	IntentInit             = "init"
	IntentUpdateLocation   = "updateLocation"
	IntentUpdateDates      = "updateDates"
	IntentUpdateNumeric    = "updateNumericFilter"
	IntentUpdatePrice      = "updatePriceRange"
	IntentUpdateArray      = "updateArrayFilter"
	IntentUpdateAdvanced   = "updateAdvancedFilters"
	IntentToggleBoolean    = "toggleBooleanFilter"
	IntentUpdatePagination = "updatePagination"
	IntentUpdateSorting    = "updateSorting"
	IntentResetAll         = "resetAll"
	IntentResetFilters     = "resetFilters"
	IntentInitFromURL      = "initializeFromUrlParams"
	IntentResetFromURL     = "resetFromUrlParams"
)

// Origin describes what produced a snapshot
type Origin struct {
	Intent string
	// NavigationID is set when the snapshot was produced while resolving a navigation
	NavigationID string
}

// Snapshot is an immutable copy of the state at one version
type Snapshot struct {
	State   State
	Version uint64
	Origin  Origin
}

type emitOptions struct {
	origin    Origin
	atVersion uint64
	guarded   bool
}

// EmitOption adjusts the next emission
type EmitOption func(*emitOptions)

// WithNavigation tags the emission with the navigation that caused it
func WithNavigation(id string) EmitOption {
	return func(o *emitOptions) {
		o.origin.NavigationID = id
	}
}

// AtVersion abandons the emission unless the store is still at version v.
// A URL encoded from an older snapshot must not be merged over newer intents.
func AtVersion(v uint64) EmitOption {
	return func(o *emitOptions) {
		o.atVersion = v
		o.guarded = true
	}
}

// Store is the single writer of the search state. Every intent replaces only
// the fields it names and emits exactly one snapshot.
type Store struct {
	mu      sync.Mutex
	opts    Options
	current Snapshot
	subs    map[uint64]*Subscription
	nextSub uint64
	logger  logging.Logger
}

// NewStore creates a store holding the default state
func NewStore(opts Options, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	opts = opts.withDefaults()
	return &Store{
		opts: opts,
		current: Snapshot{
			State:  opts.Defaults(),
			Origin: Origin{Intent: IntentInit},
		},
		subs:   make(map[uint64]*Subscription),
		logger: logger.WithFields(logging.Fields{"component": "searchstate"}),
	}
}

// Options returns the options the store was built with
func (s *Store) Options() Options {
	return s.opts
}

// Current returns a copy of the current state
func (s *Store) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.State.Clone()
}

// Snapshot returns the latest snapshot
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.current
	snap.State = snap.State.Clone()
	return snap
}

// HasActiveFilters reports whether the current state has any filter set
func (s *Store) HasActiveFilters() bool {
	return s.Current().HasActiveFilters()
}

// ActiveFiltersCount returns the filter badge count for the current state
func (s *Store) ActiveFiltersCount() int {
	return s.Current().ActiveFiltersCount()
}

// SearchParams returns the gateway parameters for the current state
func (s *Store) SearchParams() SearchParams {
	return s.Current().SearchParams()
}

// UpdateLocation sets the location and returns to page one
func (s *Store) UpdateLocation(loc *Location) Snapshot {
	snap, _ := s.emit(IntentUpdateLocation, func(st *State) bool {
		st.Location = loc.Clone()
		st.Page = 1
		return true
	})
	return snap
}

// UpdateDates sets both dates, or clears both when either is nil. The pair is
// not reordered; callers validate with ValidateDateRange first.
func (s *Store) UpdateDates(checkIn, checkOut *civil.Date) Snapshot {
	snap, _ := s.emit(IntentUpdateDates, func(st *State) bool {
		if checkIn == nil || checkOut == nil {
			st.CheckIn, st.CheckOut = nil, nil
		} else {
			st.CheckIn, st.CheckOut = clonePtr(checkIn), clonePtr(checkOut)
		}
		st.Page = 1
		return true
	})
	return snap
}

// UpdateNumericFilter sets one integer filter. Nil or negative clears it.
func (s *Store) UpdateNumericFilter(field NumericField, value *int) Snapshot {
	snap, _ := s.emit(IntentUpdateNumeric, func(st *State) bool {
		st.setNumeric(field, value)
		st.Page = 1
		return true
	})
	return snap
}

// UpdatePriceRange applies a partial price update
func (s *Store) UpdatePriceRange(patch PricePatch) Snapshot {
	snap, _ := s.emit(IntentUpdatePrice, func(st *State) bool {
		st.MinPrice = patch.Min.apply(st.MinPrice)
		st.MaxPrice = patch.Max.apply(st.MaxPrice)
		s.opts.normalizePrice(st)
		st.Page = 1
		return true
	})
	return snap
}

// UpdateArrayFilter replaces one multi-select set
func (s *Store) UpdateArrayFilter(field ArrayField, items []string) Snapshot {
	snap, _ := s.emit(IntentUpdateArray, func(st *State) bool {
		st.setArray(field, items)
		st.Page = 1
		return true
	})
	return snap
}

// UpdateAdvancedFilters applies a batch of filter changes as one emission
func (s *Store) UpdateAdvancedFilters(patch AdvancedFilters) Snapshot {
	snap, _ := s.emit(IntentUpdateAdvanced, func(st *State) bool {
		if !patch.MinBedrooms.IsKeep() {
			st.setNumeric(MinBedrooms, patch.MinBedrooms.apply(st.MinBedrooms))
		}
		if !patch.MinBathrooms.IsKeep() {
			st.setNumeric(MinBathrooms, patch.MinBathrooms.apply(st.MinBathrooms))
		}
		for field, items := range map[ArrayField][]string{
			Amenities:     patch.Amenities,
			Providers:     patch.Providers,
			PropertyTypes: patch.PropertyTypes,
			ViewTypes:     patch.ViewTypes,
		} {
			if items != nil {
				st.setArray(field, items)
			}
		}
		st.SearchExact = applyBool(patch.SearchExact, st.SearchExact)
		st.PetFriendly = applyBool(patch.PetFriendly, st.PetFriendly)
		st.Page = 1
		return true
	})
	return snap
}

// ToggleBooleanFilter sets a boolean filter, or flips it when value is nil
func (s *Store) ToggleBooleanFilter(field BoolField, value *bool) Snapshot {
	snap, _ := s.emit(IntentToggleBoolean, func(st *State) bool {
		next := !st.Bool(field)
		if value != nil {
			next = *value
		}
		st.setBool(field, next)
		st.Page = 1
		return true
	})
	return snap
}

// UpdatePagination moves to another page without resetting anything else.
// Pages below one become one; a page size outside the allowed set is ignored.
func (s *Store) UpdatePagination(page int, pageSize *int) Snapshot {
	snap, _ := s.emit(IntentUpdatePagination, func(st *State) bool {
		if page < 1 {
			page = 1
		}
		st.Page = page
		if pageSize != nil && s.opts.pageSizeAllowed(*pageSize) {
			st.PageSize = *pageSize
		}
		return true
	})
	return snap
}

// UpdateSorting changes the sort order. An unknown key changes nothing and
// emits nothing; the returned bool reports whether an emission happened.
func (s *Store) UpdateSorting(sortBy SortKey) (Snapshot, bool) {
	return s.emit(IntentUpdateSorting, func(st *State) bool {
		if !sortBy.Valid() {
			return false
		}
		st.SortBy = sortBy
		st.Page = 1
		return true
	})
}

// ResetAll restores every field to its default
func (s *Store) ResetAll() Snapshot {
	snap, _ := s.emit(IntentResetAll, func(st *State) bool {
		*st = s.opts.Defaults()
		return true
	})
	return snap
}

// ResetFilters restores the filters but keeps page, page size and sort order
func (s *Store) ResetFilters() Snapshot {
	snap, _ := s.emit(IntentResetFilters, func(st *State) bool {
		page, pageSize, sortBy := st.Page, st.PageSize, st.SortBy
		*st = s.opts.Defaults()
		st.Page, st.PageSize, st.SortBy = page, pageSize, sortBy
		return true
	})
	return snap
}

// InitializeFromURLParams merges a flat parameter map into the current state
// as one emission. Invalid values are dropped. An empty map is a no-op and
// returns false.
func (s *Store) InitializeFromURLParams(raw map[string]string, opts ...EmitOption) (Snapshot, bool) {
	if len(raw) == 0 {
		return s.Snapshot(), false
	}
	return s.emit(IntentInitFromURL, func(st *State) bool {
		*st = s.opts.mergeURLParams(*st, st.Location, raw)
		return true
	}, opts...)
}

// ResetFromURLParams replaces the state with the defaults plus whatever the
// parameter map carries. It always emits.
func (s *Store) ResetFromURLParams(raw map[string]string, opts ...EmitOption) Snapshot {
	snap, _ := s.emit(IntentResetFromURL, func(st *State) bool {
		*st = s.opts.mergeURLParams(s.opts.Defaults(), st.Location, raw)
		return true
	}, opts...)
	return snap
}

// Subscribe returns a replay-latest subscription: the current snapshot is
// available immediately, followed by every later one. A slow reader only
// ever sees the newest pending snapshot.
func (s *Store) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	sub := &Subscription{
		id:    s.nextSub,
		ch:    make(chan Snapshot, 1),
		store: s,
	}
	s.subs[sub.id] = sub
	sub.offer(s.clonedCurrent())
	return sub
}

func (s *Store) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(sub.ch)
	}
}

func (s *Store) clonedCurrent() Snapshot {
	snap := s.current
	snap.State = snap.State.Clone()
	return snap
}

// emit runs mutate on a copy of the state and publishes the result. mutate
// returns false to abandon the intent without emitting.
func (s *Store) emit(intent string, mutate func(*State) bool, opts ...EmitOption) (Snapshot, bool) {
	eo := emitOptions{origin: Origin{Intent: intent}}
	for _, opt := range opts {
		opt(&eo)
	}
	origin := eo.origin

	s.mu.Lock()
	defer s.mu.Unlock()

	if eo.guarded && s.current.Version != eo.atVersion {
		s.logger.Debug("intent overtaken", logging.Fields{
			"intent":  intent,
			"at":      eo.atVersion,
			"version": s.current.Version,
		})
		return s.clonedCurrent(), false
	}

	prev := s.current.State
	next := prev.Clone()
	if !mutate(&next) {
		s.logger.Debug("intent ignored", logging.Fields{"intent": intent})
		return s.clonedCurrent(), false
	}

	s.current = Snapshot{
		State:   next,
		Version: s.current.Version + 1,
		Origin:  origin,
	}

	if changed := ChangedFields(prev, next); len(changed) > 0 {
		s.logger.Debug("state changed", logging.Fields{
			"intent":     intent,
			"version":    s.current.Version,
			"changed":    changed,
			"navigation": origin.NavigationID,
		})
	}

	for _, sub := range s.subs {
		sub.offer(s.clonedCurrent())
	}
	return s.clonedCurrent(), true
}

func applyBool(f Field[bool], cur bool) bool {
	if v := f.apply(&cur); v != nil {
		return *v
	}
	return false
}

// normalizePrice clamps both ends to the bounds and swaps an inverted pair
func (o Options) normalizePrice(st *State) {
	st.MinPrice = o.clampPrice(st.MinPrice)
	st.MaxPrice = o.clampPrice(st.MaxPrice)
	if st.MinPrice != nil && st.MaxPrice != nil && *st.MinPrice > *st.MaxPrice {
		st.MinPrice, st.MaxPrice = st.MaxPrice, st.MinPrice
	}
}

func (o Options) clampPrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	if v < o.PriceBounds.Min {
		v = o.PriceBounds.Min
	}
	if v > o.PriceBounds.Max {
		v = o.PriceBounds.Max
	}
	return &v
}

// Subscription delivers snapshots from a Store
type Subscription struct {
	id    uint64
	ch    chan Snapshot
	store *Store
	once  sync.Once
}

// C returns the snapshot channel. It is closed by Close.
func (sub *Subscription) C() <-chan Snapshot {
	return sub.ch
}

// Close stops delivery
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		sub.store.unsubscribe(sub.id)
	})
}

// offer replaces any undelivered snapshot with snap. Called with the store lock held.
func (sub *Subscription) offer(snap Snapshot) {
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- snap
}
