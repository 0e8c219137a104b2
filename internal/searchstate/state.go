package searchstate

import (
	"errors"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
)

// ErrInvalidDateRange is returned by ValidateDateRange when check-out is not after check-in
var ErrInvalidDateRange = errors.New("check-out must be after check-in")

// Location is a structured place. Text is the display string and always wins
// over the derived City/State/Country when the location is written to a URL.
type Location struct {
	Text      string
	City      string
	State     string
	Country   string
	Latitude  *float64
	Longitude *float64
	PlaceID   string
}

// Clone returns a deep copy
func (l *Location) Clone() *Location {
	if l == nil {
		return nil
	}
	c := *l
	c.Latitude = clonePtr(l.Latitude)
	c.Longitude = clonePtr(l.Longitude)
	return &c
}

// Equal compares every field
func (l *Location) Equal(o *Location) bool {
	if l == nil || o == nil {
		return l == nil && o == nil
	}
	return l.Text == o.Text && l.City == o.City && l.State == o.State && l.Country == o.Country &&
		l.PlaceID == o.PlaceID && ptrEqual(l.Latitude, o.Latitude) && ptrEqual(l.Longitude, o.Longitude)
}

// LocationFromText builds a location from a display string such as
// "Destin, FL 32541, USA": city from the first part, state from the first
// word of the second, country from the third.
func LocationFromText(text string) *Location {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	loc := &Location{Text: text}
	parts := strings.Split(text, ",")
	loc.City = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		if fields := strings.Fields(parts[1]); len(fields) > 0 {
			loc.State = fields[0]
		}
	}
	if len(parts) > 2 {
		loc.Country = strings.TrimSpace(parts[2])
	}
	return loc
}

// State is the complete description of what the user is looking for.
// Absent values are nil pointers, empty slices or false.
type State struct {
	Location *Location

	CheckIn  *civil.Date
	CheckOut *civil.Date

	MinBedrooms  *int
	MinBathrooms *int
	MinGuests    *int

	MinPrice *float64
	MaxPrice *float64

	// sets, kept sorted and de-duplicated
	Amenities     []string
	Providers     []string
	PropertyTypes []string
	ViewTypes     []string

	SearchExact bool
	PetFriendly bool

	Page     int
	PageSize int
	SortBy   SortKey
}

// Clone returns a deep copy that shares nothing with s
func (s State) Clone() State {
	c := s
	c.Location = s.Location.Clone()
	c.CheckIn = clonePtr(s.CheckIn)
	c.CheckOut = clonePtr(s.CheckOut)
	c.MinBedrooms = clonePtr(s.MinBedrooms)
	c.MinBathrooms = clonePtr(s.MinBathrooms)
	c.MinGuests = clonePtr(s.MinGuests)
	c.MinPrice = clonePtr(s.MinPrice)
	c.MaxPrice = clonePtr(s.MaxPrice)
	c.Amenities = slices.Clone(s.Amenities)
	c.Providers = slices.Clone(s.Providers)
	c.PropertyTypes = slices.Clone(s.PropertyTypes)
	c.ViewTypes = slices.Clone(s.ViewTypes)
	return c
}

// Array returns the set stored under field
func (s State) Array(field ArrayField) []string {
	switch field {
	case Amenities:
		return s.Amenities
	case Providers:
		return s.Providers
	case PropertyTypes:
		return s.PropertyTypes
	case ViewTypes:
		return s.ViewTypes
	}
	return nil
}

func (s *State) setArray(field ArrayField, items []string) {
	items = normalizeSet(items)
	switch field {
	case Amenities:
		s.Amenities = items
	case Providers:
		s.Providers = items
	case PropertyTypes:
		s.PropertyTypes = items
	case ViewTypes:
		s.ViewTypes = items
	}
}

// Numeric returns the value stored under field
func (s State) Numeric(field NumericField) *int {
	switch field {
	case MinBedrooms:
		return s.MinBedrooms
	case MinBathrooms:
		return s.MinBathrooms
	case MinGuests:
		return s.MinGuests
	}
	return nil
}

func (s *State) setNumeric(field NumericField, v *int) {
	if v != nil && *v < 0 {
		v = nil
	}
	v = clonePtr(v)
	switch field {
	case MinBedrooms:
		s.MinBedrooms = v
	case MinBathrooms:
		s.MinBathrooms = v
	case MinGuests:
		s.MinGuests = v
	}
}

// Bool returns the value stored under field
func (s State) Bool(field BoolField) bool {
	switch field {
	case SearchExact:
		return s.SearchExact
	case PetFriendly:
		return s.PetFriendly
	}
	return false
}

func (s *State) setBool(field BoolField, v bool) {
	switch field {
	case SearchExact:
		s.SearchExact = v
	case PetFriendly:
		s.PetFriendly = v
	}
}

// HasActiveFilters reports whether any search filter is set. Page, page size
// and sort order are not filters.
func (s State) HasActiveFilters() bool {
	return s.ActiveFiltersCount() > 0
}

// ActiveFiltersCount counts filter groups for the filter badge. The price
// range counts once, and the date range counts once.
func (s State) ActiveFiltersCount() int {
	count := 0
	if s.Location != nil {
		count++
	}
	if s.CheckIn != nil {
		count++
	}
	for _, n := range []*int{s.MinBedrooms, s.MinBathrooms, s.MinGuests} {
		if n != nil && *n > 0 {
			count++
		}
	}
	if (s.MinPrice != nil && *s.MinPrice > 0) || (s.MaxPrice != nil && *s.MaxPrice > 0) {
		count++
	}
	for _, set := range [][]string{s.Amenities, s.Providers, s.PropertyTypes, s.ViewTypes} {
		if len(set) > 0 {
			count++
		}
	}
	if s.SearchExact {
		count++
	}
	if s.PetFriendly {
		count++
	}
	return count
}

// ValidateDateRange is the check the UI runs before submitting dates.
// A half-open range is allowed; the store clears it.
func ValidateDateRange(checkIn, checkOut *civil.Date) error {
	if checkIn == nil || checkOut == nil {
		return nil
	}
	if !checkOut.After(*checkIn) {
		return ErrInvalidDateRange
	}
	return nil
}

// normalizeSet trims, drops empty entries, de-duplicates and sorts
func normalizeSet(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
