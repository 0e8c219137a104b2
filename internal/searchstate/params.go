package searchstate

import (
	"net/url"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
)

// SearchParams is the flattened parameter set sent to the search gateway
type SearchParams struct {
	City         string
	State        string
	Country      string
	LocationText string
	Latitude     *float64
	Longitude    *float64

	// YYYY-MM-DD, empty when absent
	CheckIn  string
	CheckOut string

	MinBedrooms  *int
	MinBathrooms *int
	MinGuests    *int
	MinPrice     *float64
	MaxPrice     *float64

	Amenities     []string
	Providers     []string
	PropertyTypes []string
	ViewTypes     []string

	SearchExact bool
	PetFriendly bool

	Page     int
	PageSize int
	SortBy   string
}

// SearchParams flattens the state into gateway parameters
func (s State) SearchParams() SearchParams {
	p := SearchParams{
		MinBedrooms:   clonePtr(s.MinBedrooms),
		MinBathrooms:  clonePtr(s.MinBathrooms),
		MinGuests:     clonePtr(s.MinGuests),
		MinPrice:      clonePtr(s.MinPrice),
		MaxPrice:      clonePtr(s.MaxPrice),
		Amenities:     append([]string(nil), s.Amenities...),
		Providers:     append([]string(nil), s.Providers...),
		PropertyTypes: append([]string(nil), s.PropertyTypes...),
		ViewTypes:     append([]string(nil), s.ViewTypes...),
		SearchExact:   s.SearchExact,
		PetFriendly:   s.PetFriendly,
		Page:          s.Page,
		PageSize:      s.PageSize,
		SortBy:        string(s.SortBy),
	}
	if loc := s.Location; loc != nil {
		p.City = loc.City
		p.State = loc.State
		p.Country = loc.Country
		p.LocationText = loc.Text
		p.Latitude = clonePtr(loc.Latitude)
		p.Longitude = clonePtr(loc.Longitude)
	}
	p.CheckIn = FormatDate(s.CheckIn)
	p.CheckOut = FormatDate(s.CheckOut)
	return p
}

// Values renders the parameters as a query. Absent fields are omitted,
// sets are comma-joined and booleans appear only when true.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	setString := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	setFloat := func(key string, f *float64) {
		if f != nil {
			v.Set(key, FormatFloat(*f))
		}
	}
	setInt := func(key string, n *int) {
		if n != nil {
			v.Set(key, strconv.Itoa(*n))
		}
	}
	setList := func(key string, items []string) {
		if items = normalizeSet(items); len(items) > 0 {
			v.Set(key, strings.Join(items, ","))
		}
	}

	setString("city", p.City)
	setString("state", p.State)
	setString("country", p.Country)
	setString("locationText", p.LocationText)
	setFloat("latitude", p.Latitude)
	setFloat("longitude", p.Longitude)
	setString("checkIn", p.CheckIn)
	setString("checkOut", p.CheckOut)
	setInt("minBedrooms", p.MinBedrooms)
	setInt("minBathrooms", p.MinBathrooms)
	setInt("minGuests", p.MinGuests)
	setFloat("minPrice", p.MinPrice)
	setFloat("maxPrice", p.MaxPrice)
	setList("amenities", p.Amenities)
	setList("providers", p.Providers)
	setList("propertyTypes", p.PropertyTypes)
	setList("viewTypes", p.ViewTypes)
	if p.SearchExact {
		v.Set("searchExact", "true")
	}
	if p.PetFriendly {
		v.Set("petFriendly", "true")
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	setString("sortBy", p.SortBy)
	return v
}

// Key is the structural key of the parameter set: equal for any two sets
// describing the same search, however they were built.
func (p SearchParams) Key() string {
	return p.Values().Encode()
}

// FormatDate renders a calendar date as YYYY-MM-DD, or "" for nil
func FormatDate(d *civil.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// FormatFloat renders a number without trailing zeros
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
