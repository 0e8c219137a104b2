package searchstate

// NumericField names one of the integer lower-bound filters
type NumericField string

const (
	MinBedrooms  NumericField = "minBedrooms"
	MinBathrooms NumericField = "minBathrooms"
	MinGuests    NumericField = "minGuests"
)

// NumericFields lists the integer filters in URL order
var NumericFields = []NumericField{MinBedrooms, MinBathrooms, MinGuests}

// ArrayField names one of the multi-select filters
type ArrayField string

const (
	Amenities     ArrayField = "amenities"
	Providers     ArrayField = "providers"
	PropertyTypes ArrayField = "propertyTypes"
	ViewTypes     ArrayField = "viewTypes"
)

// ArrayFields lists the multi-select filters in URL order
var ArrayFields = []ArrayField{Amenities, Providers, PropertyTypes, ViewTypes}

// BoolField names one of the boolean filters
type BoolField string

const (
	SearchExact BoolField = "searchExact"
	PetFriendly BoolField = "petFriendly"
)

// BoolFields lists the boolean filters in URL order
var BoolFields = []BoolField{SearchExact, PetFriendly}

// SortKey is one of the fixed result orderings
type SortKey string

const (
	SortNewest        SortKey = "newest"
	SortOldest        SortKey = "oldest"
	SortPriceLow      SortKey = "price_low"
	SortPriceHigh     SortKey = "price_high"
	SortBedroomsAsc   SortKey = "bedrooms_asc"
	SortBedroomsDesc  SortKey = "bedrooms_desc"
	SortBathroomsAsc  SortKey = "bathrooms_asc"
	SortBathroomsDesc SortKey = "bathrooms_desc"
	SortSleepsAsc     SortKey = "sleeps_asc"
	SortSleepsDesc    SortKey = "sleeps_desc"
	SortCityAsc       SortKey = "city_asc"
	SortCityDesc      SortKey = "city_desc"
	SortStateAsc      SortKey = "state_asc"
	SortStateDesc     SortKey = "state_desc"
)

// SortOption pairs a sort key with its dropdown label
type SortOption struct {
	Key   SortKey
	Label string
}

// SortOptions is the dropdown order
var SortOptions = []SortOption{
	{SortNewest, "Newest First"},
	{SortOldest, "Oldest First"},
	{SortPriceLow, "Price: Low to High"},
	{SortPriceHigh, "Price: High to Low"},
	{SortBedroomsAsc, "Bedroom# (Low to High)"},
	{SortBedroomsDesc, "Bedroom# (High to Low)"},
	{SortBathroomsAsc, "Bathroom# (Low to High)"},
	{SortBathroomsDesc, "Bathroom# (High to Low)"},
	{SortSleepsAsc, "Sleeps# (Low to High)"},
	{SortSleepsDesc, "Sleeps# (High to Low)"},
	{SortCityAsc, "City Name ASC"},
	{SortCityDesc, "City Name DESC"},
	{SortStateAsc, "State Name ASC"},
	{SortStateDesc, "State Name DESC"},
}

// Valid reports whether k is a known sort key
func (k SortKey) Valid() bool {
	for _, o := range SortOptions {
		if o.Key == k {
			return true
		}
	}
	return false
}

// Label returns the human readable name, or the raw key when unknown
func (k SortKey) Label() string {
	for _, o := range SortOptions {
		if o.Key == k {
			return o.Label
		}
	}
	return string(k)
}

// Next returns the following sort key in dropdown order, wrapping around
func (k SortKey) Next() SortKey {
	for i, o := range SortOptions {
		if o.Key == k {
			return SortOptions[(i+1)%len(SortOptions)].Key
		}
	}
	return SortOptions[0].Key
}

// DefaultPageSizes are the page sizes offered by the page-size select
var DefaultPageSizes = []int{12, 24, 48, 60}

// PriceBounds is the configured price slider range
type PriceBounds struct {
	Min float64
	Max float64
}

// Options configures a Store
type Options struct {
	DefaultPage     int
	DefaultPageSize int
	DefaultSortBy   SortKey
	PageSizes       []int
	PriceBounds     PriceBounds
}

// DefaultOptions returns page 1, 12 per page, newest first, and a 0-10000 price range
func DefaultOptions() Options {
	return Options{
		DefaultPage:     1,
		DefaultPageSize: 12,
		DefaultSortBy:   SortNewest,
		PageSizes:       DefaultPageSizes,
		PriceBounds:     PriceBounds{Min: 0, Max: 10000},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DefaultPage < 1 {
		o.DefaultPage = d.DefaultPage
	}
	if len(o.PageSizes) == 0 {
		o.PageSizes = d.PageSizes
	}
	if !o.pageSizeAllowed(o.DefaultPageSize) {
		o.DefaultPageSize = o.PageSizes[0]
	}
	if !o.DefaultSortBy.Valid() {
		o.DefaultSortBy = d.DefaultSortBy
	}
	if o.PriceBounds.Max <= o.PriceBounds.Min {
		o.PriceBounds = d.PriceBounds
	}
	return o
}

func (o Options) pageSizeAllowed(size int) bool {
	for _, s := range o.PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Defaults returns the all-default state for these options
func (o Options) Defaults() State {
	return State{
		Page:     o.DefaultPage,
		PageSize: o.DefaultPageSize,
		SortBy:   o.DefaultSortBy,
	}
}
