package domain

// Property represents a single rental listing as returned by the search API
type Property struct {
	ListID        int       `json:"list_id"`
	Provider      string    `json:"provider"`
	Headline      string    `json:"headline"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     float64   `json:"bathrooms"`
	Sleeps        int       `json:"sleeps"`
	PricePerNight float64   `json:"price_per_night"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	Country       string    `json:"country,omitempty"`
	Address       string    `json:"address1"`
	PropertyType  string    `json:"property_type"`
	ViewType      string    `json:"view_type"` // often empty
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Rating        float64   `json:"rating"`
	Description   string    `json:"description"`
	URL           string    `json:"URL"`
	CreatedAt     string    `json:"created_at"`
	PetFriendly   bool      `json:"petFriendly"`
	Amenities     []string  `json:"amenities"`
	Images        []Image   `json:"images,omitempty"`
}

// Image is a listing photo
type Image struct {
	URL string `json:"URLTxt,omitempty"`
}

// PageInfo is the pagination metadata attached to every search response
type PageInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HasNext reports whether a later page exists
func (p PageInfo) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether an earlier page exists
func (p PageInfo) HasPrev() bool {
	return p.Page > 1
}

// ResultPage is one page of search results
type ResultPage struct {
	Properties []Property
	Pagination PageInfo
}

// SinglePropertyPage wraps a direct lookup result so it renders like a search page
func SinglePropertyPage(p Property, pageSize int) ResultPage {
	return ResultPage{
		Properties: []Property{p},
		Pagination: PageInfo{Page: 1, PageSize: pageSize, Total: 1, TotalPages: 1},
	}
}

// FilterOption is a selectable value for a multi-select filter
type FilterOption struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// FilterOptions holds the option lists offered by the advanced filter panel
type FilterOptions struct {
	PropertyTypes []FilterOption
	ViewTypes     []FilterOption
}

// LoadingKind describes how a fetch in progress should be presented
type LoadingKind int

const (
	// LoadingNone means nothing is loading
	LoadingNone LoadingKind = iota
	// LoadingBlocking is the full-screen indicator used for the first fetch only
	LoadingBlocking
	// LoadingPlaceholder is the in-place placeholder used for every later fetch
	LoadingPlaceholder
)

func (k LoadingKind) String() string {
	switch k {
	case LoadingBlocking:
		return "blocking"
	case LoadingPlaceholder:
		return "placeholder"
	default:
		return "none"
	}
}
