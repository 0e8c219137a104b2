package logic

import "staygrip/internal/domain"

// PropertyStore provides access to listing data
type PropertyStore interface {
	GetProperty(listID int) (domain.Property, bool)
	GetAllProperties() []domain.Property
	AddProperty(p domain.Property)
	UpdateProperty(p domain.Property)
	RemoveProperty(listID int)
	Search(q Query) ([]domain.Property, domain.PageInfo)
}

// Query is a listing search as the API understands it
type Query struct {
	City    string
	State   string
	Country string
	// SearchExact requires the city to match exactly instead of by prefix
	SearchExact bool

	MinBedrooms  int
	MinBathrooms float64
	MinGuests    int
	MinPrice     *float64
	MaxPrice     *float64

	Amenities     []string
	Providers     []string
	PropertyTypes []string
	ViewTypes     []string
	PetFriendly   bool

	SortBy   string
	Page     int
	PageSize int
}
