package mockapi

import (
	"fmt"

	"staygrip/internal/domain"
)

type place struct {
	city, state string
	lat, lng    float64
}

var places = []place{
	{"Destin", "FL", 30.3935, -86.4958},
	{"Miramar Beach", "FL", 30.3744, -86.3586},
	{"Santa Rosa Beach", "FL", 30.3960, -86.2288},
	{"Panama City Beach", "FL", 30.1766, -85.8055},
	{"Orange Beach", "AL", 30.2944, -87.5736},
	{"Gulf Shores", "AL", 30.2460, -87.7008},
}

var (
	propertyTypes = []string{"Condo", "Beach House", "Townhome", "Cottage"}
	viewTypes     = []string{"Gulf View", "Gulf Front", "Bay View", "Pool View", "None"}
	providers     = []string{"vrbo", "airbnb", "direct"}
	amenitySets   = [][]string{
		{"pool", "wifi"},
		{"wifi", "hot-tub"},
		{"pool", "wifi", "beach-access"},
		{"wifi"},
	}
)

// DefaultFixtures returns a deterministic set of listings spread over the
// Gulf coast towns
func DefaultFixtures() []domain.Property {
	var out []domain.Property
	id := 1000
	for i := 0; i < 60; i++ {
		pl := places[i%len(places)]
		bedrooms := 1 + i%6
		id++
		out = append(out, domain.Property{
			ListID:        id,
			Provider:      providers[i%len(providers)],
			Headline:      fmt.Sprintf("%s %s #%d", pl.city, propertyTypes[i%len(propertyTypes)], i+1),
			Bedrooms:      bedrooms,
			Bathrooms:     float64(1+i%4) + float64(i%2)*0.5,
			Sleeps:        bedrooms*2 + i%3,
			PricePerNight: float64(120 + (i*37)%680),
			City:          pl.city,
			State:         pl.state,
			Country:       "USA",
			Address:       fmt.Sprintf("%d Scenic Gulf Dr", 100+i*7),
			PropertyType:  propertyTypes[i%len(propertyTypes)],
			ViewType:      viewTypes[i%len(viewTypes)],
			Latitude:      pl.lat + float64(i%5)*0.001,
			Longitude:     pl.lng - float64(i%5)*0.001,
			Rating:        3.5 + float64(i%4)*0.5,
			Description:   fmt.Sprintf("%d bedroom %s in %s, %s.", bedrooms, propertyTypes[i%len(propertyTypes)], pl.city, pl.state),
			CreatedAt:     fmt.Sprintf("2025-%02d-%02d", 1+i%12, 1+i%28),
			PetFriendly:   i%3 == 0,
			Amenities:     amenitySets[i%len(amenitySets)],
		})
	}
	return out
}
