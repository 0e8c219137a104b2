package logic

import (
	"slices"
	"sort"
	"strings"

	"staygrip/internal/domain"
	"staygrip/internal/gateway"
)

// Matches reports whether p satisfies every filter in q
func Matches(p domain.Property, q Query) bool {
	if q.City != "" {
		city, want := strings.ToLower(p.City), strings.ToLower(q.City)
		if q.SearchExact && city != want {
			return false
		}
		if !q.SearchExact && !strings.HasPrefix(city, want) {
			return false
		}
	}
	if q.State != "" && !strings.EqualFold(p.State, q.State) {
		return false
	}
	if q.Country != "" && p.Country != "" && !strings.EqualFold(p.Country, q.Country) {
		return false
	}
	if p.Bedrooms < q.MinBedrooms || p.Bathrooms < q.MinBathrooms || p.Sleeps < q.MinGuests {
		return false
	}
	if q.MinPrice != nil && p.PricePerNight < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.PricePerNight > *q.MaxPrice {
		return false
	}
	if q.PetFriendly && !p.PetFriendly {
		return false
	}
	for _, a := range q.Amenities {
		if !containsFold(p.Amenities, a) {
			return false
		}
	}
	if len(q.Providers) > 0 && !containsFold(q.Providers, p.Provider) {
		return false
	}
	if len(q.PropertyTypes) > 0 && !slices.Contains(q.PropertyTypes, gateway.Slug(p.PropertyType)) {
		return false
	}
	if len(q.ViewTypes) > 0 && !slices.Contains(q.ViewTypes, gateway.Slug(p.ViewType)) {
		return false
	}
	return true
}

// SortProperties orders properties in place by one of the search sort keys.
// Unknown keys fall back to newest first.
func SortProperties(properties []domain.Property, sortBy string) {
	less := func(i, j int) bool { return properties[i].CreatedAt > properties[j].CreatedAt }

	switch sortBy {
	case "oldest":
		less = func(i, j int) bool { return properties[i].CreatedAt < properties[j].CreatedAt }
	case "price_low":
		less = func(i, j int) bool { return properties[i].PricePerNight < properties[j].PricePerNight }
	case "price_high":
		less = func(i, j int) bool { return properties[i].PricePerNight > properties[j].PricePerNight }
	case "bedrooms_asc":
		less = func(i, j int) bool { return properties[i].Bedrooms < properties[j].Bedrooms }
	case "bedrooms_desc":
		less = func(i, j int) bool { return properties[i].Bedrooms > properties[j].Bedrooms }
	case "bathrooms_asc":
		less = func(i, j int) bool { return properties[i].Bathrooms < properties[j].Bathrooms }
	case "bathrooms_desc":
		less = func(i, j int) bool { return properties[i].Bathrooms > properties[j].Bathrooms }
	case "sleeps_asc":
		less = func(i, j int) bool { return properties[i].Sleeps < properties[j].Sleeps }
	case "sleeps_desc":
		less = func(i, j int) bool { return properties[i].Sleeps > properties[j].Sleeps }
	case "city_asc":
		less = func(i, j int) bool { return properties[i].City < properties[j].City }
	case "city_desc":
		less = func(i, j int) bool { return properties[i].City > properties[j].City }
	case "state_asc":
		less = func(i, j int) bool { return properties[i].State < properties[j].State }
	case "state_desc":
		less = func(i, j int) bool { return properties[i].State > properties[j].State }
	}

	sort.SliceStable(properties, less)
}

// Paginate cuts one page out of properties. Page and size below one are
// treated as one and twelve.
func Paginate(properties []domain.Property, page, pageSize int) ([]domain.Property, domain.PageInfo) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 12
	}

	total := len(properties)
	info := domain.PageInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	start := (page - 1) * pageSize
	if start >= total {
		return []domain.Property{}, info
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return properties[start:end], info
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
