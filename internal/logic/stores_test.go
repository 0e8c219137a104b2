package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staygrip/internal/domain"
)

func fixtures() []domain.Property {
	return []domain.Property{
		{ListID: 1, City: "Destin", State: "FL", Bedrooms: 3, Bathrooms: 2, Sleeps: 8, PricePerNight: 250, PropertyType: "Condo", ViewType: "Gulf View", Provider: "vrbo", Amenities: []string{"Pool", "WiFi"}, CreatedAt: "2025-01-01"},
		{ListID: 2, City: "Destin", State: "FL", Bedrooms: 5, Bathrooms: 4.5, Sleeps: 14, PricePerNight: 600, PropertyType: "Beach House", ViewType: "Gulf Front", Provider: "airbnb", PetFriendly: true, CreatedAt: "2025-03-01"},
		{ListID: 3, City: "Miramar Beach", State: "FL", Bedrooms: 2, Bathrooms: 2, Sleeps: 6, PricePerNight: 180, PropertyType: "Condo", Provider: "vrbo", Amenities: []string{"Pool"}, CreatedAt: "2025-02-01"},
		{ListID: 4, City: "Orange Beach", State: "AL", Bedrooms: 4, Bathrooms: 3, Sleeps: 10, PricePerNight: 320, PropertyType: "Townhome", Provider: "direct", CreatedAt: "2024-12-01"},
	}
}

func ids(props []domain.Property) []int {
	out := make([]int, len(props))
	for i, p := range props {
		out[i] = p.ListID
	}
	return out
}

func TestMemoryPropertyStoreCRUD(t *testing.T) {
	s := NewMemoryPropertyStore(fixtures()...)

	p, ok := s.GetProperty(2)
	require.True(t, ok)
	assert.Equal(t, 5, p.Bedrooms)

	p.Bedrooms = 6
	s.UpdateProperty(p)
	p, _ = s.GetProperty(2)
	assert.Equal(t, 6, p.Bedrooms)

	s.RemoveProperty(2)
	_, ok = s.GetProperty(2)
	assert.False(t, ok)

	s.AddProperty(domain.Property{ListID: 9})
	assert.Equal(t, []int{1, 3, 4, 9}, ids(s.GetAllProperties()))
}

func TestSearchFilters(t *testing.T) {
	s := NewMemoryPropertyStore(fixtures()...)

	cases := map[string]struct {
		q    Query
		want []int
	}{
		"city prefix":    {Query{City: "destin", SortBy: "oldest"}, []int{1, 2}},
		"exact city":     {Query{City: "Miramar", SearchExact: true}, nil},
		"state":          {Query{State: "al"}, []int{4}},
		"bedrooms":       {Query{MinBedrooms: 4, SortBy: "bedrooms_asc"}, []int{4, 2}},
		"bathrooms":      {Query{MinBathrooms: 4}, []int{2}},
		"price":          {Query{MinPrice: ptr(200.0), MaxPrice: ptr(400.0), SortBy: "price_low"}, []int{1, 4}},
		"amenities":      {Query{Amenities: []string{"pool", "wifi"}}, []int{1}},
		"providers":      {Query{Providers: []string{"vrbo"}, SortBy: "oldest"}, []int{1, 3}},
		"property types": {Query{PropertyTypes: []string{"beach-house"}}, []int{2}},
		"view types":     {Query{ViewTypes: []string{"gulf-view"}}, []int{1}},
		"pet friendly":   {Query{PetFriendly: true}, []int{2}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, info := s.Search(tc.q)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, ids(got))
			assert.Equal(t, len(tc.want), info.Total)
		})
	}
}

func TestSortProperties(t *testing.T) {
	props := fixtures()

	SortProperties(props, "")
	assert.Equal(t, []int{2, 3, 1, 4}, ids(props))

	SortProperties(props, "price_high")
	assert.Equal(t, []int{2, 4, 1, 3}, ids(props))

	SortProperties(props, "city_desc")
	assert.Equal(t, []int{4, 3}, ids(props)[:2])
}

func TestPaginate(t *testing.T) {
	props := fixtures()

	page, info := Paginate(props, 2, 3)
	assert.Equal(t, []int{4}, ids(page))
	assert.Equal(t, domain.PageInfo{Page: 2, PageSize: 3, Total: 4, TotalPages: 2}, info)
	assert.True(t, info.HasPrev())
	assert.False(t, info.HasNext())

	page, info = Paginate(props, 5, 3)
	assert.Empty(t, page)
	assert.Equal(t, 5, info.Page)

	_, info = Paginate(nil, 0, 0)
	assert.Equal(t, domain.PageInfo{Page: 1, PageSize: 12}, info)
}

func ptr[T any](v T) *T { return &v }
