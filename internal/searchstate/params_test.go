package searchstate

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestSearchParamsFlattensLocation(t *testing.T) {
	st := DefaultOptions().Defaults()
	st.Location = destin()

	p := st.SearchParams()
	v := p.Values()

	assert.Equal(t, "Destin", v.Get("city"))
	assert.Equal(t, "FL", v.Get("state"))
	assert.Equal(t, "USA", v.Get("country"))
	assert.Equal(t, "1", v.Get("page"))
	assert.Equal(t, "12", v.Get("pageSize"))
	assert.Equal(t, "newest", v.Get("sortBy"))
	assert.NotContains(t, v, "petFriendly")
	assert.NotContains(t, v, "minGuests")
}

func TestSearchParamsKeyIsStructural(t *testing.T) {
	a := DefaultOptions().Defaults()
	a.CheckIn = &civil.Date{Year: 2026, Month: 7, Day: 1}
	a.CheckOut = &civil.Date{Year: 2026, Month: 7, Day: 8}
	a.Amenities = []string{"pool", "wifi"}

	b := DefaultOptions().Defaults()
	b.CheckIn = &civil.Date{Year: 2026, Month: 7, Day: 1}
	b.CheckOut = &civil.Date{Year: 2026, Month: 7, Day: 8}

	pa, pb := a.SearchParams(), b.SearchParams()
	pb.Amenities = []string{"wifi", "pool"}

	assert.Equal(t, pa.Key(), pb.Key())
	assert.Equal(t, "2026-07-01", pa.CheckIn)

	pb.Page = 2
	assert.NotEqual(t, pa.Key(), pb.Key())
}

func TestSearchParamsValuesFormatting(t *testing.T) {
	p := SearchParams{
		MinPrice:    ptr(99.5),
		MaxPrice:    ptr(300.0),
		Providers:   []string{"b", "a"},
		SearchExact: true,
	}
	v := p.Values()

	assert.Equal(t, "99.5", v.Get("minPrice"))
	assert.Equal(t, "300", v.Get("maxPrice"))
	assert.Equal(t, "a,b", v.Get("providers"))
	assert.Equal(t, "true", v.Get("searchExact"))
	assert.NotContains(t, v, "page")
}
