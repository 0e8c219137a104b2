package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"staygrip/internal/domain"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "gulf-view", Slug("Gulf View"))
	assert.Equal(t, "beach-house", Slug("  Beach   House "))
	assert.Equal(t, "bb", Slug("B&B"))
}

func TestBuildFilterOptionsAcceptsBothCategoryShapes(t *testing.T) {
	resp := FilterOptionsResponse{
		ViewTypes: []string{"Gulf View", "", "None", "Bay View"},
		Categories: []json.RawMessage{
			json.RawMessage(`"Condo"`),
			json.RawMessage(`{"name":"Beach House","id":"house"}`),
			json.RawMessage(`{"name":"Cottage"}`),
			json.RawMessage(`42`),
		},
	}

	opts := buildFilterOptions(resp, nil)

	assert.Equal(t, []domain.FilterOption{
		{Name: "Condo", ID: "condo"},
		{Name: "Beach House", ID: "house"},
		{Name: "Cottage", ID: "cottage"},
	}, opts.PropertyTypes)
	assert.Equal(t, []domain.FilterOption{
		{Name: "Gulf View", ID: "gulf-view"},
		{Name: "Bay View", ID: "bay-view"},
	}, opts.ViewTypes)
}

func TestBuildFilterOptionsCustomRemoveList(t *testing.T) {
	opts := buildFilterOptions(FilterOptionsResponse{ViewTypes: []string{"Gulf View", "Bay View"}}, []string{"Bay View"})
	assert.Equal(t, []domain.FilterOption{{Name: "Gulf View", ID: "gulf-view"}}, opts.ViewTypes)
}
