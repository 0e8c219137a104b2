package views

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"staygrip/internal/domain"
)

func sampleProperties(n int) []domain.Property {
	props := make([]domain.Property, n)
	for i := range props {
		props[i] = domain.Property{
			ListID:        1000 + i,
			City:          "Destin",
			State:         "FL",
			Bedrooms:      3,
			Bathrooms:     2.5,
			Sleeps:        8,
			PricePerNight: 245,
			Provider:      "vrbo",
			Headline:      "Steps to the beach",
		}
	}
	return props
}

func TestRenderShowsAddressAndBadge(t *testing.T) {
	out := StripANSI(NewRenderer().Render(ViewState{
		Width:         100,
		Height:        30,
		Address:       "/properties/Destin%2C%20FL?minBedrooms=2",
		ActiveFilters: 2,
		SortLabel:     "Newest First",
	}))

	assert.Contains(t, out, "/properties/Destin%2C%20FL?minBedrooms=2")
	assert.Contains(t, out, "Filters 2")
	assert.Contains(t, out, "Sort: Newest First")
	assert.Contains(t, out, "Press / to choose a location.")
}

func TestRenderBlockingLoad(t *testing.T) {
	out := StripANSI(NewRenderer().Render(ViewState{
		Width:       80,
		Height:      24,
		Loading:     domain.LoadingBlocking,
		SpinnerView: "*",
	}))
	assert.Contains(t, out, "* Loading properties...")
}

func TestRenderPlaceholderHidesRows(t *testing.T) {
	out := StripANSI(NewRenderer().Render(ViewState{
		Width:          80,
		Height:         24,
		Properties:     sampleProperties(3),
		ViewportHeight: 10,
		Loading:        domain.LoadingPlaceholder,
	}))
	assert.NotContains(t, out, "Destin, FL")
	rows := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "░") {
			rows++
		}
	}
	assert.Equal(t, 3, rows)
}

func TestRenderResultsAndPagination(t *testing.T) {
	out := StripANSI(NewRenderer().Render(ViewState{
		Width:          120,
		Height:         30,
		Properties:     sampleProperties(2),
		Pagination:     domain.PageInfo{Page: 2, PageSize: 12, Total: 30, TotalPages: 3},
		Searched:       true,
		ViewportHeight: 10,
	}))
	assert.Contains(t, out, "▸ $245")
	assert.Contains(t, out, "3bd 2.5ba sleeps 8")
	assert.Contains(t, out, "page 2/3")
	assert.Contains(t, out, "30 properties")
	assert.Contains(t, out, "‹ p")
	assert.Contains(t, out, "n ›")
}

func TestRenderEmptySearch(t *testing.T) {
	out := StripANSI(NewRenderer().Render(ViewState{Width: 80, Height: 24, Searched: true}))
	assert.Contains(t, out, "No properties match this search.")
}

func TestRenderViewportIndicators(t *testing.T) {
	out := StripANSI(NewRenderer().Render(ViewState{
		Width:          120,
		Height:         40,
		Properties:     sampleProperties(20),
		Searched:       true,
		SelectedIndex:  6,
		ViewportOffset: 5,
		ViewportHeight: 6,
	}))
	assert.Contains(t, out, "↑ 5 more above ↑")
	assert.Contains(t, out, "more below ↓")
}

func TestRenderPromptAndError(t *testing.T) {
	out := StripANSI(NewRenderer().Render(ViewState{
		Width:         80,
		Height:        24,
		Prompt:        "Where: ",
		TextInput:     "Destin",
		StatusMessage: "Search failed",
		StatusIsError: true,
	}))
	assert.Contains(t, out, "Where: Destin")
	assert.Contains(t, out, "Search failed")
}

func TestScrollWindow(t *testing.T) {
	content := strings.TrimSuffix(strings.Repeat("line\n", 20), "\n")
	out := scrollWindow(content, 6, 3, NewStyles().Scroll)
	lines := strings.Split(StripANSI(out), "\n")
	assert.Len(t, lines, 6)
	assert.Equal(t, "↑ (more above)", lines[0])
	assert.Equal(t, "↓ (more below)", lines[5])
}
