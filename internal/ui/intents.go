package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/spf13/cast"

	"staygrip/internal/domain"
	"staygrip/internal/searchstate"
)

var (
	ErrInvalidPrice  = errors.New("price must look like 100-350, 100- or -350")
	ErrInvalidDates  = errors.New("dates must look like 2025-07-01 2025-07-05")
	ErrInvalidListID = errors.New("listing number must be a positive integer")
)

// ParsePriceRange reads the price prompt. An empty side clears that bound;
// a single number sets the minimum only.
func ParsePriceRange(text string) (searchstate.PricePatch, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), "$", "")
	if text == "" {
		return searchstate.PricePatch{
			Min: searchstate.Clear[float64](),
			Max: searchstate.Clear[float64](),
		}, nil
	}

	lo, hi, ranged := strings.Cut(text, "-")
	if !ranged {
		f, err := parsePrice(lo)
		if err != nil {
			return searchstate.PricePatch{}, err
		}
		return searchstate.PricePatch{Min: searchstate.SetTo(f), Max: searchstate.Keep[float64]()}, nil
	}

	var patch searchstate.PricePatch
	for _, side := range []struct {
		text  string
		field *searchstate.Field[float64]
	}{{lo, &patch.Min}, {hi, &patch.Max}} {
		if strings.TrimSpace(side.text) == "" {
			*side.field = searchstate.Clear[float64]()
			continue
		}
		f, err := parsePrice(side.text)
		if err != nil {
			return searchstate.PricePatch{}, err
		}
		*side.field = searchstate.SetTo(f)
	}
	return patch, nil
}

func parsePrice(s string) (float64, error) {
	f, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil || f < 0 {
		return 0, ErrInvalidPrice
	}
	return f, nil
}

// ParseDates reads the dates prompt: two ISO dates separated by spaces or
// "..". An empty prompt clears both dates.
func ParseDates(text string) (*civil.Date, *civil.Date, error) {
	fields := strings.Fields(strings.ReplaceAll(text, "..", " "))
	if len(fields) == 0 {
		return nil, nil, nil
	}
	if len(fields) != 2 {
		return nil, nil, ErrInvalidDates
	}

	in, err := civil.ParseDate(fields[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidDates, err)
	}
	out, err := civil.ParseDate(fields[1])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidDates, err)
	}
	if err := searchstate.ValidateDateRange(&in, &out); err != nil {
		return nil, nil, err
	}
	return &in, &out, nil
}

// ParseListID reads the listing prompt. A leading '#' is allowed.
func ParseListID(text string) (int, error) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "#")
	id, err := strconv.Atoi(text)
	if err != nil || id <= 0 {
		return 0, ErrInvalidListID
	}
	return id, nil
}

// FilterSummary lists the active filters as short chips for the header
func FilterSummary(st searchstate.State, options domain.FilterOptions) []string {
	var chips []string
	if st.Location != nil {
		chips = append(chips, st.Location.Text)
	}
	if st.CheckIn != nil && st.CheckOut != nil {
		chips = append(chips, fmt.Sprintf("%s → %s", st.CheckIn, st.CheckOut))
	}
	for _, n := range []struct {
		v     *int
		label string
	}{
		{st.MinBedrooms, "bd"},
		{st.MinBathrooms, "ba"},
		{st.MinGuests, "guests"},
	} {
		if n.v != nil && *n.v > 0 {
			chips = append(chips, fmt.Sprintf("%d+ %s", *n.v, n.label))
		}
	}
	if price := priceChip(st.MinPrice, st.MaxPrice); price != "" {
		chips = append(chips, price)
	}
	chips = append(chips, optionNames(st.PropertyTypes, options.PropertyTypes)...)
	chips = append(chips, optionNames(st.ViewTypes, options.ViewTypes)...)
	chips = append(chips, st.Amenities...)
	chips = append(chips, st.Providers...)
	if st.PetFriendly {
		chips = append(chips, "pets")
	}
	if st.SearchExact {
		chips = append(chips, "exact")
	}
	return chips
}

func priceChip(lo, hi *float64) string {
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("$%s-$%s", searchstate.FormatFloat(*lo), searchstate.FormatFloat(*hi))
	case lo != nil && *lo > 0:
		return fmt.Sprintf("$%s+", searchstate.FormatFloat(*lo))
	case hi != nil && *hi > 0:
		return fmt.Sprintf("≤ $%s", searchstate.FormatFloat(*hi))
	}
	return ""
}

// optionNames maps slug ids back to display names when the options are known
func optionNames(ids []string, options []domain.FilterOption) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name := id
		for _, o := range options {
			if o.ID == id {
				name = o.Name
				break
			}
		}
		names = append(names, name)
	}
	return names
}

// nextOption returns the set after current when cycling a single-select
// through options: none, then each option in order, then none again
func nextOption(current []string, options []domain.FilterOption) []string {
	if len(options) == 0 {
		return []string{}
	}
	if len(current) == 0 {
		return []string{options[0].ID}
	}
	for i, o := range options {
		if o.ID == current[0] {
			if i+1 < len(options) {
				return []string{options[i+1].ID}
			}
			return []string{}
		}
	}
	return []string{options[0].ID}
}
