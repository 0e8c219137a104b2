package searchstate

import (
	"math"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/spf13/cast"
)

// URL parameter names. CityParam carries the location path segment.
const (
	CityParam      = "city"
	StateParam     = "state"
	CountryParam   = "country"
	PlaceIDParam   = "placeId"
	LatitudeParam  = "latitude"
	LongitudeParam = "longitude"
	CheckInParam   = "checkIn"
	CheckOutParam  = "checkOut"
	MinPriceParam  = "minPrice"
	MaxPriceParam  = "maxPrice"
	PageParam      = "page"
	PageSizeParam  = "pageSize"
	SortByParam    = "sortBy"
	ListIDParam    = "listId"
)

// mergeURLParams overlays the valid entries of raw on base. known is the
// location the user currently has; when the city text matches it, its
// structured fields are kept instead of being re-derived from text.
func (o Options) mergeURLParams(base State, known *Location, raw map[string]string) State {
	st := base.Clone()
	get := func(key string) (string, bool) {
		v, ok := raw[key]
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	if city, ok := get(CityParam); ok {
		if known != nil && known.Text == city {
			st.Location = known.Clone()
		} else {
			st.Location = LocationFromText(city)
		}
	}
	if st.Location != nil {
		if v, ok := get(StateParam); ok {
			st.Location.State = v
		}
		if v, ok := get(CountryParam); ok {
			st.Location.Country = v
		}
		if v, ok := get(PlaceIDParam); ok {
			st.Location.PlaceID = v
		}
		if v, ok := get(LatitudeParam); ok {
			if f, ok := parseCoordinate(v, 90); ok {
				st.Location.Latitude = &f
			}
		}
		if v, ok := get(LongitudeParam); ok {
			if f, ok := parseCoordinate(v, 180); ok {
				st.Location.Longitude = &f
			}
		}
	}

	in, inOK := get(CheckInParam)
	out, outOK := get(CheckOutParam)
	if inOK && outOK {
		if ci, co, ok := parseDateRange(in, out); ok {
			st.CheckIn, st.CheckOut = &ci, &co
		}
	}

	for _, field := range NumericFields {
		if v, ok := get(string(field)); ok {
			if n, ok := parseNonNegativeInt(v); ok {
				st.setNumeric(field, &n)
			}
		}
	}

	if v, ok := get(MinPriceParam); ok {
		if f, ok := parseNonNegativeFloat(v); ok {
			st.MinPrice = &f
		}
	}
	if v, ok := get(MaxPriceParam); ok {
		if f, ok := parseNonNegativeFloat(v); ok {
			st.MaxPrice = &f
		}
	}
	o.normalizePrice(&st)

	if v, ok := get(PageParam); ok {
		if n, ok := parseNonNegativeInt(v); ok && n >= 1 {
			st.Page = n
		}
	}
	if v, ok := get(PageSizeParam); ok {
		if n, ok := parseNonNegativeInt(v); ok && o.pageSizeAllowed(n) {
			st.PageSize = n
		}
	}
	if v, ok := get(SortByParam); ok {
		if k := SortKey(v); k.Valid() {
			st.SortBy = k
		}
	}

	for _, field := range ArrayFields {
		if v, ok := get(string(field)); ok {
			if items := splitList(v); len(items) > 0 {
				st.setArray(field, items)
			}
		}
	}

	for _, field := range BoolFields {
		if v, ok := get(string(field)); ok {
			if b, err := cast.ToBoolE(v); err == nil {
				st.setBool(field, b)
			}
		}
	}

	return st
}

func parseFinite(v string) (float64, bool) {
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseNonNegativeFloat(v string) (float64, bool) {
	f, ok := parseFinite(v)
	if !ok || f < 0 {
		return 0, false
	}
	return f, true
}

func parseNonNegativeInt(v string) (int, bool) {
	f, ok := parseNonNegativeFloat(v)
	if !ok || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func parseCoordinate(v string, limit float64) (float64, bool) {
	f, ok := parseFinite(v)
	if !ok || math.Abs(f) > limit {
		return 0, false
	}
	return f, true
}

// parseDateRange accepts the pair only when both dates parse and check-out
// is after check-in
func parseDateRange(in, out string) (civil.Date, civil.Date, bool) {
	ci, err := civil.ParseDate(in)
	if err != nil {
		return civil.Date{}, civil.Date{}, false
	}
	co, err := civil.ParseDate(out)
	if err != nil {
		return civil.Date{}, civil.Date{}, false
	}
	if !co.After(ci) {
		return civil.Date{}, civil.Date{}, false
	}
	return ci, co, true
}

// splitList splits a comma separated list. The value arrives already
// unescaped, so elements are taken literally.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return normalizeSet(out)
}
