// Package urlcodec maps search state to the shareable /properties URL.
//
// There is no Decode: a URL reaches the state through the router, the entry
// resolver and Store.InitializeFromURLParams. Round trips are therefore
// checked with Equivalent rather than byte equality.
package urlcodec

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"staygrip/internal/searchstate"
)

// BasePath is the first path segment of every search URL
const BasePath = "properties"

// Config controls which values are left out of the URL
type Config struct {
	DefaultPage     int
	DefaultPageSize int
	DefaultSortBy   searchstate.SortKey
	// IncludePlaceDetails adds state, country, coordinates and place id
	IncludePlaceDetails bool
	IncludeListIDInURL  bool
}

// DefaultConfig omits page 1, 12 per page and newest first, and keeps
// locations down to their path segment
func DefaultConfig() Config {
	return Config{
		DefaultPage:     1,
		DefaultPageSize: 12,
		DefaultSortBy:   searchstate.SortNewest,
	}
}

// Representation is an unencoded path and query
type Representation struct {
	PathSegments []string
	Query        map[string]string
}

// Encode builds the URL for st. The location text is used verbatim as the
// second path segment; only values that differ from the defaults, or that
// are optional and present, go into the query.
func Encode(st searchstate.State, cfg Config) Representation {
	rep := Representation{
		PathSegments: []string{BasePath},
		Query:        map[string]string{},
	}
	q := rep.Query

	if loc := st.Location; loc != nil {
		if loc.Text != "" {
			rep.PathSegments = append(rep.PathSegments, loc.Text)
		}
		if cfg.IncludePlaceDetails {
			if loc.Latitude != nil {
				q[searchstate.LatitudeParam] = searchstate.FormatFloat(*loc.Latitude)
			}
			if loc.Longitude != nil {
				q[searchstate.LongitudeParam] = searchstate.FormatFloat(*loc.Longitude)
			}
			if loc.State != "" {
				q[searchstate.StateParam] = loc.State
			}
			if loc.Country != "" {
				q[searchstate.CountryParam] = loc.Country
			}
			if loc.PlaceID != "" {
				q[searchstate.PlaceIDParam] = loc.PlaceID
			}
		}
	}

	if st.CheckIn != nil && st.CheckOut != nil {
		q[searchstate.CheckInParam] = searchstate.FormatDate(st.CheckIn)
		q[searchstate.CheckOutParam] = searchstate.FormatDate(st.CheckOut)
	}

	for _, field := range searchstate.NumericFields {
		if n := st.Numeric(field); n != nil {
			q[string(field)] = strconv.Itoa(*n)
		}
	}
	if st.MinPrice != nil {
		q[searchstate.MinPriceParam] = searchstate.FormatFloat(*st.MinPrice)
	}
	if st.MaxPrice != nil {
		q[searchstate.MaxPriceParam] = searchstate.FormatFloat(*st.MaxPrice)
	}

	if st.Page != cfg.DefaultPage {
		q[searchstate.PageParam] = strconv.Itoa(st.Page)
	}
	if st.PageSize != cfg.DefaultPageSize {
		q[searchstate.PageSizeParam] = strconv.Itoa(st.PageSize)
	}
	if st.SortBy != "" && st.SortBy != cfg.DefaultSortBy {
		q[searchstate.SortByParam] = string(st.SortBy)
	}

	for _, field := range searchstate.ArrayFields {
		if items := st.Array(field); len(items) > 0 {
			q[string(field)] = strings.Join(items, ",")
		}
	}

	for _, field := range searchstate.BoolFields {
		if st.Bool(field) {
			q[string(field)] = "true"
		}
	}

	return rep
}

// ListIDRepresentation is the URL of a direct list-id search. Without
// IncludeListIDInURL it is the bare search path.
func ListIDRepresentation(listID int, cfg Config) Representation {
	rep := Representation{
		PathSegments: []string{BasePath},
		Query:        map[string]string{},
	}
	if cfg.IncludeListIDInURL {
		rep.Query[searchstate.ListIDParam] = strconv.Itoa(listID)
	}
	return rep
}

// Href percent-encodes the representation. Query keys are sorted.
func (r Representation) Href() string {
	var b strings.Builder
	for _, seg := range r.PathSegments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	if b.Len() == 0 {
		b.WriteByte('/')
	}

	if len(r.Query) > 0 {
		b.WriteByte('?')
		for i, k := range sortedKeys(r.Query) {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(r.Query[k]))
		}
	}
	return b.String()
}

// String renders the representation without encoding, for display
func (r Representation) String() string {
	s := "/" + strings.Join(r.PathSegments, "/")
	if len(r.Query) == 0 {
		return s
	}
	pairs := make([]string, 0, len(r.Query))
	for _, k := range sortedKeys(r.Query) {
		pairs = append(pairs, k+"="+r.Query[k])
	}
	return s + "?" + strings.Join(pairs, "&")
}

// Parsed is a decoded URL
type Parsed struct {
	PathSegments []string
	Query        map[string]string
}

// Parse decodes an href into path segments and a flat query map. When a key
// repeats, the first value wins.
func Parse(href string) (Parsed, error) {
	path, rawQuery := splitHref(href)

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		decoded, err := url.PathUnescape(seg)
		if err != nil {
			return Parsed{}, fmt.Errorf("invalid path segment %q: %w", seg, err)
		}
		segments = append(segments, decoded)
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Parsed{}, fmt.Errorf("invalid query %q: %w", rawQuery, err)
	}
	query := make(map[string]string, len(values))
	for k, vs := range values {
		if k == "" || len(vs) == 0 {
			continue
		}
		query[k] = vs[0]
	}

	return Parsed{PathSegments: segments, Query: query}, nil
}

// Equivalent reports whether two hrefs describe the same URL: same decoded
// path segments and the same query key/value set in any order. Hrefs that
// cannot be decoded are compared as written.
func Equivalent(a, b string) bool {
	pa, errA := Parse(a)
	pb, errB := Parse(b)
	if errA != nil || errB != nil {
		return rawEquivalent(a, b)
	}
	return equalSegments(pa.PathSegments, pb.PathSegments) && equalQuery(pa.Query, pb.Query)
}

func splitHref(href string) (path, query string) {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	path, query, _ = strings.Cut(href, "?")
	return path, query
}

func rawEquivalent(a, b string) bool {
	pathA, queryA := splitHref(a)
	pathB, queryB := splitHref(b)
	if strings.Trim(pathA, "/") != strings.Trim(pathB, "/") {
		return false
	}
	return equalSegments(sortedPairs(queryA), sortedPairs(queryB))
}

func sortedPairs(query string) []string {
	var pairs []string
	for _, p := range strings.Split(query, "&") {
		if p != "" {
			pairs = append(pairs, p)
		}
	}
	sort.Strings(pairs)
	return pairs
}

func equalSegments(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalQuery(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
