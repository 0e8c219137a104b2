package gateway

import (
	"context"
	"encoding/json"
	"regexp"
	"slices"
	"strings"
	"sync"

	"staygrip/internal/domain"
)

// DefaultViewTypeRemoveList hides placeholder view types
var DefaultViewTypeRemoveList = []string{"", "None", "N/A", "Other"}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonSlugRe    = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slug turns an option name into its id: "Gulf View" -> "gulf-view"
func Slug(name string) string {
	s := strings.TrimSpace(strings.ToLower(name))
	s = whitespaceRe.ReplaceAllString(s, "-")
	return nonSlugRe.ReplaceAllString(s, "")
}

func buildFilterOptions(resp FilterOptionsResponse, removeList []string) domain.FilterOptions {
	if removeList == nil {
		removeList = DefaultViewTypeRemoveList
	}

	opts := domain.FilterOptions{}
	for _, raw := range resp.Categories {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			if name != "" {
				opts.PropertyTypes = append(opts.PropertyTypes, domain.FilterOption{Name: name, ID: Slug(name)})
			}
			continue
		}
		var named namedOption
		if err := json.Unmarshal(raw, &named); err == nil && named.Name != "" {
			id := named.ID
			if id == "" {
				id = Slug(named.Name)
			}
			opts.PropertyTypes = append(opts.PropertyTypes, domain.FilterOption{Name: named.Name, ID: id})
		}
	}

	for _, vt := range resp.ViewTypes {
		if slices.Contains(removeList, vt) {
			continue
		}
		opts.ViewTypes = append(opts.ViewTypes, domain.FilterOption{Name: vt, ID: Slug(vt)})
	}
	return opts
}

// optionsCache fetches once and shares the result. Failures are not cached.
type optionsCache struct {
	mu     sync.Mutex
	fetch  func(context.Context) (domain.FilterOptions, error)
	cached *domain.FilterOptions
}

func newOptionsCache(fetch func(context.Context) (domain.FilterOptions, error)) *optionsCache {
	return &optionsCache{fetch: fetch}
}

func (o *optionsCache) get(ctx context.Context) (domain.FilterOptions, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cached != nil {
		return *o.cached, nil
	}
	opts, err := o.fetch(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	o.cached = &opts
	return opts, nil
}
