// Package gateway talks to the property search API.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"staygrip/internal/domain"
	"staygrip/internal/searchstate"
)

// ErrNotFound is returned by GetByListID when the API has no such listing
var ErrNotFound = errors.New("property not found")

// Searcher runs a property search
type Searcher interface {
	Search(ctx context.Context, params searchstate.SearchParams) (domain.ResultPage, error)
}

// PropertyLookup fetches a single listing by id
type PropertyLookup interface {
	GetByListID(ctx context.Context, listID int) (domain.Property, error)
}

// FilterOptionsSource provides the advanced filter option lists
type FilterOptionsSource interface {
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
}

// Error is a failed API call
type Error struct {
	Op         string
	StatusCode int // 0 when the request never got a response
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the same call may succeed
func (e *Error) Transient() bool {
	if e.StatusCode == 0 {
		return e.Err != nil && !errors.Is(e.Err, context.Canceled)
	}
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// IsTransient reports whether err is a transient gateway error
func IsTransient(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Transient()
}
