package input

// ModelContext implements the Context interface for the input handler. The
// model fills it from its own state before every key press.
type ModelContext struct {
	Index         int
	ListIDs       []int
	Sort          string
	ActiveFilters bool
	Back          bool
	Forward       bool
}

// CurrentIndex returns the cursor position in the result list
func (c *ModelContext) CurrentIndex() int {
	return c.Index
}

// TotalItems returns the number of listed properties
func (c *ModelContext) TotalItems() int {
	return len(c.ListIDs)
}

// HasResults reports whether any property is listed
func (c *ModelContext) HasResults() bool {
	return len(c.ListIDs) > 0
}

// CurrentListID returns the list id under the cursor, or 0
func (c *ModelContext) CurrentListID() int {
	if c.Index < 0 || c.Index >= len(c.ListIDs) {
		return 0
	}
	return c.ListIDs[c.Index]
}

// CurrentSort returns the sort key in effect
func (c *ModelContext) CurrentSort() string {
	return c.Sort
}

// HasActiveFilters reports whether any filter is set
func (c *ModelContext) HasActiveFilters() bool {
	return c.ActiveFilters
}

// CanGoBack reports whether there is an earlier history entry
func (c *ModelContext) CanGoBack() bool {
	return c.Back
}

// CanGoForward reports whether there is a later history entry
func (c *ModelContext) CanGoForward() bool {
	return c.Forward
}
