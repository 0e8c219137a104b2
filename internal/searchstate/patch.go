package searchstate

// Field is a tri-state patch value: leave the field alone, set it, or clear it
type Field[T any] struct {
	set   bool
	clear bool
	value T
}

// Keep leaves the field unchanged. It is the zero value.
func Keep[T any]() Field[T] { return Field[T]{} }

// SetTo replaces the field with v
func SetTo[T any](v T) Field[T] { return Field[T]{set: true, value: v} }

// Clear removes the field
func Clear[T any]() Field[T] { return Field[T]{clear: true} }

// FromPtr sets the field when p is non-nil and clears it otherwise
func FromPtr[T any](p *T) Field[T] {
	if p == nil {
		return Clear[T]()
	}
	return SetTo(*p)
}

// IsKeep reports whether the patch leaves the field alone
func (f Field[T]) IsKeep() bool { return !f.set && !f.clear }

// apply returns the patched value of cur
func (f Field[T]) apply(cur *T) *T {
	switch {
	case f.set:
		v := f.value
		return &v
	case f.clear:
		return nil
	default:
		return cur
	}
}

// PricePatch is a partial price range update
type PricePatch struct {
	Min Field[float64]
	Max Field[float64]
}

// AdvancedFilters is the batch applied by the "Apply Filters" action.
// Nil slices and Keep fields leave the current value untouched; an empty
// non-nil slice clears the set.
type AdvancedFilters struct {
	MinBedrooms   Field[int]
	MinBathrooms  Field[int]
	Amenities     []string
	Providers     []string
	PropertyTypes []string
	ViewTypes     []string
	SearchExact   Field[bool]
	PetFriendly   Field[bool]
}
