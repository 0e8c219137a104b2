package searchstate

import (
	"reflect"
	"unicode"
	"unicode/utf8"
)

// ChangedFields lists, in declaration order, the URL-style names of the
// fields that differ between a and b
func ChangedFields(a, b State) []string {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	t := va.Type()

	var changed []string
	for i := 0; i < t.NumField(); i++ {
		if !reflect.DeepEqual(va.Field(i).Interface(), vb.Field(i).Interface()) {
			changed = append(changed, lowerFirst(t.Field(i).Name))
		}
	}
	return changed
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
