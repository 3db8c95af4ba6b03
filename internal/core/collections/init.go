// Package collections registers the built-in collections with the core
// registry. Import it for its side effect.
package collections

import "github.com/JonMunkholm/gradabroad/internal/core"

// MaxNameLength bounds university and course names.
const MaxNameLength = 100

func init() {
	registerPrograms()
	registerShortlists()
	registerApplicationTracker()
}

// commonFields are the leading columns every collection shares.
func commonFields() []core.FieldSpec {
	return []core.FieldSpec{
		{Name: core.ColumnOwner, Type: core.FieldUUID},
		{Name: "university_name", Type: core.FieldText, Required: true, MaxLength: MaxNameLength},
		{Name: "course_name", Type: core.FieldText, Required: true, MaxLength: MaxNameLength},
	}
}
