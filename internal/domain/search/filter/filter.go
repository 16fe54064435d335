// Package filter describes the equality filters the document store
// understands: category and source matches plus an excluded identifier.
package filter

// Filter is a conjunction of equality conditions pushed down to the store.
type Filter struct {
	category  string
	source    string
	excludeID string
}

// New creates a filter matching the given category and source; empty
// values mean "no condition".
func New(category, source string) Filter {
	return Filter{category: category, source: source}
}

// WithExcludeID returns a copy that additionally excludes a document.
// Useful to omit a document from its own similarity results.
func (f Filter) WithExcludeID(id string) Filter {
	f.excludeID = id
	return f
}

// Category returns the category equality condition, empty if unset.
func (f Filter) Category() string { return f.category }

// Source returns the source equality condition, empty if unset.
func (f Filter) Source() string { return f.source }

// ExcludeID returns the excluded document identifier, empty if unset.
func (f Filter) ExcludeID() string { return f.excludeID }

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return f.category == "" && f.source == "" && f.excludeID == ""
}
