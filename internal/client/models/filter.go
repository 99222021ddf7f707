package models

import "fmt"

// Filter is a pure view transform over a post collection. It is shared by
// both page contexts: a single value, not per-collection.
type Filter string

const (
	FilterAll         Filter = "all"
	FilterPublished   Filter = "published"
	FilterUnpublished Filter = "unpublished"
)

// ParseFilter validates a user-supplied filter value.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case FilterAll, FilterPublished, FilterUnpublished:
		return Filter(s), nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, published or unpublished)", s)
}

// Match reports whether the post passes the filter.
func (f Filter) Match(p *Post) bool {
	switch f {
	case FilterPublished:
		return p.Published()
	case FilterUnpublished:
		return !p.Published()
	default:
		return true
	}
}
