package models

import (
	"net/url"
	"strconv"
	"strings"
)

// IssueFilter is the filter tuple of one list query. The zero value lists
// page 1 of everything.
type IssueFilter struct {
	Status   Status
	Category Category
	Priority Priority
	Search   string
	Page     int
}

// Normalize trims the search text and clamps the page to at least 1.
func (f IssueFilter) Normalize() IssueFilter {
	f.Search = strings.TrimSpace(f.Search)
	if f.Page < 1 {
		f.Page = 1
	}
	return f
}

// Values serializes the filter as list query parameters. Every key is always
// present so two equal tuples always encode identically.
func (f IssueFilter) Values() url.Values {
	f = f.Normalize()
	v := url.Values{}
	v.Set("status", string(f.Status))
	v.Set("category", string(f.Category))
	v.Set("priority", string(f.Priority))
	v.Set("search", f.Search)
	v.Set("page", strconv.Itoa(f.Page))
	return v
}

// Key identifies the tuple in the query cache.
func (f IssueFilter) Key() string {
	return f.Values().Encode()
}
