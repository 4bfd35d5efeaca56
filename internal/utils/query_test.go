package utils

import (
	"context"
	"net/url"
	"testing"
)

func TestQueryInt(t *testing.T) {
	q := url.Values{"page": {"3"}, "bad": {"x"}}
	if got := QueryInt(q, "page", 1); got != 3 {
		t.Fatalf("QueryInt(page) = %d", got)
	}
	if got := QueryInt(q, "bad", 1); got != 1 {
		t.Fatalf("QueryInt(bad) = %d", got)
	}
	if got := QueryInt(q, "missing", 7); got != 7 {
		t.Fatalf("QueryInt(missing) = %d", got)
	}
}

func TestPagination(t *testing.T) {
	cases := []struct {
		query       string
		page, limit int
	}{
		{"", 1, 10},
		{"page=0&limit=500", 1, 10},
		{"page=4&limit=25", 4, 25},
		{"page=-2&limit=abc", 1, 10},
	}
	for _, tc := range cases {
		q, _ := url.ParseQuery(tc.query)
		page, limit := Pagination(q, 10, 100)
		if page != tc.page || limit != tc.limit {
			t.Fatalf("Pagination(%q) = %d, %d; want %d, %d", tc.query, page, limit, tc.page, tc.limit)
		}
	}
}

func TestFromContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "admin-1")
	if s, ok := GetString(ctx, key{}); !ok || s != "admin-1" {
		t.Fatalf("GetString() = %q, %v", s, ok)
	}
	if _, ok := FromContext[int](ctx, key{}); ok {
		t.Fatalf("FromContext[int] matched a string")
	}
}
