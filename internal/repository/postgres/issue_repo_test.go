package postgres

import (
	"testing"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/repository"
)

func TestBuildIssueWhere(t *testing.T) {
	where, args := buildIssueWhere(repository.IssueFilter{
		Q:        " refund ",
		Status:   "Open",
		Category: "Payment",
	})
	want := "WHERE 1=1 AND (i.title ILIKE $1 OR i.description ILIKE $2) AND i.status = $3 AND i.category = $4"
	if where != want {
		t.Fatalf("where = %q\nwant    %q", where, want)
	}
	if len(args) != 4 || args[0] != "%refund%" || args[2] != "Open" || args[3] != "Payment" {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildIssueWhereEmpty(t *testing.T) {
	where, args := buildIssueWhere(repository.IssueFilter{})
	if where != "WHERE 1=1" || len(args) != 0 {
		t.Fatalf("where = %q args = %v", where, args)
	}
}

func TestParseID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"3F2C1B9E-7A44-4D8B-9C1E-2B6F0A1D5E77", "3f2c1b9e-7a44-4d8b-9c1e-2b6f0a1d5e77", true},
		{" 3f2c1b9e-7a44-4d8b-9c1e-2b6f0a1d5e77 ", "3f2c1b9e-7a44-4d8b-9c1e-2b6f0a1d5e77", true},
		{"42", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := parseID(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("parseID(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
